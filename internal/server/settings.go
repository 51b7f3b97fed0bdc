package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	settingsdomain "github.com/smallbiznis/kasira/internal/settings/domain"
)

type updateSettingsRequest struct {
	TaxRate       *float64 `json:"tax_rate"`
	PointsPerUnit *int64   `json:"points_per_unit"`
}

func (s *Server) GetSettings(c *gin.Context) {
	settings, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.TaxRate == nil && req.PointsPerUnit == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settings, err := s.settingsSvc.Update(c.Request.Context(), settingsdomain.UpdateSettingsRequest{
		TaxRate:       req.TaxRate,
		PointsPerUnit: req.PointsPerUnit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
