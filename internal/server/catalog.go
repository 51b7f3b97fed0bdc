package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/smallbiznis/kasira/internal/catalog/domain"
)

type createProductRequest struct {
	SKU   string `json:"sku" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Price string `json:"price" binding:"required"`
}

type listProductsQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int32  `form:"page_size,default=25"`
	Name       string `form:"name"`
	ActiveOnly bool   `form:"active_only"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateProductRequest{
		SKU:   req.SKU,
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) ListProducts(c *gin.Context) {
	var query listProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListProductRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		Name:       query.Name,
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProductByID(c *gin.Context) {
	product, err := s.catalogSvc.GetByID(c.Request.Context(), catalogdomain.GetProductRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
