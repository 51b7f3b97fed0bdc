package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/smallbiznis/kasira/internal/checkout/domain"
	promotiondomain "github.com/smallbiznis/kasira/internal/promotion/domain"
	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

type checkoutRequest struct {
	PaymentMethod string                     `json:"payment_method" binding:"required"`
	AmountPaid    string                     `json:"amount_paid" binding:"required"`
	MemberID      string                     `json:"member_id"`
	Promotion     *promotiondomain.Promotion `json:"promotion"`
}

type quoteRequest struct {
	MemberID  string                     `json:"member_id"`
	Promotion *promotiondomain.Promotion `json:"promotion"`
}

func (s *Server) Checkout(c *gin.Context) {
	registerID := c.Param("register_id")

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paid, err := money.ParseNonNegative(req.AmountPaid)
	if err != nil {
		AbortWithError(c, newValidationError("amount_paid", "invalid_amount", "invalid value"))
		return
	}

	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, newValidationError("member_id", "invalid_id", "invalid value"))
		return
	}

	result, err := s.checkoutSvc.Checkout(c.Request.Context(), checkoutdomain.CheckoutRequest{
		RegisterID:    registerID,
		PaymentMethod: transactiondomain.PaymentMethod(req.PaymentMethod),
		AmountPaid:    paid,
		MemberID:      memberID,
		Promotion:     req.Promotion,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) QuoteCart(c *gin.Context) {
	registerID := c.Param("register_id")

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, newValidationError("member_id", "invalid_id", "invalid value"))
		return
	}

	summary, err := s.checkoutSvc.Quote(c.Request.Context(), checkoutdomain.QuoteRequest{
		RegisterID: registerID,
		MemberID:   memberID,
		Promotion:  req.Promotion,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func parseMemberID(raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
