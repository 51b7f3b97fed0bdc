package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	cartdomain "github.com/smallbiznis/kasira/internal/cart/domain"
	catalogdomain "github.com/smallbiznis/kasira/internal/catalog/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

type cartLineView struct {
	ProductID       string      `json:"product_id"`
	ProductName     string      `json:"product_name"`
	Quantity        int64       `json:"quantity"`
	UnitPrice       money.Money `json:"unit_price"`
	DiscountPercent float64     `json:"discount_percent"`
	Subtotal        money.Money `json:"subtotal"`
}

type cartView struct {
	RegisterID string         `json:"register_id"`
	SessionID  string         `json:"session_id,omitempty"`
	Lines      []cartLineView `json:"lines"`
}

type addCartLineRequest struct {
	ProductID       string  `json:"product_id" binding:"required"`
	Quantity        int64   `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

type updateCartLineRequest struct {
	Quantity int64 `json:"quantity"`
}

func (s *Server) GetCart(c *gin.Context) {
	registerID := c.Param("register_id")
	cart, err := s.sessions.Cart(registerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.cartView(registerID, cart))
}

func (s *Server) AddCartLine(c *gin.Context) {
	registerID := c.Param("register_id")

	var req addCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.GetByID(c.Request.Context(), catalogdomain.GetProductRequest{ID: req.ProductID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !product.Active {
		AbortWithError(c, catalogdomain.ErrInactive)
		return
	}

	cart, err := s.sessions.Cart(registerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if _, err := cart.AddLine(product.ID, product.Name, product.Price(), req.Quantity, req.DiscountPercent); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.cartView(registerID, cart))
}

func (s *Server) UpdateCartLine(c *gin.Context) {
	registerID := c.Param("register_id")

	productID, err := snowflake.ParseString(c.Param("product_id"))
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_id", "invalid value"))
		return
	}

	var req updateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cart, err := s.sessions.Cart(registerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if _, err := cart.UpdateQuantity(productID, req.Quantity); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.cartView(registerID, cart))
}

// RemoveCartLine is idempotent: removing an absent line succeeds so a
// cashier retrying a void never sees an error.
func (s *Server) RemoveCartLine(c *gin.Context) {
	registerID := c.Param("register_id")

	productID, err := snowflake.ParseString(c.Param("product_id"))
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_id", "invalid value"))
		return
	}

	cart, err := s.sessions.Cart(registerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cart.RemoveLine(productID)
	c.JSON(http.StatusOK, s.cartView(registerID, cart))
}

func (s *Server) ClearCart(c *gin.Context) {
	registerID := c.Param("register_id")

	cart, err := s.sessions.Cart(registerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cart.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) cartView(registerID string, cart *cartdomain.Cart) cartView {
	lines := cart.Lines()
	view := cartView{
		RegisterID: registerID,
		Lines:      make([]cartLineView, 0, len(lines)),
	}
	if sessionID, ok := s.sessions.SessionID(registerID); ok {
		view.SessionID = sessionID
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, cartLineView{
			ProductID:       line.ProductID.String(),
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			Subtotal:        line.Subtotal.Round(),
		})
	}
	return view
}
