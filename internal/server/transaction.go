package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
	"github.com/smallbiznis/kasira/pkg/db/pagination"
)

type listTransactionsQuery struct {
	pagination.Pagination
	RegisterID  string `form:"register_id"`
	MemberID    string `form:"member_id"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

type listTransactionsResponse struct {
	pagination.PageInfo
	Transactions []*transactiondomain.Transaction `json:"transactions"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := transactiondomain.ListTransactionFilter{
		RegisterID: query.RegisterID,
	}

	memberID, err := parseMemberID(query.MemberID)
	if err != nil {
		AbortWithError(c, newValidationError("member_id", "invalid_id", "invalid value"))
		return
	}
	filter.MemberID = memberID

	if query.CreatedFrom != "" {
		from, err := time.Parse(time.RFC3339, query.CreatedFrom)
		if err != nil {
			AbortWithError(c, newValidationError("created_from", "invalid_timestamp", "invalid value"))
			return
		}
		filter.CreatedFrom = &from
	}
	if query.CreatedTo != "" {
		to, err := time.Parse(time.RFC3339, query.CreatedTo)
		if err != nil {
			AbortWithError(c, newValidationError("created_to", "invalid_timestamp", "invalid value"))
			return
		}
		filter.CreatedTo = &to
	}

	transactions, err := s.transactionsRp.List(c.Request.Context(), s.db, filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit := query.PageSize
	if limit <= 0 {
		limit = 25
	}

	pageInfo := pagination.BuildCursorPageInfo(transactions, int32(limit), func(t *transactiondomain.Transaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        t.ID.String(),
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}

	c.JSON(http.StatusOK, listTransactionsResponse{
		PageInfo:     *pageInfo,
		Transactions: transactions,
	})
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, transactiondomain.ErrInvalidID)
		return
	}

	transaction, err := s.transactionsRp.FindByID(c.Request.Context(), s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if transaction == nil {
		AbortWithError(c, transactiondomain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, transaction)
}
