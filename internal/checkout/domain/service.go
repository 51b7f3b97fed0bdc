// Package domain defines the checkout coordinator contract: the state
// machine that turns a live cart into a committed transaction.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kasira/internal/pricing"
	promotiondomain "github.com/smallbiznis/kasira/internal/promotion/domain"
	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

// State tracks a single checkout attempt. Any rejection drops back to
// StateIdle with the cart untouched; only a successful commit reaches
// StateCompleted.
type State string

const (
	StateIdle       State = "IDLE"
	StatePricing    State = "PRICING"
	StateValidating State = "VALIDATING"
	StateCommitting State = "COMMITTING"
	StateCompleted  State = "COMPLETED"
)

type CheckoutRequest struct {
	RegisterID    string
	PaymentMethod transactiondomain.PaymentMethod
	AmountPaid    money.Money
	MemberID      *snowflake.ID

	// Promotion is the promotion supplied for this sale, if any. When
	// nil, the active set from the promotions config is considered.
	Promotion *promotiondomain.Promotion
}

type QuoteRequest struct {
	RegisterID string
	MemberID   *snowflake.ID
	Promotion  *promotiondomain.Promotion
}

type Result struct {
	Transaction  transactiondomain.Transaction `json:"transaction"`
	Summary      pricing.Summary               `json:"summary"`
	Change       money.Money                   `json:"change"`
	PointsEarned int64                         `json:"points_earned"`
}

type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest) (Result, error)
	Quote(ctx context.Context, req QuoteRequest) (pricing.Summary, error)
}

var (
	ErrEmptyCart            = errors.New("empty_cart")
	ErrInsufficientPayment  = errors.New("insufficient_payment")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrCommitFailed         = errors.New("commit_failed")
)
