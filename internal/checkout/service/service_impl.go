package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	cartdomain "github.com/smallbiznis/kasira/internal/cart/domain"
	"github.com/smallbiznis/kasira/internal/cart/session"
	checkoutdomain "github.com/smallbiznis/kasira/internal/checkout/domain"
	"github.com/smallbiznis/kasira/internal/clock"
	"github.com/smallbiznis/kasira/internal/config"
	inventorydomain "github.com/smallbiznis/kasira/internal/inventory/domain"
	loyaltydomain "github.com/smallbiznis/kasira/internal/loyalty/domain"
	"github.com/smallbiznis/kasira/internal/observability/metrics"
	"github.com/smallbiznis/kasira/internal/pricing"
	promotiondomain "github.com/smallbiznis/kasira/internal/promotion/domain"
	settingsdomain "github.com/smallbiznis/kasira/internal/settings/domain"
	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     config.Config
	Node       *snowflake.Node
	Clock      clock.Clock
	Sessions   *session.Manager
	Settings   settingsdomain.Service
	Promotions *config.PromotionsHolder
	Repo       transactiondomain.Repository
	Metrics    *metrics.Metrics
}

type service struct {
	log        *zap.Logger
	cfg        config.Config
	node       *snowflake.Node
	clock      clock.Clock
	sessions   *session.Manager
	settings   settingsdomain.Service
	promotions *config.PromotionsHolder
	repo       transactiondomain.Repository
	metrics    *metrics.Metrics
}

func New(p Params) checkoutdomain.Service {
	return &service{
		log:        p.Log.Named("checkout.service"),
		cfg:        p.Config,
		node:       p.Node,
		clock:      p.Clock,
		sessions:   p.Sessions,
		settings:   p.Settings,
		promotions: p.Promotions,
		repo:       p.Repo,
		metrics:    p.Metrics,
	}
}

// Checkout drives one attempt through the full state machine. The cart
// is cleared only after the transaction is durably committed; any
// rejection or storage failure leaves it exactly as it was.
func (s *service) Checkout(ctx context.Context, req checkoutdomain.CheckoutRequest) (checkoutdomain.Result, error) {
	log := s.log.With(zap.String("register_id", req.RegisterID))

	if !req.PaymentMethod.Valid() {
		s.reject("invalid_payment_method")
		return checkoutdomain.Result{}, checkoutdomain.ErrInvalidPaymentMethod
	}

	cart, err := s.sessions.Cart(req.RegisterID)
	if err != nil {
		return checkoutdomain.Result{}, err
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		s.reject("empty_cart")
		return checkoutdomain.Result{}, checkoutdomain.ErrEmptyCart
	}

	// Settings are read once per checkout; a mid-sale settings change
	// never splits one transaction across two tax rates.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.reject("settings_unavailable")
		return checkoutdomain.Result{}, err
	}

	log.Debug("checkout state", zap.String("state", string(checkoutdomain.StatePricing)))
	summary, discountPercent, err := s.price(lines, req.MemberID, req.Promotion, settings.TaxRate)
	if err != nil {
		s.reject("pricing_failed")
		return checkoutdomain.Result{}, err
	}

	log.Debug("checkout state", zap.String("state", string(checkoutdomain.StateValidating)))
	paid := req.AmountPaid.Round()
	if paid.LessThan(summary.Total) {
		s.reject("insufficient_payment")
		return checkoutdomain.Result{}, checkoutdomain.ErrInsufficientPayment
	}
	change := money.Max(money.Zero, paid.Sub(summary.Total))

	points := pointsFor(req.MemberID, summary.Total, settings.PointsPerUnit)

	now := s.clock.Now()
	txn := transactiondomain.Transaction{
		ID:            s.node.Generate(),
		BranchID:      snowflake.ID(s.cfg.BranchID),
		RegisterID:    req.RegisterID,
		ReceiptNumber: newReceiptNumber(),
		MemberID:      req.MemberID,
		PaymentMethod: req.PaymentMethod,
		SubtotalCents: summary.Subtotal.Cents(),
		DiscountCents: summary.DiscountAmount.Cents(),
		TaxCents:      summary.TaxAmount.Cents(),
		TotalCents:    summary.Total.Cents(),
		PaidCents:     paid.Cents(),
		ChangeCents:   change.Cents(),
		PointsEarned:  points,
		Metadata: datatypes.JSONMap{
			"cart_discount_percent": discountPercent,
		},
		CreatedAt: now,
		Lines:     buildLines(s.node, lines, summary),
	}

	log.Debug("checkout state", zap.String("state", string(checkoutdomain.StateCommitting)))
	if err := s.repo.Commit(ctx, &txn); err != nil {
		s.reject("commit_failed")
		log.Error("commit transaction", zap.Error(err))
		if errors.Is(err, inventorydomain.ErrInsufficientStock) || errors.Is(err, loyaltydomain.ErrMemberNotFound) {
			return checkoutdomain.Result{}, err
		}
		return checkoutdomain.Result{}, fmt.Errorf("%w: %v", checkoutdomain.ErrCommitFailed, err)
	}

	cart.Clear()

	s.metrics.CheckoutsCompleted.WithLabelValues(string(req.PaymentMethod)).Inc()
	s.metrics.TransactionTotal.Observe(float64(txn.TotalCents) / 100)
	s.metrics.CartLinesPerSale.Observe(float64(len(lines)))

	log.Info("checkout completed",
		zap.String("state", string(checkoutdomain.StateCompleted)),
		zap.String("receipt_number", txn.ReceiptNumber),
		zap.Int64("total_cents", txn.TotalCents),
		zap.Int64("points_earned", points),
	)

	return checkoutdomain.Result{
		Transaction:  txn,
		Summary:      summary,
		Change:       change,
		PointsEarned: points,
	}, nil
}

// Quote prices the register's current cart without committing anything.
func (s *service) Quote(ctx context.Context, req checkoutdomain.QuoteRequest) (pricing.Summary, error) {
	cart, err := s.sessions.Cart(req.RegisterID)
	if err != nil {
		return pricing.Summary{}, err
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		return pricing.Summary{}, checkoutdomain.ErrEmptyCart
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return pricing.Summary{}, err
	}

	summary, _, err := s.price(lines, req.MemberID, req.Promotion, settings.TaxRate)
	return summary, err
}

// price resolves the effective cart discount and runs the pricing
// chain. A request-supplied promotion wins; otherwise the best of the
// active configured set applies.
func (s *service) price(lines []cartdomain.Line, memberID *snowflake.ID, promo *promotiondomain.Promotion, taxRate float64) (pricing.Summary, float64, error) {
	now := s.clock.Now()
	isMember := memberID != nil

	var percent float64
	if promo != nil {
		value, err := promo.Resolve(lines, now, isMember)
		if err != nil {
			return pricing.Summary{}, 0, err
		}
		percent = value
	} else {
		for _, p := range s.promotions.Active() {
			value, err := p.Resolve(lines, now, isMember)
			if err != nil {
				// The holder validates on load; a bad entry here is a bug,
				// not a reason to fail the sale.
				s.log.Warn("skipping unresolvable promotion", zap.String("kind", string(p.Kind)), zap.Error(err))
				continue
			}
			if value > percent {
				percent = value
			}
		}
	}

	return pricing.Price(lines, percent, taxRate), percent, nil
}

// pointsFor computes the loyalty credit: whole currency units of the
// post-tax total divided by the configured units-per-point, floored.
// Sales without a member earn nothing.
func pointsFor(memberID *snowflake.ID, total money.Money, perUnit int64) int64 {
	if memberID == nil {
		return 0
	}
	return total.Cents() / (perUnit * 100)
}

func (s *service) reject(reason string) {
	s.metrics.CheckoutsRejected.WithLabelValues(reason).Inc()
}

func buildLines(node *snowflake.Node, lines []cartdomain.Line, summary pricing.Summary) []transactiondomain.TransactionLine {
	shares := pricing.Prorate(lines, summary)
	out := make([]transactiondomain.TransactionLine, len(lines))
	for i, line := range lines {
		out[i] = transactiondomain.TransactionLine{
			ID:                 node.Generate(),
			ProductID:          line.ProductID,
			ProductName:        line.ProductName,
			Quantity:           line.Quantity,
			UnitPriceCents:     line.UnitPrice.Cents(),
			DiscountPercent:    line.DiscountPercent,
			SubtotalCents:      line.Subtotal.Cents(),
			DiscountShareCents: shares[i].Discount.Cents(),
			TaxShareCents:      shares[i].Tax.Cents(),
		}
	}
	return out
}

func newReceiptNumber() string {
	return "RCP-" + ulid.Make().String()
}
