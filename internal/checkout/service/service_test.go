package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/kasira/internal/cart/session"
	checkoutdomain "github.com/smallbiznis/kasira/internal/checkout/domain"
	"github.com/smallbiznis/kasira/internal/clock"
	"github.com/smallbiznis/kasira/internal/config"
	inventorydomain "github.com/smallbiznis/kasira/internal/inventory/domain"
	loyaltydomain "github.com/smallbiznis/kasira/internal/loyalty/domain"
	"github.com/smallbiznis/kasira/internal/observability/metrics"
	promotiondomain "github.com/smallbiznis/kasira/internal/promotion/domain"
	settingsdomain "github.com/smallbiznis/kasira/internal/settings/domain"
	settingsservice "github.com/smallbiznis/kasira/internal/settings/service"
	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
	transactionrepo "github.com/smallbiznis/kasira/internal/transaction/repository"
	"github.com/smallbiznis/kasira/pkg/money"
)

type fixture struct {
	db       *gorm.DB
	svc      checkoutdomain.Service
	sessions *session.Manager
	clock    *clock.FakeClock
	node     *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&settingsdomain.RegisterSettings{},
		&inventorydomain.StockLevel{},
		&loyaltydomain.Member{},
		&loyaltydomain.PointsEntry{},
		&transactiondomain.Transaction{},
		&transactiondomain.TransactionLine{},
	))

	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		BranchID:             1,
		DefaultTaxRate:       0.10,
		DefaultPointsPerUnit: 10,
	}

	holder, err := config.NewPromotionsHolder()
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC))
	sessions := session.NewManager()

	svc := New(Params{
		Log:        log,
		Config:     cfg,
		Node:       node,
		Clock:      fake,
		Sessions:   sessions,
		Settings:   settingsservice.New(settingsservice.Params{DB: db, Log: log, GenID: node, Cfg: cfg}),
		Promotions: holder,
		Repo:       transactionrepo.Provide(transactionrepo.Params{DB: db, Log: log, GenID: node}),
		Metrics:    metrics.New(metrics.NewRegistry()),
	})

	return &fixture{db: db, svc: svc, sessions: sessions, clock: fake, node: node}
}

func (f *fixture) seedStock(t *testing.T, productID snowflake.ID, quantity int64) {
	t.Helper()
	require.NoError(t, f.db.Create(&inventorydomain.StockLevel{
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}).Error)
}

func (f *fixture) seedMember(t *testing.T, name string) snowflake.ID {
	t.Helper()
	member := loyaltydomain.Member{
		ID:        f.node.Generate(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member.ID
}

func mustMoney(t *testing.T, value string) money.Money {
	t.Helper()
	m, err := money.Parse(value)
	require.NoError(t, err)
	return m
}

func TestCheckoutCompletesSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	coffee := snowflake.ID(1001)
	beans := snowflake.ID(1002)
	f.seedStock(t, coffee, 10)
	f.seedStock(t, beans, 5)

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(coffee, "Coffee", mustMoney(t, "12.00"), 2, 0)
	require.NoError(t, err)
	_, err = cart.AddLine(beans, "Beans 1kg", mustMoney(t, "15.00"), 1, 0)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodCash,
		AmountPaid:    mustMoney(t, "50.00"),
		Promotion:     &promotiondomain.Promotion{Kind: promotiondomain.KindPercentageOff, Percent: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, "39.00", result.Summary.Subtotal.String())
	assert.Equal(t, "1.95", result.Summary.DiscountAmount.String())
	assert.Equal(t, "37.05", result.Summary.TaxableAmount.String())
	assert.Equal(t, "3.71", result.Summary.TaxAmount.String())
	assert.Equal(t, "40.76", result.Summary.Total.String())
	assert.Equal(t, "9.24", result.Change.String())
	assert.True(t, strings.HasPrefix(result.Transaction.ReceiptNumber, "RCP-"))

	// The sale is durable and the live cart is empty again.
	var stored transactiondomain.Transaction
	require.NoError(t, f.db.Preload("Lines").First(&stored, "id = ?", result.Transaction.ID).Error)
	assert.Equal(t, int64(4076), stored.TotalCents)
	assert.Len(t, stored.Lines, 2)
	assert.Equal(t, 0, cart.Len())

	var discountShare, taxShare int64
	for _, line := range stored.Lines {
		discountShare += line.DiscountShareCents
		taxShare += line.TaxShareCents
	}
	assert.Equal(t, stored.DiscountCents, discountShare)
	assert.Equal(t, stored.TaxCents, taxShare)

	var coffeeStock inventorydomain.StockLevel
	require.NoError(t, f.db.First(&coffeeStock, "product_id = ?", coffee).Error)
	assert.Equal(t, int64(8), coffeeStock.Quantity)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodCash,
		AmountPaid:    mustMoney(t, "10.00"),
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrEmptyCart)
}

func TestCheckoutRejectsInvalidPaymentMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethod("crypto"),
		AmountPaid:    mustMoney(t, "10.00"),
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrInvalidPaymentMethod)
}

func TestCheckoutRejectsInsufficientPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soda := snowflake.ID(2001)
	f.seedStock(t, soda, 10)

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(soda, "Soda", mustMoney(t, "10.00"), 1, 0)
	require.NoError(t, err)

	// Total is 11.00 at the default 10% tax.
	_, err = f.svc.Checkout(ctx, checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodCard,
		AmountPaid:    mustMoney(t, "10.99"),
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrInsufficientPayment)
	assert.Equal(t, 1, cart.Len())

	var count int64
	require.NoError(t, f.db.Model(&transactiondomain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckoutExactTender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soda := snowflake.ID(2002)
	f.seedStock(t, soda, 10)

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(soda, "Soda", mustMoney(t, "10.00"), 1, 0)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodQR,
		AmountPaid:    mustMoney(t, "11.00"),
	})
	require.NoError(t, err)
	assert.True(t, result.Change.IsZero())
}

func TestCheckoutCreditsMemberPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wine := snowflake.ID(3001)
	f.seedStock(t, wine, 10)
	memberID := f.seedMember(t, "Ayu")

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(wine, "Wine", mustMoney(t, "43.00"), 1, 0)
	require.NoError(t, err)

	// Total 47.30 at 10% tax; 10 units per point floors to 4.
	result, err := f.svc.Checkout(ctx, checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodCash,
		AmountPaid:    mustMoney(t, "50.00"),
		MemberID:      &memberID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.PointsEarned)

	var member loyaltydomain.Member
	require.NoError(t, f.db.First(&member, "id = ?", memberID).Error)
	assert.Equal(t, int64(4), member.PointsBalance)

	var entry loyaltydomain.PointsEntry
	require.NoError(t, f.db.First(&entry, "member_id = ?", memberID).Error)
	assert.Equal(t, result.Transaction.ID, entry.TransactionID)
	assert.Equal(t, int64(4), entry.Points)
}

func TestCheckoutRejectsUnknownMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wine := snowflake.ID(3002)
	f.seedStock(t, wine, 10)
	ghost := snowflake.ID(999999)

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(wine, "Wine", mustMoney(t, "43.00"), 1, 0)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodCash,
		AmountPaid:    mustMoney(t, "50.00"),
		MemberID:      &ghost,
	})
	assert.ErrorIs(t, err, loyaltydomain.ErrMemberNotFound)

	// The rejected sale rolled back entirely and the cart survives.
	var count int64
	require.NoError(t, f.db.Model(&transactiondomain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, 1, cart.Len())

	var stock inventorydomain.StockLevel
	require.NoError(t, f.db.First(&stock, "product_id = ?", wine).Error)
	assert.Equal(t, int64(10), stock.Quantity)
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soda := snowflake.ID(4001)
	f.seedStock(t, soda, 1)

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(soda, "Soda", mustMoney(t, "10.00"), 2, 0)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, checkoutdomain.CheckoutRequest{
		RegisterID:    "reg-1",
		PaymentMethod: transactiondomain.PaymentMethodCash,
		AmountPaid:    mustMoney(t, "50.00"),
	})
	assert.ErrorIs(t, err, inventorydomain.ErrInsufficientStock)
	assert.Equal(t, 1, cart.Len())

	var stock inventorydomain.StockLevel
	require.NoError(t, f.db.First(&stock, "product_id = ?", soda).Error)
	assert.Equal(t, int64(1), stock.Quantity)
}

func TestQuoteDoesNotCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(snowflake.ID(5001), "Tea", mustMoney(t, "20.00"), 1, 0)
	require.NoError(t, err)

	summary, err := f.svc.Quote(ctx, checkoutdomain.QuoteRequest{RegisterID: "reg-1"})
	require.NoError(t, err)
	assert.Equal(t, "22.00", summary.Total.String())
	assert.Equal(t, 1, cart.Len())

	var count int64
	require.NoError(t, f.db.Model(&transactiondomain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckoutHappyHourPromotionWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soda := snowflake.ID(6001)

	cart, err := f.sessions.Cart("reg-1")
	require.NoError(t, err)
	_, err = cart.AddLine(soda, "Soda", mustMoney(t, "100.00"), 1, 0)
	require.NoError(t, err)

	promo := &promotiondomain.Promotion{
		Kind:      promotiondomain.KindHappyHour,
		Percent:   20,
		StartHour: 16,
		EndHour:   18,
	}

	// Fixture clock starts at 14:00, outside the window.
	summary, err := f.svc.Quote(ctx, checkoutdomain.QuoteRequest{RegisterID: "reg-1", Promotion: promo})
	require.NoError(t, err)
	assert.Equal(t, "0.00", summary.DiscountAmount.String())

	f.clock.Advance(3 * time.Hour)
	summary, err = f.svc.Quote(ctx, checkoutdomain.QuoteRequest{RegisterID: "reg-1", Promotion: promo})
	require.NoError(t, err)
	assert.Equal(t, "20.00", summary.DiscountAmount.String())
	assert.Equal(t, "88.00", summary.Total.String())
}
