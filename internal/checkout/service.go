package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocartshop/gocart-api/internal/cart"
	"github.com/gocartshop/gocart-api/internal/events"
	"github.com/gocartshop/gocart-api/internal/session"
	"github.com/gocartshop/gocart-api/pkg/currency"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"github.com/gocartshop/gocart-api/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const paymentMethod = "online"

type cartStore interface {
	Items() []cart.Line
	Totals() cart.Totals
	Clear(ctx context.Context)
}

type sessionStore interface {
	CurrentUser() (*session.User, bool)
}

// ReceiptLine is one cart line frozen onto a receipt, with INR display
// amounts alongside the catalog USD price.
type ReceiptLine struct {
	ProductID    int64           `json:"id"`
	Title        string          `json:"title"`
	Quantity     int             `json:"quantity"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
	UnitPriceINR string          `json:"unit_price_inr"`
	LineTotalINR string          `json:"line_total_inr"`
}

// Receipt is an immutable snapshot of cart, identity, and totals taken at
// checkout. It carries everything the receipt renderer needs.
type Receipt struct {
	OrderID       string          `json:"order_id"`
	PlacedAt      time.Time       `json:"placed_at"`
	Customer      string          `json:"customer"`
	PaymentMethod string          `json:"payment_method"`
	Lines         []ReceiptLine   `json:"lines"`
	TotalItems    int             `json:"total_items"`
	ProductCount  int             `json:"product_count"`
	SubtotalUSD   decimal.Decimal `json:"subtotal_usd"`
	TotalINR      decimal.Decimal `json:"total_inr"`
	TotalDisplay  string          `json:"total_display"`
}

// Service orchestrates checkout. It owns no persistent state; it reads the
// two stores, produces receipts, and issues the cart clear on completion.
type Service struct {
	cart    cartStore
	session sessionStore
	conv    *currency.Converter
	bus     *events.Bus
	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
	nowFn   func() time.Time
}

// NewService wires the checkout flow.
func NewService(
	cartStore cartStore,
	sessionStore sessionStore,
	conv *currency.Converter,
	bus *events.Bus,
	m *metrics.StorefrontMetrics,
	logg *logger.Logger,
) (*Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if sessionStore == nil {
		return nil, fmt.Errorf("session store required")
	}
	if conv == nil {
		return nil, fmt.Errorf("currency converter required")
	}
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &Service{
		cart:    cartStore,
		session: sessionStore,
		conv:    conv,
		bus:     bus,
		metrics: m,
		logg:    logg,
		nowFn:   time.Now,
	}, nil
}

// Start snapshots the cart and the current user into a receipt. An empty
// cart refuses checkout; closing the receipt afterwards changes nothing.
func (s *Service) Start(ctx context.Context) (*Receipt, error) {
	lines := s.cart.Items()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	customer := "Guest"
	if user, ok := s.session.CurrentUser(); ok {
		customer = user.Username
	}

	totals := s.cart.Totals()
	receipt := &Receipt{
		OrderID:       newOrderID(),
		PlacedAt:      s.nowFn().UTC(),
		Customer:      customer,
		PaymentMethod: paymentMethod,
		Lines:         make([]ReceiptLine, 0, len(lines)),
		TotalItems:    totals.TotalItems,
		ProductCount:  totals.ProductCount,
		SubtotalUSD:   totals.Subtotal,
	}

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		unitINR := s.conv.ToINR(line.Price)
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			ProductID:    line.ProductID,
			Title:        line.Title,
			Quantity:     line.Quantity,
			Color:        line.Color,
			Size:         line.Size,
			UnitPriceUSD: line.Price,
			UnitPriceINR: s.conv.FormatINR(unitINR),
			LineTotalINR: s.conv.FormatINR(s.conv.ToINR(line.Price.Mul(qty))),
		})
	}

	receipt.TotalINR = s.conv.ToINR(totals.Subtotal)
	receipt.TotalDisplay = s.conv.FormatINR(receipt.TotalINR)

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id":    receipt.OrderID,
			"total_items": receipt.TotalItems,
		})
		s.logg.Info(ctx, "checkout started")
	}
	return receipt, nil
}

// Confirm completes the order: the cart is cleared and the completion is
// announced. Confirming with an empty cart is refused the same way Start is.
func (s *Service) Confirm(ctx context.Context, orderID string) error {
	totals := s.cart.Totals()
	if totals.ProductCount == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	s.cart.Clear(ctx)
	s.metrics.IncOrderCompleted()
	s.bus.Publish(ctx, events.TopicOrderCompleted, events.OrderCompleted{
		OrderID:    orderID,
		TotalItems: totals.TotalItems,
	})

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "order completed")
	}
	return nil
}

// newOrderID produces the short uppercase synthetic id printed on receipts.
func newOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
