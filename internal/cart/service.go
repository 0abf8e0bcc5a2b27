package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocartshop/gocart-api/internal/events"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Line is one product entry in the cart with its quantity and optional
// variant selection. At most one line exists per product id.
type Line struct {
	ProductID int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

// AddInput carries the product payload handed over by the shop pages.
// Quantity <= 0 means "implicit add": a new line defaults to 1, an
// existing line is incremented by 1.
type AddInput struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	Image     string
	Category  string
	Quantity  int
	Color     *string
	Size      *string
}

// Totals are derived values; they are computed on demand, never stored.
type Totals struct {
	TotalItems   int
	ProductCount int
	Subtotal     decimal.Decimal
}

// Service owns the ordered list of cart lines. Lines keep insertion order.
type Service struct {
	mu    sync.Mutex
	lines []Line
	logg  *logger.Logger
}

// NewService builds an empty cart and subscribes it to logout events so a
// closed session always leaves an empty cart behind.
func NewService(bus *events.Bus, logg *logger.Logger) (*Service, error) {
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	s := &Service{logg: logg}
	bus.Subscribe(events.TopicUserLoggedOut, func(ctx context.Context, _ any) {
		s.Clear(ctx)
	})
	return s, nil
}

// Add merges the product into the cart. An existing line takes the explicit
// quantity when one is supplied, otherwise its quantity is incremented by
// one; color and size overwrite the previous selection only when supplied.
// A new line is appended with quantity defaulted to 1.
func (s *Service) Add(ctx context.Context, input AddInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID != input.ProductID {
			continue
		}
		if input.Quantity > 0 {
			s.lines[i].Quantity = input.Quantity
		} else {
			s.lines[i].Quantity++
		}
		if input.Color != nil {
			s.lines[i].Color = *input.Color
		}
		if input.Size != nil {
			s.lines[i].Size = *input.Size
		}
		s.logAdd(ctx, s.lines[i])
		return
	}

	line := Line{
		ProductID: input.ProductID,
		Title:     input.Title,
		Price:     input.Price,
		Image:     input.Image,
		Category:  input.Category,
		Quantity:  input.Quantity,
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if input.Color != nil {
		line.Color = *input.Color
	}
	if input.Size != nil {
		line.Size = *input.Size
	}
	s.lines = append(s.lines, line)
	s.logAdd(ctx, line)
}

// Remove deletes the line with the matching product id. Removing an absent
// id is a no-op.
func (s *Service) Remove(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			if s.logg != nil {
				s.logg.Info(s.logg.WithField(ctx, "product_id", productID), "cart line removed")
			}
			return
		}
	}
}

// UpdateQuantity sets the quantity on the matching line. The store applies
// the value blindly; the HTTP layer rejects quantities below 1 before the
// call reaches here. Absent ids are a no-op.
func (s *Service) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	had := len(s.lines)
	s.lines = nil
	s.mu.Unlock()

	if s.logg != nil && had > 0 {
		s.logg.Info(s.logg.WithField(ctx, "removed_lines", had), "cart cleared")
	}
}

// Items returns a snapshot of the lines in insertion order.
func (s *Service) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Totals derives the item count, distinct product count, and subtotal.
func (s *Service) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := Totals{
		ProductCount: len(s.lines),
		Subtotal:     decimal.Zero,
	}
	for _, line := range s.lines {
		totals.TotalItems += line.Quantity
		totals.Subtotal = totals.Subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return totals
}

func (s *Service) logAdd(ctx context.Context, line Line) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})
	s.logg.Info(ctx, "cart line upserted")
}
