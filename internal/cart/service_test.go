package cart

import (
	"context"
	"testing"

	"github.com/gocartshop/gocart-api/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T) (*Service, *events.Bus) {
	t.Helper()
	bus := events.NewBus(nil)
	svc, err := NewService(bus, nil)
	require.NoError(t, err)
	return svc, bus
}

func price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	svc, _ := newTestCart(t)
	svc.Add(context.Background(), AddInput{ProductID: 7, Title: "mug", Price: price(10)})

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestImplicitAddIncrementsExistingLine(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10)})
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10)})

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestExplicitQuantityOverwritesExistingLine(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10)})
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10)})
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10), Quantity: 5})

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddOverwritesVariantOnlyWhenSupplied(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	red := "red"
	large := "L"
	svc.Add(ctx, AddInput{ProductID: 7, Title: "shirt", Price: price(10), Color: &red, Size: &large})
	svc.Add(ctx, AddInput{ProductID: 7, Title: "shirt", Price: price(10)})

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "red", items[0].Color)
	assert.Equal(t, "L", items[0].Size)

	blue := "blue"
	svc.Add(ctx, AddInput{ProductID: 7, Title: "shirt", Price: price(10), Color: &blue})
	items = svc.Items()
	assert.Equal(t, "blue", items[0].Color)
	assert.Equal(t, "L", items[0].Size)
}

func TestItemsKeepInsertionOrder(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 3, Title: "c", Price: price(3)})
	svc.Add(ctx, AddInput{ProductID: 1, Title: "a", Price: price(1)})
	svc.Add(ctx, AddInput{ProductID: 2, Title: "b", Price: price(2)})
	svc.Add(ctx, AddInput{ProductID: 1, Title: "a", Price: price(1)})

	items := svc.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ProductID)
	assert.Equal(t, int64(1), items[1].ProductID)
	assert.Equal(t, int64(2), items[2].ProductID)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10)})
	svc.Add(ctx, AddInput{ProductID: 8, Title: "hat", Price: price(5)})

	svc.Remove(ctx, 7)
	svc.Remove(ctx, 7)

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(8), items[0].ProductID)
}

func TestRemoveAbsentIDIsNoOp(t *testing.T) {
	svc, _ := newTestCart(t)
	svc.Remove(context.Background(), 99)
	assert.Empty(t, svc.Items())
}

func TestUpdateQuantitySetsMatchingLineOnly(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10)})

	svc.UpdateQuantity(ctx, 7, 4)
	svc.UpdateQuantity(ctx, 99, 3)

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestClearIsIdempotent(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 7, Title: "mug", Price: price(10), Quantity: 3})

	svc.Clear(ctx)
	svc.Clear(ctx)
	assert.Empty(t, svc.Items())
}

func TestLogoutEventEmptiesCart(t *testing.T) {
	svc, bus := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 1, Title: "mug", Price: price(10), Quantity: 2})

	bus.Publish(ctx, events.TopicUserLoggedOut, events.UserLoggedOut{Username: "alice"})

	assert.Empty(t, svc.Items())
}

func TestTotalsDeriveFromLines(t *testing.T) {
	svc, _ := newTestCart(t)
	ctx := context.Background()
	svc.Add(ctx, AddInput{ProductID: 1, Title: "mug", Price: price(10), Quantity: 2})
	svc.Add(ctx, AddInput{ProductID: 2, Title: "hat", Price: price(5.5)})

	totals := svc.Totals()
	assert.Equal(t, 3, totals.TotalItems)
	assert.Equal(t, 2, totals.ProductCount)
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromFloat(25.5)), "got %s", totals.Subtotal)
}

func TestTotalsOnEmptyCart(t *testing.T) {
	svc, _ := newTestCart(t)
	totals := svc.Totals()
	assert.Zero(t, totals.TotalItems)
	assert.Zero(t, totals.ProductCount)
	assert.True(t, totals.Subtotal.IsZero())
}
