package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gocartshop/gocart-api/api/responses"
	"github.com/gocartshop/gocart-api/api/validators"
	"github.com/gocartshop/gocart-api/internal/cart"
	"github.com/gocartshop/gocart-api/pkg/currency"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
)

type addToCartRequest struct {
	ProductID int64           `json:"id" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  *int            `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Color     *string         `json:"color,omitempty"`
	Size      *string         `json:"size,omitempty"`
}

// Quantities below 1 are rejected here, before the store is invoked; the
// cart store itself applies updates blindly.
type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type cartSummaryResponse struct {
	Items        []cart.Line `json:"items"`
	TotalItems   int         `json:"total_items"`
	ProductCount int         `json:"product_count"`
	SubtotalUSD  string      `json:"subtotal_usd"`
	TotalDisplay string      `json:"total_display"`
}

func newCartSummary(svc *cart.Service, conv *currency.Converter) cartSummaryResponse {
	totals := svc.Totals()
	return cartSummaryResponse{
		Items:        svc.Items(),
		TotalItems:   totals.TotalItems,
		ProductCount: totals.ProductCount,
		SubtotalUSD:  totals.Subtotal.StringFixed(2),
		TotalDisplay: conv.FormatINR(conv.ToINR(totals.Subtotal)),
	}
}

// CartGet returns the cart lines and derived totals.
func CartGet(svc *cart.Service, conv *currency.Converter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartSummary(svc, conv))
	}
}

// CartAdd merges a product payload into the cart.
func CartAdd(svc *cart.Service, conv *currency.Converter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body addToCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cart.AddInput{
			ProductID: body.ProductID,
			Title:     body.Title,
			Price:     body.Price,
			Image:     body.Image,
			Category:  body.Category,
			Color:     body.Color,
			Size:      body.Size,
		}
		if body.Quantity != nil {
			input.Quantity = *body.Quantity
		}
		svc.Add(r.Context(), input)

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartSummary(svc, conv))
	}
}

// CartRemove deletes a line by product id.
func CartRemove(svc *cart.Service, conv *currency.Converter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.Remove(r.Context(), productID)
		responses.WriteSuccess(w, newCartSummary(svc, conv))
	}
}

// CartUpdateQuantity sets the quantity on a line.
func CartUpdateQuantity(svc *cart.Service, conv *currency.Converter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.UpdateQuantity(r.Context(), productID, body.Quantity)
		responses.WriteSuccess(w, newCartSummary(svc, conv))
	}
}

// CartClear empties the cart.
func CartClear(svc *cart.Service, conv *currency.Converter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		svc.Clear(r.Context())
		responses.WriteSuccess(w, newCartSummary(svc, conv))
	}
}

func productIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}
