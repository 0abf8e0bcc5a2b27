package controllers

import (
	"net/http"

	"github.com/gocartshop/gocart-api/api/responses"
	"github.com/gocartshop/gocart-api/api/validators"
	checkoutsvc "github.com/gocartshop/gocart-api/internal/checkout"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
)

type confirmRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// CheckoutStart snapshots the cart into a receipt.
func CheckoutStart(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		receipt, err := svc.Start(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// CheckoutConfirm completes the order and clears the cart.
func CheckoutConfirm(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body confirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Confirm(r.Context(), body.OrderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"order_id": body.OrderID,
			"message":  "order completed successfully",
		})
	}
}
