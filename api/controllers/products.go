package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gocartshop/gocart-api/api/responses"
	"github.com/gocartshop/gocart-api/internal/catalog"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
)

// ProductsList proxies the external catalog, optionally filtered by
// category via ?category=.
func ProductsList(client *catalog.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		category := strings.TrimSpace(r.URL.Query().Get("category"))

		var (
			products []catalog.Product
			err      error
		)
		if category == "" || strings.EqualFold(category, "all") {
			products, err = client.List(r.Context())
		} else {
			products, err = client.ListByCategory(r.Context(), category)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// ProductsGet proxies a single product lookup.
func ProductsGet(client *catalog.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		raw := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		product, err := client.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductsCategories lists the distinct catalog categories.
func ProductsCategories(client *catalog.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		categories, err := client.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}
