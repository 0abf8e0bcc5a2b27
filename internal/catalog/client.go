package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gocartshop/gocart-api/pkg/config"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"github.com/gocartshop/gocart-api/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Rating mirrors the catalog's aggregate rating shape.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is the read-only catalog record. The client does no schema
// validation beyond decoding; the catalog is treated as an opaque input.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Client fetches products from the external catalog. Failures surface as
// dependency errors with no retry; callers fall back to an empty catalog.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewClient builds a catalog client from configuration.
func NewClient(cfg config.CatalogConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
		metrics: m,
	}, nil
}

// List returns the full catalog.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a single product by id.
func (c *Client) Get(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &product, nil
}

// ListByCategory returns the products in the named category.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	var products []Product
	path := "/products/category/" + url.PathEscape(category)
	if err := c.getJSON(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories derives the distinct category names from the full catalog,
// preserving first-seen order.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var categories []string
	for _, product := range products {
		if _, ok := seen[product.Category]; ok {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fetchFailure(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if resp.StatusCode != http.StatusOK {
		return c.fetchFailure(ctx, fmt.Errorf("catalog returned %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return c.fetchFailure(ctx, fmt.Errorf("decoding %s: %w", path, err))
	}
	return nil
}

func (c *Client) fetchFailure(ctx context.Context, err error) error {
	c.metrics.IncFetchFailure()
	if c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "product fetch failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch products")
}
