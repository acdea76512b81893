package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nebula-retail/storefront/internal/upstream"
)

// Product mirrors the Products service record. Price stays decimal so cart
// math is exact.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
}

// Detail is a product enriched with a best-effort stock level. StockKnown
// is false when the Inventory service could not answer.
type Detail struct {
	Product
	StockLevel int  `json:"stockLevel"`
	StockKnown bool `json:"stockKnown"`
}

// Service reads product data from the external Products service and stock
// levels from the Inventory service. Each fetch is a single best-effort
// request; nothing is cached.
type Service struct {
	Products  *upstream.Client
	Inventory *upstream.Client
}

// List fetches all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.Products.GetJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches a single product by id. A 404 from the Products service
// surfaces as upstream.ErrNotFound for the dedicated not-found view.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	var product Product
	if err := s.Products.GetJSON(ctx, "/api/products/"+id, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Stock looks up the inventory level for a product. Failures of any kind
// degrade to "stock unknown" — inventory is an enrichment, never a blocker.
func (s *Service) Stock(ctx context.Context, id string) (int, bool) {
	if s.Inventory == nil || !s.Inventory.Configured() {
		return 0, false
	}
	var payload struct {
		ProductID  string `json:"product_id"`
		StockLevel int    `json:"stock_level"`
	}
	if err := s.Inventory.GetJSON(ctx, "/api/inventory/"+id, &payload); err != nil {
		return 0, false
	}
	return payload.StockLevel, true
}

// GetDetail combines the product record with its stock level.
func (s *Service) GetDetail(ctx context.Context, id string) (Detail, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	detail := Detail{Product: product}
	detail.StockLevel, detail.StockKnown = s.Stock(ctx, id)
	return detail, nil
}
