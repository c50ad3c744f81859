package console

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductInput carries the editable fields of a product. The category name
// and the update time are derived.
type ProductInput struct {
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	CategoryID string  `json:"category_id"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	Status     string  `json:"status"`
}

func (in ProductInput) normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Status = strings.TrimSpace(in.Status)
	return in
}

// ValidateProductInput checks in against the product_input schema.
func ValidateProductInput(in ProductInput) error {
	schema, err := compiledSchema("product_input.json")
	if err != nil {
		return err
	}
	doc, err := jsonValue(in)
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// CreateProduct adds a product and returns it with its generated id.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	in = in.normalize()
	if err := ValidateProductInput(in); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product := Product{ID: "prd-" + uuid.NewString()}
	if err := s.assignLocked(&product, in); err != nil {
		return Product{}, err
	}
	data := s.data.clone()
	data.Products = append(data.Products, product)
	s.replaceLocked(ctx, data, "create", product.ID)
	return product, nil
}

// UpdateProduct replaces the editable fields of the product with id.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	in = in.normalize()
	if err := ValidateProductInput(in); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndexLocked(id)
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	product := s.data.Products[idx]
	if err := s.assignLocked(&product, in); err != nil {
		return Product{}, err
	}
	data := s.data.clone()
	data.Products[idx] = product
	s.replaceLocked(ctx, data, "update", product.ID)
	return product, nil
}

// DeleteProduct removes the product with id.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	data := s.data.clone()
	data.Products = slices.Delete(data.Products, idx, idx+1)
	s.replaceLocked(ctx, data, "delete", id)
	return nil
}

// Product returns the product with id.
func (s *Service) Product(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.productIndexLocked(id)
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return s.data.Products[idx], nil
}

func (s *Service) productIndexLocked(id string) int {
	return slices.IndexFunc(s.data.Products, func(p Product) bool { return p.ID == id })
}

// assignLocked copies in onto p after checking the category exists and the
// SKU is not taken by another product.
func (s *Service) assignLocked(p *Product, in ProductInput) error {
	cat := slices.IndexFunc(s.data.Categories, func(c Category) bool { return c.ID == in.CategoryID })
	if cat < 0 {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, in.CategoryID)
	}
	for _, other := range s.data.Products {
		if other.ID != p.ID && strings.EqualFold(other.SKU, in.SKU) {
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, in.SKU)
		}
	}
	p.Name = in.Name
	p.SKU = in.SKU
	p.CategoryID = in.CategoryID
	p.Category = s.data.Categories[cat].Name
	p.Price = in.Price
	p.Stock = in.Stock
	p.Status = in.Status
	p.UpdatedAt = s.opts.Now().UTC().Truncate(time.Second)
	return nil
}

func (s *Service) replaceLocked(ctx context.Context, data Dataset, action, id string) {
	data.countProducts()
	s.data = data
	s.screens = newScreens(data)
	s.opts.Logger.InfoContext(ctx, "product changed",
		slog.String("action", action),
		slog.String("product_id", id),
		slog.Int("products", len(data.Products)),
	)
	s.opts.Telemetry.Record(ctx, "console.product."+action, map[string]any{
		"screen":     string(ScreenProducts),
		"action":     action,
		"product_id": id,
	})
}
