package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-admin-console/components/console"
)

var errMissingCatalog = errors.New("product command requires service")

// catalog is the part of console.Service the product commands change.
type catalog interface {
	CreateProduct(ctx context.Context, in console.ProductInput) (console.Product, error)
	UpdateProduct(ctx context.Context, id string, in console.ProductInput) (console.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// SaveProductInput creates a product when ProductID is empty and updates
// it otherwise. Result receives the stored product when set.
type SaveProductInput struct {
	ProductID string
	Product   console.ProductInput
	Result    *console.Product
}

// SaveProductCommand adds or edits a catalog product.
type SaveProductCommand struct {
	catalog   catalog
	telemetry Telemetry
}

// NewSaveProductCommand creates the command.
func NewSaveProductCommand(catalog catalog, telemetry Telemetry) *SaveProductCommand {
	return &SaveProductCommand{catalog: catalog, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveProductInput] = (*SaveProductCommand)(nil)

// Execute stores the product.
func (c *SaveProductCommand) Execute(ctx context.Context, msg SaveProductInput) error {
	if c.catalog == nil {
		return errMissingCatalog
	}
	var (
		product console.Product
		err     error
		action  = "create"
	)
	if msg.ProductID == "" {
		product, err = c.catalog.CreateProduct(ctx, msg.Product)
	} else {
		action = "update"
		product, err = c.catalog.UpdateProduct(ctx, msg.ProductID, msg.Product)
	}
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = product
	}
	c.telemetry.Record(ctx, "console.product.command", map[string]any{
		"action":     action,
		"product_id": product.ID,
	})
	return nil
}

// DeleteProductInput addresses one product.
type DeleteProductInput struct {
	ProductID string
}

// DeleteProductCommand removes a catalog product.
type DeleteProductCommand struct {
	catalog   catalog
	telemetry Telemetry
}

// NewDeleteProductCommand creates the command.
func NewDeleteProductCommand(catalog catalog, telemetry Telemetry) *DeleteProductCommand {
	return &DeleteProductCommand{catalog: catalog, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteProductInput] = (*DeleteProductCommand)(nil)

// Execute deletes the product.
func (c *DeleteProductCommand) Execute(ctx context.Context, msg DeleteProductInput) error {
	if c.catalog == nil {
		return errMissingCatalog
	}
	if err := c.catalog.DeleteProduct(ctx, msg.ProductID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "console.product.command", map[string]any{
		"action":     "delete",
		"product_id": msg.ProductID,
	})
	return nil
}
