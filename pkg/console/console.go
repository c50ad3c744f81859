// Package console re-exports the console service for host applications.
package console

import (
	core "github.com/goliatone/go-admin-console/components/console"
)

// Service exposes components/console.Service.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Product and ProductInput are the catalog record and its editable fields.
type (
	Product      = core.Product
	ProductInput = core.ProductInput
)

// AuthFlow exposes components/console.AuthFlow.
type AuthFlow = core.AuthFlow

// AuthOptions re-export for convenience.
type AuthOptions = core.AuthOptions

// NewService proxies to the internal constructor.
func NewService(opts Options) (*Service, error) {
	return core.NewService(opts)
}

// NewAuthFlow proxies to the internal constructor.
func NewAuthFlow(opts AuthOptions) *AuthFlow {
	return core.NewAuthFlow(opts)
}
