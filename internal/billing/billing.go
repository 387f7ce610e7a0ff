// Package billing creates subscription checkout sessions.
package billing

import (
	"context"
	"errors"
)

// ErrEmailRequired is returned when a checkout is requested without an email.
var ErrEmailRequired = errors.New("email is required")

// CheckoutInput identifies the subscriber for a new checkout session.
type CheckoutInput struct {
	Email       string
	DisplayName string
	UserID      string
}

// Provider starts a hosted checkout and returns its URL.
type Provider interface {
	CreateCheckout(ctx context.Context, input CheckoutInput) (string, error)
}
