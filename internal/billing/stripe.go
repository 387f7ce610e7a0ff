package billing

import (
	"context"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
)

// StripeProvider implements Provider against the Stripe API. A new checkout
// supersedes any running subscription for the same email, so active and
// trialing subscriptions are cancelled first.
type StripeProvider struct {
	priceID    string
	successURL string
	cancelURL  string
}

// NewStripeProvider configures the Stripe client and returns a provider.
func NewStripeProvider(secretKey, priceID, successURL, cancelURL string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{
		priceID:    priceID,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckout cancels existing subscriptions for the email and returns the
// URL of a fresh hosted checkout session.
func (p *StripeProvider) CreateCheckout(ctx context.Context, input CheckoutInput) (string, error) {
	if input.Email == "" {
		return "", ErrEmailRequired
	}

	if err := p.cancelExisting(input.Email); err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		CustomerEmail:     stripe.String(input.Email),
		ClientReferenceID: stripe.String(input.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if input.DisplayName != "" {
		params.AddMetadata("display_name", input.DisplayName)
	}

	session, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}

func (p *StripeProvider) cancelExisting(email string) error {
	customers := customer.List(&stripe.CustomerListParams{
		Email: stripe.String(email),
	})
	for customers.Next() {
		c := customers.Customer()
		for _, status := range []string{"active", "trialing"} {
			subs := subscription.List(&stripe.SubscriptionListParams{
				Customer: stripe.String(c.ID),
				Status:   stripe.String(status),
			})
			for subs.Next() {
				sub := subs.Subscription()
				if _, err := subscription.Cancel(sub.ID, nil); err != nil {
					return fmt.Errorf("cancel subscription %s: %w", sub.ID, err)
				}
				log.Printf("billing: cancelled %s subscription %s for %s", status, sub.ID, email)
			}
			if err := subs.Err(); err != nil {
				return err
			}
		}
	}
	return customers.Err()
}
