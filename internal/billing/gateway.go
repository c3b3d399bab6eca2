// Package billing creates one-time checkout sessions with the payment
// provider. It keeps no local state: everything needed to reconcile a
// payment travels as session metadata and comes back on the redirect.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

// Prices in cents.
const (
	PersonaUnlockPrice = 999
	LifetimePrice      = 4999
)

// DefaultOrigin is used when neither the request nor the config names one.
const DefaultOrigin = "http://localhost:3000"

// SessionIDPlaceholder is replaced by Stripe with the checkout session id
// on redirect, so each payment returns a distinct success URL.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// CheckoutRequest describes what is being bought and where to come back to.
type CheckoutRequest struct {
	ItemID       string
	Email        string
	ReturnOrigin string
}

// CheckoutSession is the provider's answer.
type CheckoutSession struct {
	ID  string
	URL string
}

// SessionCreator is the provider call. The stripe client satisfies it
// through stripeCreator; tests substitute a fake.
type SessionCreator interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Gateway turns checkout requests into provider sessions.
type Gateway struct {
	creator SessionCreator
}

// New builds a gateway for secretKey. An empty key yields a gateway whose
// every call fails with domain.ErrConfiguration.
func New(secretKey string) *Gateway {
	if secretKey == "" {
		return &Gateway{}
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Gateway{creator: &stripeCreator{api: sc}}
}

// NewWithCreator builds a gateway on an explicit provider call.
func NewWithCreator(c SessionCreator) *Gateway {
	return &Gateway{creator: c}
}

// Configured reports whether a provider credential is present.
func (g *Gateway) Configured() bool {
	return g.creator != nil
}

// CreateCheckoutSession asks the provider for a one-time payment page.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if g.creator == nil {
		return CheckoutSession{}, domain.MissingCredential("STRIPE_SECRET_KEY")
	}

	params := BuildParams(req)
	params.Context = ctx

	s, err := g.creator.Create(ctx, params)
	if err != nil {
		return CheckoutSession{}, providerError(err)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// BuildParams maps a request onto provider parameters. The lifetime item
// uses the higher tier; everything else is a persona unlock.
func BuildParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	origin := strings.TrimRight(req.ReturnOrigin, "/")
	if origin == "" {
		origin = DefaultOrigin
	}

	name := "Persona Unlock: " + req.ItemID
	description := fmt.Sprintf("Unlock the %s persona for your Privacy Vault.", req.ItemID)
	amount := int64(PersonaUnlockPrice)
	if req.ItemID == domain.LifetimeItemID {
		name = "Lifetime Privacy Unlock"
		description = "Unlock Vector Search & Long-term Memory"
		amount = LifetimePrice
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "link"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(name),
						Description: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(origin + "?success=true&personaId=" + url.QueryEscape(req.ItemID) + "&session_id=" + SessionIDPlaceholder),
		CancelURL:  stripe.String(origin + "?canceled=true"),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"personaId": req.ItemID,
				"email":     req.Email,
			},
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	return params
}

// ResolveOrigin picks the return origin: the request's Origin header, then
// the configured application URL, then DefaultOrigin.
func ResolveOrigin(header, appURL string) string {
	if header != "" {
		return header
	}
	if appURL != "" {
		return appURL
	}
	return DefaultOrigin
}

func providerError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &domain.GatewayError{Provider: "stripe", Message: se.Msg, Err: err}
	}
	return &domain.GatewayError{Provider: "stripe", Err: err}
}

type stripeCreator struct {
	api *client.API
}

func (c *stripeCreator) Create(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}
