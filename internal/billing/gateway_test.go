package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v76"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

type fakeCreator struct {
	got *stripe.CheckoutSessionParams
	err error
}

func (f *fakeCreator) Create(_ context.Context, p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func TestCreateCheckoutSession_MissingKey(t *testing.T) {
	g := New("")
	assert.False(t, g.Configured())

	_, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{ItemID: "zen"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestCreateCheckoutSession_Tiers(t *testing.T) {
	tests := []struct {
		item       string
		wantAmount int64
		wantName   string
	}{
		{"lifetime", LifetimePrice, "Lifetime Privacy Unlock"},
		{"zen", PersonaUnlockPrice, "Persona Unlock: zen"},
		{"shadow", PersonaUnlockPrice, "Persona Unlock: shadow"},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			fc := &fakeCreator{}
			g := NewWithCreator(fc)
			require.True(t, g.Configured())

			s, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{
				ItemID:       tt.item,
				Email:        "me@example.com",
				ReturnOrigin: "https://vault.example",
			})
			require.NoError(t, err)
			assert.Equal(t, "https://checkout.example/cs_test_1", s.URL)

			p := fc.got
			require.NotNil(t, p)
			require.Len(t, p.LineItems, 1)
			li := p.LineItems[0]
			assert.Equal(t, tt.wantAmount, *li.PriceData.UnitAmount)
			assert.Equal(t, tt.wantName, *li.PriceData.ProductData.Name)
			assert.Equal(t, "usd", *li.PriceData.Currency)
			assert.Equal(t, int64(1), *li.Quantity)
			assert.Equal(t, "payment", *p.Mode)
			assert.Equal(t, "me@example.com", *p.CustomerEmail)
			assert.Equal(t, "https://vault.example?success=true&personaId="+tt.item+"&session_id={CHECKOUT_SESSION_ID}", *p.SuccessURL)
			assert.Equal(t, "https://vault.example?canceled=true", *p.CancelURL)
			assert.Equal(t, map[string]string{"personaId": tt.item, "email": "me@example.com"}, p.PaymentIntentData.Metadata)
		})
	}
}

func TestCreateCheckoutSession_ProviderRejection(t *testing.T) {
	fc := &fakeCreator{err: &stripe.Error{Msg: "Invalid API Key provided: sk_test_***"}}
	g := NewWithCreator(fc)

	_, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{ItemID: "zen"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
	assert.Equal(t, "Invalid API Key provided: sk_test_***", err.Error())
}

func TestCreateCheckoutSession_TransportFailure(t *testing.T) {
	g := NewWithCreator(&fakeCreator{err: errors.New("dial tcp: connection refused")})

	_, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{ItemID: "zen"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBuildParams_DefaultOrigin(t *testing.T) {
	p := BuildParams(CheckoutRequest{ItemID: "stoic"})
	assert.Equal(t, DefaultOrigin+"?success=true&personaId=stoic&session_id={CHECKOUT_SESSION_ID}", *p.SuccessURL)
	assert.Nil(t, p.CustomerEmail)
}

func TestResolveOrigin(t *testing.T) {
	assert.Equal(t, "https://a", ResolveOrigin("https://a", "https://b"))
	assert.Equal(t, "https://b", ResolveOrigin("", "https://b"))
	assert.Equal(t, DefaultOrigin, ResolveOrigin("", ""))
}
