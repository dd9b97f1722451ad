package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koyif/cardbank/internal/config"
	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/internal/session"
	"github.com/koyif/cardbank/internal/stub"
)

const (
	testCard        = "4000123456789012"
	unsupportedCard = "5000123456789012"
	privateKey      = "test-key"
)

func newBackend(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(stub.New(privateKey).Router())
	t.Cleanup(server.Close)

	return newClient(t, server.URL+"/api", 5*time.Second), server
}

func newClient(t *testing.T, address string, timeout time.Duration) *Client {
	t.Helper()

	c, err := New(&config.Config{BackendAddress: address, RequestTimeout: timeout})
	require.NoError(t, err)

	return c
}

func intent(kind domain.TransactionKind, card, amount, pin string) domain.ValidIntent {
	return domain.ValidIntent{
		Kind:       kind,
		CardNumber: card,
		Amount:     decimal.RequireFromString(amount),
		Pin:        pin,
	}
}

func TestSubmitTopupSuccess(t *testing.T) {
	c, _ := newBackend(t)

	outcome, err := c.Submit(context.Background(), intent(domain.KindTopup, testCard, "50.00", "1234"))
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, "Top-up successful", outcome.Message)
	require.NotNil(t, outcome.BalanceAfter)
	assert.True(t, outcome.BalanceAfter.Equal(decimal.RequireFromString("1050.00")))

	balance, err := c.Balance(context.Background(), testCard)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1050.00")))

	records, err := c.Transactions(context.Background(), testCard)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	head := records[0]
	assert.Equal(t, domain.KindTopup, head.Kind)
	assert.Equal(t, domain.StatusSuccess, head.Status)
	assert.True(t, head.Amount.Equal(decimal.RequireFromString("50.00")))
	require.NotNil(t, head.BalanceAfter)
	assert.True(t, head.BalanceAfter.Equal(decimal.RequireFromString("1050.00")))
	assert.False(t, head.Timestamp.IsZero())
}

func TestSubmitDeclineIsNotAnError(t *testing.T) {
	c, _ := newBackend(t)

	tests := []struct {
		name        string
		intent      domain.ValidIntent
		wantMessage string
	}{
		{name: "wrong pin", intent: intent(domain.KindWithdraw, testCard, "50.00", "0000"), wantMessage: "Invalid PIN"},
		{name: "unknown card", intent: intent(domain.KindTopup, "4111111111111111", "50.00", "1234"), wantMessage: "Invalid card"},
		{name: "unsupported range", intent: intent(domain.KindTopup, unsupportedCard, "50.00", "9999"), wantMessage: "Card range not supported"},
		{name: "insufficient balance", intent: intent(domain.KindWithdraw, testCard, "99999.00", "1234"), wantMessage: "Insufficient balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := c.Submit(context.Background(), tt.intent)
			require.NoError(t, err)

			assert.False(t, outcome.Success)
			assert.Equal(t, tt.wantMessage, outcome.Message)
		})
	}
}

func TestSubmitMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	}))
	t.Cleanup(server.Close)

	c := newClient(t, server.URL+"/api", 5*time.Second)

	_, err := c.Submit(context.Background(), intent(domain.KindTopup, testCard, "50.00", "1234"))
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestSubmitNetworkUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	address := server.URL
	server.Close()

	c := newClient(t, address+"/api", 5*time.Second)

	_, err := c.Submit(context.Background(), intent(domain.KindTopup, testCard, "50.00", "1234"))
	assert.ErrorIs(t, err, domain.ErrNetworkUnavailable)
}

func TestSubmitTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	c := newClient(t, server.URL+"/api", 50*time.Millisecond)

	_, err := c.Submit(context.Background(), intent(domain.KindTopup, testCard, "50.00", "1234"))
	assert.ErrorIs(t, err, domain.ErrRequestTimeout)
}

func TestBalanceUnknownCard(t *testing.T) {
	c, _ := newBackend(t)

	_, err := c.Balance(context.Background(), "4999999999999999")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestAdminEndpointsRequireAdminToken(t *testing.T) {
	c, _ := newBackend(t)

	// No identity in context: rejected.
	_, err := c.AdminTransactions(context.Background())
	assert.Error(t, err)

	gate, err := session.New(session.DemoCredentials(), privateKey)
	require.NoError(t, err)

	// Customer identity: authenticated but not an administrator.
	customer, err := gate.Authenticate("customer", "customer123")
	require.NoError(t, err)
	_, err = c.AdminCards(session.WithIdentity(context.Background(), customer))
	assert.Error(t, err)

	admin, err := gate.Authenticate("admin", "admin123")
	require.NoError(t, err)
	adminCtx := session.WithIdentity(context.Background(), admin)

	cards, err := c.AdminCards(adminCtx)
	require.NoError(t, err)
	assert.Len(t, cards, 3)

	records, err := c.AdminTransactions(adminCtx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseTimestampAcceptsZonelessLayout(t *testing.T) {
	ts := parseTimestamp("2020-12-10T15:15:45")
	assert.Equal(t, 2020, ts.Year())
	assert.Equal(t, 15, ts.Hour())

	withZone := parseTimestamp("2020-12-09T16:09:57+03:00")
	assert.Equal(t, 16, withZone.Hour())

	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("not a time").IsZero())
}
