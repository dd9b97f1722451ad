package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koyif/cardbank/internal/config"
	"github.com/koyif/cardbank/internal/domain"
)

func newDemoApp(t *testing.T) *App {
	t.Helper()

	a, err := New(&config.Config{
		DemoMode:       true,
		PrivateKey:     "test-key",
		RequestTimeout: 5 * time.Second,
		DefaultCard:    "4000123456789012",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Close(shutdownCtx)
	})

	return a
}

func TestCustomerLoginSelectsDefaultCard(t *testing.T) {
	a := newDemoApp(t)

	a.login(context.Background(), []string{"customer", "customer123"})

	require.NotNil(t, a.identity)
	assert.Equal(t, domain.RoleCustomer, a.identity.Role)

	snapshot := a.store.Snapshot()
	assert.True(t, snapshot.Loaded)
	assert.Equal(t, "4000123456789012", snapshot.Account.CardNumber)
	assert.True(t, snapshot.Account.Balance.Equal(decimal.RequireFromString("1000.00")))
}

func TestAdminLoginDoesNotTouchTheStore(t *testing.T) {
	a := newDemoApp(t)

	a.login(context.Background(), []string{"admin", "admin123"})

	require.NotNil(t, a.identity)
	assert.Equal(t, domain.RoleAdmin, a.identity.Role)
	assert.False(t, a.store.Snapshot().Loaded)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newDemoApp(t)

	a.login(context.Background(), []string{"customer", "wrong"})

	assert.Nil(t, a.identity)
}
