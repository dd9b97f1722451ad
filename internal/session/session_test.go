package session

import (
	"context"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koyif/cardbank/internal/domain"
)

const privateKey = "test-key"

func newGate(t *testing.T) *Gate {
	t.Helper()

	gate, err := New(DemoCredentials(), privateKey)
	require.NoError(t, err)

	return gate
}

func TestAuthenticate(t *testing.T) {
	gate := newGate(t)

	identity, err := gate.Authenticate("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)
	assert.Equal(t, domain.RoleAdmin, identity.Role)
	assert.NotEmpty(t, identity.Token)

	customer, err := gate.Authenticate("customer", "customer123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, customer.Role)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	gate := newGate(t)

	_, err := gate.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrIncorrectCredentials)

	_, err = gate.Authenticate("nobody", "admin123")
	assert.ErrorIs(t, err, domain.ErrIncorrectCredentials)
}

func TestTokenCarriesRoleClaim(t *testing.T) {
	gate := newGate(t)

	identity, err := gate.Authenticate("admin", "admin123")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(identity.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(privateKey), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestAuthorize(t *testing.T) {
	gate := newGate(t)

	admin := &domain.SessionIdentity{Username: "admin", Role: domain.RoleAdmin}
	customer := &domain.SessionIdentity{Username: "customer", Role: domain.RoleCustomer}

	assert.True(t, gate.Authorize(admin, domain.RoleAdmin))
	assert.True(t, gate.Authorize(customer, domain.RoleCustomer))

	assert.False(t, gate.Authorize(admin, domain.RoleCustomer), "admins are denied customer views")
	assert.False(t, gate.Authorize(customer, domain.RoleAdmin), "customers are denied admin views")
	assert.False(t, gate.Authorize(nil, domain.RoleCustomer), "anonymous callers are denied")
}

func TestIdentityContextRoundTrip(t *testing.T) {
	identity := &domain.SessionIdentity{Username: "customer", Role: domain.RoleCustomer}

	ctx := WithIdentity(context.Background(), identity)

	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)

	_, ok = IdentityFromContext(context.Background())
	assert.False(t, ok)
}
