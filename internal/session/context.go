package session

import (
	"context"

	"github.com/koyif/cardbank/internal/domain"
)

type contextKey struct{}

// WithIdentity threads the session identity into a context. Components read
// it from there instead of any ambient shared storage.
func WithIdentity(ctx context.Context, id *domain.SessionIdentity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (*domain.SessionIdentity, bool) {
	id, ok := ctx.Value(contextKey{}).(*domain.SessionIdentity)
	return id, ok && id != nil
}
