package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chronomate/chronomate/internal/users"
)

// ErrUnlinked means no account has claimed the sender's address.
var ErrUnlinked = errors.New("chat address is not linked to an account")

// UserResolver finds the account linked to a chat address.
type UserResolver interface {
	ResolveJID(ctx context.Context, jid string) (*users.User, error)
}

type RouteResult struct {
	UserID uuid.UUID
	Email  string
}

// Router maps a message sender to a ChronoMate account.
type Router struct {
	users UserResolver
}

func NewRouter(resolver UserResolver) *Router {
	return &Router{users: resolver}
}

// Route resolves fromJID, with or without a resource, to its account.
func (r *Router) Route(ctx context.Context, fromJID string) (*RouteResult, error) {
	u, err := r.users.ResolveJID(ctx, fromJID)
	switch {
	case errors.Is(err, users.ErrNotFound):
		return nil, ErrUnlinked
	case errors.Is(err, users.ErrInvalidJID):
		return nil, fmt.Errorf("%w: %v", ErrUnlinked, err)
	case err != nil:
		return nil, fmt.Errorf("resolving sender: %w", err)
	}
	return &RouteResult{UserID: u.ID, Email: u.Email}, nil
}
