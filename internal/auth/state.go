package auth

import (
	"context"
	"taskBurst/internal/models/user"
)

// State состояние аутентификации запроса.
// initializing: контекст ещё не проходил через Authenticate.
type State string

const StateInitializing State = "initializing"
const StateSignedIn State = "signed_in"
const StateSignedOut State = "signed_out"

type ctxKey struct{}

type resolved struct {
	user  *user.User
	state State
}

func WithUser(ctx context.Context, u *user.User) context.Context {
	if u == nil {
		return WithSignedOut(ctx)
	}
	return context.WithValue(ctx, ctxKey{}, resolved{user: u, state: StateSignedIn})
}

func WithSignedOut(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, resolved{state: StateSignedOut})
}

func FromContext(ctx context.Context) (*user.User, State) {
	r, ok := ctx.Value(ctxKey{}).(resolved)
	if !ok {
		return nil, StateInitializing
	}
	return r.user, r.state
}
