package auth

import (
	"context"

	"go-shop/internal/user"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// WithUser attaches the authenticated user and the raw token to ctx.
func WithUser(ctx context.Context, u *user.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, tokenKey, token)
}

func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok && u != nil
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}
