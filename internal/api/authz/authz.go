package authz

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// AuthUser is the caller as identified by the upstream authenticator.
type AuthUser struct {
	ID int64
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// ParseUserID reads a user id header value. Only positive integers are accepted.
func ParseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrUnauthenticated
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// RequireUser returns the authenticated user, or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil || user.ID <= 0 {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
