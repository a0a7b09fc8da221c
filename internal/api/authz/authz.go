package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// AuthUser is the authenticated member threaded through request contexts.
// Core functions take it explicitly instead of reading ambient globals.
type AuthUser struct {
	ID       int64
	Username string
	IsAdmin  bool
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value
// has a different type.
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

// IsAdmin reports whether the given AuthUser represents a club admin.
func IsAdmin(user *AuthUser) bool {
	return user != nil && user.IsAdmin
}

// RequireUser returns ErrUnauthenticated when no user is present in ctx.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireLeagueAdmin checks that the context user administers the league
// owned by adminMemberID. Club admins pass regardless of ownership.
func RequireLeagueAdmin(ctx context.Context, adminMemberID int64) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if user.IsAdmin || user.ID == adminMemberID {
		return nil
	}
	return ErrForbidden
}
