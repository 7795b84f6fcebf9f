package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type AuthUser struct {
	ID      int64
	Name    string
	Email   string
	IsAdmin bool
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

// IsAdmin reports whether user is a signed-in administrator.
func IsAdmin(user *AuthUser) bool {
	return user != nil && user.IsAdmin
}

// CanManageReservation is the single ownership rule for reservations:
// the owner or any administrator may read, change or cancel it.
func CanManageReservation(user *AuthUser, ownerID int64) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin || user.ID == ownerID
}

// RequireUser returns the signed-in user or ErrUnauthenticated.
func RequireUser(user *AuthUser) (*AuthUser, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireAdmin fails with ErrUnauthenticated when nobody is signed in and
// ErrForbidden when the user is not an administrator.
func RequireAdmin(user *AuthUser) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireReservationAccess applies CanManageReservation and reports the failure kind.
func RequireReservationAccess(user *AuthUser, ownerID int64) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !CanManageReservation(user, ownerID) {
		return ErrForbidden
	}
	return nil
}
