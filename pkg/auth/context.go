package auth

import (
	"context"

	"promptbuilder/pkg/common"
)

type userContextKey struct{}

// UserContext is the authenticated caller attached to a request
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the user holds the role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SetUserInContext stores the user in ctx, along with the bare user id
// for code that only needs the owner key.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	ctx = context.WithValue(ctx, userContextKey{}, user)
	return common.WithUserID(ctx, user.UserID)
}

// GetUserFromContext returns the authenticated user, if any
func GetUserFromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey{}).(*UserContext)
	return user, ok && user != nil && user.UserID != ""
}
