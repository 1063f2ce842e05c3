package views

import (
	"context"

	"github.com/AdamBeresnev/koe-contest/internal/middleware"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

// SignedInAs labels the principal shown in the page header, or "" for anonymous visitors.
func SignedInAs(ctx context.Context) string {
	u := GetUser(ctx)
	if u == nil {
		return ""
	}
	return u.Name + " (" + string(u.Role) + ")"
}
