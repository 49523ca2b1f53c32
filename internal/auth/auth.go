// Package auth authenticates dashboard users.
//
// Handlers depend on the Provider interface only. The dataset code never sees
// credentials; it only learns whether a request carries an Identity.
package auth

import (
	"context"
	"errors"
)

// Roles known to the dashboard.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// The two cases are deliberately indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Identity is an authenticated user.
type Identity struct {
	Username string
	Role     string
}

// IsAdmin reports whether the identity has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Provider checks credentials.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}
