package auth

import (
	"errors"
	"slices"
)

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Enabled  bool
	Issuer   string
	Audience string
	JWKSURL  string
}

type Principal struct {
	Issuer   string
	Subject  string
	Audience any
	// Roles are the Keycloak realm roles carried in realm_access.roles.
	Roles  []string
	Claims map[string]any
}

func (p Principal) HasRole(role string) bool {
	return role == "" || slices.Contains(p.Roles, role)
}
