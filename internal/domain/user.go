// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen = 64
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
	ErrEmailEmpty    = errors.New("email empty")
	ErrRoleEmpty     = errors.New("role empty")
)

type (
	UserID string
	Role   string
)

// Principal is the authenticated identity bound to a connection.
// It is derived once from a verified token and never changes afterwards.
type Principal struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"rol"`
}

// NewPrincipal is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewPrincipal(id, email, role string) (Principal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Principal{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Principal{}, ErrUserIDTooLong
	}
	if strings.TrimSpace(email) == "" {
		return Principal{}, ErrEmailEmpty
	}
	if strings.TrimSpace(role) == "" {
		return Principal{}, ErrRoleEmpty
	}
	return Principal{ID: UserID(id), Email: email, Role: Role(role)}, nil
}

// Author is the denormalized projection of a message author.
type Author struct {
	ID        UserID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// DisplayName joins first and last name, falling back to the email.
func (a Author) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if name == "" {
		return a.Email
	}
	return name
}
