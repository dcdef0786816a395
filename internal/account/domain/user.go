package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// User is a registered account.
type User struct {
	ID           string
	Email        Email
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Identity returns the principal used for realtime routing. Administrators
// are exposed under the admin prefix so legacy clients keep working.
func (u User) Identity() Identity {
	if u.IsAdmin {
		return Identity{Role: RoleAdmin, ID: AdminIDPrefix + u.ID}
	}
	return Identity{Role: RoleUser, ID: u.ID}
}

// Email は正規化済みのメールアドレス。
type Email string

// NewEmail lower-cases and validates an address.
func NewEmail(value string) (Email, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("invalid email: %s", value)
	}
	return Email(trimmed), nil
}

func (e Email) String() string {
	return string(e)
}
