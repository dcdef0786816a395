package auth

import (
	"testing"
	"time"

	"github.com/inspectify/inspectify/api/internal/account/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService([]byte("test-secret-key-12345"), "inspectify-api", "inspectify-web", time.Hour)

	token, expiresAt, err := svc.Issue(domain.User{ID: "65f0", Name: "Admin", Email: "admin123@gmail.com", IsAdmin: true})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0", claims.Subject)
	assert.Equal(t, "admin123@gmail.com", claims.Email)
	assert.Equal(t, domain.Identity{Role: domain.RoleAdmin, ID: "admin_65f0"}, claims.Identity())
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	issuer := NewTokenService([]byte("key-a"), "inspectify-api", "", time.Hour)
	token, _, err := issuer.Issue(domain.User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenService([]byte("key-b"), "inspectify-api", "", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenService([]byte("key-a"), "someone-else", "", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	svc := NewTokenService([]byte("key"), "", "", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue(domain.User{ID: "u1"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
