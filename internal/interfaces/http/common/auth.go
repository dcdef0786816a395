package common

import (
	"context"
	"strings"

	"github.com/inspectify/inspectify/api/internal/account/domain"
)

type contextKey string

const authUserContextKey contextKey = "authUser"

// AuthenticatedUser represents the JWT-derived principal.
type AuthenticatedUser struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

// ContextWithUser stores the authenticated user into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthenticatedUser)
	return user, ok
}

// ScopeUserID は一覧・集計の userId クエリを解釈する。
// 管理者 ID や空文字は全件を意味する "" を返す。
func ScopeUserID(raw string) string {
	identity, ok := domain.ParseIdentity(strings.TrimSpace(raw))
	if !ok || identity.IsAdmin() {
		return ""
	}
	return identity.ID
}
