package identity

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds identity options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetDataDir() string
}

// TokenService issues and verifies signed identity assertions
type TokenService interface {
	Issue(user *User, registry ClaimsRegistry) (string, error)
	Verify(tokenString string) (*IdentityClaims, error)
	Refresh(refreshToken string, user *User, registry ClaimsRegistry) (string, error)
}

// Directory is the record surface the authenticator needs; Store satisfies it
type Directory interface {
	VerifyIdentity(ctx context.Context, email, password string) (*User, error)
	User(id string) (*User, error)
	Registry() ClaimsRegistry
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
