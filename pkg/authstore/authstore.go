// Package authstore manages the client's authentication state: token
// lifecycle, session identity and capability checks, selected by strategy
// at construction time. The store implements api.TokenSource so the
// transport can pull credentials and trigger silent refreshes.
package authstore

import (
	"errors"
	"fmt"
	"time"
)

// Strategy selects how the store authenticates and what it tracks beyond
// the token pair.
type Strategy string

const (
	// StrategyToken tracks only the token pair and its expiry.
	StrategyToken Strategy = "token"
	// StrategySession additionally resolves the signed-in user's identity
	// after login.
	StrategySession Strategy = "session"
	// StrategyPolicy additionally resolves per-capability permissions,
	// cached for the lifetime of the session.
	StrategyPolicy Strategy = "policy"
)

// State is the store's lifecycle state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
)

// Credentials are the login inputs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the issued access/refresh token pair. ExpiresAt mirrors the
// access token's exp claim when the server reports it.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
}

// UserInfo is the signed-in user's identity as reported by the backend.
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Sentinel errors surfaced by the store.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("no refresh token available")
)

// Config configures a Store.
type Config struct {
	Strategy    Strategy
	API         AuthAPI
	Credentials CredentialStore
	// Namespace isolates persisted credentials per application.
	Namespace string
}

func (c Config) validate() error {
	switch c.Strategy {
	case StrategyToken, StrategySession, StrategyPolicy:
	default:
		return fmt.Errorf("unknown auth strategy %q", c.Strategy)
	}
	if c.API == nil {
		return errors.New("auth API is required")
	}
	return nil
}
