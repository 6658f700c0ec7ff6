package authstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"luminahealth.io/client-go/internal/metrics"
)

// refreshSkew triggers a refresh slightly before the token actually
// expires so in-flight requests never carry a token that dies mid-call.
const refreshSkew = 30 * time.Second

// Store holds the authentication state machine. All methods are safe for
// concurrent use; Refresh coalesces concurrent callers onto a single
// backend call.
type Store struct {
	strategy  Strategy
	api       AuthAPI
	creds     CredentialStore
	namespace string

	mu     sync.Mutex
	state  State
	tokens TokenPair
	user   *UserInfo
	caps   map[string]bool

	group singleflight.Group
	now   func() time.Time
}

// New creates a store for the configured strategy. Credentials persisted
// under the namespace are restored when they have not expired, so a
// restarted client resumes its session without a fresh login.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Store{
		strategy:  cfg.Strategy,
		api:       cfg.API,
		creds:     cfg.Credentials,
		namespace: cfg.Namespace,
		state:     StateUnauthenticated,
		now:       time.Now,
	}
	s.restore()
	return s, nil
}

func (s *Store) restore() {
	if s.creds == nil {
		return
	}
	pair, ok, err := s.creds.Load(s.namespace)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to restore persisted credentials")
		return
	}
	if !ok {
		return
	}
	if !pair.ExpiresAt.IsZero() && s.now().After(pair.ExpiresAt) && pair.RefreshToken == "" {
		// Expired with no way to refresh: treat as signed out.
		return
	}
	s.tokens = pair
	s.state = StateAuthenticated
	log.Debug().Str("namespace", s.namespace).Msg("Restored persisted session")
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in user's identity when the strategy resolves
// one.
func (s *Store) User() (UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return UserInfo{}, false
	}
	return *s.user, true
}

// Login exchanges credentials for a token pair and moves the store to
// Authenticated. Session and policy strategies additionally resolve the
// user identity; the policy capability cache is reset so stale grants
// from a previous session cannot leak forward.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.caps = nil
	s.mu.Unlock()

	pair, err := s.api.Login(ctx, creds)
	if err != nil {
		s.mu.Lock()
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return err
	}

	var user *UserInfo
	if s.strategy == StrategySession || s.strategy == StrategyPolicy {
		info, err := s.api.UserInfo(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Login succeeded but userinfo failed")
		} else {
			user = &info
		}
	}

	s.mu.Lock()
	s.tokens = pair
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.persist(pair)
	log.Info().Str("strategy", string(s.strategy)).Msg("Signed in")
	return nil
}

// Token returns the current access token, refreshing first when it is at
// or past its expiry. An unauthenticated store returns an empty token so
// anonymous endpoints still work; protected ones will answer 401.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	pair := s.tokens
	state := s.state
	s.mu.Unlock()

	if state == StateUnauthenticated || pair.AccessToken == "" {
		return "", nil
	}
	if !pair.ExpiresAt.IsZero() && s.now().After(pair.ExpiresAt.Add(-refreshSkew)) {
		if err := s.Refresh(ctx); err != nil {
			return "", err
		}
		s.mu.Lock()
		pair = s.tokens
		s.mu.Unlock()
	}
	return pair.AccessToken, nil
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers
// coalesce onto one backend call and all observe the same outcome. A
// store without a refresh token fails immediately; there is nothing to
// retry.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		s.mu.Lock()
		refreshToken := s.tokens.RefreshToken
		if refreshToken == "" {
			s.mu.Unlock()
			metrics.RecordTokenRefresh("no_refresh_token")
			return nil, ErrNoRefreshToken
		}
		s.state = StateRefreshing
		s.mu.Unlock()

		pair, err := s.api.Refresh(ctx, refreshToken)
		if err != nil {
			metrics.RecordTokenRefresh("failure")
			// A rejected refresh means the session is dead; holding on
			// to the stale pair would just replay the failure on every
			// call. Sign out fully.
			s.mu.Lock()
			s.tokens = TokenPair{}
			s.user = nil
			s.caps = nil
			s.state = StateUnauthenticated
			s.mu.Unlock()
			if s.creds != nil {
				if cerr := s.creds.Clear(s.namespace); cerr != nil {
					log.Warn().Err(cerr).Msg("Failed to clear persisted credentials")
				}
			}
			log.Warn().Err(err).Msg("Refresh rejected, signed out")
			return nil, fmt.Errorf("refresh rejected: %w", err)
		}
		if pair.RefreshToken == "" {
			// Some backends rotate only the access token.
			pair.RefreshToken = refreshToken
		}

		s.mu.Lock()
		s.tokens = pair
		s.state = StateAuthenticated
		s.mu.Unlock()

		s.persist(pair)
		metrics.RecordTokenRefresh("success")
		log.Debug().Msg("Token pair refreshed")
		return nil, nil
	})
	return err
}

// Logout signs out and clears all local state. It is idempotent: a second
// call is a no-op, and a backend failure still leaves the store signed
// out locally.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateUnauthenticated {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}

	s.mu.Lock()
	s.tokens = TokenPair{}
	s.user = nil
	s.caps = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	if s.creds != nil {
		if err := s.creds.Clear(s.namespace); err != nil {
			log.Warn().Err(err).Msg("Failed to clear persisted credentials")
		}
	}
	log.Info().Msg("Signed out")
	return nil
}

// Can reports whether the signed-in session holds the named capability.
// Only the policy strategy resolves capabilities; the others report every
// capability as granted once authenticated, matching backends that do all
// enforcement server-side. Results are cached until login or logout.
func (s *Store) Can(ctx context.Context, capability string) (bool, error) {
	s.mu.Lock()
	state := s.state
	caps := s.caps
	s.mu.Unlock()

	if state == StateUnauthenticated {
		return false, ErrNotAuthenticated
	}
	if s.strategy != StrategyPolicy {
		return true, nil
	}
	if caps != nil {
		return caps[capability], nil
	}

	_, err, _ := s.group.Do("capabilities", func() (interface{}, error) {
		granted, err := s.api.Capabilities(ctx)
		if err != nil {
			return nil, err
		}
		resolved := make(map[string]bool, len(granted))
		for _, c := range granted {
			resolved[c] = true
		}
		s.mu.Lock()
		s.caps = resolved
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return false, fmt.Errorf("capability lookup failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps[capability], nil
}

func (s *Store) persist(pair TokenPair) {
	if s.creds == nil {
		return
	}
	if err := s.creds.Save(s.namespace, pair); err != nil {
		log.Warn().Err(err).Msg("Failed to persist credentials")
	}
}
