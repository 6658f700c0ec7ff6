package mockehr

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 24 * time.Hour
)

// Demo credentials accepted by the mock.
const (
	DemoUsername = "drchen"
	DemoPassword = "lumina-demo"
)

var demoCapabilities = []string{
	"patients:read", "patients:write",
	"orders:read", "orders:write",
	"appointments:read", "appointments:write",
	"billing:read", "billing:write",
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (s *Server) issueTokens(username string) (tokenResponse, error) {
	expiresAt := time.Now().Add(accessTokenTTL)
	claims := jwt.MapClaims{
		"sub": username,
		"iss": "mockehr",
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingSecret)
	if err != nil {
		return tokenResponse{}, err
	}

	refresh := uuid.NewString()
	s.store.mu.Lock()
	s.refreshTokens[refresh] = refreshGrant{
		username:  username,
		expiresAt: time.Now().Add(refreshTokenTTL),
	}
	s.store.mu.Unlock()

	return tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username != DemoUsername || req.Password != DemoPassword {
		log.Warn().Str("username", req.Username).Msg("Login rejected")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}
	tokens, err := s.issueTokens(req.Username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign access token")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to issue tokens")
		return
	}
	log.Info().Str("username", req.Username).Msg("Login succeeded")
	writeData(w, http.StatusOK, tokens)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.store.mu.Lock()
	grant, ok := s.refreshTokens[req.RefreshToken]
	if ok {
		// One-shot rotation: a replayed refresh token is rejected.
		delete(s.refreshTokens, req.RefreshToken)
	}
	s.store.mu.Unlock()

	if !ok || time.Now().After(grant.expiresAt) {
		writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token is invalid or expired")
		return
	}
	tokens, err := s.issueTokens(grant.username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to issue tokens")
		return
	}
	writeData(w, http.StatusOK, tokens)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Revoke every grant for the caller; the mock tracks a single user so
	// clearing all of them is equivalent.
	s.store.mu.Lock()
	s.refreshTokens = make(map[string]refreshGrant)
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	username, ok := s.subjectFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid bearer token")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"id":       "7a1b2c3d-4e5f-4a6b-8c7d-9e0f10213243",
		"username": username,
		"name":     "Dr. Mei Chen",
		"roles":    []string{"provider"},
	})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.subjectFromRequest(r); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid bearer token")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"capabilities": demoCapabilities,
	})
}

// subjectFromRequest verifies the bearer token and returns its subject.
func (s *Server) subjectFromRequest(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.signingSecret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sub, _ := claims["sub"].(string)
	return sub, sub != ""
}

// requireAuth guards the protected routes.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.subjectFromRequest(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Missing or invalid bearer token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
