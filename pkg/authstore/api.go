package authstore

import (
	"context"
	"encoding/json"
	"fmt"

	"luminahealth.io/client-go/pkg/api"
)

// AuthAPI is the backend surface the store drives. The HTTP implementation
// below covers the real endpoints; tests substitute their own.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context) error
	UserInfo(ctx context.Context) (UserInfo, error)
	Capabilities(ctx context.Context) ([]string, error)
}

// httpAuthAPI drives the auth endpoints over the shared transport. Token
// exchanges are opaque payloads, so it uses the raw helpers rather than
// schema-checked ones.
type httpAuthAPI struct {
	client *api.Client
}

// NewHTTPAuthAPI creates the HTTP-backed AuthAPI.
func NewHTTPAuthAPI(client *api.Client) AuthAPI {
	return &httpAuthAPI{client: client}
}

func (a *httpAuthAPI) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	payload, err := api.PostRaw(ctx, a.client, api.PathAuthLogin, creds)
	if err != nil {
		return TokenPair{}, fmt.Errorf("login failed: %w", err)
	}
	return decodeTokenPair(payload)
}

func (a *httpAuthAPI) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	payload, err := api.PostRaw(ctx, a.client, api.PathAuthRefresh, body)
	if err != nil {
		return TokenPair{}, fmt.Errorf("token refresh failed: %w", err)
	}
	return decodeTokenPair(payload)
}

func (a *httpAuthAPI) Logout(ctx context.Context) error {
	_, err := api.PostRaw(ctx, a.client, api.PathAuthLogout, nil)
	return err
}

func (a *httpAuthAPI) UserInfo(ctx context.Context) (UserInfo, error) {
	payload, err := api.GetRaw(ctx, a.client, api.PathAuthUserInfo, nil)
	if err != nil {
		return UserInfo{}, fmt.Errorf("userinfo failed: %w", err)
	}
	var info UserInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return UserInfo{}, fmt.Errorf("failed to decode userinfo payload: %w", err)
	}
	return info, nil
}

func (a *httpAuthAPI) Capabilities(ctx context.Context) ([]string, error) {
	payload, err := api.GetRaw(ctx, a.client, api.PathAuthCapabilities, nil)
	if err != nil {
		return nil, fmt.Errorf("capabilities failed: %w", err)
	}
	var caps struct {
		Capabilities []string `json:"capabilities"`
	}
	if err := json.Unmarshal(payload, &caps); err != nil {
		return nil, fmt.Errorf("failed to decode capabilities payload: %w", err)
	}
	return caps.Capabilities, nil
}

func decodeTokenPair(payload json.RawMessage) (TokenPair, error) {
	var pair TokenPair
	if err := json.Unmarshal(payload, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("failed to decode token payload: %w", err)
	}
	if pair.AccessToken == "" {
		return TokenPair{}, fmt.Errorf("token payload missing access token")
	}
	if pair.ExpiresAt.IsZero() {
		if exp, ok := tokenExpiry(pair.AccessToken); ok {
			pair.ExpiresAt = exp
		}
	}
	return pair, nil
}
