package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

var (
	identityDomain    = "https://identitytoolkit.googleapis.com"
	secureTokenDomain = "https://securetoken.googleapis.com"
)

// AuthClient is the managed auth provider boundary: email/password sign-in and ID
// token refresh over the identity-toolkit REST API.
type AuthClient struct {
	apiKey string
	http   *http.Client
}

func NewAuth(apiKey string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

// SignIn exchanges email/password credentials for a session.
func (c *AuthClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "AuthClient.SignIn"

	reqURL := fmt.Sprintf("%s/v1/accounts:signInWithPassword?key=%s", identityDomain, c.apiKey)
	body, _ := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to build request: %w", op, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: request failed: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: sign-in rejected (status %d)", types.ErrUnauthenticated, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to decode response: %w", op, err))
	}

	return c.sessionFrom(ctx, payload.IDToken, payload.RefreshToken, payload.ExpiresIn, payload.LocalID, payload.Email, payload.DisplayName)
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// Refresh exchanges a refresh token for a fresh ID token.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	const op = "AuthClient.Refresh"

	reqURL := fmt.Sprintf("%s/v1/token?key=%s", secureTokenDomain, c.apiKey)
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader([]byte(form.Encode())))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to build request: %w", op, err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: request failed: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: refresh rejected (status %d)", types.ErrUnauthenticated, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to decode response: %w", op, err))
	}

	return c.sessionFrom(ctx, payload.IDToken, payload.RefreshToken, payload.ExpiresIn, payload.UserID, "", "")
}

// sessionFrom builds a Session, preferring ID-token claims over the response body for
// identity fields. The token signature is not verified here: the API servers verify
// every request, the agent only reads claims for display and expiry scheduling.
func (c *AuthClient) sessionFrom(ctx context.Context, idToken, refreshToken, expiresIn, uid, email, displayName string) (*models.Session, error) {
	expiresAt := time.Now().Add(55 * time.Minute)
	if secs, err := strconv.Atoi(expiresIn); err == nil {
		expiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			uid = sub
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
		if v, ok := claims["email"].(string); ok && v != "" {
			email = v
		}
		if v, ok := claims["name"].(string); ok && v != "" {
			displayName = v
		}
	}

	if uid == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: token carries no subject", types.ErrUnauthenticated))
	}

	return &models.Session{
		Rider: models.Rider{
			UID:         uid,
			Email:       email,
			DisplayName: displayName,
		},
		IDToken:      idToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
