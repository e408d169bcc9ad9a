package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dakshgoel/schedulr/config"
	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// OAuthGoogle is the only provider scope this application exchanges
// tokens for.
const OAuthGoogle = "oauth_google"

// TokenCache keeps exchanged access tokens around for their short
// lifetime. Cache failures are never fatal, the provider is the source
// of truth.
type TokenCache interface {
	GetAccessToken(ctx context.Context, clerkUserID, provider string) (string, error)
	SetAccessToken(ctx context.Context, clerkUserID, provider, token string) error
}

// Client talks to the hosted identity provider: it verifies session
// tokens locally and exchanges a stored user identity for a short-lived
// OAuth access token through the provider's backend API.
type Client struct {
	apiURL        string
	apiKey        string
	sessionSecret []byte
	http          *http.Client
	tokens        TokenCache
}

func NewClient(cfg config.IdentityConfig, tokens TokenCache) *Client {
	return &Client{
		apiURL:        cfg.APIURL,
		apiKey:        cfg.APIKey,
		sessionSecret: []byte(cfg.SessionSecret),
		http:          &http.Client{Timeout: 10 * time.Second},
		tokens:        tokens,
	}
}

// Subject verifies the caller's session token and returns the provider
// subject id. Any missing or invalid token fails closed.
func (c *Client) Subject(sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", domain.ErrUnauthorized
	}

	tok, err := jwt.Parse(sessionToken, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return c.sessionSecret, nil
	})
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("invalid session: %w", domain.ErrUnauthorized)
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("session has no subject: %w", domain.ErrUnauthorized)
	}
	return sub, nil
}

type oauthToken struct {
	Token    string `json:"token"`
	Provider string `json:"provider"`
}

type oauthTokenResponse struct {
	Data []oauthToken `json:"data"`
}

// OAuthAccessToken exchanges the stored identity of clerkUserID for a
// Google OAuth access token. A user with no linked Google account yields
// an empty token, not an error: the calendar call is attempted anyway and
// allowed to fail remotely.
func (c *Client) OAuthAccessToken(ctx context.Context, clerkUserID string) (string, error) {
	if c.tokens != nil {
		if cached, err := c.tokens.GetAccessToken(ctx, clerkUserID, OAuthGoogle); err == nil && cached != "" {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/v1/users/%s/oauth_access_tokens/%s", c.apiURL, clerkUserID, OAuthGoogle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider returned %d for user %s", resp.StatusCode, clerkUserID)
	}

	var body oauthTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode oauth token response: %w", err)
	}
	if len(body.Data) == 0 {
		return "", nil
	}
	token := body.Data[0].Token
	if token == "" {
		return "", nil
	}

	if c.tokens != nil {
		if err := c.tokens.SetAccessToken(ctx, clerkUserID, OAuthGoogle, token); err != nil {
			log.Printf("cache oauth token for %s: %v", clerkUserID, err)
		}
	}
	return token, nil
}
