package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopwice/auth-service/social"
)

const (
	defaultGraphURL = "https://graph.facebook.com/v18.0/me"
	profileFields   = "id,email,first_name,last_name,name,picture"
)

// Config holds Facebook provider configuration.
type Config struct {
	GraphURL   string
	HTTPClient *http.Client
}

// Provider implements social.SocialProvider for Facebook. Tokens are
// verified by presenting them to the Graph API profile endpoint.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Facebook provider.
func New(cfg Config) *Provider {
	if cfg.GraphURL == "" {
		cfg.GraphURL = defaultGraphURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements social.SocialProvider.
func (p *Provider) Name() string {
	return "facebook"
}

// VerifyToken implements social.SocialProvider.
func (p *Provider) VerifyToken(ctx context.Context, accessToken string) (*social.SocialProfile, error) {
	params := url.Values{
		"fields":       {profileFields},
		"access_token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.GraphURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook graph request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("facebook graph read: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		code, description, raw := parseFacebookError(body)
		return nil, providerError(resp.StatusCode, code, description, nil, raw)
	}

	var profile facebookProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, providerError(resp.StatusCode, "invalid_response", "failed to decode profile response", err, nil)
	}
	if profile.ID == "" {
		return nil, providerError(resp.StatusCode, "missing_subject", "profile response missing id", nil, nil)
	}

	return mapProfile(&profile), nil
}

type facebookErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func parseFacebookError(body []byte) (string, string, map[string]any) {
	var parsed facebookErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && (parsed.Error.Message != "" || parsed.Error.Code != 0) {
		code := parsed.Error.Type
		if code == "" && parsed.Error.Code != 0 {
			code = fmt.Sprintf("%d", parsed.Error.Code)
		}
		return code, parsed.Error.Message, map[string]any{
			"type":       parsed.Error.Type,
			"message":    parsed.Error.Message,
			"code":       parsed.Error.Code,
			"fbtrace_id": parsed.Error.FBTraceID,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "facebook request failed"
	}

	return "", msg, nil
}

func providerError(status int, code, description string, err error, raw map[string]any) *social.ProviderError {
	return &social.ProviderError{
		Provider:    "facebook",
		Operation:   "verify",
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
