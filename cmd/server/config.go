package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration, loaded from the environment
// with an optional .env overlay.
type Config struct {
	Address string `json:"address"`
	DSN     string `json:"dsn"`
	Debug   bool   `json:"debug"`

	SigningKey      string `json:"-"`
	SigningMethod   string `json:"signing_method"`
	ContextKey      string `json:"context_key"`
	TokenLookup     string `json:"token_lookup"`
	AuthScheme      string `json:"auth_scheme"`
	Issuer          string `json:"issuer"`
	Audience        string `json:"audience"`
	AccessTokenTTL  int    `json:"access_token_ttl"`
	RefreshTokenTTL int    `json:"refresh_token_ttl"`

	GoogleUserInfoURL string `json:"google_user_info_url"`
	FacebookGraphURL  string `json:"facebook_graph_url"`
}

// LoadConfig reads the environment, applying .env first when present.
func LoadConfig() *Config {
	// missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	return &Config{
		Address:           getEnv("AUTH_ADDRESS", ":8572"),
		DSN:               getEnv("AUTH_DSN", "file:auth.db?cache=shared&_pragma=foreign_keys(1)"),
		Debug:             getEnvBool("AUTH_DEBUG", false),
		SigningKey:        getEnv("AUTH_SIGNING_KEY", ""),
		SigningMethod:     getEnv("AUTH_SIGNING_METHOD", "HS256"),
		ContextKey:        getEnv("AUTH_CONTEXT_KEY", "user"),
		TokenLookup:       getEnv("AUTH_TOKEN_LOOKUP", "header:Authorization"),
		AuthScheme:        getEnv("AUTH_SCHEME", "Bearer"),
		Issuer:            getEnv("AUTH_ISSUER", "shopwice"),
		Audience:          getEnv("AUTH_AUDIENCE", "shopwice"),
		AccessTokenTTL:    getEnvInt("AUTH_ACCESS_TOKEN_TTL", int(time.Hour.Seconds())),
		RefreshTokenTTL:   getEnvInt("AUTH_REFRESH_TOKEN_TTL", int((24 * time.Hour).Seconds())),
		GoogleUserInfoURL: getEnv("AUTH_GOOGLE_USERINFO_URL", ""),
		FacebookGraphURL:  getEnv("AUTH_FACEBOOK_GRAPH_URL", ""),
	}
}

func (c *Config) GetSigningKey() string { return c.SigningKey }

func (c *Config) GetSigningMethod() string { return c.SigningMethod }

func (c *Config) GetContextKey() string { return c.ContextKey }

func (c *Config) GetAccessTokenTTL() int { return c.AccessTokenTTL }

func (c *Config) GetRefreshTokenTTL() int { return c.RefreshTokenTTL }

func (c *Config) GetTokenLookup() string { return c.TokenLookup }

func (c *Config) GetAuthScheme() string { return c.AuthScheme }

func (c *Config) GetIssuer() string { return c.Issuer }

func (c *Config) GetAudience() []string { return []string{c.Audience} }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
