package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopwice/auth-service/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderVerifyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ya29.valid", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":            "108102",
			"email":          "shopper@example.com",
			"email_verified": true,
			"name":           "Shop Per",
			"given_name":     "Shop",
			"family_name":    "Per",
			"picture":        "https://example.com/avatar.png",
			"locale":         "en",
		})
	}))
	defer server.Close()

	provider := New(Config{UserInfoURL: server.URL})
	assert.Equal(t, "google", provider.Name())

	profile, err := provider.VerifyToken(context.Background(), "ya29.valid")
	require.NoError(t, err)

	assert.Equal(t, "108102", profile.ProviderUserID)
	assert.Equal(t, "google", profile.Provider)
	assert.Equal(t, "shopper@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Shop", profile.FirstName)
	assert.Equal(t, "Per", profile.LastName)
	assert.Equal(t, "https://example.com/avatar.png", profile.AvatarURL)
	assert.Equal(t, "en", profile.Raw["locale"])
}

func TestProviderVerifyTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    401,
				"message": "Invalid Credentials",
				"status":  "UNAUTHENTICATED",
			},
		})
	}))
	defer server.Close()

	provider := New(Config{UserInfoURL: server.URL})

	_, err := provider.VerifyToken(context.Background(), "expired")
	require.Error(t, err)

	var perr *social.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "google", perr.Provider)
	assert.Equal(t, "verify", perr.Operation)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Equal(t, "UNAUTHENTICATED", perr.Code)
	assert.Equal(t, "Invalid Credentials", perr.Description)
	assert.True(t, perr.Rejected())
}

func TestProviderVerifyTokenOAuthErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_token",
			"error_description": "Invalid Value",
		})
	}))
	defer server.Close()

	provider := New(Config{UserInfoURL: server.URL})

	_, err := provider.VerifyToken(context.Background(), "garbage")
	require.Error(t, err)

	var perr *social.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "invalid_token", perr.Code)
	assert.Equal(t, "Invalid Value", perr.Description)
}

func TestProviderVerifyTokenMissingSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "shopper@example.com"})
	}))
	defer server.Close()

	provider := New(Config{UserInfoURL: server.URL})

	_, err := provider.VerifyToken(context.Background(), "ya29.valid")
	require.Error(t, err)

	var perr *social.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "missing_subject", perr.Code)
}

func TestProviderVerifyTokenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	provider := New(Config{UserInfoURL: server.URL})

	_, err := provider.VerifyToken(context.Background(), "ya29.valid")
	require.Error(t, err)

	var perr *social.ProviderError
	assert.False(t, errors.As(err, &perr), "transport failures should not look like provider rejections")
}
