package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/shopwice/auth-service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentity implements auth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func testIdentity() *MockIdentity {
	identity := &MockIdentity{}
	identity.On("ID").Return("user-123")
	identity.On("Role").Return("member")
	return identity
}

func newTestTokenService(accessTTL, refreshTTL time.Duration) auth.TokenService {
	return auth.NewTokenService(
		[]byte("test-signing-key"),
		accessTTL,
		refreshTTL,
		"test-issuer",
		jwt.ClaimStrings{"test-audience"},
		nil,
	)
}

func assertTextCode(t *testing.T, err error, textCode string) {
	t.Helper()
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, textCode, richErr.TextCode)
}

func TestNewTokenService(t *testing.T) {
	t.Run("creates token service with logger", func(t *testing.T) {
		service := auth.NewTokenService([]byte("key"), time.Hour, 24*time.Hour, "iss", nil, &MockLogger{})
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := auth.NewTokenService([]byte("key"), time.Hour, 24*time.Hour, "iss", nil, nil)
		assert.NotNil(t, service)
	})
}

func TestTokenService_GeneratePair(t *testing.T) {
	service := newTestTokenService(time.Hour, 24*time.Hour)

	pair, err := service.GeneratePair(testIdentity())
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	t.Run("access token carries identity and access use", func(t *testing.T) {
		claims, err := service.Validate(pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "member", claims.Role())
		assert.Equal(t, auth.TokenUseAccess, claims.TokenUse())
	})

	t.Run("refresh token carries refresh use", func(t *testing.T) {
		claims, err := service.ValidateRefresh(pair.RefreshToken)
		require.NoError(t, err)

		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, auth.TokenUseRefresh, claims.TokenUse())
	})

	t.Run("rejects nil identity", func(t *testing.T) {
		_, err := service.GeneratePair(nil)
		assert.Error(t, err)
	})
}

func TestTokenService_Validate(t *testing.T) {
	service := newTestTokenService(time.Hour, 24*time.Hour)

	pair, err := service.GeneratePair(testIdentity())
	require.NoError(t, err)

	t.Run("rejects refresh token on access validation", func(t *testing.T) {
		_, err := service.Validate(pair.RefreshToken)
		require.Error(t, err)
		assertTextCode(t, err, auth.TextCodeTokenWrongUse)
	})

	t.Run("rejects access token on refresh validation", func(t *testing.T) {
		_, err := service.ValidateRefresh(pair.AccessToken)
		require.Error(t, err)
		assertTextCode(t, err, auth.TextCodeTokenWrongUse)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		require.Error(t, err)
		assertTextCode(t, err, auth.TextCodeTokenMalformed)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := newTestTokenService(-time.Hour, 24*time.Hour)
		expiredPair, err := expired.GeneratePair(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(expiredPair.AccessToken)
		require.Error(t, err)
		assert.True(t, goerrors.Is(err, auth.ErrTokenExpired))
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("other-key"), time.Hour, 24*time.Hour, "test-issuer", jwt.ClaimStrings{"test-audience"}, nil)
		otherPair, err := other.GeneratePair(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(otherPair.AccessToken)
		assert.Error(t, err)
	})

	t.Run("rejects token with wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService([]byte("test-signing-key"), time.Hour, 24*time.Hour, "other-issuer", jwt.ClaimStrings{"test-audience"}, nil)
		otherPair, err := other.GeneratePair(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(otherPair.AccessToken)
		assert.Error(t, err)
	})
}

func TestTokenService_Refresh(t *testing.T) {
	service := newTestTokenService(time.Hour, 24*time.Hour)

	pair, err := service.GeneratePair(testIdentity())
	require.NoError(t, err)

	t.Run("mints access token from refresh token", func(t *testing.T) {
		access, err := service.Refresh(pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, access)

		claims, err := service.Validate(access)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "member", claims.Role())
		assert.Equal(t, auth.TokenUseAccess, claims.TokenUse())
	})

	t.Run("rejects access token", func(t *testing.T) {
		_, err := service.Refresh(pair.AccessToken)
		require.Error(t, err)
		assertTextCode(t, err, auth.TextCodeTokenWrongUse)
	})

	t.Run("rejects expired refresh token", func(t *testing.T) {
		expired := newTestTokenService(time.Hour, -time.Hour)
		expiredPair, err := expired.GeneratePair(testIdentity())
		require.NoError(t, err)

		_, err = service.Refresh(expiredPair.RefreshToken)
		require.Error(t, err)
		assert.True(t, goerrors.Is(err, auth.ErrTokenExpired))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Refresh("garbage")
		assert.Error(t, err)
	})
}

func TestTokenService_ClaimsDecorator(t *testing.T) {
	newService := func(d auth.ClaimsDecorator) auth.TokenService {
		return auth.NewTokenService(
			[]byte("test-signing-key"),
			time.Hour,
			24*time.Hour,
			"test-issuer",
			jwt.ClaimStrings{"test-audience"},
			nil,
		).WithClaimsDecorator(d)
	}

	t.Run("decorator enriches extension claims", func(t *testing.T) {
		service := newService(auth.ClaimsDecoratorFunc(func(_ context.Context, identity auth.Identity, claims *auth.JWTClaims) error {
			claims.Metadata = map[string]any{"plan": "pro"}
			claims.Resources = map[string]string{"orders": "admin"}
			return nil
		}))

		pair, err := service.GeneratePair(testIdentity())
		require.NoError(t, err)

		claims, err := service.Validate(pair.AccessToken)
		require.NoError(t, err)

		jc, ok := claims.(*auth.JWTClaims)
		require.True(t, ok)
		assert.Equal(t, "pro", jc.Metadata["plan"])
		assert.True(t, claims.CanDelete("orders"))
	})

	t.Run("decorator cannot touch identity claims", func(t *testing.T) {
		service := newService(auth.ClaimsDecoratorFunc(func(_ context.Context, identity auth.Identity, claims *auth.JWTClaims) error {
			claims.RegisteredClaims.Subject = "someone-else"
			return nil
		}))

		_, err := service.GeneratePair(testIdentity())
		require.Error(t, err)
		assertTextCode(t, err, auth.TextCodeImmutableClaim)
	})

	t.Run("decorator cannot touch expiry", func(t *testing.T) {
		service := newService(auth.ClaimsDecoratorFunc(func(_ context.Context, identity auth.Identity, claims *auth.JWTClaims) error {
			claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(100 * time.Hour))
			return nil
		}))

		_, err := service.GeneratePair(testIdentity())
		require.Error(t, err)
		assertTextCode(t, err, auth.TextCodeImmutableClaim)
	})

	t.Run("decorator failure fails the mint", func(t *testing.T) {
		service := newService(auth.ClaimsDecoratorFunc(func(_ context.Context, identity auth.Identity, claims *auth.JWTClaims) error {
			return goerrors.New("downstream lookup failed", goerrors.CategoryInternal)
		}))

		_, err := service.GeneratePair(testIdentity())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "claims decorator failed")
	})

	t.Run("nil decorator is a no-op", func(t *testing.T) {
		service := newService(nil)

		pair, err := service.GeneratePair(testIdentity())
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})
}

func TestTokenService_SignClaims(t *testing.T) {
	service := newTestTokenService(time.Hour, 24*time.Hour)

	t.Run("rejects nil claims", func(t *testing.T) {
		_, err := service.SignClaims(nil)
		assert.Error(t, err)
	})

	t.Run("signs custom claims", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   "user-9",
				Audience:  jwt.ClaimStrings{"test-audience"},
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			UID:      "user-9",
			UserRole: "admin",
			Use:      auth.TokenUseAccess,
		}

		signed, err := service.SignClaims(claims)
		require.NoError(t, err)

		parsed, err := service.Validate(signed)
		require.NoError(t, err)
		assert.Equal(t, "user-9", parsed.Subject())
		assert.Equal(t, "admin", parsed.Role())
	})
}
