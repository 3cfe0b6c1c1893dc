package jwtware_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/shopwice/auth-service/middleware/jwtware"
)

type stubClaims struct {
	subject string
	role    string
}

func (c stubClaims) Subject() string { return c.subject }

func (c stubClaims) UserID() string { return c.subject }

func (c stubClaims) Role() string { return c.role }

func (c stubClaims) CanRead(string) bool { return true }

func (c stubClaims) CanEdit(string) bool { return c.role == "admin" }

func (c stubClaims) CanCreate(string) bool { return c.role == "admin" }

func (c stubClaims) CanDelete(string) bool { return c.role == "admin" }

func (c stubClaims) HasRole(role string) bool { return c.role == role }

func (c stubClaims) IsAtLeast(minRole string) bool {
	ranks := map[string]int{"guest": 0, "member": 1, "admin": 2}
	return ranks[c.role] >= ranks[minRole]
}

const validToken = "valid-token"

func stubValidator(claims stubClaims) jwtware.TokenValidatorFunc {
	return func(tokenString string) (jwtware.AuthClaims, error) {
		if tokenString != validToken {
			return nil, errors.New("token is malformed")
		}
		return claims, nil
	}
}

func baseConfig(overrides jwtware.Config) jwtware.Config {
	cfg := overrides
	if cfg.TokenValidator == nil {
		cfg.TokenValidator = stubValidator(stubClaims{subject: "user-1", role: "member"})
	}
	if cfg.SigningKey.Key == nil {
		cfg.SigningKey = jwtware.SigningKey{Key: []byte("test-secret"), JWTAlg: "HS256"}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return err
		}
	}
	return cfg
}

func noopHandler(ctx router.Context) error { return nil }

func TestJWTWareHeaderExtraction(t *testing.T) {
	middleware := jwtware.New(baseConfig(jwtware.Config{}))
	handler := middleware(noopHandler)

	t.Run("valid bearer token", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer " + validToken
		ctx.On("GetString", "Authorization", "").Return("Bearer " + validToken)
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		if err := handler(ctx); err != nil {
			t.Fatalf("unexpected error for valid token: %v", err)
		}
		if !ctx.NextCalled {
			t.Error("expected Next to be invoked")
		}

		claims, ok := ctx.Locals("user").(stubClaims)
		if !ok {
			t.Fatalf("expected stubClaims in locals, got %T", ctx.Locals("user"))
		}
		if claims.subject != "user-1" {
			t.Errorf("expected subject user-1, got %s", claims.subject)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("")

		err := handler(ctx)
		if err == nil {
			t.Fatal("expected error for missing token, got nil")
		}
		if !strings.Contains(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
			t.Errorf("expected missing token error, got: %v", err)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Basic dXNlcjpwYXNz"
		ctx.On("GetString", "Authorization", "").Return("Basic dXNlcjpwYXNz")

		if err := handler(ctx); err == nil {
			t.Fatal("expected error for non bearer scheme, got nil")
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer garbage"
		ctx.On("GetString", "Authorization", "").Return("Bearer garbage")

		err := handler(ctx)
		if err == nil {
			t.Fatal("expected error for rejected token, got nil")
		}
		if !strings.Contains(err.Error(), "token is malformed") {
			t.Errorf("expected malformed token error, got: %v", err)
		}
	})
}

func TestJWTWareCustomTokenLookup(t *testing.T) {
	middleware := jwtware.New(baseConfig(jwtware.Config{
		TokenLookup: "query:token,param:jwt,cookie:jwt_cookie",
	}))
	handler := middleware(noopHandler)

	t.Run("query parameter", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.QueriesM["token"] = validToken
		ctx.On("GetString", "token", "").Return(validToken).Maybe()
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		if err := handler(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ctx.NextCalled {
			t.Error("expected Next to be invoked")
		}
	})

	t.Run("url parameter", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.ParamsM["jwt"] = validToken
		ctx.On("GetString", "jwt", "").Return(validToken).Maybe()
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		if err := handler(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.CookiesM["jwt_cookie"] = validToken
		ctx.On("GetString", "jwt_cookie", "").Return(validToken).Maybe()
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		if err := handler(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

// customPathMock overrides Path() from our base MockContext.
type customPathMock struct {
	*router.MockContext
	pathOverride string
}

func (m *customPathMock) Path() string {
	return m.pathOverride
}

func TestJWTWareFilterSkips(t *testing.T) {
	middleware := jwtware.New(baseConfig(jwtware.Config{
		Filter: func(ctx router.Context) bool {
			return ctx.Path() == "/public"
		},
	}))
	handler := middleware(noopHandler)

	ctx := &customPathMock{
		MockContext:  router.NewMockContext(),
		pathOverride: "/public",
	}

	if err := handler(ctx); err != nil {
		t.Fatalf("expected no error because Filter should skip, got %v", err)
	}
	if !ctx.NextCalled {
		t.Error("expected Next() to be invoked due to Filter skip")
	}
}

func TestJWTWareRoleChecks(t *testing.T) {
	newCtx := func() *router.MockContext {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer " + validToken
		ctx.On("GetString", "Authorization", "").Return("Bearer " + validToken)
		ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()
		return ctx
	}

	t.Run("required role matches", func(t *testing.T) {
		middleware := jwtware.New(baseConfig(jwtware.Config{RequiredRole: "member"}))
		if err := middleware(noopHandler)(newCtx()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("required role mismatch", func(t *testing.T) {
		middleware := jwtware.New(baseConfig(jwtware.Config{RequiredRole: "admin"}))
		err := middleware(noopHandler)(newCtx())
		if err == nil {
			t.Fatal("expected access denied error, got nil")
		}
		if !strings.Contains(err.Error(), "required role") {
			t.Errorf("expected required role error, got: %v", err)
		}
	})

	t.Run("minimum role satisfied", func(t *testing.T) {
		middleware := jwtware.New(baseConfig(jwtware.Config{MinimumRole: "guest"}))
		if err := middleware(noopHandler)(newCtx()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("minimum role not met", func(t *testing.T) {
		middleware := jwtware.New(baseConfig(jwtware.Config{MinimumRole: "admin"}))
		err := middleware(noopHandler)(newCtx())
		if err == nil {
			t.Fatal("expected access denied error, got nil")
		}
		if !strings.Contains(err.Error(), "minimum role") {
			t.Errorf("expected minimum role error, got: %v", err)
		}
	})

	t.Run("custom role checker", func(t *testing.T) {
		middleware := jwtware.New(baseConfig(jwtware.Config{
			RequiredRole: "member",
			RoleChecker: func(claims jwtware.AuthClaims, role string) bool {
				return false
			},
		}))
		err := middleware(noopHandler)(newCtx())
		if err == nil {
			t.Fatal("expected custom role check failure, got nil")
		}
		if !strings.Contains(err.Error(), "custom role check") {
			t.Errorf("expected custom role check error, got: %v", err)
		}
	})
}

func TestJWTWareValidationListeners(t *testing.T) {
	newCtx := func() *router.MockContext {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer " + validToken
		ctx.On("GetString", "Authorization", "").Return("Bearer " + validToken)
		ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()
		return ctx
	}

	t.Run("listeners observe validated claims", func(t *testing.T) {
		var seen jwtware.AuthClaims
		middleware := jwtware.New(baseConfig(jwtware.Config{
			ValidationListeners: []jwtware.ValidationListener{
				nil, // skipped
				func(ctx router.Context, claims jwtware.AuthClaims) error {
					seen = claims
					return nil
				},
			},
		}))

		if err := middleware(noopHandler)(newCtx()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if seen == nil || seen.UserID() != "user-1" {
			t.Errorf("expected listener to observe claims for user-1, got %v", seen)
		}
	})

	t.Run("listener failure stops the request", func(t *testing.T) {
		middleware := jwtware.New(baseConfig(jwtware.Config{
			ValidationListeners: []jwtware.ValidationListener{
				func(ctx router.Context, claims jwtware.AuthClaims) error {
					return errors.New("audit sink unavailable")
				},
			},
		}))

		ctx := newCtx()
		err := middleware(noopHandler)(ctx)
		if err == nil {
			t.Fatal("expected listener error, got nil")
		}
		if ctx.NextCalled {
			t.Error("expected request to stop before Next")
		}
	})
}
