package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
)

func claimsWithRole(role string) *JWTClaims {
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-123",
		},
		UID:      "user-123",
		UserRole: role,
	}
}

func TestGetClaims(t *testing.T) {
	t.Run("returns claims stored in context", func(t *testing.T) {
		ctx := WithClaimsContext(context.Background(), claimsWithRole("admin"))

		claims, ok := GetClaims(ctx)
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "admin", claims.Role())
	})

	t.Run("returns false for empty context", func(t *testing.T) {
		claims, ok := GetClaims(context.Background())
		assert.False(t, ok)
		assert.Nil(t, claims)
	})

	t.Run("returns false for wrong value type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), claimsCtxKey, "not-claims")

		claims, ok := GetClaims(ctx)
		assert.False(t, ok)
		assert.Nil(t, claims)
	})
}

func TestCan(t *testing.T) {
	t.Run("role hierarchy", func(t *testing.T) {
		tests := []struct {
			role                 string
			canRead, canEdit     bool
			canCreate, canDelete bool
		}{
			{"guest", true, false, false, false},
			{"member", true, true, false, false},
			{"admin", true, true, true, false},
			{"owner", true, true, true, true},
		}

		for _, tt := range tests {
			t.Run(tt.role, func(t *testing.T) {
				ctx := WithClaimsContext(context.Background(), claimsWithRole(tt.role))

				assert.Equal(t, tt.canRead, Can(ctx, "orders", "read"))
				assert.Equal(t, tt.canEdit, Can(ctx, "orders", "edit"))
				assert.Equal(t, tt.canCreate, Can(ctx, "orders", "create"))
				assert.Equal(t, tt.canDelete, Can(ctx, "orders", "delete"))
			})
		}
	})

	t.Run("resource role overrides global role", func(t *testing.T) {
		claims := claimsWithRole("guest")
		claims.Resources = map[string]string{"reviews": "admin"}
		ctx := WithClaimsContext(context.Background(), claims)

		assert.True(t, Can(ctx, "reviews", "create"))
		assert.False(t, Can(ctx, "catalog", "create"))
	})

	t.Run("unknown permission is denied", func(t *testing.T) {
		ctx := WithClaimsContext(context.Background(), claimsWithRole("owner"))

		assert.False(t, Can(ctx, "orders", "publish"))
		assert.False(t, Can(ctx, "orders", ""))
	})

	t.Run("missing claims deny everything", func(t *testing.T) {
		assert.False(t, Can(context.Background(), "orders", "read"))
	})
}

func TestGetRouterClaims(t *testing.T) {
	t.Run("default key", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = claimsWithRole("admin")

		claims, ok := GetRouterClaims(ctx, "")
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("custom key", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["session-claims"] = claimsWithRole("member")

		claims, ok := GetRouterClaims(ctx, "session-claims")
		assert.True(t, ok)
		assert.Equal(t, "member", claims.Role())
	})

	t.Run("missing key", func(t *testing.T) {
		claims, ok := GetRouterClaims(router.NewMockContext(), "user")
		assert.False(t, ok)
		assert.Nil(t, claims)
	})

	t.Run("wrong value type", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = "not-claims"

		claims, ok := GetRouterClaims(ctx, "user")
		assert.False(t, ok)
		assert.Nil(t, claims)
	})
}

func TestCanFromRouter(t *testing.T) {
	t.Run("admin can read", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = claimsWithRole("admin")

		assert.True(t, CanFromRouter(ctx, "catalog", "read"))
	})

	t.Run("guest cannot create", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = claimsWithRole("guest")

		assert.False(t, CanFromRouter(ctx, "catalog", "create"))
	})

	t.Run("missing claims deny", func(t *testing.T) {
		assert.False(t, CanFromRouter(router.NewMockContext(), "catalog", "read"))
	})
}

func TestWithClaimsContext(t *testing.T) {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UID:      "user-123",
		UserRole: "admin",
		Resources: map[string]string{
			"orders":  "owner",
			"reviews": "member",
		},
	}

	ctx := WithClaimsContext(context.Background(), claims)

	got, ok := GetClaims(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-123", got.Subject())
	assert.True(t, got.CanDelete("orders"))
	assert.True(t, got.CanEdit("reviews"))
	assert.False(t, got.CanDelete("reviews"))

	// the original context stays untouched
	_, ok = GetClaims(context.Background())
	assert.False(t, ok)
}
