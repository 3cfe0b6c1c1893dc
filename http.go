package auth

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/shopwice/auth-service/middleware/jwtware"
)

// ProtectedRoute builds a bearer-token middleware wired to the given config
// and validator. Claims end up under cfg.GetContextKey() in router locals and
// in the standard context via the enricher.
func ProtectedRoute(cfg Config, validator TokenValidator, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = DefaultAuthErrorHandler
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:  cfg.GetAuthScheme(),
		ContextKey:  cfg.GetContextKey(),
		TokenLookup: cfg.GetTokenLookup(),
		TokenValidator: jwtware.TokenValidatorFunc(func(tokenString string) (jwtware.AuthClaims, error) {
			claims, err := validator.Validate(tokenString)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ContextEnricher: ContextEnricherAdapter,
	})
}

// DefaultAuthErrorHandler renders auth failures as JSON with the same detail
// shape token-refresh errors use.
func DefaultAuthErrorHandler(c router.Context, err error) error {
	if IsMalformedError(err) || IsTokenExpiredError(err) {
		return c.JSON(router.StatusUnauthorized, map[string]any{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		status := richErr.Code
		if status == 0 {
			status = router.StatusUnauthorized
		}
		return c.JSON(status, map[string]any{
			"detail": richErr.Message,
			"code":   richErr.TextCode,
		})
	}

	return c.JSON(router.StatusUnauthorized, map[string]any{
		"detail": "Authentication credentials were not provided or are invalid",
	})
}
