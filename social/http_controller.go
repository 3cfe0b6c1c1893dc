package social

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/shopwice/auth-service"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController handles social login HTTP routes.
type HTTPController struct {
	authenticator *SocialAuthenticator
	tokenService  auth.TokenService
	logger        auth.Logger
}

// NewHTTPController creates a new social login HTTP controller.
func NewHTTPController(authenticator *SocialAuthenticator, tokenService auth.TokenService, logger auth.Logger) *HTTPController {
	if logger == nil {
		logger = noopLogger{}
	}
	return &HTTPController{
		authenticator: authenticator,
		tokenService:  tokenService,
		logger:        logger,
	}
}

// RegisterRoutes registers the social login routes on the group.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/", c.Discovery)
	// refresh has to register before the provider wildcard
	group.Post("/token/refresh/", c.RefreshToken)
	group.Post("/:provider/", c.Login)
}

// loginUser is the user payload nested in a successful login response.
type loginUser struct {
	PK        string `json:"pk"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         loginUser `json:"user"`
}

type fieldErrorsResponse struct {
	NonFieldErrors []string `json:"non_field_errors"`
}

// LoginRequest carries the provider-issued access token.
type LoginRequest struct {
	AccessToken string `json:"access_token"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccessToken, validation.Required),
	)
}

// Discovery describes the available login endpoints.
func (c *HTTPController) Discovery(ctx router.Context) error {
	methods := map[string]any{}
	for _, name := range c.authenticator.Providers() {
		methods[name] = map[string]any{
			"endpoint":        "/api/v1/auth/" + name + "/",
			"method":          "POST",
			"required_fields": []string{"access_token"},
		}
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Shopwice Authentication API",
		"methods": methods,
	})
}

// Login exchanges a provider access token for a session token pair,
// creating the local account on first login.
func (c *HTTPController) Login(ctx router.Context) error {
	providerName := ctx.Param("provider")

	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return nonFieldErrors(ctx, "Unable to parse request body.")
	}

	// reject malformed payloads before any provider call
	if err := payload.Validate(); err != nil {
		return nonFieldErrors(ctx, "Missing required field: access_token.")
	}

	result, err := c.authenticator.Authenticate(ctx.Context(), providerName, payload.AccessToken)
	if err != nil {
		return c.loginError(ctx, providerName, err)
	}

	return ctx.JSON(router.StatusOK, loginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User: loginUser{
			PK:        result.User.ID.String(),
			Username:  result.User.Username,
			Email:     result.User.Email,
			FirstName: result.User.FirstName,
			LastName:  result.User.LastName,
		},
	})
}

// RefreshRequest carries the refresh token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Refresh, validation.Required),
	)
}

// RefreshToken mints a fresh access token from a refresh token.
func (c *HTTPController) RefreshToken(ctx router.Context) error {
	payload := new(RefreshRequest)
	if err := ctx.Bind(payload); err != nil {
		return nonFieldErrors(ctx, "Unable to parse request body.")
	}

	if err := payload.Validate(); err != nil {
		return nonFieldErrors(ctx, "Missing required field: refresh.")
	}

	access, err := c.tokenService.Refresh(payload.Refresh)
	if err != nil {
		c.logger.Error("token refresh: %s", err)
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"access": access,
	})
}

// loginError maps authentication failures to the wire format: provider
// rejections and linking policy failures come back as a generic 400,
// unreachable providers as 503, anything else as 500.
func (c *HTTPController) loginError(ctx router.Context, providerName string, err error) error {
	c.logger.Error("social login %s: %s", providerName, err)

	switch {
	case auth.HasTextCode(err, TextCodeProviderNotFound):
		return ctx.JSON(fiber.StatusNotFound, map[string]string{
			"detail": "Not found.",
		})
	case auth.HasTextCode(err, TextCodeProviderUnavailable):
		return ctx.JSON(fiber.StatusServiceUnavailable, map[string]string{
			"detail": "Authentication provider is unavailable.",
		})
	case auth.HasTextCode(err, TextCodeTokenRejected),
		auth.HasTextCode(err, TextCodeEmailNotVerified),
		auth.HasTextCode(err, TextCodeEmailRequired),
		auth.HasTextCode(err, TextCodeSignupDisabled),
		auth.HasTextCode(err, TextCodeLinkingDisabled):
		return nonFieldErrors(ctx, "Incorrect value")
	case auth.HasTextCode(err, auth.TextCodeAccountDisabled):
		return nonFieldErrors(ctx, "User account is disabled.")
	default:
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"detail": "Internal server error.",
		})
	}
}

func nonFieldErrors(ctx router.Context, messages ...string) error {
	return ctx.JSON(router.StatusBadRequest, fieldErrorsResponse{
		NonFieldErrors: messages,
	})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
