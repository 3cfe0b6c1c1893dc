package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAccountRoutes mounts the account endpoints on the given router
// group. The me route is wrapped with the provided protected middleware.
func RegisterAccountRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...AccountControllerOption) {

	controller := NewAccountController(opts...)

	app.Get(controller.Routes.Health, controller.Health).
		SetName("account.health")

	app.Post(controller.Routes.Register, controller.Register).
		SetName("account.register")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("account.login")

	app.Get(controller.Routes.Me, controller.Me, protected).
		SetName("account.me")

	app.Post(controller.Routes.PasswordResetRequest, controller.PasswordResetRequest).
		SetName("account.pwd-reset-request")

	app.Post(controller.Routes.PasswordResetConfirm, controller.PasswordResetConfirm).
		SetName("account.pwd-reset-confirm")
}

type AccountControllerRoutes struct {
	Health               string
	Register             string
	Login                string
	Me                   string
	PasswordResetRequest string
	PasswordResetConfirm string
}

type AccountController struct {
	Debug      bool
	Logger     Logger
	Repo       RepositoryManager
	Routes     *AccountControllerRoutes
	Tokens     TokenService
	Identities IdentityProvider
	Sender     CodeSender
	Activity   ActivitySink
	ContextKey string
}

type AccountControllerOption func(*AccountController) *AccountController

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:     defLogger{},
		ContextKey: "user",
		Activity:   noopActivitySink{},
		Routes: &AccountControllerRoutes{
			Health:               "/health/",
			Register:             "/register/",
			Login:                "/login/",
			Me:                   "/me/",
			PasswordResetRequest: "/password-reset/request/",
			PasswordResetConfirm: "/password-reset/confirm/",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in account controller...")
	}

	if c.Identities == nil {
		panic("Missing IdentityProvider in account controller...")
	}

	return c
}

func WithAccountLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Logger = logger
		return c
	}
}

func WithAccountRepository(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

func WithAccountTokenService(tokens TokenService) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Tokens = tokens
		return c
	}
}

func WithAccountIdentityProvider(identities IdentityProvider) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Identities = identities
		return c
	}
}

func WithAccountCodeSender(sender CodeSender) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Sender = sender
		return c
	}
}

// WithAccountActivitySink sets the sink used to emit account audit events.
func WithAccountActivitySink(sink ActivitySink) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Activity = normalizeActivitySink(sink)
		return c
	}
}

func WithAccountContextKey(key string) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.ContextKey = key
		return c
	}
}

func WithAccountDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

type tokenEnvelope struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type accountEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Tokens  *tokenEnvelope `json:"tokens,omitempty"`
}

type accountErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

type accountData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (a *AccountController) Health(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, accountEnvelope{
		Success: true,
		Message: "service is healthy",
	})
}

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(9, 15)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AccountController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload: %s", err)
		return badPayloadResponse(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: %s", err)
		return validationResponse(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER =======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
	}

	registerUser := NewRegisterUserHandler(a.Repo).WithLogger(a.Logger)
	user, err := registerUser.Execute(ctx.Context(), req)
	if err != nil {
		a.Logger.Error("register user execute: %s", err)
		return a.errorResponse(ctx, err)
	}

	tokens, err := a.Tokens.GeneratePair(NewIdentityFromUser(user))
	if err != nil {
		a.Logger.Error("register user tokens: %s", err)
		return a.errorResponse(ctx, err)
	}

	RecordActivity(ctx.Context(), a.Activity, a.Logger, ActivityEvent{
		EventType: ActivityEventRegister,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	return ctx.JSON(fiber.StatusCreated, accountEnvelope{
		Success: true,
		Message: "account created",
		Data: accountData{
			UserID:   user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName(),
		},
		Tokens: &tokenEnvelope{
			Refresh: tokens.RefreshToken,
			Access:  tokens.AccessToken,
		},
	})
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AccountController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return badPayloadResponse(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return validationResponse(ctx, err)
	}

	identity, err := a.Identities.VerifyIdentity(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login verify identity: %s", err)
		RecordActivity(ctx.Context(), a.Activity, a.Logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Email:     payload.Email,
		})
		return a.errorResponse(ctx, err)
	}

	tokens, err := a.Tokens.GeneratePair(identity)
	if err != nil {
		a.Logger.Error("login tokens: %s", err)
		return a.errorResponse(ctx, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), identity.ID())
	if err != nil {
		a.Logger.Error("login load user: %s", err)
		return a.errorResponse(ctx, err)
	}

	RecordActivity(ctx.Context(), a.Activity, a.Logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	return ctx.JSON(router.StatusOK, accountEnvelope{
		Success: true,
		Message: "login successful",
		Data: accountData{
			UserID:   user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName(),
		},
		Tokens: &tokenEnvelope{
			Refresh: tokens.RefreshToken,
			Access:  tokens.AccessToken,
		},
	})
}

func (a *AccountController) Me(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.errorResponse(ctx, ErrUnableToDecodeClaims)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), claims.Subject())
	if err != nil {
		a.Logger.Error("me load user: %s", err)
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, accountEnvelope{
		Success: true,
		Message: "profile",
		Data: accountData{
			UserID:   user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName(),
		},
	})
}

// PasswordResetRequestPayload holds values for the reset request
type PasswordResetRequestPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AccountController) PasswordResetRequest(ctx router.Context) error {
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload: %s", err)
		return badPayloadResponse(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return validationResponse(ctx, err)
	}

	handler := NewPasswordResetHandler(a.Repo).WithLogger(a.Logger)
	if a.Sender != nil {
		handler = handler.WithSender(a.Sender)
	}

	req := PasswordResetRequestMessage{
		Email:     payload.Email,
		IPAddress: ctx.GetString("X-Forwarded-For", ""),
	}

	if err := handler.Request(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset request: %s", err)
		return a.errorResponse(ctx, err)
	}

	// same response whether or not the email exists
	return ctx.JSON(router.StatusOK, accountEnvelope{
		Success: true,
		Message: "if the email is registered, a reset code has been sent",
	})
}

// PasswordResetConfirmPayload holds values for the reset confirmation
type PasswordResetConfirmPayload struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r PasswordResetConfirmPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AccountController) PasswordResetConfirm(ctx router.Context) error {
	payload := new(PasswordResetConfirmPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset confirm parse payload: %s", err)
		return badPayloadResponse(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return validationResponse(ctx, err)
	}

	handler := NewPasswordResetHandler(a.Repo).WithLogger(a.Logger)

	req := PasswordResetConfirmMessage{
		Email:    payload.Email,
		Code:     payload.Code,
		Password: payload.Password,
	}

	if err := handler.Confirm(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset confirm: %s", err)
		return a.errorResponse(ctx, err)
	}

	RecordActivity(ctx.Context(), a.Activity, a.Logger, ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		Email:     payload.Email,
	})

	return ctx.JSON(router.StatusOK, accountEnvelope{
		Success: true,
		Message: "password has been reset",
	})
}

func badPayloadResponse(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, accountErrorEnvelope{
		Success: false,
		Message: "failed to parse request body",
		Errors:  map[string]string{"body": err.Error()},
	})
}

func validationResponse(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, accountErrorEnvelope{
		Success: false,
		Message: "validation failed",
		Errors:  FormatValidationErrorToMap(err),
	})
}

func (a *AccountController) errorResponse(ctx router.Context, err error) error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status := statusFromErrorCode(rich.Code)
		if rich.Category == goerrors.CategoryRateLimit {
			status = fiber.StatusTooManyRequests
		}
		return ctx.JSON(status, accountErrorEnvelope{
			Success: false,
			Message: rich.Message,
			Errors:  map[string]string{"code": rich.TextCode},
		})
	}

	return ctx.JSON(router.StatusInternalServerError, accountErrorEnvelope{
		Success: false,
		Message: "internal server error",
	})
}

func statusFromErrorCode(code int) int {
	switch code {
	case goerrors.CodeBadRequest:
		return router.StatusBadRequest
	case goerrors.CodeUnauthorized:
		return router.StatusUnauthorized
	case goerrors.CodeForbidden:
		return router.StatusForbidden
	case goerrors.CodeNotFound:
		return fiber.StatusNotFound
	case goerrors.CodeConflict:
		return fiber.StatusConflict
	default:
		return router.StatusInternalServerError
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors to a
// field to message map
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}
	out["non_field_errors"] = err.Error()
	return out
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("values must match")
		}
		return nil
	}
}
