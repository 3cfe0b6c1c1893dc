package social

import "github.com/goliatone/go-errors"

const (
	TextCodeProviderNotFound    = "social_provider_not_found"
	TextCodeTokenRejected       = "social_token_rejected"
	TextCodeProviderUnavailable = "social_provider_unavailable"
	TextCodeEmailNotVerified    = "social_email_not_verified"
	TextCodeEmailRequired       = "social_email_required"
	TextCodeAccountConflict     = "social_account_conflict"
	TextCodeSignupDisabled      = "social_signup_disabled"
	TextCodeLinkingDisabled     = "social_linking_disabled"
)

// ErrProviderNotFound is returned when a requested provider is not configured.
var ErrProviderNotFound = errors.New("social provider not found", errors.CategoryNotFound).
	WithTextCode(TextCodeProviderNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenRejected is returned when the provider rejects the access token.
// The message is intentionally generic, provider details go in metadata.
var ErrTokenRejected = errors.New("Incorrect value", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRejected).
	WithCode(errors.CodeBadRequest)

// ErrProviderUnavailable is returned when the provider could not be reached.
var ErrProviderUnavailable = errors.New("provider unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeProviderUnavailable)

// ErrEmailNotVerified is returned when a provider email is not verified.
var ErrEmailNotVerified = errors.New("email not verified", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeBadRequest)

// ErrEmailRequired is returned when the provider profile carries no email.
var ErrEmailRequired = errors.New("email address required", errors.CategoryAuth).
	WithTextCode(TextCodeEmailRequired).
	WithCode(errors.CodeBadRequest)

// ErrAccountConflict is returned when linking keeps hitting unique
// constraint violations after a retry.
var ErrAccountConflict = errors.New("social account conflict", errors.CategoryConflict).
	WithTextCode(TextCodeAccountConflict).
	WithCode(errors.CodeConflict)

// ErrSignupNotAllowed is returned when signup is disabled.
var ErrSignupNotAllowed = errors.New("signup not allowed", errors.CategoryAuth).
	WithTextCode(TextCodeSignupDisabled).
	WithCode(errors.CodeForbidden)

// ErrLinkingNotAllowed is returned when account linking is disabled.
var ErrLinkingNotAllowed = errors.New("linking not allowed", errors.CategoryAuth).
	WithTextCode(TextCodeLinkingDisabled).
	WithCode(errors.CodeForbidden)
