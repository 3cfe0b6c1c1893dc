package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeIdentityNotFound  = "auth_identity_not_found"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeTokenWrongUse     = "auth_token_wrong_use"
	TextCodePasswordMismatch  = "auth_password_mismatch"
	TextCodeTooManyAttempts   = "auth_too_many_attempts"
	TextCodeAccountDisabled   = "auth_account_disabled"
	TextCodeEmptyPassword     = "auth_empty_password"
	TextCodeWeakPassword      = "auth_weak_password"
	TextCodeInvalidPhone      = "auth_invalid_phone"
	TextCodeDuplicateAccount  = "auth_duplicate_account"
	TextCodeResetCodeInvalid  = "auth_reset_code_invalid"
	TextCodeUnableToReadToken = "auth_unable_to_read_token"
	TextCodeImmutableClaim    = "auth_immutable_claim_mutation"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenExpired is returned when a JWT is past its expiration
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a JWT cannot be parsed or verified
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenWrongUse is returned when a token of the wrong class is presented,
// e.g. an access token sent to the refresh endpoint
var ErrTokenWrongUse = errors.New("token has wrong use claim", errors.CategoryAuth).
	WithTextCode(TextCodeTokenWrongUse).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeClaims unable to get structured claims from token
var ErrUnableToDecodeClaims = errors.New("unable to decode claims", errors.CategoryAuth).
	WithTextCode(TextCodeUnableToReadToken).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is returned for any credential mismatch,
// including unknown identifiers, so callers cannot probe for accounts
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned when a user is in the cooldown window
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrAccountDisabled is returned for deactivated users
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrWeakPassword is returned when a password fails strength rules
var ErrWeakPassword = errors.New("password must be at least 8 characters and contain upper and lower case letters", errors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(errors.CodeBadRequest)

// ErrInvalidPhone is returned when a phone number cannot be normalized
var ErrInvalidPhone = errors.New("invalid phone number", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidPhone).
	WithCode(errors.CodeBadRequest)

// ErrDuplicateAccount is returned when registration hits an existing email,
// username, or phone
var ErrDuplicateAccount = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(errors.CodeConflict)

// ErrImmutableClaimMutation is returned when a claims decorator touches
// a registered or identity claim
var ErrImmutableClaimMutation = errors.New("immutable claim mutated", errors.CategoryInternal).
	WithTextCode(TextCodeImmutableClaim).
	WithCode(errors.CodeInternal)

// ErrResetCodeInvalid is returned for unknown, used, or expired reset codes
var ErrResetCodeInvalid = errors.New("reset code is invalid or expired", errors.CategoryAuth).
	WithTextCode(TextCodeResetCodeInvalid).
	WithCode(errors.CodeBadRequest)

// HasTextCode reports whether err carries the given structured text
// code. Clones and wrapped errors keep their text code, so this works
// where pointer identity does not.
func HasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich != nil {
		return rich.TextCode == textCode
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
