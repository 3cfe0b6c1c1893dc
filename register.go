package auth

import (
	"context"
	"strings"
	"time"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// DefaultPhoneRegion is the region used to parse national phone numbers.
var DefaultPhoneRegion = "GH"

// RegisterUserMessage carries a new account request
type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates users inside a transaction
type RegisterUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

// Execute validates the request and creates the user record
func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	if err := ValidatePasswordStrength(event.Password); err != nil {
		return nil, err
	}

	phone := ""
	if event.Phone != "" {
		normalized, err := NormalizePhone(event.Phone, DefaultPhoneRegion)
		if err != nil {
			return nil, err
		}
		phone = normalized
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Phone = phone
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.Role = UserRole(event.Role)
		user.Username = getUsername(event.Username, event.Email)
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, ErrDuplicateAccount.Message).
				WithTextCode(ErrDuplicateAccount.TextCode).
				WithCode(goerrors.CodeConflict)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.logger.Info("registered user %s", user.ID)

	return user, nil
}

// ValidatePasswordStrength enforces minimum length plus upper and lower
// case characters.
func ValidatePasswordStrength(password string) error {
	if password == "" {
		return ErrNoEmptyString
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	if !hasUpper || !hasLower {
		return ErrWeakPassword
	}

	return nil
}

// NormalizePhone parses a phone number and returns it in E.164 form.
// Bare national numbers are parsed against the given region.
func NormalizePhone(phone, region string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), region)
	if err != nil {
		return "", ErrInvalidPhone.Clone().WithMetadata(map[string]any{"phone": phone})
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone.Clone().WithMetadata(map[string]any{"phone": phone})
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
