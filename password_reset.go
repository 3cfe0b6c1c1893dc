package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// PasswordResetRequestMessage asks for a new reset code
type PasswordResetRequestMessage struct {
	Email     string `json:"email"`
	IPAddress string `json:"-"`
}

func (e PasswordResetRequestMessage) Type() string { return "password.reset.request" }

// PasswordResetConfirmMessage redeems a code and sets a new password
type PasswordResetConfirmMessage struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"new_password"`
}

func (e PasswordResetConfirmMessage) Type() string { return "password.reset.confirm" }

// CodeSender delivers a reset code out of band, e.g. email or SMS.
type CodeSender interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// CodeSenderFunc adapts a function into a CodeSender.
type CodeSenderFunc func(ctx context.Context, email, code string) error

func (f CodeSenderFunc) SendResetCode(ctx context.Context, email, code string) error {
	if f == nil {
		return nil
	}
	return f(ctx, email, code)
}

// PasswordResetHandler issues and redeems reset codes
type PasswordResetHandler struct {
	repo   RepositoryManager
	sender CodeSender
	logger Logger
}

func NewPasswordResetHandler(repo RepositoryManager) *PasswordResetHandler {
	return &PasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *PasswordResetHandler) WithLogger(l Logger) *PasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *PasswordResetHandler) WithSender(s CodeSender) *PasswordResetHandler {
	h.sender = s
	return h
}

// Request issues a fresh code for the account, invalidating prior ones.
// Unknown emails succeed silently so the endpoint cannot be used to probe
// for accounts.
func (h *PasswordResetHandler) Request(ctx context.Context, event PasswordResetRequestMessage) error {
	user, err := h.repo.Users().GetByIdentifier(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			h.logger.Info("password reset requested for unknown email")
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account for reset")
	}

	code, err := generateResetCode()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset code")
	}

	reset := &PasswordReset{
		UserID:    &user.ID,
		Email:     user.Email,
		Code:      code,
		IPAddress: event.IPAddress,
		ExpiresAt: time.Now().Add(ResetCodeTTL),
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.PasswordResets().InvalidatePendingTx(ctx, tx, user.Email); err != nil {
			return err
		}
		_, err := h.repo.PasswordResets().CreateTx(ctx, tx, reset)
		return err
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset code")
	}

	if h.sender != nil {
		if err := h.sender.SendResetCode(ctx, user.Email, code); err != nil {
			h.logger.Error("failed to deliver reset code: %v", err)
		}
	}

	return nil
}

// Confirm redeems a code and replaces the password hash in one transaction
func (h *PasswordResetHandler) Confirm(ctx context.Context, event PasswordResetConfirmMessage) error {
	if err := ValidatePasswordStrength(event.Password); err != nil {
		return err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reset, err := h.repo.PasswordResets().FindRedeemableTx(ctx, tx, event.Email, event.Code)
		if err != nil {
			if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
				return ErrResetCodeInvalid
			}
			return err
		}

		if reset.UserID == nil {
			return ErrResetCodeInvalid
		}

		if err := h.repo.PasswordResets().MarkUsedTx(ctx, tx, reset.ID); err != nil {
			return err
		}

		return h.repo.Users().ResetPasswordTx(ctx, tx, *reset.UserID, hash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	return nil
}

// generateResetCode returns a 6 digit zero-padded code
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
