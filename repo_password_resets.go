package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResets manages single-use reset codes
type PasswordResets interface {
	repository.Repository[*PasswordReset]

	FindRedeemable(ctx context.Context, email, code string) (*PasswordReset, error)
	FindRedeemableTx(ctx context.Context, tx bun.IDB, email, code string) (*PasswordReset, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	InvalidatePending(ctx context.Context, email string) error
	InvalidatePendingTx(ctx context.Context, tx bun.IDB, email string) error
}

type passwordResets struct {
	repository.Repository[*PasswordReset]
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return &passwordResets{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *passwordResets) FindRedeemable(ctx context.Context, email, code string) (*PasswordReset, error) {
	return r.FindRedeemableTx(ctx, r.db, email, code)
}

func (r *passwordResets) FindRedeemableTx(ctx context.Context, tx bun.IDB, email, code string) (*PasswordReset, error) {
	record := &PasswordReset{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.is_used = ?", false).
		Where("?TableAlias.expires_at > ?", time.Now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

func (r *passwordResets) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.MarkUsedTx(ctx, r.db, id)
}

func (r *passwordResets) MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewUpdate().
		Model((*PasswordReset)(nil)).
		Set("is_used = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *passwordResets) InvalidatePending(ctx context.Context, email string) error {
	return r.InvalidatePendingTx(ctx, r.db, email)
}

// InvalidatePendingTx marks every outstanding code for the email as used so
// only the most recently requested code can be redeemed.
func (r *passwordResets) InvalidatePendingTx(ctx context.Context, tx bun.IDB, email string) error {
	_, err := tx.NewUpdate().
		Model((*PasswordReset)(nil)).
		Set("is_used = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("email = ?", email).
		Where("is_used = ?", false).
		Exec(ctx)
	return err
}
