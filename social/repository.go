package social

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// SocialAccount represents a linked social provider identity. The pair
// (provider, provider_user_id) is unique, as is (user_id, provider).
type SocialAccount struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Provider       string         `json:"provider"`
	ProviderUserID string         `json:"provider_user_id"`
	Email          string         `json:"email,omitempty"`
	Name           string         `json:"name,omitempty"`
	Username       string         `json:"username,omitempty"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
	ProfileData    map[string]any `json:"profile_data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SocialAccountRepository manages social account persistence. Tx
// variants run against the given transaction so account linking and
// user creation commit together.
type SocialAccountRepository interface {
	FindByProviderID(ctx context.Context, provider, providerUserID string) (*SocialAccount, error)
	FindByProviderIDTx(ctx context.Context, tx bun.IDB, provider, providerUserID string) (*SocialAccount, error)
	FindByUserID(ctx context.Context, userID string) ([]*SocialAccount, error)
	Upsert(ctx context.Context, account *SocialAccount) error
	UpsertTx(ctx context.Context, tx bun.IDB, account *SocialAccount) error
	DeleteByUserAndProvider(ctx context.Context, userID, provider string) error
}
