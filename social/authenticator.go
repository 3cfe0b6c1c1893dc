package social

import (
	"context"
	"fmt"
	"time"

	"github.com/shopwice/auth-service"
	"github.com/uptrace/bun"
)

// SocialAuthenticator orchestrates access token based social login:
// verify the token against the provider, resolve a local user, persist
// the identity link, and mint a session token pair. Resolution and
// linking run in a single transaction.
type SocialAuthenticator struct {
	providers       map[string]SocialProvider
	linkingStrategy LinkingStrategy
	accountRepo     SocialAccountRepository
	repo            auth.RepositoryManager
	tokenService    auth.TokenService
	logger          auth.Logger
	activity        auth.ActivitySink
	config          SocialAuthConfig
}

// SocialAuthConfig configures the social authenticator.
type SocialAuthConfig struct {
	AllowSignup          bool
	AllowLinking         bool
	RequireEmailVerified bool
	DefaultRole          string
	TxTimeout            time.Duration
}

// SocialAuthOption configures the social authenticator.
type SocialAuthOption func(*SocialAuthenticator)

// NewSocialAuthenticator creates a new social authenticator.
func NewSocialAuthenticator(
	repo auth.RepositoryManager,
	accountRepo SocialAccountRepository,
	tokenService auth.TokenService,
	config SocialAuthConfig,
	opts ...SocialAuthOption,
) *SocialAuthenticator {
	cfg := config
	if cfg.TxTimeout == 0 {
		cfg.TxTimeout = 10 * time.Second
	}

	sa := &SocialAuthenticator{
		providers:    make(map[string]SocialProvider),
		accountRepo:  accountRepo,
		repo:         repo,
		tokenService: tokenService,
		config:       cfg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sa)
		}
	}

	if sa.linkingStrategy == nil {
		sa.linkingStrategy = &DefaultLinkingStrategy{
			AllowSignup:          cfg.AllowSignup,
			AllowLinking:         cfg.AllowLinking,
			RequireEmailVerified: cfg.RequireEmailVerified,
			DefaultRole:          cfg.DefaultRole,
		}
	}

	return sa
}

// WithProvider registers a social provider.
func WithProvider(provider SocialProvider) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		if provider == nil {
			return
		}
		sa.providers[provider.Name()] = provider
	}
}

// WithLinkingStrategy sets a custom user linking strategy.
func WithLinkingStrategy(ls LinkingStrategy) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		sa.linkingStrategy = ls
	}
}

// WithLogger sets the logger.
func WithLogger(logger auth.Logger) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		sa.logger = logger
	}
}

// WithActivitySink sets the sink used to emit social login audit events.
func WithActivitySink(sink auth.ActivitySink) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		sa.activity = sink
	}
}

// AuthResult contains the result of a successful authentication.
type AuthResult struct {
	User      *auth.User
	Tokens    *auth.TokenPair
	IsNewUser bool
	Provider  string
	Profile   *SocialProfile
}

// Authenticate verifies the provider access token and logs the
// associated user in, creating the account on first sight. A unique
// constraint violation during linking gets one retry; the second pass
// finds the winning row and links against it.
func (sa *SocialAuthenticator) Authenticate(ctx context.Context, providerName, accessToken string) (*AuthResult, error) {
	provider, ok := sa.providers[providerName]
	if !ok {
		return nil, ErrProviderNotFound.Clone().WithMetadata(map[string]any{
			"provider": providerName,
		})
	}

	profile, err := provider.VerifyToken(ctx, accessToken)
	if err != nil {
		sa.logError("social verify %s: %s", providerName, err)
		return nil, classifyProviderError(providerName, err)
	}
	if profile == nil || profile.ProviderUserID == "" {
		return nil, wrapProviderError(ErrTokenRejected, providerName, "verify", fmt.Errorf("empty profile"))
	}
	profile.Provider = providerName

	result, err := sa.resolveAndLink(ctx, providerName, profile)
	if err != nil && auth.HasTextCode(err, TextCodeAccountConflict) {
		sa.logError("social link conflict %s, retrying: %s", providerName, err)
		result, err = sa.resolveAndLink(ctx, providerName, profile)
	}
	if err != nil {
		return nil, err
	}

	identity := auth.NewIdentityFromUser(result.User)
	if identity == nil {
		return nil, auth.ErrIdentityNotFound
	}
	if !result.User.IsActive {
		return nil, auth.ErrAccountDisabled.Clone().WithMetadata(map[string]any{
			"user_id": result.User.ID.String(),
		})
	}

	tokens, err := sa.tokenService.GeneratePair(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	auth.RecordActivity(ctx, sa.activity, sa.logger, auth.ActivityEvent{
		EventType: auth.ActivityEventSocialLogin,
		UserID:    result.User.ID.String(),
		Email:     result.User.Email,
		Provider:  providerName,
		Metadata: map[string]any{
			"is_new_user": result.IsNewUser,
		},
	})

	return &AuthResult{
		User:      result.User,
		Tokens:    tokens,
		IsNewUser: result.IsNewUser,
		Provider:  providerName,
		Profile:   profile,
	}, nil
}

func (sa *SocialAuthenticator) resolveAndLink(ctx context.Context, providerName string, profile *SocialProfile) (*LinkingResult, error) {
	if sa.linkingStrategy == nil || sa.accountRepo == nil || sa.repo == nil {
		return nil, ErrLinkingNotAllowed
	}

	ctx, cancel := context.WithTimeout(ctx, sa.config.TxTimeout)
	defer cancel()

	var result *LinkingResult
	err := sa.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		resolved, err := sa.linkingStrategy.ResolveUser(ctx, LinkingContext{
			Profile:     profile,
			Tx:          tx,
			AccountRepo: sa.accountRepo,
			UserRepo:    sa.repo.Users(),
		})
		if err != nil {
			return err
		}
		if resolved == nil || resolved.User == nil {
			return auth.ErrIdentityNotFound
		}

		account := &SocialAccount{
			UserID:         resolved.User.ID.String(),
			Provider:       providerName,
			ProviderUserID: profile.ProviderUserID,
			Email:          profile.Email,
			Name:           profile.DisplayName(),
			Username:       profile.Username,
			AvatarURL:      profile.AvatarURL,
			ProfileData:    profile.Raw,
		}
		if err := sa.accountRepo.UpsertTx(ctx, tx, account); err != nil {
			if isUniqueViolation(err) {
				return ErrAccountConflict.Clone().WithMetadata(map[string]any{
					"provider": providerName,
				})
			}
			return fmt.Errorf("failed to save social account: %w", err)
		}

		result = resolved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Providers returns the names of all registered providers.
func (sa *SocialAuthenticator) Providers() []string {
	names := make([]string, 0, len(sa.providers))
	for name := range sa.providers {
		names = append(names, name)
	}
	return names
}

func (sa *SocialAuthenticator) logError(format string, args ...any) {
	if sa.logger != nil {
		sa.logger.Error(format, args...)
	}
}
