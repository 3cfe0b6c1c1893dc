package social

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/shopwice/auth-service"
	"github.com/uptrace/bun"
)

// LinkingStrategy determines how social profiles are resolved to users.
type LinkingStrategy interface {
	ResolveUser(ctx context.Context, lc LinkingContext) (*LinkingResult, error)
}

// LinkingContext provides the collaborators for a single resolution.
// Tx is the transaction the whole social login runs in.
type LinkingContext struct {
	Profile     *SocialProfile
	Tx          bun.IDB
	AccountRepo SocialAccountRepository
	UserRepo    auth.Users
}

// LinkingResult contains the resolved user and metadata.
type LinkingResult struct {
	User      *auth.User
	IsNewUser bool
	Linked    bool
}

// DefaultLinkingStrategy resolves in three steps: existing identity by
// (provider, subject), then an existing user by email, then signup.
type DefaultLinkingStrategy struct {
	AllowSignup          bool
	AllowLinking         bool
	RequireEmailVerified bool
	DefaultRole          string
}

// ResolveUser implements LinkingStrategy.
func (s *DefaultLinkingStrategy) ResolveUser(ctx context.Context, lc LinkingContext) (*LinkingResult, error) {
	if lc.Profile == nil {
		return nil, ErrTokenRejected
	}
	if lc.AccountRepo == nil || lc.UserRepo == nil || lc.Tx == nil {
		return nil, ErrLinkingNotAllowed
	}

	profile := lc.Profile

	if profile.Email == "" {
		return nil, ErrEmailRequired
	}
	if s.RequireEmailVerified && !profile.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	existing, err := lc.AccountRepo.FindByProviderIDTx(ctx, lc.Tx, profile.Provider, profile.ProviderUserID)
	if err == nil && existing != nil {
		user, err := lc.UserRepo.GetByIdentifierTx(ctx, lc.Tx, existing.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find linked user: %w", err)
		}
		return &LinkingResult{User: user, IsNewUser: false}, nil
	}
	if err != nil && !repository.IsRecordNotFound(err) && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find linked account: %w", err)
	}

	user, err := lc.UserRepo.GetByIdentifierTx(ctx, lc.Tx, profile.Email)
	if err == nil && user != nil {
		if !s.AllowLinking {
			return nil, ErrLinkingNotAllowed
		}
		return &LinkingResult{User: user, IsNewUser: false, Linked: true}, nil
	}
	if err != nil && !repository.IsRecordNotFound(err) && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !s.AllowSignup {
		return nil, ErrSignupNotAllowed
	}

	created, err := lc.UserRepo.CreateTx(ctx, lc.Tx, s.createUserFromProfile(profile))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAccountConflict.Clone().WithMetadata(map[string]any{
				"provider": profile.Provider,
				"email":    profile.Email,
			})
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &LinkingResult{User: created, IsNewUser: true, Linked: true}, nil
}

func (s *DefaultLinkingStrategy) createUserFromProfile(profile *SocialProfile) *auth.User {
	role := auth.RoleMember
	if s.DefaultRole != "" {
		if parsed, ok := auth.ParseRole(s.DefaultRole); ok {
			role = parsed
		}
	}

	user := &auth.User{
		Email:           profile.Email,
		EmailValidated:  profile.EmailVerified,
		Role:            role,
		IsActive:        true,
		ProfilePicture:  profile.AvatarURL,
		Metadata: map[string]any{
			"social_provider": profile.Provider,
		},
	}

	if profile.FirstName != "" {
		user.FirstName = profile.FirstName
		user.LastName = profile.LastName
	} else if profile.Name != "" {
		parts := strings.SplitN(profile.Name, " ", 2)
		user.FirstName = parts[0]
		if len(parts) > 1 {
			user.LastName = parts[1]
		}
	}

	if profile.Username != "" {
		user.Username = profile.Username
	} else if profile.Email != "" {
		user.Username = strings.Split(profile.Email, "@")[0]
	} else {
		user.Username = fmt.Sprintf("%s_%s", profile.Provider, profile.ProviderUserID)
	}

	return user
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
