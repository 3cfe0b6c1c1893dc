package social

import (
	"context"
)

// SocialProvider verifies provider-issued access tokens and returns the
// profile they belong to.
type SocialProvider interface {
	// Name returns the provider identifier (e.g., "google", "facebook").
	Name() string

	// VerifyToken checks the access token against the provider and
	// fetches the associated profile.
	VerifyToken(ctx context.Context, accessToken string) (*SocialProfile, error)
}

// SocialProfile represents normalized user information from a social provider.
type SocialProfile struct {
	ProviderUserID string
	Provider       string
	Email          string
	EmailVerified  bool
	Name           string
	FirstName      string
	LastName       string
	Username       string
	AvatarURL      string
	Raw            map[string]any
}

// DisplayName returns the best available label for the profile.
func (p *SocialProfile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	if p.FirstName != "" {
		if p.LastName != "" {
			return p.FirstName + " " + p.LastName
		}
		return p.FirstName
	}
	return p.Username
}
