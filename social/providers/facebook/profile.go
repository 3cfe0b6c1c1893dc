package facebook

import "github.com/shopwice/auth-service/social"

type facebookProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Picture   struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func mapProfile(p *facebookProfile) *social.SocialProfile {
	if p == nil {
		return nil
	}

	return &social.SocialProfile{
		ProviderUserID: p.ID,
		Provider:       "facebook",
		Email:          p.Email,
		// the graph api only returns emails it has confirmed
		EmailVerified: p.Email != "",
		Name:          p.Name,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		AvatarURL:     p.Picture.Data.URL,
		Raw: map[string]any{
			"id":         p.ID,
			"email":      p.Email,
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"name":       p.Name,
			"picture":    p.Picture.Data.URL,
		},
	}
}
