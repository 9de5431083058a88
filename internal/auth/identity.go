package auth

import "strings"

// OAuthIdentity represents user information obtained from an OAuth provider.
type OAuthIdentity struct {
	Email      string
	Name       *string
	AvatarURL  *string
	ProviderID string
}

// DisplayName returns the provider name, or the local part of the email
// when the provider sent none.
func (i OAuthIdentity) DisplayName() string {
	if i.Name != nil && strings.TrimSpace(*i.Name) != "" {
		return strings.TrimSpace(*i.Name)
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}
