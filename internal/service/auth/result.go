package auth

import "github.com/bluebuchu/collect-sub000/internal/domain"

// AuthResult is returned by every operation that signs a user in.
type AuthResult struct {
	User  *domain.User
	Token string
}
