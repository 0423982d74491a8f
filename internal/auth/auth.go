package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	ValidateAccessToken(token string) (*jwt.Token, error)
}
