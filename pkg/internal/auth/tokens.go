package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the identity provider's ID token this service
// consumes. The provider signs with RS256; nothing else is accepted.
type Claims struct {
	jwt.RegisteredClaims

	Name          string `json:"name"`
	Email         string `json:"email"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

type TokenReader struct {
	key *rsa.PublicKey
}

func NewTokenReader(keyPath string) (*TokenReader, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read identity provider public key: %v", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to parse identity provider public key: %v", err)
	}
	return &TokenReader{key: key}, nil
}

func (v *TokenReader) ReadToken(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return v.key, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
