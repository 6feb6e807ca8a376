// Package auth issues and validates the access tokens used by the parent
// dashboard. Device endpoints under /api/v1/voice stay token-free; everything
// that reads or edits a child's data requires a parent token.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the iss claim stamped on every token we sign.
	Issuer = "buddy"
	// AccessTokenDuration is how long a parent dashboard token stays valid.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// ClaimsMessage carries the parent identity inside the token.
type ClaimsMessage struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for the given parent user.
func GenerateAccessToken(userID int32, username string, expirationTime time.Time, secret []byte) (string, error) {
	claims := &ClaimsMessage{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken parses and verifies a token, returning its claims.
func ValidateAccessToken(tokenString string, secret []byte) (*ClaimsMessage, error) {
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
