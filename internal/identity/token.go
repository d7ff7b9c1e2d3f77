package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a session token fails validation.
var ErrInvalidToken = errors.New("identity: invalid token")

// Claims is the JWT payload carried by session tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role   Role           `json:"role"`
	Status ApprovalStatus `json:"status"`
	Name   string         `json:"name,omitempty"`
}

// Sign issues an HMAC-signed session token for the actor.
func Sign(actor Actor, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("identity: signing secret required")
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:   actor.Role,
		Status: actor.Status,
		Name:   actor.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and reconstructs the actor.
func Parse(tokenString, secret string) (Actor, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return Actor{}, ErrInvalidToken
	}
	return Actor{ID: id, Role: claims.Role, Status: claims.Status, Name: claims.Name}, nil
}
