package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizhub/internal/domain"
)

// Claims is the shape of the sign-in tokens the identity provider issues:
// the subject id lives in the registered claims, profile hints alongside.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// ParseSignInToken verifies an HS256 sign-in token and converts its claims
// into the reconciler's sign-in event.
func ParseSignInToken(tokenString, secret string) (domain.SignInEvent, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.SignInEvent{}, fmt.Errorf("parse sign-in token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.SignInEvent{}, fmt.Errorf("sign-in token missing subject")
	}
	return domain.SignInEvent{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
	}, nil
}

// IssueSignInToken signs a token for the given event. The server itself only
// parses tokens; issuing is used by tests and local tooling.
func IssueSignInToken(ev domain.SignInEvent, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   ev.Email,
		Name:    ev.DisplayName,
		Picture: ev.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ev.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
