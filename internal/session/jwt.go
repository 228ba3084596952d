package session

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// JWTStore treats the token itself as the session: an HMAC signed JWT carrying a user_id claim.
type JWTStore struct {
	secret []byte
}

func NewJWTStore(secret string) *JWTStore {
	return &JWTStore{secret: []byte(secret)}
}

func (s *JWTStore) UserID(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrNotFound
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNotFound
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrNotFound
	}

	return userID, nil
}

// Sign issues a token for userID. Used by tooling and tests; the service never issues sessions.
func (s *JWTStore) Sign(userID string, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["user_id"] = userID
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
