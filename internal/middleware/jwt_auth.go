package middleware

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// userFromJWT verifies an HS256 token signed with secret and returns the
// user id it carries.
func userFromJWT(tokenString, secret string) (string, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parse jwt")
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", errors.New("token carries no user id")
	}
	return userID, nil
}
