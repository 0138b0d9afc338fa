package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeTokenExpiration reads the exp claim of a JWT without verifying its
// signature. The second result is false for malformed tokens and tokens
// without exp; callers treat that as expired.
func DecodeTokenExpiration(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
