package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiresAt reads the exp claim without verifying the signature. The
// client never trusts the claim for anything but scheduling a refresh.
func tokenExpiresAt(accessToken string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func tokenExpiringSoon(accessToken string, now time.Time, skew time.Duration) bool {
	expiresAt, ok := tokenExpiresAt(accessToken)
	if !ok {
		return false
	}
	return !expiresAt.After(now.Add(skew))
}
