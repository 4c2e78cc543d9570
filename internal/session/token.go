package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether a persisted bearer token is already known to
// be dead, so Restore can skip the verification round-trip. Only applies to
// JWTs carrying an exp claim; opaque tokens are left for the server to
// judge.
func tokenExpired(token string) (bool, string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, ""
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false, ""
	}

	if expiry.Before(time.Now()) {
		return true, "exp claim in the past"
	}
	return false, ""
}
