package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken represents a signed JWT session token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  A station session is long-lived (a shift), so
// the token carries the full session lifetime rather than a short access TTL.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT for a staff session.  It
// takes the signing secret, the staff identity, the event the session is
// scoped to, and a TTL in hours.  The JWT includes the subject (sub), the
// staff display name, the event scope, expiration (exp) and issued at (iat).
func NewSessionToken(secret, staffID, staffName, eventID string, ttlHours int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":   staffID,
		"name":  staffName,
		"event": eventID,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}
