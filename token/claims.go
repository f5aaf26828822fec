package token

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of ID-token claims consulted for the display-name
// fallback. Values are read without signature verification and must never
// feed an authorization decision.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
}

// ParseClaims decodes the payload of idToken without verifying it.
//
// ParseClaims may return an error when input validation, dependency calls, or security checks fail.
// ParseClaims does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseClaims(idToken string) (Claims, error) {
	if idToken == "" {
		return Claims{}, errors.New("token: empty id token")
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, mapClaims); err != nil {
		return Claims{}, err
	}

	str := func(key string) string {
		v, _ := mapClaims[key].(string)
		return v
	}

	return Claims{
		Subject:    str("sub"),
		Email:      str("email"),
		Name:       str("name"),
		GivenName:  str("given_name"),
		FamilyName: str("family_name"),
	}, nil
}

// DisplayName extracts a best-effort human-readable name from idToken:
// name, then given+family, then email, then subject. Returns "" when the
// token cannot be parsed.
//
// DisplayName may return an error when input validation, dependency calls, or security checks fail.
// DisplayName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DisplayName(idToken string) string {
	claims, err := ParseClaims(idToken)
	if err != nil {
		return ""
	}

	if claims.Name != "" {
		return claims.Name
	}
	if full := strings.TrimSpace(claims.GivenName + " " + claims.FamilyName); full != "" {
		return full
	}
	if claims.Email != "" {
		return claims.Email
	}
	return claims.Subject
}
