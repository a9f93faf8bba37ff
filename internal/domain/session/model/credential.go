package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOrganizer is the only role the allow-list accepts at login.
const RoleOrganizer = "ORGANIZER"

// Credential is the unit of authentication state: the bearer token plus
// the role it was granted for.
type Credential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Role         string    `json:"role"`
	UserName     string    `json:"userName,omitempty"`
	SavedAt      time.Time `json:"savedAt,omitempty"`
}

// Valid reports whether the credential can authenticate a request.
func (c Credential) Valid() bool {
	return c.AccessToken != "" && !c.Expired(time.Now())
}

// Expired inspects the access token's exp claim without verifying the
// signature; the backend owns the signing key. Opaque tokens never expire
// locally and are left for the backend to reject.
func (c Credential) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(c.AccessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
