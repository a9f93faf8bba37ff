package model

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "organizer1",
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestCredentialExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		cred    Credential
		expired bool
	}{
		{
			name:    "empty token",
			cred:    Credential{},
			expired: true,
		},
		{
			name:    "live jwt",
			cred:    Credential{AccessToken: signedToken(t, now.Add(time.Hour))},
			expired: false,
		},
		{
			name:    "expired jwt",
			cred:    Credential{AccessToken: signedToken(t, now.Add(-time.Hour))},
			expired: true,
		},
		{
			name:    "opaque token is left to the backend",
			cred:    Credential{AccessToken: "not-a-jwt"},
			expired: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Expired(now); got != tt.expired {
				t.Errorf("Expired() = %v, expected %v", got, tt.expired)
			}
		})
	}
}

func TestCredentialValid(t *testing.T) {
	if (Credential{}).Valid() {
		t.Error("empty credential must not be valid")
	}
	cred := Credential{AccessToken: signedToken(t, time.Now().Add(time.Hour)), Role: RoleOrganizer}
	if !cred.Valid() {
		t.Error("live credential should be valid")
	}
}
