package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tixgate/internal/domain/session/store"
)

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": exp.Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(store.NewMemory(store.Config{}), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() {
		_ = mgr.Close(context.Background())
	})
	return mgr
}

func TestManagerSetAndCurrent(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t)

	if _, ok := mgr.Current(ctx); ok {
		t.Fatalf("expected no credential before login")
	}

	cred := Credential{
		AccessToken: testToken(t, time.Now().Add(time.Hour)),
		Role:        RoleOrganizer,
		UserName:    "organizer1",
	}
	if err := mgr.Set(ctx, cred); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, ok := mgr.Current(ctx)
	if !ok {
		t.Fatalf("expected credential after Set")
	}
	if got.Role != RoleOrganizer || got.UserName != "organizer1" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestManagerRejectsEmptyToken(t *testing.T) {
	mgr := newTestManager(t)
	if err := mgr.Set(context.Background(), Credential{Role: RoleOrganizer}); err == nil {
		t.Fatalf("expected error for empty access token")
	}
}

func TestManagerExpiredTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t)

	cred := Credential{
		AccessToken: testToken(t, time.Now().Add(-time.Minute)),
		Role:        RoleOrganizer,
	}
	if err := mgr.Set(ctx, cred); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok := mgr.Current(ctx); ok {
		t.Fatalf("expired credential must read as absent")
	}
}

func TestManagerClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t)

	cred := Credential{AccessToken: testToken(t, time.Now().Add(time.Hour)), Role: RoleOrganizer}
	if err := mgr.Set(ctx, cred); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := mgr.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if err := mgr.Clear(ctx); err != nil {
		t.Fatalf("second Clear error: %v", err)
	}
	if _, ok := mgr.Current(ctx); ok {
		t.Fatalf("expected no credential after clear")
	}
}
