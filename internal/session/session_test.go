package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestToken_EmptySession(t *testing.T) {
	s := New()

	if _, err := s.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
}

func TestToken_Expired(t *testing.T) {
	s := New()
	s.SetToken(signedToken(t, time.Now().Add(-time.Hour)), "user-1")

	if _, err := s.Token(); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestToken_Valid(t *testing.T) {
	s := New()
	want := signedToken(t, time.Now().Add(time.Hour))
	s.SetToken(want, "user-1")

	got, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != want {
		t.Fatalf("token = %q, want %q", got, want)
	}
	if s.UserID() != "user-1" {
		t.Fatalf("userID = %q, want user-1", s.UserID())
	}
}

func TestToken_OpaqueAcceptedAsIs(t *testing.T) {
	s := New()
	s.SetToken("opaque-session-token", "user-1")

	got, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "opaque-session-token" {
		t.Fatalf("token = %q", got)
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.SetToken("opaque-session-token", "user-1")
	s.Clear()

	if _, err := s.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
	if s.UserID() != "" {
		t.Fatalf("userID = %q, want empty", s.UserID())
	}
}
