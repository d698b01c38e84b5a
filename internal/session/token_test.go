// ABOUTME: Unit tests for session token signing and verification
// ABOUTME: Tests valid, tampered, foreign and expired tokens

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSigner_ValidToken(t *testing.T) {
	signer := NewSigner([]byte("test-secret-key-for-sessions"))

	token, err := signer.Sign("session-123", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	gotID, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if gotID != "session-123" {
		t.Errorf("Verify() = %q, want %q", gotID, "session-123")
	}
}

func TestSigner_InvalidToken(t *testing.T) {
	signer := NewSigner([]byte("test-secret-key-for-sessions"))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
		{
			name: "wrong secret",
			token: func() string {
				other := NewSigner([]byte("different-secret-entirely"))
				token, _ := other.Sign("session-123", time.Hour)
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSigner_ExpiredToken(t *testing.T) {
	signer := NewSigner([]byte("test-secret-key-for-sessions"))

	token, err := signer.Sign("session-123", -time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	_, err = signer.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestSigner_MissingSubject(t *testing.T) {
	secret := []byte("test-secret-key-for-sessions")
	signer := NewSigner(secret)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	_, err = signer.Verify(token)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Verify() error = %v, want ErrMissingClaim", err)
	}
}

func TestSigner_RejectsNoneAlgorithm(t *testing.T) {
	signer := NewSigner([]byte("test-secret-key-for-sessions"))

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "session-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	_, err = signer.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}
