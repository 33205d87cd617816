//go:build integration
// +build integration

package test

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/zetsy/authkit/token"
)

func newHardeningIssuer(t *testing.T) *token.Issuer {
	t.Helper()

	issuer, err := token.New(token.Config{
		AccessTTL:       time.Minute,
		RefreshTTL:      time.Hour,
		VerificationTTL: time.Hour,
		AccessKey:       []byte("hardening-access-key-0123456789a"),
		RefreshKey:      []byte("hardening-refresh-key-0123456789"),
		Issuer:          "authkit",
		Leeway:          30 * time.Second,
	})
	if err != nil {
		t.Fatalf("token.New failed: %v", err)
	}
	return issuer
}

func TestTokenHardeningChecks(t *testing.T) {
	issuer := newHardeningIssuer(t)

	access, err := issuer.Issue("u1", token.PurposeAccess)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	subject, err := issuer.Verify(access, token.PurposeAccess)
	if err != nil {
		t.Fatalf("Verify valid token failed: %v", err)
	}
	if subject != "u1" {
		t.Fatalf("subject %q, want u1", subject)
	}

	// A refresh token never validates as access: different key per purpose.
	refresh, err := issuer.Issue("u1", token.PurposeRefresh)
	if err != nil {
		t.Fatalf("Issue refresh failed: %v", err)
	}
	if _, err := issuer.Verify(refresh, token.PurposeAccess); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("refresh as access: got %v, want ErrInvalid", err)
	}

	// A token signed with the right key but the wrong purpose claim is
	// rejected even though the signature checks out.
	claims := token.Claims{
		Purpose: token.PurposeVerifyEmail,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "authkit",
			IssuedAt:  gjwt.NewNumericDate(time.Now()),
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	forged, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).
		SignedString([]byte("hardening-access-key-0123456789a"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}
	if _, err := issuer.Verify(forged, token.PurposeAccess); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("purpose mismatch: got %v, want ErrInvalid", err)
	}

	// alg=none never parses.
	none, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).
		SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := issuer.Verify(none, token.PurposeAccess); err == nil {
		t.Fatal("alg=none token accepted")
	}

	// Garbage input classifies as malformed.
	if _, err := issuer.Verify("not.a.jwt", token.PurposeAccess); !errors.Is(err, token.ErrMalformed) {
		t.Fatalf("garbage: got %v, want ErrMalformed", err)
	}
}

func TestTokenExpiryWithLeeway(t *testing.T) {
	issuer := newHardeningIssuer(t)

	// A token expired less than the leeway ago still validates.
	recent := token.Claims{
		Purpose: token.PurposeAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "authkit",
			IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
		},
	}
	raw, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, recent).
		SignedString([]byte("hardening-access-key-0123456789a"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := issuer.Verify(raw, token.PurposeAccess); err != nil {
		t.Fatalf("token within leeway rejected: %v", err)
	}

	// Past the leeway it expires.
	stale := recent
	stale.ExpiresAt = gjwt.NewNumericDate(time.Now().Add(-2 * time.Minute))
	raw, err = gjwt.NewWithClaims(gjwt.SigningMethodHS256, stale).
		SignedString([]byte("hardening-access-key-0123456789a"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := issuer.Verify(raw, token.PurposeAccess); !errors.Is(err, token.ErrExpired) {
		t.Fatalf("stale token: got %v, want ErrExpired", err)
	}
}
