package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		AccessKey:  []byte("access-signing-key-0123456789abc"),
		RefreshKey: []byte("refresh-signing-key-0123456789ab"),
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer, err := New(testConfig())
	require.NoError(t, err)

	for _, purpose := range []Purpose{PurposeAccess, PurposeRefresh, PurposeVerifyEmail} {
		raw, err := issuer.Issue("user-42", purpose)
		require.NoError(t, err, "Issue(%s)", purpose)

		subject, err := issuer.Verify(raw, purpose)
		require.NoError(t, err, "Verify(%s)", purpose)
		assert.Equal(t, "user-42", subject)
	}
}

func TestVerifyRejectsCrossPurpose(t *testing.T) {
	issuer, err := New(testConfig())
	require.NoError(t, err)

	cases := []struct {
		issued, expected Purpose
	}{
		{PurposeAccess, PurposeRefresh},
		{PurposeRefresh, PurposeAccess},
		{PurposeVerifyEmail, PurposeAccess},
		{PurposeAccess, PurposeVerifyEmail},
	}

	for _, tc := range cases {
		raw, err := issuer.Issue("user-1", tc.issued)
		require.NoError(t, err)

		_, err = issuer.Verify(raw, tc.expected)
		assert.ErrorIs(t, err, ErrInvalid, "issued=%s expected=%s", tc.issued, tc.expected)
	}
}

func TestVerifyExpired(t *testing.T) {
	cfg := testConfig()
	issuer, err := New(cfg)
	require.NoError(t, err)

	// Sign with the real access key but an expiry in the past. The
	// signature is valid, so only the expiry check can reject it.
	past := time.Now().Add(-time.Hour)
	claims := Claims{
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.AccessKey)
	require.NoError(t, err)

	_, err = issuer.Verify(raw, PurposeAccess)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	issuer, err := New(testConfig())
	require.NoError(t, err)

	for _, raw := range []string{"", "garbage", "a.b", "no dots at all"} {
		_, err := issuer.Verify(raw, PurposeAccess)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	issuer, err := New(testConfig())
	require.NoError(t, err)

	raw, err := issuer.Issue("user-1", PurposeAccess)
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = issuer.Verify(tampered, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyWrongKey(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)

	other := testConfig()
	other.AccessKey = []byte("another-access-key-0123456789abc")
	b, err := New(other)
	require.NoError(t, err)

	raw, err := a.Issue("user-1", PurposeAccess)
	require.NoError(t, err)

	_, err = b.Verify(raw, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyIssuerClaim(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "authkit-test"
	withIssuer, err := New(cfg)
	require.NoError(t, err)

	anon, err := New(testConfig())
	require.NoError(t, err)

	raw, err := anon.Issue("user-1", PurposeAccess)
	require.NoError(t, err)

	_, err = withIssuer.Verify(raw, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalid, "token without iss must fail when issuer is required")

	raw, err = withIssuer.Issue("user-1", PurposeAccess)
	require.NoError(t, err)
	subject, err := withIssuer.Verify(raw, PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestVerificationKeyFallsBackToAccessKey(t *testing.T) {
	cfg := testConfig()
	issuer, err := New(cfg)
	require.NoError(t, err)

	raw, err := issuer.Issue("user-1", PurposeVerifyEmail)
	require.NoError(t, err)

	// A second issuer with the same access key must accept it.
	twin, err := New(testConfig())
	require.NoError(t, err)
	subject, err := twin.Verify(raw, PurposeVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTTLDefaults(t *testing.T) {
	issuer, err := New(testConfig())
	require.NoError(t, err)

	assert.Equal(t, DefaultAccessTTL, issuer.TTL(PurposeAccess))
	assert.Equal(t, DefaultRefreshTTL, issuer.TTL(PurposeRefresh))
	assert.Equal(t, DefaultVerificationTTL, issuer.TTL(PurposeVerifyEmail))
	assert.Zero(t, issuer.TTL(Purpose("bogus")))
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"missing access key", func(c *Config) { c.AccessKey = nil }},
		{"missing refresh key", func(c *Config) { c.RefreshKey = nil }},
		{"shared keys", func(c *Config) { c.RefreshKey = append([]byte(nil), c.AccessKey...) }},
		{"negative ttl", func(c *Config) { c.AccessTTL = -time.Hour }},
		{"oversized leeway", func(c *Config) { c.Leeway = 5 * time.Minute }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mut(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestIssueEmptySubject(t *testing.T) {
	issuer, err := New(testConfig())
	require.NoError(t, err)

	_, err = issuer.Issue("", PurposeAccess)
	assert.Error(t, err)
}
