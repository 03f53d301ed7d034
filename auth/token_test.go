package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/models"
)

func fixedIssuer(secret string, lifetime time.Duration, now time.Time) *TokenIssuer {
	t := NewTokenIssuer(secret, lifetime)
	t.Now = func() time.Time { return now }
	return t
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer("test-secret", time.Hour, now)

	token, expiresAt, err := issuer.Issue("user-1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	p, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, models.RoleUser, p.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer("test-secret", time.Hour, now)

	token, _, err := issuer.Issue("user-1", models.RoleAdmin)
	require.NoError(t, err)

	// Still valid right up to expiry, rejected one second past it.
	issuer.Now = func() time.Time { return now.Add(time.Hour - time.Second) }
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return now.Add(time.Hour + time.Second) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := fixedIssuer("real-secret", time.Hour, now)
	verifier := fixedIssuer("other-secret", time.Hour, now)

	token, _, err := signer.Issue("user-1", models.RoleUser)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrBadSignature)
}

func TestVerifyMalformedToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, apperrors.ErrTokenMalformed, "token %q", tok)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer("test-secret", time.Hour, now)

	token, _, err := issuer.Issue("user-1", models.Role("superuser"))
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)
}

func TestRefreshExtendsExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer("test-secret", time.Hour, now)

	token, _, err := issuer.Issue("user-1", models.RoleAdmin)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return now.Add(30 * time.Minute) }
	refreshed, expiresAt, err := issuer.Refresh(token)
	require.NoError(t, err)
	assert.Equal(t, now.Add(90*time.Minute), expiresAt)

	p, err := issuer.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, models.RoleAdmin, p.Role)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer("test-secret", time.Hour, now)

	token, _, err := issuer.Issue("user-1", models.RoleUser)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return now.Add(2 * time.Hour) }
	_, _, err = issuer.Refresh(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
