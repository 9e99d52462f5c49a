package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignAdminTokenExpiresAtEndOfDay(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	token, expiry, err := signAdminToken(secret, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Midnight at the start of the next day, in the issue timezone.
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), expiry)
	assert.True(t, validateAdminToken(token, secret))
}

func TestValidateAdminTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := signAdminToken([]byte("secret-a"), time.Now())
	require.NoError(t, err)

	assert.False(t, validateAdminToken(token, []byte("secret-b")))
	assert.False(t, validateAdminToken("not-a-token", []byte("secret-a")))
	assert.False(t, validateAdminToken("", []byte("secret-a")))
}

func TestValidateAdminTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := signAdminToken(secret, time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)

	assert.False(t, validateAdminToken(token, secret))
}

func TestEndOfDayJustBeforeMidnight(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), endOfDay(now))
}

func TestCheckAdminPasswordPrefersHash(t *testing.T) {
	s := testServer(nil, nil, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	s.app.Config.Auth.AdminPasswordHash = string(hash)
	s.app.Config.Auth.AdminPassword = "plaintext-ignored"

	assert.True(t, s.checkAdminPassword("correct horse"))
	assert.False(t, s.checkAdminPassword("plaintext-ignored"))
}

func TestCheckAdminPasswordNoCredentialConfigured(t *testing.T) {
	s := testServer(nil, nil, nil)
	s.app.Config.Auth.AdminPassword = ""
	s.app.Config.Auth.AdminPasswordHash = ""

	assert.False(t, s.checkAdminPassword(""))
	assert.False(t, s.checkAdminPassword("anything"))
}
