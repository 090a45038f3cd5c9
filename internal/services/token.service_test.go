package services

import (
	"fmt"
	"testing"

	"github.com/pawaovo/nfc-bracelet-fortune/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(environment string) config.Config {
	return config.Config{
		Environment: environment,
		JWTSecret:   "test-secret-key",
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	cfg := testConfig("development")
	tokens := NewTokenService(cfg)
	verifier := NewJWTVerifier(cfg)

	userID := uuid.New()
	token, err := tokens.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tokens := NewTokenService(testConfig("development"))
	verifier := NewJWTVerifier(config.Config{JWTSecret: "different-secret"})

	token, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := NewJWTVerifier(testConfig("development"))

	_, err := verifier.Verify("not.a.token")
	assert.Error(t, err)
}

func TestDevTokenVerifier(t *testing.T) {
	cfg := testConfig("development")
	verifier := NewDevTokenVerifier(cfg)

	userID := uuid.New()

	got, err := verifier.Verify(fmt.Sprintf("DEV.%s.local", userID))
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = verifier.Verify("DEV.not-a-uuid.local")
	assert.Error(t, err)

	// Real tokens still verify through the dev verifier.
	tokens := NewTokenService(cfg)
	token, err := tokens.Issue(userID)
	require.NoError(t, err)
	got, err = verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifierSelectionByEnvironment(t *testing.T) {
	prod := NewTokenVerifier(testConfig("production"))
	_, isJWT := prod.(*JWTVerifier)
	assert.True(t, isJWT, "production must not accept dev tokens")

	dev := NewTokenVerifier(testConfig("development"))
	_, isDev := dev.(*DevTokenVerifier)
	assert.True(t, isDev)
}
