package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailwatch/internal/auth"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := auth.New("test-secret", time.Hour, "admin@example.com", "hunter2")

	token, err := svc.Login("admin@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := auth.New("test-secret", time.Hour, "admin@example.com", "hunter2")

	_, err := svc.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)

	_, err = svc.Login("other@example.com", "hunter2")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestLoginDisabledWithoutConfiguredUser(t *testing.T) {
	svc := auth.New("test-secret", time.Hour, "", "")
	_, err := svc.Login("", "")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc := auth.New("test-secret", -time.Minute, "admin@example.com", "hunter2")

	token, err := svc.IssueToken("admin@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := auth.New("secret-a", time.Hour, "admin@example.com", "hunter2")
	verifier := auth.New("secret-b", time.Hour, "admin@example.com", "hunter2")

	token, err := issuer.IssueToken("admin@example.com")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := auth.New("test-secret", time.Hour, "admin@example.com", "hunter2")
	_, err := svc.VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "abc", auth.FromHeader("Bearer abc"))
	assert.Equal(t, "abc", auth.FromHeader("abc"))
}
