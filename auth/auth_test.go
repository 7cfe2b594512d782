package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	tm, err := NewTokenManager("secret", "okr-test", time.Hour)
	require.NoError(t, err)

	token, claims, err := tm.Issue("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.UserID)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	tm, _ := NewTokenManager("secret", "okr-test", time.Hour)
	other, _ := NewTokenManager("other-secret", "okr-test", time.Hour)
	otherIssuer, _ := NewTokenManager("secret", "someone-else", time.Hour)

	token, _, err := other.Issue("user-1")
	require.NoError(t, err)
	_, err = tm.Validate(token)
	assert.Error(t, err)

	token, _, err = otherIssuer.Issue("user-1")
	require.NoError(t, err)
	_, err = tm.Validate(token)
	assert.Error(t, err)

	_, err = tm.Validate("not-a-token")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tm, _ := NewTokenManager("secret", "okr-test", time.Nanosecond)
	token, _, err := tm.Issue("user-1")
	require.NoError(t, err)
	time.Sleep(time.Second + 10*time.Millisecond)
	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "", 0)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	tok, err := ExtractToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = ExtractToken("token xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = ExtractToken("abc")
	assert.Error(t, err)
	_, err = ExtractToken("Basic abc")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	ok, err := CheckPassword(hash, "Password123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Hour))
	revoked, _ = r.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	revoked, _ = r.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)
}
