package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkulive/photoshare/internal/errs"
)

func testJWTService() *JWTService {
	return NewJWTServiceWithConfig(TokenConfig{
		Secret:     []byte("test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
}

// TestGenerateAndParse 令牌签发与解析的往返
func TestGenerateAndParse(t *testing.T) {
	svc := testJWTService()

	pair, err := svc.GenerateTokens("alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	email, err := svc.ParseToken(pair.AccessToken, ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	email, err = svc.ParseToken(pair.RefreshToken, ScopeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

// TestParseToken_WrongScope 访问令牌不能当刷新令牌用，反之亦然
func TestParseToken_WrongScope(t *testing.T) {
	svc := testJWTService()

	pair, err := svc.GenerateTokens("alice@example.com")
	require.NoError(t, err)

	_, err = svc.ParseToken(pair.AccessToken, ScopeRefresh)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = svc.ParseToken(pair.RefreshToken, ScopeAccess)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

// TestParseToken_WrongSecret 换密钥签发的令牌不被接受
func TestParseToken_WrongSecret(t *testing.T) {
	svc := testJWTService()
	other := NewJWTServiceWithConfig(TokenConfig{
		Secret:     []byte("another-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})

	pair, err := other.GenerateTokens("alice@example.com")
	require.NoError(t, err)

	_, err = svc.ParseToken(pair.AccessToken, ScopeAccess)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

// TestParseToken_Garbage 非法字符串被拒绝
func TestParseToken_Garbage(t *testing.T) {
	svc := testJWTService()

	_, err := svc.ParseToken("not-a-jwt", ScopeAccess)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = svc.ParseToken("", ScopeAccess)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

// TestParseToken_Expired 过期令牌被拒绝
func TestParseToken_Expired(t *testing.T) {
	svc := NewJWTServiceWithConfig(TokenConfig{
		Secret:     []byte("test-secret"),
		AccessTTL:  -time.Minute,
		RefreshTTL: -time.Minute,
	})

	pair, err := svc.GenerateTokens("alice@example.com")
	require.NoError(t, err)

	_, err = svc.ParseToken(pair.AccessToken, ScopeAccess)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}
