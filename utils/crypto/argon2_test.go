package cryptoutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateFromPassword_Success 测试密码哈希生成成功
func TestGenerateFromPassword_Success(t *testing.T) {
	password := "mysecretpassword123"

	hash, err := GenerateFromPassword(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.Contains(t, hash, "$v=")
	assert.Contains(t, hash, "$m=")
	assert.Contains(t, hash, ",t=")
	assert.Contains(t, hash, ",p=")
}

// TestGenerateFromPassword_DifferentHashes 测试相同密码产生不同哈希
func TestGenerateFromPassword_DifferentHashes(t *testing.T) {
	password := "samepassword123"

	hash1, err := GenerateFromPassword(password)
	require.NoError(t, err)

	hash2, err := GenerateFromPassword(password)
	require.NoError(t, err)

	// 相同密码应该产生不同哈希（盐值不同）
	assert.NotEqual(t, hash1, hash2)
}

// TestComparePasswordAndHash_Success 测试密码验证成功
func TestComparePasswordAndHash_Success(t *testing.T) {
	password := "correct horse battery staple"

	hash, err := GenerateFromPassword(password)
	require.NoError(t, err)

	match, err := ComparePasswordAndHash(password, hash)
	require.NoError(t, err)
	assert.True(t, match)
}

// TestComparePasswordAndHash_WrongPassword 测试错误密码验证失败
func TestComparePasswordAndHash_WrongPassword(t *testing.T) {
	hash, err := GenerateFromPassword("rightpassword")
	require.NoError(t, err)

	match, err := ComparePasswordAndHash("wrongpassword", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

// TestComparePasswordAndHash_InvalidFormat 测试无效哈希格式
func TestComparePasswordAndHash_InvalidFormat(t *testing.T) {
	invalidHashes := []string{
		"",
		"notahash",
		"$argon2id$",
		"$bcrypt$v=19$m=65536,t=2,p=4$c2FsdA$aGFzaA",
	}

	for _, h := range invalidHashes {
		_, err := ComparePasswordAndHash("password", h)
		assert.Error(t, err, "Invalid hash should be rejected: %s", h)
	}
}
