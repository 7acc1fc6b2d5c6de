package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merkulive/photoshare/database"
	"github.com/merkulive/photoshare/database/models"
	accountsRepo "github.com/merkulive/photoshare/database/repo/accounts"
	"github.com/merkulive/photoshare/internal/errs"
	cryptoutils "github.com/merkulive/photoshare/utils/crypto"
)

func setupLoginService(t *testing.T) (*LoginService, *accountsRepo.Repository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	repo := accountsRepo.NewRepository(db)
	return NewLoginService(repo, testJWTService()), repo, db
}

func seedAccount(t *testing.T, db *gorm.DB, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := cryptoutils.GenerateFromPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Username: "alice",
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		IsActive: active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// TestLogin_Success 登录成功签发令牌对并存储刷新令牌
func TestLogin_Success(t *testing.T) {
	svc, repo, db := setupLoginService(t)
	ctx := context.Background()
	seedAccount(t, db, "alice@example.com", "secret123", true)

	user, pair, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, pair.RefreshToken, *stored.RefreshToken)
}

// TestLogin_Failures 三种失败各自有区分的提示，但都是 401
func TestLogin_Failures(t *testing.T) {
	svc, _, db := setupLoginService(t)
	ctx := context.Background()
	seedAccount(t, db, "alice@example.com", "secret123", true)
	seedAccount(t, db, "banned@example.com", "secret123", false)

	_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "invalid email")

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "invalid password")

	_, _, err = svc.Login(ctx, "banned@example.com", "secret123")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "account is inactive")
}

// TestRefresh_Rotation 刷新换发新令牌对并更新存储
func TestRefresh_Rotation(t *testing.T) {
	svc, repo, db := setupLoginService(t)
	ctx := context.Background()
	user := seedAccount(t, db, "alice@example.com", "secret123", true)

	_, pair, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.RefreshToken)

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, next.RefreshToken, *stored.RefreshToken)
}

// TestRefresh_MismatchClearsStoredToken 与库中不一致的刷新令牌视为被盗用
func TestRefresh_MismatchClearsStoredToken(t *testing.T) {
	svc, repo, db := setupLoginService(t)
	ctx := context.Background()
	user := seedAccount(t, db, "alice@example.com", "secret123", true)

	_, pair, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	// 存储中换成别的值，模拟令牌已在别处轮换
	other := "someone-else-rotated"
	require.NoError(t, repo.UpdateRefreshToken(user.ID, &other))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "invalid refresh token")

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)
}

// TestRefresh_RejectsAccessToken 访问令牌不能用于刷新
func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, db := setupLoginService(t)
	ctx := context.Background()
	seedAccount(t, db, "alice@example.com", "secret123", true)

	_, pair, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

// TestRefresh_InactiveAccount 封禁账号的刷新令牌不可用
func TestRefresh_InactiveAccount(t *testing.T) {
	svc, repo, db := setupLoginService(t)
	ctx := context.Background()
	user := seedAccount(t, db, "alice@example.com", "secret123", true)

	_, pair, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = repo.SetActive(user.ID, false)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "account is inactive")
}

// TestLogout_ClearsToken 注销清空存储的刷新令牌
func TestLogout_ClearsToken(t *testing.T) {
	svc, repo, db := setupLoginService(t)
	ctx := context.Background()
	user := seedAccount(t, db, "alice@example.com", "secret123", true)

	_, _, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)
}
