package profile

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
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return NewService(accountsRepo.NewRepository(db), imagesRepo.NewRepository(db), nil), db
}

func signup(t *testing.T, svc *Service, username string) *models.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

// TestSignup_FirstUserIsAdmin 系统中的第一个账号自动成为管理员
func TestSignup_FirstUserIsAdmin(t *testing.T) {
	svc, _ := setupTestService(t)

	first := signup(t, svc, "alice")
	assert.Equal(t, models.RoleAdmin, first.Role)

	second := signup(t, svc, "bob")
	assert.Equal(t, models.RoleUser, second.Role)
}

// TestSignup_Validation 注册入参校验
func TestSignup_Validation(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "  ", Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Signup(ctx, SignupInput{Username: "alice", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

// TestSignup_DuplicateEmail 重复邮箱返回冲突
func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	signup(t, svc, "alice")

	_, err := svc.Signup(ctx, SignupInput{Username: "alias", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

// TestGetProfile 公开主页带图片数量
func TestGetProfile(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	user := signup(t, svc, "alice")
	require.NoError(t, db.Create(&models.Image{URL: "https://example.com/a.jpg", UserID: user.ID}).Error)

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, int64(1), profile.ImageCount)

	_, err = svc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// TestUpdateSettings 自助修改用户名、邮箱和密码
func TestUpdateSettings(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	alice := signup(t, svc, "alice")
	bob := signup(t, svc, "bob")
	actor := authz.FromUser(bob)

	newName := "robert"
	updated, err := svc.UpdateSettings(ctx, actor, UpdateSettingsInput{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)

	// 邮箱撞到别人的账号返回冲突
	taken := alice.Email
	_, err = svc.UpdateSettings(ctx, actor, UpdateSettingsInput{Email: &taken})
	assert.ErrorIs(t, err, errs.ErrConflict)

	// 改回自己当前的邮箱不算冲突
	own := bob.Email
	_, err = svc.UpdateSettings(ctx, actor, UpdateSettingsInput{Email: &own})
	assert.NoError(t, err)

	short := "abc"
	_, err = svc.UpdateSettings(ctx, actor, UpdateSettingsInput{Password: &short})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.UpdateSettings(ctx, authz.Anonymous(), UpdateSettingsInput{Username: &newName})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

// TestSetRole 角色变更仅限管理员，目标角色受限
func TestSetRole(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	admin := authz.FromUser(signup(t, svc, "root"))
	bob := signup(t, svc, "bob")

	updated, err := svc.SetRole(ctx, admin, bob.ID, models.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)

	_, err = svc.SetRole(ctx, admin, bob.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.SetRole(ctx, authz.FromUser(bob), bob.ID, models.RoleUser)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = svc.SetRole(ctx, admin, 9999, models.RoleUser)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// TestBanUnban 封禁与解封，管理员不能封自己
func TestBanUnban(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	adminUser := signup(t, svc, "root")
	admin := authz.FromUser(adminUser)
	bob := signup(t, svc, "bob")

	banned, err := svc.Ban(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.False(t, banned.IsActive)

	restored, err := svc.Unban(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	_, err = svc.Ban(ctx, admin, adminUser.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Ban(ctx, authz.FromUser(bob), adminUser.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}
