package comments

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merkulive/photoshare/database"
	"github.com/merkulive/photoshare/database/models"
	commentsRepo "github.com/merkulive/photoshare/database/repo/comments"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
)

type testEnv struct {
	db  *gorm.DB
	svc *Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &testEnv{db: db, svc: NewService(commentsRepo.NewRepository(db), imagesRepo.NewRepository(db))}
}

func (e *testEnv) seedUser(t *testing.T, username string, role models.Role) authz.Actor {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return authz.FromUser(user)
}

func (e *testEnv) seedImage(t *testing.T, ownerID uint) *models.Image {
	t.Helper()
	image := &models.Image{URL: "https://example.com/a.jpg", UserID: ownerID}
	require.NoError(t, e.db.Create(image).Error)
	return image
}

// TestCreate_OnMissingImage 给不存在的图片留言返回 NotFound
func TestCreate_OnMissingImage(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)

	_, err := env.svc.Create(ctx, actor, 9999, "hello")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// TestCreate_Validation 空文本和超长文本被拒绝
func TestCreate_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)
	image := env.seedImage(t, actor.ID)

	_, err := env.svc.Create(ctx, actor, image.ID, "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = env.svc.Create(ctx, actor, image.ID, strings.Repeat("x", 256))
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	comment, err := env.svc.Create(ctx, actor, image.ID, "  nice shot  ")
	require.NoError(t, err)
	assert.Equal(t, "nice shot", comment.Text)
}

// TestUpdate_AuthorOnly 编辑仅限作者，管理员也不行
func TestUpdate_AuthorOnly(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	author := env.seedUser(t, "alice", models.RoleUser)
	admin := env.seedUser(t, "root", models.RoleAdmin)
	image := env.seedImage(t, author.ID)

	comment, err := env.svc.Create(ctx, author, image.ID, "first draft")
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, admin, comment.ID, "rewritten")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	updated, err := env.svc.Update(ctx, author, comment.ID, "final draft")
	require.NoError(t, err)
	assert.Equal(t, "final draft", updated.Text)
}

// TestDelete_ModeratorOnly 删除需要版主及以上，作者身份不够
func TestDelete_ModeratorOnly(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	author := env.seedUser(t, "alice", models.RoleUser)
	moderator := env.seedUser(t, "mod", models.RoleModerator)
	image := env.seedImage(t, author.ID)

	comment, err := env.svc.Create(ctx, author, image.ID, "to be removed")
	require.NoError(t, err)

	err = env.svc.Delete(ctx, author, comment.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, env.svc.Delete(ctx, moderator, comment.ID))

	_, err = env.svc.Get(ctx, comment.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// TestListByImage 按图片列出评论，未知图片返回 NotFound
func TestListByImage(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)
	image := env.seedImage(t, actor.ID)

	_, err := env.svc.Create(ctx, actor, image.ID, "one")
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, actor, image.ID, "two")
	require.NoError(t, err)

	list, err := env.svc.ListByImage(ctx, image.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = env.svc.ListByImage(ctx, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
