package images

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merkulive/photoshare/config"
	"github.com/merkulive/photoshare/database"
	"github.com/merkulive/photoshare/database/models"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	tagsRepo "github.com/merkulive/photoshare/database/repo/tags"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
	"github.com/merkulive/photoshare/internal/rating"
	tagsService "github.com/merkulive/photoshare/internal/tags"
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

	svc := NewService(
		imagesRepo.NewRepository(db),
		tagsService.NewService(tagsRepo.NewRepository(db)),
		rating.NewEngine(db),
		nil,
		nil,
		&config.Config{UploadMaxSizeMB: 10},
	)
	return &testEnv{db: db, svc: svc}
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

// TestCreate_WithTags 创建带标签的图片，标签按名字 get-or-create
func TestCreate_WithTags(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)

	image, err := env.svc.Create(ctx, actor, "https://example.com/a.jpg", "sunset over the bay", []string{"sunset", "sea"})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, image.UserID)

	got, err := env.svc.Get(ctx, image.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 2)
	assert.Equal(t, 0.0, got.Rate)
}

// TestCreate_TooManyTags 超过单图标签上限被拒绝
func TestCreate_TooManyTags(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)

	_, err := env.svc.Create(ctx, actor, "https://example.com/a.jpg", "", []string{"a", "b", "c", "d", "e", "f"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

// TestCreate_SharedTagRow 不同图片的同名标签共享同一行
func TestCreate_SharedTagRow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)

	first, err := env.svc.Create(ctx, actor, "https://example.com/a.jpg", "", []string{"sunset"})
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, actor, "https://example.com/b.jpg", "", []string{"sunset"})
	require.NoError(t, err)

	a, err := env.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	b, err := env.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, a.Tags, 1)
	require.Len(t, b.Tags, 1)
	assert.Equal(t, a.Tags[0].ID, b.Tags[0].ID)
}

// TestUpdateDescription_OwnershipCollapse 普通用户改他人图片得到 NotFound
func TestUpdateDescription_OwnershipCollapse(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "alice", models.RoleUser)
	stranger := env.seedUser(t, "bob", models.RoleUser)

	image, err := env.svc.Create(ctx, owner, "https://example.com/a.jpg", "original", nil)
	require.NoError(t, err)

	_, err = env.svc.UpdateDescription(ctx, stranger, image.ID, "hijacked")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	updated, err := env.svc.UpdateDescription(ctx, owner, image.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Description)
}

// TestDelete_CascadesReactionsAndComments 删除图片同时清理评分和评论
func TestDelete_CascadesReactionsAndComments(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "alice", models.RoleUser)
	rater := env.seedUser(t, "bob", models.RoleUser)

	image, err := env.svc.Create(ctx, owner, "https://example.com/a.jpg", "", nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.RateAction(ctx, rater, image.ID, PolarityLike, OpAdd))
	require.NoError(t, env.db.Create(&models.Comment{ImageID: image.ID, UserID: rater.ID, Text: "nice"}).Error)

	require.NoError(t, env.svc.Delete(ctx, owner, image.ID))

	_, err = env.svc.Get(ctx, image.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	var reactions, comments int64
	require.NoError(t, env.db.Model(&models.ImageReaction{}).Where("image_id = ?", image.ID).Count(&reactions).Error)
	require.NoError(t, env.db.Model(&models.Comment{}).Where("image_id = ?", image.ID).Count(&comments).Error)
	assert.Zero(t, reactions)
	assert.Zero(t, comments)
}

// TestDelete_AdminOverride 管理员可以删除任何人的图片
func TestDelete_AdminOverride(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "alice", models.RoleUser)
	admin := env.seedUser(t, "root", models.RoleAdmin)
	stranger := env.seedUser(t, "bob", models.RoleUser)

	image, err := env.svc.Create(ctx, owner, "https://example.com/a.jpg", "", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Delete(ctx, stranger, image.ID), errs.ErrNotFound)
	assert.NoError(t, env.svc.Delete(ctx, admin, image.ID))
}

// TestRateAction_Validation 非法的极性或操作返回 InvalidInput
func TestRateAction_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)

	image, err := env.svc.Create(ctx, actor, "https://example.com/a.jpg", "", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.RateAction(ctx, actor, image.ID, "love", OpAdd), errs.ErrInvalidInput)
	assert.ErrorIs(t, env.svc.RateAction(ctx, actor, image.ID, PolarityLike, "toggle"), errs.ErrInvalidInput)
	assert.ErrorIs(t, env.svc.RateAction(ctx, authz.Anonymous(), image.ID, PolarityLike, OpAdd), errs.ErrUnauthenticated)
}

// TestReactions_Counts 评分后计数可读
func TestReactions_Counts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", models.RoleUser)
	bob := env.seedUser(t, "bob", models.RoleUser)

	image, err := env.svc.Create(ctx, alice, "https://example.com/a.jpg", "", nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.RateAction(ctx, alice, image.ID, PolarityLike, OpAdd))
	require.NoError(t, env.svc.RateAction(ctx, bob, image.ID, PolarityDislike, OpAdd))

	likes, dislikes, err := env.svc.Reactions(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)
	assert.Equal(t, int64(1), dislikes)

	_, _, err = env.svc.Reactions(ctx, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// TestSearch_Validation 空查询被拒绝
func TestSearch_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.SearchByDescription(ctx, "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = env.svc.SearchByTags(ctx, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

// TestSearchByTags_Dedup 多标签命中同一张图只返回一次
func TestSearchByTags_Dedup(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	actor := env.seedUser(t, "alice", models.RoleUser)

	image, err := env.svc.Create(ctx, actor, "https://example.com/a.jpg", "", []string{"sunset", "sea"})
	require.NoError(t, err)

	result, err := env.svc.SearchByTags(ctx, []string{"sunset", "sea"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, image.ID, result[0].ID)
}

// TestRank_OrderValidation 排序参数只接受 asc 和 desc
func TestRank_OrderValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Rank(ctx, "sideways")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

// TestRank_Ordering 评分排行榜按 rate 排序
func TestRank_Ordering(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", models.RoleUser)
	bob := env.seedUser(t, "bob", models.RoleUser)

	low, err := env.svc.Create(ctx, alice, "https://example.com/low.jpg", "", nil)
	require.NoError(t, err)
	high, err := env.svc.Create(ctx, alice, "https://example.com/high.jpg", "", nil)
	require.NoError(t, err)

	// low: 一踩 → 0.0；high: 一赞 → 100.0
	require.NoError(t, env.svc.RateAction(ctx, bob, low.ID, PolarityDislike, OpAdd))
	require.NoError(t, env.svc.RateAction(ctx, bob, high.ID, PolarityLike, OpAdd))

	desc, err := env.svc.Rank(ctx, "desc")
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, high.ID, desc[0].ID)

	asc, err := env.svc.Rank(ctx, "asc")
	require.NoError(t, err)
	assert.Equal(t, low.ID, asc[0].ID)
}

// TestListByOwner_Privileged 按所有者列图片是版主及以上的特权
func TestListByOwner_Privileged(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", models.RoleUser)
	bob := env.seedUser(t, "bob", models.RoleUser)
	moderator := env.seedUser(t, "mod", models.RoleModerator)

	_, err := env.svc.Create(ctx, alice, "https://example.com/a.jpg", "", nil)
	require.NoError(t, err)

	_, err = env.svc.ListByOwner(ctx, bob, alice.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	result, err := env.svc.ListByOwner(ctx, moderator, alice.ID)
	require.NoError(t, err)
	assert.Len(t, result, 1)

	own, err := env.svc.ListOwn(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}
