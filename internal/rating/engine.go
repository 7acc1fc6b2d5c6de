// Package rating maintains an image's like/dislike sets and its derived
// rate. Every mutation runs inside one transaction with a row lock on the
// image, so two concurrent reactions on the same image never compute the
// rate from a half-updated set.
package rating

import (
	"context"
	"errors"
	"math"

	"github.com/merkulive/photoshare/database"
	"github.com/merkulive/photoshare/database/models"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	"github.com/merkulive/photoshare/internal/errs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine 评分引擎
type Engine struct {
	db *gorm.DB
}

// NewEngine 创建新的评分引擎
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// ApplyLike 添加喜欢。已喜欢则为空操作；已不喜欢则先移除不喜欢
// （同一用户对同一图片永远不会同时持有两种反应）。
func (e *Engine) ApplyLike(ctx context.Context, imageID, userID uint) error {
	return e.mutate(ctx, imageID, func(tx *gorm.DB) error {
		liked, err := imagesRepo.HasLike(tx, imageID, userID)
		if err != nil {
			return err
		}
		if liked {
			return nil
		}
		if err := imagesRepo.RemoveDislike(tx, imageID, userID); err != nil {
			return err
		}
		return imagesRepo.AddLike(tx, imageID, userID)
	})
}

// RemoveLike 移除喜欢。未喜欢则为空操作。
func (e *Engine) RemoveLike(ctx context.Context, imageID, userID uint) error {
	return e.mutate(ctx, imageID, func(tx *gorm.DB) error {
		return imagesRepo.RemoveLike(tx, imageID, userID)
	})
}

// ApplyDislike 添加不喜欢，与 ApplyLike 对称。
func (e *Engine) ApplyDislike(ctx context.Context, imageID, userID uint) error {
	return e.mutate(ctx, imageID, func(tx *gorm.DB) error {
		disliked, err := imagesRepo.HasDislike(tx, imageID, userID)
		if err != nil {
			return err
		}
		if disliked {
			return nil
		}
		if err := imagesRepo.RemoveLike(tx, imageID, userID); err != nil {
			return err
		}
		return imagesRepo.AddDislike(tx, imageID, userID)
	})
}

// RemoveDislike 移除不喜欢。未持有不喜欢时为空操作。
func (e *Engine) RemoveDislike(ctx context.Context, imageID, userID uint) error {
	return e.mutate(ctx, imageID, func(tx *gorm.DB) error {
		return imagesRepo.RemoveDislike(tx, imageID, userID)
	})
}

// Counts 返回当前喜欢/不喜欢数量
func (e *Engine) Counts(ctx context.Context, imageID uint) (likes, dislikes int64, err error) {
	return imagesRepo.CountReactions(e.db.WithContext(ctx), imageID)
}

// mutate 在一个事务内锁定图片行、执行反应变更并重算 rate。
func (e *Engine) mutate(ctx context.Context, imageID uint, fn func(tx *gorm.DB) error) error {
	return database.TransactionWithContext(ctx, e.db, func(tx *gorm.DB) error {
		var image models.Image
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&image, imageID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("image %d", imageID)
			}
			return err
		}

		if err := fn(tx); err != nil {
			return err
		}

		likes, dislikes, err := imagesRepo.CountReactions(tx, imageID)
		if err != nil {
			return err
		}

		rate := ComputeRate(likes, dislikes)
		return tx.Model(&models.Image{}).Where("id = ?", imageID).
			Update("rate", rate).Error
	})
}

// ComputeRate rate 是集合大小的纯函数：空集为 0.0，否则为喜欢占比
// 的百分数，保留一位小数。
func ComputeRate(likes, dislikes int64) float64 {
	total := likes + dislikes
	if total == 0 {
		return 0.0
	}
	return math.Round(100*float64(likes)/float64(total)*10) / 10
}
