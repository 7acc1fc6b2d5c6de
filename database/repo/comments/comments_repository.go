package comments

import (
	"context"
	"errors"
	"time"

	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/internal/errs"
	"gorm.io/gorm"
)

// Repository 评论仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的评论仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建评论
func (r *Repository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetByID 通过ID获取评论
func (r *Repository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("comment %d", id)
		}
		return nil, err
	}
	return &comment, nil
}

// ListByImageID 列出图片的全部评论
func (r *Repository) ListByImageID(imageID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.Where("image_id = ?", imageID).
		Order("created_at asc").Find(&comments).Error
	return comments, err
}

// UpdateText 修改评论文本并刷新 updated_at
func (r *Repository) UpdateText(comment *models.Comment, text string) error {
	comment.Text = text
	comment.UpdatedAt = time.Now()
	return r.db.Model(comment).
		Updates(map[string]interface{}{"text": text, "updated_at": comment.UpdatedAt}).Error
}

// Delete 删除评论
func (r *Repository) Delete(id uint) error {
	res := r.db.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFoundf("comment %d", id)
	}
	return nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
