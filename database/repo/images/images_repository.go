package images

import (
	"context"
	"errors"

	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/internal/errs"
	"gorm.io/gorm"
)

// Repository 图片仓库 - 封装所有图片相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Create 创建图片并附加标签
func (r *Repository) Create(image *models.Image, tags []*models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(image).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(image).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID 通过ID获取图片（预加载标签）
func (r *Repository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("Tags").First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("image %d", id)
		}
		return nil, err
	}
	return &image, nil
}

// GetByURLView 通过变换视图 URL 获取图片
func (r *Repository) GetByURLView(urlView string) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("Tags").Where("url_view = ?", urlView).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("image with view %s", urlView)
		}
		return nil, err
	}
	return &image, nil
}

// Update 保存图片的可变字段（描述等）；标签与点赞不走此路径
func (r *Repository) Update(image *models.Image) error {
	return r.db.Omit("Tags", "Comments").Save(image).Error
}

// Delete 删除图片，级联删除其评论、反应行和标签关联
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", id).Delete(&models.ImageReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM image_tags WHERE image_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Image{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFoundf("image %d", id)
		}
		return nil
	})
}

// SearchByDescription 描述子串搜索（大小写不敏感）
func (r *Repository) SearchByDescription(query string) ([]*models.Image, error) {
	var images []*models.Image
	pattern := "%" + query + "%"
	err := r.db.Preload("Tags").
		Where("LOWER(description) LIKE LOWER(?)", pattern).
		Order("created_at desc").
		Find(&images).Error
	return images, err
}

// SearchByTags 按标签名搜索，命中多个标签的图片只出现一次
func (r *Repository) SearchByTags(names []string) ([]*models.Image, error) {
	if len(names) == 0 {
		return []*models.Image{}, nil
	}
	var ids []uint
	err := r.db.Table("image_tags").
		Select("DISTINCT image_tags.image_id").
		Joins("JOIN tags ON tags.id = image_tags.tag_id").
		Where("tags.name IN ?", names).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}

	var images []*models.Image
	err = r.db.Preload("Tags").Where("id IN ?", ids).
		Order("created_at desc").Find(&images).Error
	return images, err
}

// ListByUserID 列出某个用户的全部图片
func (r *Repository) ListByUserID(userID uint) ([]*models.Image, error) {
	var images []*models.Image
	err := r.db.Preload("Tags").Where("user_id = ?", userID).
		Order("created_at desc").Find(&images).Error
	return images, err
}

// CountByUserID 统计用户的图片数量
func (r *Repository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Rank 返回按 rate 排序的全部图片
func (r *Repository) Rank(ascending bool) ([]*models.Image, error) {
	order := "rate desc"
	if ascending {
		order = "rate asc"
	}
	var images []*models.Image
	err := r.db.Preload("Tags").Order(order).Find(&images).Error
	return images, err
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
