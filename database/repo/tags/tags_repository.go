package tags

import (
	"context"
	"errors"

	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/database/repo/accounts"
	"github.com/merkulive/photoshare/internal/errs"
	"gorm.io/gorm"
)

// Repository 标签仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的标签仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID 通过ID获取标签
func (r *Repository) GetByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("tag %d", id)
		}
		return nil, err
	}
	return &tag, nil
}

// GetByName 通过名称精确匹配获取标签
func (r *Repository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("tag %q", name)
		}
		return nil, err
	}
	return &tag, nil
}

// List 分页列出标签
func (r *Repository) List(skip, limit int) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.Order("id").Offset(skip).Limit(limit).Find(&tags).Error
	return tags, err
}

// Create 创建标签；同名冲突返回 errs.ErrConflict
func (r *Repository) Create(name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name}
	if err := r.db.Create(tag).Error; err != nil {
		if accounts.IsUniqueViolation(err) {
			return nil, errs.Conflictf("tag %q already exists", name)
		}
		return nil, err
	}
	return tag, nil
}

// GetOrCreate 按名称查找标签，不存在则创建。并发创建同名标签时
// 唯一约束冲突被当作"已存在，重查一次"处理，而不是硬错误。
func (r *Repository) GetOrCreate(name string) (*models.Tag, error) {
	tag, err := r.GetByName(name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	created, err := r.Create(name)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, errs.ErrConflict) {
		return r.GetByName(name)
	}
	return nil, err
}

// Update 重命名标签；id 不存在返回 errs.ErrNotFound
func (r *Repository) Update(id uint, name string) (*models.Tag, error) {
	tag, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	tag.Name = name
	if err := r.db.Model(tag).Update("name", name).Error; err != nil {
		if accounts.IsUniqueViolation(err) {
			return nil, errs.Conflictf("tag %q already exists", name)
		}
		return nil, err
	}
	return tag, nil
}

// Remove 删除标签及其关联行；id 不存在返回 errs.ErrNotFound
func (r *Repository) Remove(id uint) (*models.Tag, error) {
	tag, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM image_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
