package tags

import (
	"context"
	"strings"

	"github.com/merkulive/photoshare/database/models"
	tagsRepo "github.com/merkulive/photoshare/database/repo/tags"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
	"golang.org/x/sync/singleflight"
)

// Service 标签服务层
type Service struct {
	repo *tagsRepo.Repository

	// 同名标签的并发 get-or-create 合并为一次落库
	group singleflight.Group
}

// NewService 创建新的标签服务
func NewService(repo *tagsRepo.Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeName 清洗标签名并校验长度
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.InvalidInputf("tag name must not be empty")
	}
	if len(name) > models.MaxTagNameLength {
		return "", errs.InvalidInputf("tag name %q exceeds %d characters", name, models.MaxTagNameLength)
	}
	return name, nil
}

// GetOrCreate 静默的 get-or-create：图片打标流程内部使用，
// 已存在时直接返回现有标签，不报冲突。
func (s *Service) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		return s.repo.WithContext(ctx).GetOrCreate(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Tag), nil
}

// Create 显式创建入口：同名已存在时返回冲突，而不是返回现有标签。
// 与图片打标时的静默 get-or-create 是刻意不同的两个契约。
func (s *Service) Create(ctx context.Context, actor authz.Actor, name string) (*models.Tag, error) {
	if err := authz.Can(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindTag}); err != nil {
		return nil, err
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.WithContext(ctx).Create(name)
}

// Get 通过ID获取标签
func (s *Service) Get(ctx context.Context, id uint) (*models.Tag, error) {
	return s.repo.WithContext(ctx).GetByID(id)
}

// List 分页列出标签
func (s *Service) List(ctx context.Context, skip, limit int) ([]*models.Tag, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.WithContext(ctx).List(skip, limit)
}

// Update 重命名标签；id 不存在以 errs.ErrNotFound 信号返回
func (s *Service) Update(ctx context.Context, actor authz.Actor, id uint, name string) (*models.Tag, error) {
	if err := authz.Can(actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindTag}); err != nil {
		return nil, err
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.WithContext(ctx).Update(id, name)
}

// Remove 删除标签；id 不存在以 errs.ErrNotFound 信号返回
func (s *Service) Remove(ctx context.Context, actor authz.Actor, id uint) (*models.Tag, error) {
	if err := authz.Can(actor, authz.ActionDelete, authz.Resource{Kind: authz.KindTag}); err != nil {
		return nil, err
	}
	return s.repo.WithContext(ctx).Remove(id)
}

// ParseTagList 解析逗号分隔的标签列表，去重并限制数量
func ParseTagList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name, err := NormalizeName(part)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	if len(names) > models.MaxTagsPerImage {
		return nil, errs.InvalidInputf("at most %d tags per image, got %d", models.MaxTagsPerImage, len(names))
	}
	return names, nil
}
