package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/merkulive/photoshare/cache"
	"github.com/merkulive/photoshare/config"
	"github.com/merkulive/photoshare/database/models"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
	"github.com/merkulive/photoshare/internal/rating"
	tagsService "github.com/merkulive/photoshare/internal/tags"
	"github.com/merkulive/photoshare/internal/transform"
	"github.com/merkulive/photoshare/storage"
)

// rate_action 参数取值
const (
	PolarityLike    = "like"
	PolarityDislike = "dislike"

	OpAdd    = "add"
	OpRemove = "remove"
)

// Service 图片服务：创建、检索、评分与变换
type Service struct {
	repo          *imagesRepo.Repository
	tags          *tagsService.Service
	engine        *rating.Engine
	storages      *storage.Factory
	cacheProvider cache.Provider
	cfg           *config.Config
	httpClient    *http.Client
}

// NewService 创建图片服务
func NewService(repo *imagesRepo.Repository, tags *tagsService.Service, engine *rating.Engine, storages *storage.Factory, cacheProvider cache.Provider, cfg *config.Config) *Service {
	return &Service{
		repo:          repo,
		tags:          tags,
		engine:        engine,
		storages:      storages,
		cacheProvider: cacheProvider,
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Create 以外部 URL 创建图片记录，标签按名字 get-or-create，至多五个
func (s *Service) Create(ctx context.Context, actor authz.Actor, url, description string, tagNames []string) (*models.Image, error) {
	if err := authz.Can(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindImage}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, errs.InvalidInputf("image url must not be empty")
	}

	tags, err := s.resolveTags(ctx, tagNames)
	if err != nil {
		return nil, err
	}

	image := &models.Image{
		URL:         url,
		Description: description,
		UserID:      actor.ID,
	}
	if err := s.repo.WithContext(ctx).Create(image, tags); err != nil {
		return nil, err
	}

	s.invalidateRank(ctx)
	log.Printf("Image %d created by user %d", image.ID, actor.ID)
	return image, nil
}

// CreateFromUpload 从上传的文件创建图片，文件保存到默认存储后端
func (s *Service) CreateFromUpload(ctx context.Context, actor authz.Actor, filename string, file io.Reader, size int64, description string, tagNames []string) (*models.Image, error) {
	if err := authz.Can(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindImage}); err != nil {
		return nil, err
	}

	maxSize := int64(s.cfg.UploadMaxSizeMB) << 20
	if size > maxSize {
		return nil, errs.InvalidInputf("file exceeds maximum size of %d MB", s.cfg.UploadMaxSizeMB)
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return nil, errs.InvalidInputf("unsupported file type %q", ext)
	}

	tags, err := s.resolveTags(ctx, tagNames)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("images/%s%s", uuid.NewString(), ext)
	provider := s.storages.GetDefault()
	if err := provider.SaveWithContext(ctx, key, io.LimitReader(file, maxSize+1)); err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	image := &models.Image{
		URL:         s.mediaURL(key),
		Description: description,
		UserID:      actor.ID,
		StorageKey:  &key,
	}
	if err := s.repo.WithContext(ctx).Create(image, tags); err != nil {
		// 数据库写入失败时回收已保存的文件
		if derr := provider.DeleteWithContext(ctx, key); derr != nil {
			log.Printf("Failed to clean up stored file %s: %v", key, derr)
		}
		return nil, err
	}

	s.invalidateRank(ctx)
	log.Printf("Image %d uploaded by user %d (key=%s)", image.ID, actor.ID, key)
	return image, nil
}

// Get 按 ID 获取图片
func (s *Service) Get(ctx context.Context, id uint) (*models.Image, error) {
	return s.repo.WithContext(ctx).GetByID(id)
}

// GetByViewURL 按派生视图 URL 获取图片
func (s *Service) GetByViewURL(ctx context.Context, urlView string) (*models.Image, error) {
	return s.repo.WithContext(ctx).GetByURLView(urlView)
}

// UpdateDescription 更新图片描述，要求所有者或管理员
func (s *Service) UpdateDescription(ctx context.Context, actor authz.Actor, id uint, description string) (*models.Image, error) {
	image, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := authz.Can(actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindImage, OwnerID: image.UserID}); err != nil {
		return nil, err
	}

	image.Description = description
	if err := s.repo.WithContext(ctx).Update(image); err != nil {
		return nil, err
	}
	return image, nil
}

// Delete 删除图片及其评论、评分关联和标签关联；
// 本服务托管的文件一并从存储删除。
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	image, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		return err
	}
	if err := authz.Can(actor, authz.ActionDelete, authz.Resource{Kind: authz.KindImage, OwnerID: image.UserID}); err != nil {
		return err
	}

	if err := s.repo.WithContext(ctx).Delete(id); err != nil {
		return err
	}

	if image.StorageKey != nil {
		provider := s.storages.GetDefault()
		if err := provider.DeleteWithContext(ctx, *image.StorageKey); err != nil {
			log.Printf("Failed to delete stored file %s: %v", *image.StorageKey, err)
		}
	}

	s.invalidateRank(ctx)
	log.Printf("Image %d deleted by user %d", id, actor.ID)
	return nil
}

// RateAction 对图片执行评分操作
// polarity ∈ {like, dislike}，op ∈ {add, remove}；任何已认证用户可评分任意图片。
func (s *Service) RateAction(ctx context.Context, actor authz.Actor, imageID uint, polarity, op string) error {
	if !actor.Authenticated {
		return errs.Unauthenticatedf("authentication required")
	}

	switch {
	case polarity == PolarityLike && op == OpAdd:
		err := s.engine.ApplyLike(ctx, imageID, actor.ID)
		if err == nil {
			s.invalidateRank(ctx)
		}
		return err
	case polarity == PolarityLike && op == OpRemove:
		err := s.engine.RemoveLike(ctx, imageID, actor.ID)
		if err == nil {
			s.invalidateRank(ctx)
		}
		return err
	case polarity == PolarityDislike && op == OpAdd:
		err := s.engine.ApplyDislike(ctx, imageID, actor.ID)
		if err == nil {
			s.invalidateRank(ctx)
		}
		return err
	case polarity == PolarityDislike && op == OpRemove:
		err := s.engine.RemoveDislike(ctx, imageID, actor.ID)
		if err == nil {
			s.invalidateRank(ctx)
		}
		return err
	default:
		return errs.InvalidInputf("polarity must be like|dislike and op must be add|remove")
	}
}

// Reactions 返回图片当前的点赞/点踩计数
func (s *Service) Reactions(ctx context.Context, imageID uint) (likes, dislikes int64, err error) {
	if _, err := s.repo.WithContext(ctx).GetByID(imageID); err != nil {
		return 0, 0, err
	}
	return s.engine.Counts(ctx, imageID)
}

// SearchByDescription 描述子串搜索，大小写不敏感
func (s *Service) SearchByDescription(ctx context.Context, query string) ([]*models.Image, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.InvalidInputf("search query must not be empty")
	}
	return s.repo.WithContext(ctx).SearchByDescription(query)
}

// SearchByTags 标签搜索，结果去重
func (s *Service) SearchByTags(ctx context.Context, names []string) ([]*models.Image, error) {
	if len(names) == 0 {
		return nil, errs.InvalidInputf("at least one tag name is required")
	}
	return s.repo.WithContext(ctx).SearchByTags(names)
}

// ListByOwner 按所有者用户名列出图片，特权操作
func (s *Service) ListByOwner(ctx context.Context, actor authz.Actor, ownerID uint) ([]*models.Image, error) {
	if err := authz.Can(actor, authz.ActionRead, authz.Resource{Kind: authz.KindUserImages}); err != nil {
		return nil, err
	}
	return s.repo.WithContext(ctx).ListByUserID(ownerID)
}

// ListOwn 列出自己的图片
func (s *Service) ListOwn(ctx context.Context, actor authz.Actor) ([]*models.Image, error) {
	if !actor.Authenticated {
		return nil, errs.Unauthenticatedf("authentication required")
	}
	return s.repo.WithContext(ctx).ListByUserID(actor.ID)
}

// Rank 返回按评分排序的全部图片；order ∈ {asc, desc}
func (s *Service) Rank(ctx context.Context, order string) ([]*models.Image, error) {
	var ascending bool
	switch order {
	case "asc":
		ascending = true
	case "desc":
		ascending = false
	default:
		return nil, errs.InvalidInputf("order must be one of: asc, desc")
	}

	key := cache.Rank.Build(order)
	if s.cacheProvider != nil {
		var cached []*models.Image
		if err := s.cacheProvider.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	result, err := s.repo.WithContext(ctx).Rank(ascending)
	if err != nil {
		return nil, err
	}

	if s.cacheProvider != nil {
		if err := s.cacheProvider.Set(ctx, key, result, s.cfg.CacheRankTTL); err != nil {
			log.Printf("Failed to cache rank listing: %v", err)
		}
	}
	return result, nil
}

// Transform 应用变换预设，记录派生视图 URL 和二维码 URL
func (s *Service) Transform(ctx context.Context, actor authz.Actor, imageID uint, presetName string) (*models.Image, error) {
	preset, err := transform.ParsePreset(presetName)
	if err != nil {
		return nil, err
	}

	image, err := s.repo.WithContext(ctx).GetByID(imageID)
	if err != nil {
		return nil, err
	}
	if err := authz.Can(actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindImage, OwnerID: image.UserID}); err != nil {
		return nil, err
	}

	src, err := s.fetchSource(ctx, image)
	if err != nil {
		return nil, err
	}

	derived, err := transform.Apply(src, preset)
	if err != nil {
		return nil, err
	}

	provider := s.storages.GetDefault()
	viewKey := fmt.Sprintf("views/%s.jpg", uuid.NewString())
	if err := provider.SaveWithContext(ctx, viewKey, bytes.NewReader(derived)); err != nil {
		return nil, fmt.Errorf("failed to store transformed view: %w", err)
	}
	viewURL := s.mediaURL(viewKey)

	qrPNG, err := transform.GenerateQRCode(viewURL)
	if err != nil {
		return nil, err
	}
	qrKey := fmt.Sprintf("views/%s-qr.png", uuid.NewString())
	if err := provider.SaveWithContext(ctx, qrKey, bytes.NewReader(qrPNG)); err != nil {
		return nil, fmt.Errorf("failed to store QR code: %w", err)
	}
	qrURL := s.mediaURL(qrKey)

	image.URLView = &viewURL
	image.QRCodeView = &qrURL
	if err := s.repo.WithContext(ctx).Update(image); err != nil {
		return nil, err
	}

	log.Printf("Image %d transformed with preset %s by user %d", imageID, preset, actor.ID)
	return image, nil
}

// fetchSource 读取源图片字节：本服务托管的从存储取，否则按 URL 拉取
func (s *Service) fetchSource(ctx context.Context, image *models.Image) ([]byte, error) {
	if image.StorageKey != nil {
		rc, err := s.storages.GetDefault().GetWithContext(ctx, *image.StorageKey)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, image.URL, nil)
	if err != nil {
		return nil, errs.InvalidInputf("invalid image url: %v", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch source image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, int64(s.cfg.UploadMaxSizeMB)<<20))
}

func (s *Service) resolveTags(ctx context.Context, tagNames []string) ([]*models.Tag, error) {
	if len(tagNames) > models.MaxTagsPerImage {
		return nil, errs.InvalidInputf("at most %d tags per image", models.MaxTagsPerImage)
	}

	tags := make([]*models.Tag, 0, len(tagNames))
	seen := make(map[string]bool, len(tagNames))
	for _, name := range tagNames {
		normalized, err := tagsService.NormalizeName(name)
		if err != nil {
			return nil, err
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		tag, err := s.tags.GetOrCreate(ctx, normalized)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *Service) mediaURL(key string) string {
	return fmt.Sprintf("%s/media/%s", strings.TrimRight(s.cfg.BaseURL(), "/"), key)
}

func (s *Service) invalidateRank(ctx context.Context) {
	if s.cacheProvider == nil {
		return
	}
	for _, order := range []string{"asc", "desc"} {
		if err := s.cacheProvider.Delete(ctx, cache.Rank.Build(order)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Failed to invalidate rank cache: %v", err)
		}
	}
}
