package comments

import (
	"context"
	"log"
	"strings"

	"github.com/merkulive/photoshare/database/models"
	commentsRepo "github.com/merkulive/photoshare/database/repo/comments"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
)

// Service 评论服务
type Service struct {
	repo       *commentsRepo.Repository
	imagesRepo *imagesRepo.Repository
}

// NewService 创建评论服务
func NewService(repo *commentsRepo.Repository, imagesRepo *imagesRepo.Repository) *Service {
	return &Service{
		repo:       repo,
		imagesRepo: imagesRepo,
	}
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.InvalidInputf("comment text must not be empty")
	}
	if len(text) > 255 {
		return "", errs.InvalidInputf("comment text must be at most 255 characters")
	}
	return text, nil
}

// Create 在图片下创建评论，图片必须存在
func (s *Service) Create(ctx context.Context, actor authz.Actor, imageID uint, text string) (*models.Comment, error) {
	if err := authz.Can(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindComment}); err != nil {
		return nil, err
	}

	text, err := validateText(text)
	if err != nil {
		return nil, err
	}

	if _, err := s.imagesRepo.WithContext(ctx).GetByID(imageID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:    text,
		ImageID: imageID,
		UserID:  actor.ID,
	}
	if err := s.repo.WithContext(ctx).Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Get 按 ID 获取评论
func (s *Service) Get(ctx context.Context, id uint) (*models.Comment, error) {
	return s.repo.WithContext(ctx).GetByID(id)
}

// ListByImage 列出图片下的全部评论，按创建时间升序
func (s *Service) ListByImage(ctx context.Context, imageID uint) ([]*models.Comment, error) {
	if _, err := s.imagesRepo.WithContext(ctx).GetByID(imageID); err != nil {
		return nil, err
	}
	return s.repo.WithContext(ctx).ListByImageID(imageID)
}

// Update 编辑评论正文，仅限作者本人
func (s *Service) Update(ctx context.Context, actor authz.Actor, id uint, text string) (*models.Comment, error) {
	comment, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := authz.Can(actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindComment, OwnerID: comment.UserID}); err != nil {
		return nil, err
	}

	text, err = validateText(text)
	if err != nil {
		return nil, err
	}

	if err := s.repo.WithContext(ctx).UpdateText(comment, text); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete 删除评论，仅限版主和管理员——作者本人无权删除
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	comment, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		return err
	}
	if err := authz.Can(actor, authz.ActionDelete, authz.Resource{Kind: authz.KindComment, OwnerID: comment.UserID}); err != nil {
		return err
	}

	if err := s.repo.WithContext(ctx).Delete(id); err != nil {
		return err
	}
	log.Printf("Comment %d deleted by user %d (role=%s)", id, actor.ID, actor.Role)
	return nil
}
