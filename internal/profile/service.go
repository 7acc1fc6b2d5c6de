package profile

import (
	"context"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/merkulive/photoshare/cache"
	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/database/repo/accounts"
	"github.com/merkulive/photoshare/database/repo/images"
	"github.com/merkulive/photoshare/internal/authz"
	"github.com/merkulive/photoshare/internal/errs"
	"github.com/merkulive/photoshare/utils"
	cryptoutils "github.com/merkulive/photoshare/utils/crypto"
)

// Service 用户账号服务：注册、主页、设置与管理操作
type Service struct {
	accountsRepo *accounts.Repository
	imagesRepo   *images.Repository
	cacheProvider cache.Provider
}

// NewService 创建用户账号服务
func NewService(accountsRepo *accounts.Repository, imagesRepo *images.Repository, cacheProvider cache.Provider) *Service {
	return &Service{
		accountsRepo:  accountsRepo,
		imagesRepo:    imagesRepo,
		cacheProvider: cacheProvider,
	}
}

// SignupInput 注册请求
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Profile 用户主页视图
type Profile struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	ImageCount int64     `json:"image_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Signup 创建新账号；系统中的第一个账号自动成为管理员
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" {
		return nil, errs.InvalidInputf("username must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errs.InvalidInputf("invalid email address")
	}
	if len(in.Password) < 6 {
		return nil, errs.InvalidInputf("password must be at least 6 characters")
	}

	repo := s.accountsRepo.WithContext(ctx)

	hash, err := cryptoutils.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	count, err := repo.CountUsers()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = models.RoleAdmin
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if err := repo.CreateUser(user); err != nil {
		return nil, err
	}

	log.Printf("New account created: %s (role=%s)", utils.SanitizeLogUsername(username), role)
	return user, nil
}

// GetProfile 按用户名获取公开主页，带图片数量统计
func (s *Service) GetProfile(ctx context.Context, username string) (*Profile, error) {
	key := cache.Profile.Build(username)
	if s.cacheProvider != nil {
		var cached Profile
		if err := s.cacheProvider.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.accountsRepo.WithContext(ctx).GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	count, err := s.imagesRepo.WithContext(ctx).CountByUserID(user.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       string(user.Role),
		IsActive:   user.IsActive,
		ImageCount: count,
		CreatedAt:  user.CreatedAt,
	}

	if s.cacheProvider != nil {
		if err := s.cacheProvider.Set(ctx, key, profile, cache.DefaultProfileCacheExpiration); err != nil {
			log.Printf("Failed to cache profile for %s: %v", utils.SanitizeLogUsername(username), err)
		}
	}
	return profile, nil
}

// UpdateSettingsInput 账号设置更新请求；nil 字段表示不修改
type UpdateSettingsInput struct {
	Username *string
	Email    *string
	Password *string
}

// UpdateSettings 更新自己的账号设置
func (s *Service) UpdateSettings(ctx context.Context, actor authz.Actor, in UpdateSettingsInput) (*models.User, error) {
	if !actor.Authenticated {
		return nil, errs.Unauthenticatedf("authentication required")
	}

	repo := s.accountsRepo.WithContext(ctx)
	user, err := repo.GetUserByID(actor.ID)
	if err != nil {
		return nil, err
	}
	oldUsername := user.Username

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, errs.InvalidInputf("username must not be empty")
		}
		user.Username = username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, errs.InvalidInputf("invalid email address")
		}
		taken, err := repo.EmailTaken(email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errs.Conflictf("email %s already in use", email)
		}
		user.Email = email
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, errs.InvalidInputf("password must be at least 6 characters")
		}
		hash, err := cryptoutils.GenerateFromPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := repo.UpdateUser(user); err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, oldUsername)
	if user.Username != oldUsername {
		s.invalidateProfile(ctx, user.Username)
	}
	return user, nil
}

// SetRole 修改用户角色，仅管理员可用。
// 允许的目标角色只有 user 和 moderator；admin 只能由第一个注册者获得。
func (s *Service) SetRole(ctx context.Context, actor authz.Actor, userID uint, role models.Role) (*models.User, error) {
	if err := authz.Can(actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindUserAccount}); err != nil {
		return nil, err
	}
	if role != models.RoleUser && role != models.RoleModerator {
		return nil, errs.InvalidInputf("role must be one of: user, moderator")
	}

	user, err := s.accountsRepo.WithContext(ctx).SetRole(userID, role)
	if err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, user.Username)
	return user, nil
}

// Ban 封禁账号
func (s *Service) Ban(ctx context.Context, actor authz.Actor, userID uint) (*models.User, error) {
	return s.setActive(ctx, actor, userID, false)
}

// Unban 解封账号
func (s *Service) Unban(ctx context.Context, actor authz.Actor, userID uint) (*models.User, error) {
	return s.setActive(ctx, actor, userID, true)
}

func (s *Service) setActive(ctx context.Context, actor authz.Actor, userID uint, active bool) (*models.User, error) {
	if err := authz.Can(actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindUserAccount}); err != nil {
		return nil, err
	}
	// 管理员不能封禁自己
	if !active && actor.ID == userID {
		return nil, errs.InvalidInputf("cannot ban your own account")
	}

	user, err := s.accountsRepo.WithContext(ctx).SetActive(userID, active)
	if err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, user.Username)
	return user, nil
}

func (s *Service) invalidateProfile(ctx context.Context, username string) {
	if s.cacheProvider == nil {
		return
	}
	if err := s.cacheProvider.Delete(ctx, cache.Profile.Build(username)); err != nil {
		log.Printf("Failed to invalidate profile cache for %s: %v", utils.SanitizeLogUsername(username), err)
	}
}
