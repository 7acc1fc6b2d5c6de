package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/internal/errs"
	"gorm.io/gorm"
)

// Repository 账户仓库 - 封装所有用户相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的账户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CountUsers 统计用户总数
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CreateUser 创建用户；邮箱冲突返回 errs.ErrConflict
func (r *Repository) CreateUser(user *models.User) error {
	err := r.db.Create(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflictf("account with email %s already exists", user.Email)
		}
		return err
	}
	return nil
}

// GetUserByEmail 通过邮箱获取用户
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("user %s", email)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("user %s", username)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID 通过ID获取用户
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("user %d", id)
		}
		return nil, err
	}
	return &user, nil
}

// EmailTaken 检查邮箱是否已被其他账号占用
func (r *Repository) EmailTaken(email string, excludeUserID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, excludeUserID).
		Count(&count).Error
	return count > 0, err
}

// UpdateUser 更新用户
func (r *Repository) UpdateUser(user *models.User) error {
	err := r.db.Save(user).Error
	if err != nil && isUniqueViolation(err) {
		return errs.Conflictf("email %s already in use", user.Email)
	}
	return err
}

// UpdateRefreshToken 更新用户的刷新令牌（nil 表示清除）
func (r *Repository) UpdateRefreshToken(userID uint, token *string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token", token).Error
}

// SetRole 设置用户角色
func (r *Repository) SetRole(userID uint, role models.Role) (*models.User, error) {
	user, err := r.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := r.db.Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive 设置账号激活状态（封禁/解封）
func (r *Repository) SetActive(userID uint, active bool) (*models.User, error) {
	user, err := r.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := r.db.Model(user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// isUniqueViolation 识别唯一约束冲突（sqlite/postgres 报错文本不同）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// IsUniqueViolation 供其他仓库复用的唯一冲突判断
func IsUniqueViolation(err error) bool {
	return isUniqueViolation(err)
}
