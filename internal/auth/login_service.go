package auth

import (
	"context"
	"errors"
	"log"

	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/database/repo/accounts"
	"github.com/merkulive/photoshare/internal/errs"
	"github.com/merkulive/photoshare/utils"
	cryptoutils "github.com/merkulive/photoshare/utils/crypto"
)

// LoginService 登录与令牌生命周期服务
type LoginService struct {
	accountsRepo *accounts.Repository
	jwtService   *JWTService
}

// NewLoginService 创建登录服务
func NewLoginService(accountsRepo *accounts.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{
		accountsRepo: accountsRepo,
		jwtService:   jwtService,
	}
}

// Login 校验邮箱和密码，签发令牌对
// 三种失败原因返回不同的提示信息，便于排查，但均为 401。
func (s *LoginService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.accountsRepo.WithContext(ctx).GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, errs.Unauthenticatedf("invalid email")
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, errs.Unauthenticatedf("account is inactive")
	}

	match, err := cryptoutils.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		return nil, nil, err
	}
	if !match {
		return nil, nil, errs.Unauthenticatedf("invalid password")
	}

	pair, err := s.jwtService.GenerateTokens(user.Email)
	if err != nil {
		return nil, nil, err
	}

	if err := s.accountsRepo.WithContext(ctx).UpdateRefreshToken(user.ID, &pair.RefreshToken); err != nil {
		return nil, nil, err
	}

	log.Printf("User logged in: %s", utils.SanitizeLogUsername(user.Username))
	return user, pair, nil
}

// Refresh 用刷新令牌换取新的令牌对
// 刷新令牌与库中存储不一致时视为被盗用，清空存储令牌并拒绝。
func (s *LoginService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := s.jwtService.ParseToken(refreshToken, ScopeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.accountsRepo.WithContext(ctx).GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Unauthenticatedf("could not validate credentials")
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := s.accountsRepo.WithContext(ctx).UpdateRefreshToken(user.ID, nil); err != nil {
			log.Printf("Failed to invalidate refresh token for user %d: %v", user.ID, err)
		}
		return nil, errs.Unauthenticatedf("invalid refresh token")
	}

	if !user.IsActive {
		return nil, errs.Unauthenticatedf("account is inactive")
	}

	// 令牌轮换
	pair, err := s.jwtService.GenerateTokens(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.accountsRepo.WithContext(ctx).UpdateRefreshToken(user.ID, &pair.RefreshToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout 注销并清空存储的刷新令牌
func (s *LoginService) Logout(ctx context.Context, userID uint) error {
	return s.accountsRepo.WithContext(ctx).UpdateRefreshToken(userID, nil)
}
