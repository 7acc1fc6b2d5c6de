package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/merkulive/photoshare/config"
	"github.com/merkulive/photoshare/internal/errs"
)

// Token scope 取值
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

// TokenConfig JWT 配置（启动时加载一次，之后不可变）
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// JWTService JWT Token 服务
type JWTService struct {
	config TokenConfig
}

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// NewJWTService 创建新的 JWT 服务
func NewJWTService(cfg *config.Config) (*JWTService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &JWTService{
		config: TokenConfig{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  cfg.JWTAccessTTL,
			RefreshTTL: cfg.JWTRefreshTTL,
		},
	}, nil
}

// NewJWTServiceWithConfig 直接从 TokenConfig 创建，测试用
func NewJWTServiceWithConfig(cfg TokenConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateTokens 生成访问令牌和刷新令牌
// 两个令牌均以用户邮箱作为 subject，通过 scope 声明区分用途。
func (s *JWTService) GenerateTokens(email string) (*TokenPair, error) {
	accessToken, accessExpiry, err := s.generate(email, ScopeAccess, s.config.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiry, err := s.generate(email, ScopeRefresh, s.config.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (s *JWTService) generate(email, scope string, ttl time.Duration) (string, time.Time, error) {
	if len(s.config.Secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not initialized")
	}

	now := time.Now()
	expiry := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   email,
		"scope": scope,
		"iat":   now.Unix(),
		"exp":   expiry.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiry, nil
}

// ParseToken 解析令牌并校验 scope，返回 subject（邮箱）
func (s *JWTService) ParseToken(tokenString, expectedScope string) (string, error) {
	if len(s.config.Secret) == 0 {
		return "", errors.New("JWT secret is not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.config.Secret, nil
	})
	if err != nil {
		return "", errs.Unauthenticatedf("could not validate credentials")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errs.Unauthenticatedf("could not validate credentials")
	}

	scope, _ := claims["scope"].(string)
	if scope != expectedScope {
		return "", errs.Unauthenticatedf("invalid scope for token")
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return "", errs.Unauthenticatedf("could not validate credentials")
	}
	return email, nil
}
