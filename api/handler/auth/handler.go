package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/api/middleware"
	authSvc "github.com/merkulive/photoshare/internal/auth"
	"github.com/merkulive/photoshare/internal/profile"
)

// Handler 认证处理器
type Handler struct {
	loginService   *authSvc.LoginService
	profileService *profile.Service
}

// NewHandler 创建认证处理器
func NewHandler(loginService *authSvc.LoginService, profileService *profile.Service) *Handler {
	return &Handler{
		loginService:   loginService,
		profileService: profileService,
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,max=150"`
	Password string `json:"password" binding:"required,min=6"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Signup POST /api/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.profileService.Signup(c.Request.Context(), profile.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondCreated(c, userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	_, pair, err := h.loginService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh POST /api/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.loginService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Logout POST /api/auth/logout（需要认证）
func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	if userID == 0 {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.loginService.Logout(c.Request.Context(), userID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "logged out", nil)
}
