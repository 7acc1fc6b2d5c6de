package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/api/middleware"
	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/internal/profile"
)

// Handler 用户处理器
type Handler struct {
	svc *profile.Service
}

// NewHandler 创建用户处理器
func NewHandler(svc *profile.Service) *Handler {
	return &Handler{svc: svc}
}

func parseUserIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

// GetProfile GET /api/users/:username（公开主页，含图片数量）
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, p)
}

// Me GET /api/v1/users/me
func (h *Handler) Me(c *gin.Context) {
	username := c.GetString(middleware.ContextUsernameKey)
	p, err := h.svc.GetProfile(c.Request.Context(), username)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, p)
}

type updateSettingsRequest struct {
	Username *string `json:"username" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,max=150"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// UpdateSettings PATCH /api/v1/users/me
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.svc.UpdateSettings(c.Request.Context(), actor, profile.UpdateSettingsInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole PATCH /api/v1/admin/users/:id/role（仅管理员）
func (h *Handler) SetRole(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.svc.SetRole(c.Request.Context(), actor, userID, models.Role(req.Role))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"id": user.ID, "role": user.Role})
}

// Ban POST /api/v1/admin/users/:id/ban（仅管理员）
func (h *Handler) Ban(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.svc.Ban(c.Request.Context(), actor, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"id": user.ID, "is_active": user.IsActive})
}

// Unban POST /api/v1/admin/users/:id/unban（仅管理员）
func (h *Handler) Unban(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.svc.Unban(c.Request.Context(), actor, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"id": user.ID, "is_active": user.IsActive})
}
