package comments

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/api/middleware"
	commentsSvc "github.com/merkulive/photoshare/internal/comments"
)

// Handler 评论处理器
type Handler struct {
	svc *commentsSvc.Service
}

// NewHandler 创建评论处理器
func NewHandler(svc *commentsSvc.Service) *Handler {
	return &Handler{svc: svc}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=255"`
}

// Create POST /api/v1/images/:id/comments
func (h *Handler) Create(c *gin.Context) {
	imageID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	comment, err := h.svc.Create(c.Request.Context(), actor, imageID, req.Text)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, comment)
}

// ListByImage GET /api/images/:id/comments
func (h *Handler) ListByImage(c *gin.Context) {
	imageID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ListByImage(c.Request.Context(), imageID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// Update PUT /api/v1/comments/:id（仅作者本人）
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	comment, err := h.svc.Update(c.Request.Context(), actor, id, req.Text)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, comment)
}

// Delete DELETE /api/v1/comments/:id（仅版主和管理员）
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "comment deleted", nil)
}
