package tags

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/api/middleware"
	tagsSvc "github.com/merkulive/photoshare/internal/tags"
)

// Handler 标签处理器
type Handler struct {
	svc *tagsSvc.Service
}

// NewHandler 创建标签处理器
func NewHandler(svc *tagsSvc.Service) *Handler {
	return &Handler{svc: svc}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid tag id")
		return 0, false
	}
	return uint(id), true
}

type tagRequest struct {
	Name string `json:"name" binding:"required,max=25"`
}

// Create POST /api/v1/tags
func (h *Handler) Create(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	tag, err := h.svc.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, tag)
}

// List GET /api/tags?skip=0&limit=20
func (h *Handler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// Get GET /api/tags/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	tag, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, tag)
}

// Update PUT /api/v1/tags/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	tag, err := h.svc.Update(c.Request.Context(), actor, id, req.Name)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, tag)
}

// Delete DELETE /api/v1/tags/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(c)
	tag, err := h.svc.Remove(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, tag)
}
