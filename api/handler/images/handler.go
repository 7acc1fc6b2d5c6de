package images

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/api/middleware"
	"github.com/merkulive/photoshare/database/repo/accounts"
	imagesSvc "github.com/merkulive/photoshare/internal/images"
	tagsSvc "github.com/merkulive/photoshare/internal/tags"
)

// Handler 图片处理器
type Handler struct {
	svc          *imagesSvc.Service
	accountsRepo *accounts.Repository
}

// NewHandler 创建图片处理器
func NewHandler(svc *imagesSvc.Service, accountsRepo *accounts.Repository) *Handler {
	return &Handler{
		svc:          svc,
		accountsRepo: accountsRepo,
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid image id")
		return 0, false
	}
	return uint(id), true
}

type createImageRequest struct {
	URL         string   `json:"url" binding:"required,max=255"`
	Description string   `json:"description" binding:"max=255"`
	Tags        []string `json:"tags" binding:"max=5"`
}

// Create POST /api/v1/images
func (h *Handler) Create(c *gin.Context) {
	var req createImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	image, err := h.svc.Create(c.Request.Context(), actor, req.URL, req.Description, req.Tags)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, image)
}

// Upload POST /api/v1/images/upload（multipart，从设备上传）
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "file is required")
		return
	}

	description := c.PostForm("description")
	tagNames, err := tagsSvc.ParseTagList(c.PostForm("tags"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "could not open uploaded file")
		return
	}
	defer file.Close()

	actor := middleware.ActorFromContext(c)
	image, err := h.svc.CreateFromUpload(c.Request.Context(), actor, fileHeader.Filename, file, fileHeader.Size, description, tagNames)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, image)
}

// Get GET /api/images/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	image, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, image)
}

// GetByViewURL GET /api/images/by-view?url=...
func (h *Handler) GetByViewURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		common.RespondError(c, http.StatusBadRequest, "url query parameter is required")
		return
	}

	image, err := h.svc.GetByViewURL(c.Request.Context(), url)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, image)
}

type updateImageRequest struct {
	Description string `json:"description" binding:"max=255"`
}

// Update PUT /api/v1/images/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	image, err := h.svc.UpdateDescription(c.Request.Context(), actor, id, req.Description)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, image)
}

// Delete DELETE /api/v1/images/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "image deleted", nil)
}

// rateAction 评分操作的公共实现
func (h *Handler) rateAction(c *gin.Context, polarity, op string) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.svc.RateAction(c.Request.Context(), actor, id, polarity, op); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	likes, dislikes, err := h.svc.Reactions(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"likes": likes, "dislikes": dislikes})
}

// AddLike POST /api/v1/images/:id/like
func (h *Handler) AddLike(c *gin.Context) {
	h.rateAction(c, imagesSvc.PolarityLike, imagesSvc.OpAdd)
}

// RemoveLike DELETE /api/v1/images/:id/like
func (h *Handler) RemoveLike(c *gin.Context) {
	h.rateAction(c, imagesSvc.PolarityLike, imagesSvc.OpRemove)
}

// AddDislike POST /api/v1/images/:id/dislike
func (h *Handler) AddDislike(c *gin.Context) {
	h.rateAction(c, imagesSvc.PolarityDislike, imagesSvc.OpAdd)
}

// RemoveDislike DELETE /api/v1/images/:id/dislike
func (h *Handler) RemoveDislike(c *gin.Context) {
	h.rateAction(c, imagesSvc.PolarityDislike, imagesSvc.OpRemove)
}

// Reactions GET /api/images/:id/rates
func (h *Handler) Reactions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	likes, dislikes, err := h.svc.Reactions(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	image, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"likes": likes, "dislikes": dislikes, "rate": image.Rate})
}

// Search GET /api/images/search?q=...
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	result, err := h.svc.SearchByDescription(c.Request.Context(), query)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// SearchByTags GET /api/images/search_by_tags?tags=a,b
func (h *Handler) SearchByTags(c *gin.Context) {
	raw := c.Query("tags")
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	result, err := h.svc.SearchByTags(c.Request.Context(), names)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// Rank GET /api/images/rank?order=asc|desc
func (h *Handler) Rank(c *gin.Context) {
	order := c.DefaultQuery("order", "desc")
	result, err := h.svc.Rank(c.Request.Context(), order)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// ListOwn GET /api/v1/images
func (h *Handler) ListOwn(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	result, err := h.svc.ListOwn(c.Request.Context(), actor)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// ListByUsername GET /api/v1/users/:username/images（特权：版主及以上）
func (h *Handler) ListByUsername(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	owner, err := h.accountsRepo.WithContext(c.Request.Context()).GetUserByUsername(c.Param("username"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	result, err := h.svc.ListByOwner(c.Request.Context(), actor, owner.ID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

type transformRequest struct {
	Preset string `json:"preset" binding:"required"`
}

// Transform POST /api/v1/images/:id/transform
func (h *Handler) Transform(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	image, err := h.svc.Transform(c.Request.Context(), actor, id, req.Preset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{
		"url_view":     image.URLView,
		"qr_code_view": image.QRCodeView,
	})
}
