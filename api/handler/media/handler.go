package media

import (
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/storage"
	"github.com/merkulive/photoshare/utils"
)

// Handler 托管文件访问处理器
type Handler struct {
	storages *storage.Factory
}

// NewHandler 创建托管文件处理器
func NewHandler(storages *storage.Factory) *Handler {
	return &Handler{storages: storages}
}

// Serve GET /media/*key 从存储后端流式返回文件
func (h *Handler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !storage.IsValidIdentifier(key) {
		common.RespondError(c, http.StatusBadRequest, "invalid media key")
		return
	}

	provider := h.storages.GetDefault()
	rc, err := provider.GetWithContext(c.Request.Context(), key)
	if err != nil {
		log.Printf("Media key %s not found in storage: %v", utils.SanitizeLogMessage(key), err)
		common.RespondError(c, http.StatusNotFound, "media not found")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// 写入响应失败时无法再改状态码，只能中断
		c.Abort()
	}
}
