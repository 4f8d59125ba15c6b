package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipz-ai/internal/response"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

func (h Handler) DownloadFile(c *gin.Context) {
	requested := c.Param("filepath")
	localPath, ok := resolveDownloadPath(requested)
	if !ok {
		log.GetLogger().Warn("rejected download path", zap.String("path", requested))
		response.AbortWithStatus(c, http.StatusForbidden, apperrors.CodeUnauthorized, "禁止访问 Forbidden")
		return
	}

	info, err := os.Stat(localPath)
	if err != nil || info.IsDir() {
		response.AbortWithStatus(c, http.StatusNotFound, apperrors.CodeFileNotFound, "文件不存在 File not found")
		return
	}
	c.FileAttachment(localPath, filepath.Base(localPath))
}
