package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipz-ai/internal/response"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

const maxCookieUploadBytes = 1 << 20

func (h Handler) GetSocialCookieStatus(c *gin.Context) {
	status, err := h.Service.CookieStatus(c.Param("platform"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, status)
}

// UploadSocialCookie connects an account from an uploaded cookie export.
// The export comes either as multipart "file" or as the raw request body.
func (h Handler) UploadSocialCookie(c *gin.Context) {
	platform := c.Param("platform")

	var data []byte
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, maxCookieUploadBytes))
	} else {
		data, err = io.ReadAll(io.LimitReader(c.Request.Body, maxCookieUploadBytes))
	}
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "读取上传文件失败 Failed to read uploaded file", err))
		return
	}
	if len(data) == 0 {
		response.Error(c, apperrors.CodeInvalidParams, "请提供Cookie内容 Please provide cookie content")
		return
	}

	status, err := h.Service.ConnectAccount(platform, data)
	if err != nil {
		log.GetLogger().Warn("connect account failed", zap.String("platform", platform), zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, status)
}

func (h Handler) DeleteSocialCookie(c *gin.Context) {
	platform := c.Param("platform")
	if err := h.Service.DisconnectAccount(platform); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, gin.H{"platform": platform, "connected": false})
}
