package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipz-ai/internal/dto"
	"clipz-ai/internal/response"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

func bindError(err error) error {
	return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message, err.Error(), err)
}

func (h Handler) AnalyzeVideo(c *gin.Context) {
	var req dto.AnalyzeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.AnalyzeVideo(c.Request.Context(), req)
	if err != nil {
		log.GetLogger().Error("AnalyzeVideo failed", zap.String("url", req.Url), zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GenerateClips(c *gin.Context) {
	var req dto.GenerateClipsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.GenerateClips(c.Request.Context(), req)
	if err != nil {
		log.GetLogger().Error("GenerateClips failed", zap.String("url", req.VideoUrl), zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GenerateClip(c *gin.Context) {
	var req dto.GenerateClipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.GenerateClip(c.Request.Context(), req)
	if err != nil {
		log.GetLogger().Error("GenerateClip failed",
			zap.String("token", req.Token),
			zap.Int("clip_id", req.ClipId),
			zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) UploadSocial(c *gin.Context) {
	var req dto.UploadSocialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.UploadSocial(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetJob(c *gin.Context) {
	job, err := h.Service.GetJob(c.Param("jobId"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.JobResData{Job: *job})
}
