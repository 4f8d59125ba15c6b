package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"clipz-ai/internal/dto"
	"clipz-ai/internal/response"
)

// GetHistory lists recent clip runs. ?limit= caps the result.
func (h Handler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	runs, err := h.Service.GetHistory(limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.HistoryResData{Runs: runs})
}

func (h Handler) GetRun(c *gin.Context) {
	run, err := h.Service.GetRun(c.Param("token"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, run)
}

func (h Handler) DeleteRun(c *gin.Context) {
	token := c.Param("token")
	if err := h.Service.DeleteRun(token); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}
