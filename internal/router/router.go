package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"clipz-ai/internal/handler"
	"clipz-ai/log"
)

func SetupRouter(r *gin.Engine, hdl handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/analyze", hdl.AnalyzeVideo)
		api.POST("/generate-clips", hdl.GenerateClips)
		api.POST("/generate-clip", hdl.GenerateClip)
		api.POST("/upload-social", hdl.UploadSocial)
		api.GET("/jobs/:jobId", hdl.GetJob)
		api.GET("/history", hdl.GetHistory)
		api.GET("/history/:token", hdl.GetRun)
		api.DELETE("/history/:token", hdl.DeleteRun)
		// Social account connection
		api.GET("/social/:platform/cookie", hdl.GetSocialCookieStatus)
		api.POST("/social/:platform/cookie", hdl.UploadSocialCookie)
		api.DELETE("/social/:platform/cookie", hdl.DeleteSocialCookie)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if _, err := os.Stat("static"); err == nil {
		log.GetLogger().Info("Using local static directory")
		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/static")
		})
		r.Static("/static", "static")
	}
}
