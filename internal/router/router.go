package router

import (
	"capgrid/internal/handler"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/captions/filter", hdl.FilterCaptions)
		api.POST("/captions/resample", hdl.ResampleCaptions)
		api.POST("/captions/process", hdl.ProcessCaptions)
		api.POST("/captions/jobs", hdl.CreateJob)
		api.GET("/captions/jobs", hdl.JobHistory)
		api.GET("/captions/jobs/:jobId", hdl.GetJob)
		api.DELETE("/captions/jobs/:jobId", hdl.DeleteJob)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
		api.GET("/deps", hdl.GetDeps)
		api.GET("/config", hdl.GetConfig)
	}
}
