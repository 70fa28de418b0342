package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mcjkurz/step-translate/api/handler"
	"github.com/mcjkurz/step-translate/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	docHandler *handler.DocumentHandler,
	translateHandler *handler.TranslateHandler,
	exportHandler *handler.ExportHandler,
	jobHandler *handler.JobHandler,
) *gin.Engine {
	// 创建默认的Gin路由引擎
	router := gin.New()
	router.Use(gin.Recovery())

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.SetTraceID())
	router.Use(middleware.ErrorMiddleware())

	// 创建API分组
	api := router.Group("/api")
	{
		// 上传文档并提取段落 - POST /api/upload
		api.POST("/upload", docHandler.UploadDocument)

		// 翻译选中文本 - POST /api/translate
		api.POST("/translate", translateHandler.Translate)

		// 润色译文 - POST /api/adapt
		api.POST("/adapt", translateHandler.Adapt)

		// 导出译文 - POST /api/export
		api.POST("/export", exportHandler.Export)

		// 批量翻译任务API
		jobGroup := api.Group("/jobs")
		{
			// 创建任务 - POST /api/jobs
			jobGroup.POST("", jobHandler.CreateJob)

			// 任务列表 - GET /api/jobs
			jobGroup.GET("", jobHandler.ListJobs)

			// 任务详情 - GET /api/jobs/:id
			jobGroup.GET("/:id", jobHandler.GetJob)

			// 删除任务 - DELETE /api/jobs/:id
			jobGroup.DELETE("/:id", jobHandler.DeleteJob)
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	// 已上传的原始文件，供前端PDF渲染使用
	router.GET("/uploads/:name", docHandler.ServeUpload)

	return router
}

// Cors 跨域资源共享中间件
// 前端独立部署时可以启用
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
