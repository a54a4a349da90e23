package app

import (
	"puspa_backend/internal/config"
	"puspa_backend/internal/middleware"
	"puspa_backend/internal/util"
	"puspa_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAssessmentRoutes(authGroup, c)

		// 3. 管理员接口
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(util.RoleAdmin))
		{
			admin.DELETE("/schemas/:category/cache", c.schema.Invalidate)
		}
	}
}

func (a *App) registerAssessmentRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/categories", c.schema.Categories)

	assessments := r.Group("/assessments/:assessmentId")
	{
		assessments.POST("/sessions", c.session.Open)
		assessments.GET("/history", c.history.Get)
	}

	sessions := r.Group("/sessions/:sessionId")
	{
		sessions.GET("", c.session.Get)
		sessions.DELETE("", c.session.Close)
		sessions.GET("/answers", c.session.Answers)
		sessions.POST("/answers/:questionId", c.session.Apply)
		sessions.POST("/navigate", c.session.Navigate)
		sessions.PUT("/context", c.session.SetContext)
		sessions.POST("/submit", c.session.Submit)
	}
}
