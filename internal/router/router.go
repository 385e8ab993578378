package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusworks/examport/internal/config"
	"github.com/campusworks/examport/internal/handler"
	"github.com/campusworks/examport/internal/middleware"
	"github.com/campusworks/examport/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Student *handler.StudentHandler
	Admin   *handler.AdminHandler
}

// Setup configures the stub backend's Gin route groups. Student endpoints
// are public; admin endpoints require the bearer token issued at admin login.
func Setup(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// The real platform serves browser clients too; keep CORS permissive
	// like its dev setup.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, http.StatusOK, "ok", nil)
	})

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	students := api.Group("/students")
	{
		students.GET("/:student_id/exams", handlers.Student.Assignments)
		students.GET("/:student_id/exams/:exam_id/questions", handlers.Student.Questions)
	}

	api.POST("/exams/submit", handlers.Student.Submit)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdminToken(cfg.JWTSecret))
	{
		admin.POST("/exams", handlers.Admin.CreateExam)
		admin.POST("/exams/:exam_id/content", handlers.Admin.UpdateExam)
		admin.GET("/exams/ungraded", handlers.Admin.Ungraded)
		admin.POST("/exams/grade", handlers.Admin.Grade)
		admin.GET("/exams/:exam_id/report", handlers.Admin.Report)
		admin.GET("/exams/:exam_id/report/download", handlers.Admin.DownloadReport)
		admin.GET("/exams/:exam_id/scripts/download", handlers.Admin.DownloadScripts)
	}

	return router
}
