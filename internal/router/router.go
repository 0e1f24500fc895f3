package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	StudentPortal *handler.StudentPortalHandler
	Exam          *handler.ExamHandler
	Group         *handler.GroupHandler
	Result        *handler.ResultHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// studentLimiter may be nil to disable rate limiting of attempt routes.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	studentLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())

	brotliConfig := middleware.DefaultBrotliConfig
	brotliConfig.Skipper = middleware.SkipExports
	router.Use(middleware.BrotliWithConfig(brotliConfig))

	router.GET("/health", handlers.System.Health)

	var attemptLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if studentLimiter != nil {
		attemptLimit = studentLimiter.Middleware()
	}

	// ─── 1. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student/assignments/:kind/:assignment_id/exams/:exam_id")
	studentAPI.Use(middleware.RequireStudentJWT(auth), middleware.NoStore())
	{
		studentAPI.POST("/start", attemptLimit, handlers.StudentPortal.StartExam)
		studentAPI.POST("/submit", attemptLimit, handlers.StudentPortal.SubmitExam)
		studentAPI.GET("/attempt", handlers.StudentPortal.GetAttempt)
	}

	// ─── 2. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1/student")
	ws.Use(middleware.RequireStudentWSAuth(auth))
	{
		ws.GET("/assignments/:kind/:assignment_id/exams/:exam_id/stream", handlers.WS.ExamWebSocketStream)
	}

	// ─── 3. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(auth))
	{
		// Exams
		adminAPI.GET("/exams",
			middleware.RequireAnyPermission(model.PermissionExamsRead, model.PermissionExamsWrite),
			handlers.Exam.ListExams,
		)
		adminAPI.POST("/exams",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.Exam.CreateExam,
		)
		adminAPI.GET("/exams/:exam_id",
			middleware.RequireAnyPermission(model.PermissionExamsRead, model.PermissionExamsWrite),
			handlers.Exam.GetExam,
		)
		adminAPI.PUT("/exams/:exam_id/questions",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.Exam.ReplaceQuestions,
		)

		// Exam codes
		adminAPI.POST("/exams/:exam_id/codes",
			middleware.RequirePermission(model.PermissionExamCodesWrite),
			handlers.Exam.GenerateCodes,
		)
		adminAPI.GET("/exams/:exam_id/codes",
			middleware.RequireAnyPermission(model.PermissionExamsRead, model.PermissionExamCodesWrite),
			handlers.Exam.ListCodes,
		)
		adminAPI.DELETE("/exams/:exam_id/codes",
			middleware.RequirePermission(model.PermissionExamCodesWrite),
			handlers.Exam.DeleteCodes,
		)

		// Classes and rooms
		adminAPI.POST("/classes",
			middleware.RequirePermission(model.PermissionGroupsWrite),
			handlers.Group.CreateClass,
		)
		adminAPI.POST("/rooms",
			middleware.RequirePermission(model.PermissionGroupsWrite),
			handlers.Group.CreateRoom,
		)

		// Assignments and results
		adminAPI.POST("/assignments/:kind/:assignment_id/exams",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Group.AssignExam,
		)

		results := adminAPI.Group("/assignments/:kind/:assignment_id/exams/:exam_id/results")
		results.Use(middleware.RequirePermission(model.PermissionResultsRead), middleware.NoStore())
		{
			results.GET("", handlers.Result.ListResults)
			results.GET("/export", handlers.Result.ExportResults)
		}
	}

	return router
}
