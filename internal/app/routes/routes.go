package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/svpddu/studentrecords/internal/app/controllers"
	"github.com/svpddu/studentrecords/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	studentController *controllers.StudentController,
	adminController *controllers.AdminController,
	authController *controllers.AuthController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", healthController.Health)

	api := router.Group("/api")

	// --- Public Auth routes ---
	api.POST("/login", authController.Login)

	// --- Student routes ---
	students := api.Group("/students")
	{
		students.POST("", studentController.Create)
		students.GET("", studentController.List)
		students.GET("/class-strength", studentController.ClassStrength)
		students.GET("/export", studentController.Export)
		students.GET("/:id", studentController.Get)
		students.PUT("/:id", studentController.Update)
		students.PATCH("/:id", studentController.Verify)
		students.DELETE("/:id", studentController.Delete)
		students.GET("/:id/pdf", studentController.ProfilePDF)
		students.GET("/:id/id-card", studentController.IDCardPDF)
	}

	// --- Authenticated batch routes ---
	admin := students.Group("")
	admin.Use(authMiddleware.JWTAuth())
	{
		admin.POST("/promote", adminController.Promote)
		admin.DELETE("/delete/:year", adminController.PurgeYear)
	}
}
