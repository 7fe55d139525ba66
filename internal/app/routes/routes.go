package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/controllers"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Clubs         *controllers.ClubController
	Applications  *controllers.ClubApplicationController
	Memberships   *controllers.MembershipController
	Events        *controllers.EventController
	Announcements *controllers.AnnouncementController
}

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, health HealthCheck) {
	router.GET("/health", healthHandler(health))

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", healthHandler(health))

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	reviewers := authMiddleware.RoleRequired(models.RoleAdmin, models.RolePresident)
	presidentOnly := authMiddleware.RoleRequired(models.RolePresident)

	authenticated.GET("/auth/me", c.Auth.Me)

	users := authenticated.Group("/users")
	{
		users.PUT("/me", c.Users.UpdateProfile)
		users.PUT("/me/password", c.Users.ChangePassword)
	}

	clubs := authenticated.Group("/clubs")
	{
		clubs.GET("", c.Clubs.ListClubs)
		clubs.GET("/mine", presidentOnly, c.Clubs.ListMyClubs)
		clubs.GET("/:id", c.Clubs.GetClub)
		clubs.POST("/:id/memberships", c.Clubs.RequestMembership)
		clubs.DELETE("/:id/memberships", c.Clubs.CancelMembership)
	}

	applications := authenticated.Group("/club-applications")
	{
		applications.POST("", c.Applications.Submit)
		applications.GET("", c.Applications.List)
		applications.GET("/:id", c.Applications.Get)
		applications.POST("/:id/approve", adminOnly, c.Applications.Approve)
		applications.POST("/:id/reject", adminOnly, c.Applications.Reject)
	}

	memberships := authenticated.Group("/memberships")
	{
		memberships.GET("/mine", c.Memberships.ListMine)
		memberships.GET("/pending", reviewers, c.Memberships.ListPending)
		memberships.POST("/:id/approve", reviewers, c.Memberships.Approve)
		memberships.POST("/:id/reject", reviewers, c.Memberships.Reject)
		memberships.PUT("/:id/role", reviewers, c.Memberships.AssignRole)
		memberships.DELETE("/:id", reviewers, c.Memberships.Remove)
	}

	events := authenticated.Group("/events")
	{
		events.GET("", c.Events.List)
		events.GET("/:id", c.Events.Get)
		events.POST("", reviewers, c.Events.Propose)
		events.POST("/:id/approve", reviewers, c.Events.Approve)
		events.POST("/:id/reject", reviewers, c.Events.Reject)
	}

	announcements := authenticated.Group("/announcements")
	{
		announcements.GET("", c.Announcements.List)
		announcements.GET("/pending", adminOnly, c.Announcements.ListPending)
		announcements.GET("/audiences", reviewers, c.Announcements.Audiences)
		announcements.GET("/:id", c.Announcements.Get)
		announcements.POST("", reviewers, c.Announcements.Create)
		announcements.PUT("/:id", reviewers, c.Announcements.Update)
		announcements.DELETE("/:id", adminOnly, c.Announcements.Delete)
		announcements.POST("/:id/read", c.Announcements.MarkRead)
		announcements.POST("/:id/approve", adminOnly, c.Announcements.Approve)
		announcements.POST("/:id/reject", adminOnly, c.Announcements.Reject)
	}
}

func healthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unavailable")
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(status, ""))
	}
}
