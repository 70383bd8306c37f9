package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/container"
	"github.com/joshua-takyi/gylounge/internal/handlers"
	"github.com/joshua-takyi/gylounge/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	csrfProtect := middleware.CSRF([]byte(cfg.CSRFAuthKey), cfg.IsProduction(), cfg.AllowedOrigins)
	limit := func(prefix string) gin.HandlerFunc {
		return middleware.RateLimit(container.Redis, middleware.RateLimitConfig{
			Prefix:   prefix,
			Capacity: cfg.RateLimitBurst,
			Interval: cfg.RateLimitInterval,
		}, container.Logger)
	}

	// Form posts from the home page. Both answer with a redirect back to it.
	r.POST("/membership/register", limit("rl:register"), csrfProtect,
		handlers.RegisterMember(container.MembershipService, cfg.RedirectPath))
	r.POST("/booking", limit("rl:booking"), csrfProtect,
		handlers.CreateBooking(container.ReservationService, cfg.RedirectPath))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health("gylounge-api"))
		v1.GET("/csrf", csrfProtect, handlers.CSRFToken())
		v1.GET("/feedback", handlers.Feedback())
		v1.GET("/booking-target", handlers.BookingTarget(container.CatalogService))
	}

	var validator middleware.TokenValidator
	if container.Tokens != nil {
		validator = container.Tokens
	}
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(validator, container.Logger))
	{
		admin.GET("/slots/:id/bookings", handlers.ListSlotBookings(container.CatalogService))
		admin.POST("/reconcile", handlers.Reconcile(container.Reconciler, cfg.ReconcileAfter))
		admin.POST("/members/activate", handlers.ActivateMember(container.MembershipService))
	}

	return r
}
