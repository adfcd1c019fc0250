package httpserver

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/handler"
	"github.com/noah-isme/logistics-tracker-api/internal/middleware"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/logistics-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/logistics-tracker-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Parcels       *handler.ParcelHandler
	Routes        *handler.RouteHandler
	Notifications *handler.NotificationHandler
	Issues        *handler.IssueHandler
	Analytics     *handler.AnalyticsHandler
	Metrics       *handler.MetricsHandler
}

// Options configures router construction.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Sessions       middleware.SessionResolver
	Cookie         middleware.SessionCookie
	Audit          middleware.AuditRecorder
}

// NewRouter assembles the gin engine with the global middleware chain and all routes.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	session := middleware.Session(opts.Sessions, opts.Cookie)
	operator := middleware.RequireOperator()
	admin := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(opts.APIPrefix)
	api.GET("/track/:token", h.Parcels.PublicTrack)

	auth := api.Group("/auth")
	auth.POST("/register", middleware.OptionalSession(opts.Sessions, opts.Cookie), h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", session, h.Auth.Logout)
	auth.GET("/me", session, h.Auth.Me)
	auth.POST("/change-password", session, h.Auth.ChangePassword)

	secured := api.Group("")
	secured.Use(session)

	users := secured.Group("/users")
	users.PATCH("/me", h.Auth.UpdateProfile)
	users.GET("", admin, h.Users.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf), h.Users.Get)
	users.PATCH("/:id/role", admin, h.Users.UpdateRole)
	secured.GET("/audit-logs", admin, h.Users.AuditLogs)

	parcels := secured.Group("/parcels")
	parcels.GET("", h.Parcels.List)
	parcels.POST("", h.Parcels.Create)
	parcels.GET("/export", h.Parcels.Export)
	parcels.GET("/track/:trackingNumber", h.Parcels.Track)
	parcels.GET("/:id", h.Parcels.Get)
	parcels.PATCH("/:id", operator, middleware.Audit(opts.Audit, opts.Logger, models.AuditActionParcelUpdate, "parcel"), h.Parcels.Update)
	parcels.DELETE("/:id", operator, h.Parcels.Delete)
	parcels.POST("/:id/tracking-link", h.Parcels.IssueTrackingLink)
	parcels.GET("/:id/route", h.Routes.GetByParcel)
	parcels.GET("/:id/route-options", h.Routes.Options)

	routes := secured.Group("/routes")
	routes.GET("", operator, h.Routes.List)
	routes.GET("/active", operator, h.Routes.ListActive)
	routes.POST("", operator, middleware.Audit(opts.Audit, opts.Logger, models.AuditActionRouteCreate, "route"), h.Routes.Create)
	routes.PATCH("/:id", operator, middleware.Audit(opts.Audit, opts.Logger, models.AuditActionRouteUpdate, "route"), h.Routes.Update)

	notifications := secured.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.POST("", operator, h.Notifications.Create)
	notifications.POST("/:id/read", h.Notifications.MarkRead)
	secured.GET("/notification-preferences", h.Notifications.GetPreferences)
	secured.PATCH("/notification-preferences", h.Notifications.UpdatePreferences)

	issues := secured.Group("/issues")
	issues.GET("", h.Issues.List)
	issues.GET("/active", h.Issues.ListActive)
	issues.GET("/:id", h.Issues.Get)
	issues.POST("", operator, middleware.Audit(opts.Audit, opts.Logger, models.AuditActionIssueCreate, "issue"), h.Issues.Create)
	issues.PATCH("/:id", operator, middleware.Audit(opts.Audit, opts.Logger, models.AuditActionIssueUpdate, "issue"), h.Issues.Update)

	secured.GET("/stats", h.Analytics.Stats)
	secured.POST("/stats/refresh", operator, h.Analytics.Refresh)
	secured.GET("/analytics/summary", operator, h.Analytics.Summary)

	return r
}
