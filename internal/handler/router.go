package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/middleware"
	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/service"
	"github.com/autocare/autocare-api/pkg/config"
	"github.com/autocare/autocare-api/pkg/logger"
	corsmiddleware "github.com/autocare/autocare-api/pkg/middleware/cors"
	reqidmiddleware "github.com/autocare/autocare-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Vehicles   *VehicleHandler
	Repairs    *RepairHandler
	Services   *ServiceItemHandler
	SpareParts *SparePartHandler
	Categories *CategoryHandler
	Invoices   *InvoiceHandler
	Ops        *MetricsHandler
}

// StaticFiles is the upload store served as plain files.
type StaticFiles interface {
	Dir() string
	PublicPrefix() string
}

// RouterDeps carries what NewRouter needs besides the handlers.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    middleware.TokenAuthenticator
	Metrics *service.MetricsService
	Uploads StaticFiles
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(deps RouterDeps, h Handlers) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS))
	var uploadPrefix string
	if deps.Uploads != nil {
		uploadPrefix = deps.Uploads.PublicPrefix()
	}
	r.Use(middleware.Metrics(deps.Metrics, "/metrics", uploadPrefix))

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if deps.Uploads != nil {
		r.Static(uploadPrefix, deps.Uploads.Dir())
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Auth, deps.Logger))
	can := middleware.RequireCapability

	users := secured.Group("/users")
	users.GET("/me", can(models.CapUserSelf), h.Users.Me)
	users.GET("", can(models.CapUserManage), h.Users.List)
	users.PUT("/:id", can(models.CapUserSelf), h.Users.UpdateProfile)
	users.PUT("/:id/password", can(models.CapUserSelf), h.Users.ChangePassword)
	users.PUT("/:id/admin", can(models.CapUserManage), h.Users.AdminUpdate)
	users.PATCH("/:id/role", can(models.CapUserManage), h.Users.ChangeRole)
	users.DELETE("/:id", can(models.CapUserManage), h.Users.Delete)

	vehicles := secured.Group("/vehicles")
	vehicles.POST("", can(models.CapVehicleWrite), h.Vehicles.Create)
	vehicles.GET("", can(models.CapVehicleRead), h.Vehicles.List)
	vehicles.GET("/:id", can(models.CapVehicleRead), h.Vehicles.Get)
	vehicles.PUT("/:id", can(models.CapVehicleWrite), h.Vehicles.Update)
	vehicles.DELETE("/:id", can(models.CapVehicleDelete), h.Vehicles.Delete)

	repairs := secured.Group("/repairs")
	repairs.POST("", can(models.CapRepairWrite), h.Repairs.Create)
	repairs.GET("", can(models.CapRepairRead), h.Repairs.List)
	repairs.GET("/upcoming-maintenance", can(models.CapUpcomingMaintenance), h.Repairs.UpcomingMaintenance)
	repairs.GET("/vehicle/:identifier", can(models.CapRepairRead), h.Repairs.ListByVehicle)
	repairs.GET("/:id", can(models.CapRepairRead), h.Repairs.Get)
	repairs.PUT("/:id", can(models.CapRepairWrite), h.Repairs.Update)
	repairs.DELETE("/:id", can(models.CapRepairDelete), h.Repairs.Delete)
	repairs.PATCH("/:id/quote-decision", can(models.CapRepairQuoteDecision), h.Repairs.DecideQuote)

	services := secured.Group("/services")
	services.POST("", can(models.CapServiceWrite), h.Services.Create)
	services.GET("/repair/:repair_id", can(models.CapServiceRead), h.Services.ListByRepair)
	services.GET("/:id/detail", can(models.CapServiceRead), h.Services.Detail)
	services.PUT("/:id", can(models.CapServiceWrite), h.Services.Update)
	services.DELETE("/:id", can(models.CapServiceDelete), h.Services.Delete)

	parts := secured.Group("/spare-parts")
	categories := parts.Group("/categories")
	categories.GET("", can(models.CapCategoryRead), h.Categories.List)
	categories.GET("/:id", can(models.CapCategoryRead), h.Categories.Get)
	categories.POST("", can(models.CapCategoryWrite), h.Categories.Create)
	categories.PUT("/:id", can(models.CapCategoryWrite), h.Categories.Update)
	parts.GET("", can(models.CapSparePartRead), h.SpareParts.List)
	parts.GET("/:id", can(models.CapSparePartRead), h.SpareParts.Get)
	parts.POST("", can(models.CapSparePartWrite), h.SpareParts.Create)
	parts.PUT("/:id", can(models.CapSparePartWrite), h.SpareParts.Update)
	parts.DELETE("/:id", can(models.CapSparePartDelete), h.SpareParts.Delete)

	invoices := secured.Group("/invoices")
	invoices.GET("", can(models.CapInvoiceRead), h.Invoices.List)
	invoices.GET("/export", can(models.CapInvoiceExport), h.Invoices.Export)
	invoices.GET("/:id", can(models.CapInvoiceRead), h.Invoices.Get)
	invoices.GET("/:id/pdf", can(models.CapInvoiceRead), h.Invoices.PDF)
	invoices.POST("", can(models.CapInvoiceCreate), h.Invoices.Create)

	return r
}
