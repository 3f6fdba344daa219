package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/willslawrence/sfla-tracker/docs"
	"github.com/willslawrence/sfla-tracker/internal/api/handler"
	"github.com/willslawrence/sfla-tracker/internal/api/middleware"
	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
	"github.com/willslawrence/sfla-tracker/web"
)

// Deps carries everything the router needs. Services are constructed in main
// because the check dispatcher wraps the update service and owns worker
// goroutines the router must not manage.
type Deps struct {
	Sites      ports.SiteService
	Reports    ports.ReportService
	Auth       ports.AuthService
	Dispatcher handler.CheckDispatcher

	Mongo *mongo.Database
	Redis *redis.Client

	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("sfla"))

	// --- Handlers ---
	siteHandler := handler.NewSiteHandler(d.Sites)
	checkHandler := handler.NewCheckHandler(d.Dispatcher)
	reportHandler := handler.NewReportHandler(d.Reports)
	authHandler := handler.NewAuthHandler(d.Auth)
	authMiddleware := middleware.Auth(d.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Read routes (no auth: the map loads before operators sign in) ---
	e.GET("/v1/markers", siteHandler.Markers)
	e.GET("/v1/sites/:id", siteHandler.Get)
	e.GET("/v1/sites/:id/changes", siteHandler.Changes)

	// --- Check ingestion (operators and admins) ---
	checks := e.Group("/v1/checks", authMiddleware,
		middleware.RBAC(domain.RoleAdmin, domain.RoleOperator))
	checks.POST("", checkHandler.Apply)
	checks.POST("/batch", checkHandler.ApplyBatch)

	// --- Reports (admins only) ---
	reports := e.Group("/v1/reports", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	reports.GET("/:year/:month", reportHandler.Monthly)
	reports.GET("/:year/:month/xlsx", reportHandler.MonthlyXLSX)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readyHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", readyHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Embedded map client ---
	e.FileFS("/", "index.html", web.Content)
	e.StaticFS("/assets", echo.MustSubFS(web.Content, "assets"))

	return e
}
