package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parentdesk/portal-auth/internal/api/handler"
	"github.com/parentdesk/portal-auth/internal/api/middleware"
	"github.com/parentdesk/portal-auth/internal/core/ports"
	"github.com/parentdesk/portal-auth/internal/core/rules"
	"github.com/parentdesk/portal-auth/internal/core/service"
	mongodb "github.com/parentdesk/portal-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/parentdesk/portal-auth/internal/infrastructure/db/redis"
	"github.com/parentdesk/portal-auth/internal/infrastructure/identity"
	"github.com/parentdesk/portal-auth/internal/infrastructure/queue"
)

// Deps carries the infrastructure the router wires together.
type Deps struct {
	Mongo           *mongo.Database
	Redis           *redis.Client
	JWTSecret       string
	TokenTTL        time.Duration
	ProfileCacheTTL time.Duration
	Auditor         *queue.Dispatcher
	Log             zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portalauth"))

	// --- Dependencies ---
	var profiles ports.ProfileRepository = mongodb.NewProfileRepository(deps.Mongo)
	profiles = redisdb.NewProfileCache(deps.Redis, profiles, deps.ProfileCacheTTL, deps.Log)

	creds := mongodb.NewCredentialRepository(deps.Mongo)
	provider := identity.NewProvider(creds, deps.Log)

	authService := service.NewAuthenticator(provider, profiles, deps.JWTSecret, deps.TokenTTL, deps.Log)
	engine := rules.NewEngine(profiles, deps.Log)
	documents := mongodb.NewDocumentRepository(deps.Mongo)

	// Guard the nil pointer: a nil *Dispatcher inside a non-nil interface
	// would pass the handlers' nil checks and panic on Enqueue.
	var authAuditor handler.Auditor
	var ruleAuditor middleware.Auditor
	if deps.Auditor != nil {
		authAuditor = deps.Auditor
		ruleAuditor = deps.Auditor
	}

	authHandler := handler.NewAuthHandler(authService, authAuditor)
	userHandler := handler.NewUserHandler(profiles)
	parentsHandler := handler.NewDocumentHandler(documents, rules.CollectionParents)
	analyticsHandler := handler.NewDocumentHandler(documents, rules.CollectionAnalytics)

	authRequired := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authRequired)

	// --- Guarded collections ---
	// Every route passes Auth (identity) then Authorize (rule engine verdict
	// against the stored profile). Handlers never re-check roles.
	registerCollection(e, rules.CollectionUsers, authRequired, middleware.Authorize(engine, rules.CollectionUsers, ruleAuditor),
		userHandler.Get, userHandler.Put, userHandler.Delete)
	registerCollection(e, rules.CollectionParents, authRequired, middleware.Authorize(engine, rules.CollectionParents, ruleAuditor),
		parentsHandler.Get, parentsHandler.Put, parentsHandler.Delete)
	registerCollection(e, rules.CollectionAnalytics, authRequired, middleware.Authorize(engine, rules.CollectionAnalytics, ruleAuditor),
		analyticsHandler.Get, analyticsHandler.Put, analyticsHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

// registerCollection mounts the document CRUD surface for one guarded
// collection. POST and PUT share a handler; the rule engine already told
// create from update by method.
func registerCollection(e *echo.Echo, collection string, auth, authorize echo.MiddlewareFunc, get, put, del echo.HandlerFunc) {
	g := e.Group("/"+collection, auth, authorize)
	g.GET("/:id", get)
	g.POST("/:id", put)
	g.PUT("/:id", put)
	g.DELETE("/:id", del)
}
