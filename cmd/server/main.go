package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sevenext/backend/docs"
	catalogapp "github.com/sevenext/backend/internal/application/catalog"
	cmsapp "github.com/sevenext/backend/internal/application/cms"
	identityapp "github.com/sevenext/backend/internal/application/identity"
	promotionapp "github.com/sevenext/backend/internal/application/promotion"
	shippingapp "github.com/sevenext/backend/internal/application/shipping"
	tradeapp "github.com/sevenext/backend/internal/application/trade"
	"github.com/sevenext/backend/internal/infrastructure/auth"
	"github.com/sevenext/backend/internal/infrastructure/cache"
	"github.com/sevenext/backend/internal/infrastructure/carrier"
	"github.com/sevenext/backend/internal/infrastructure/config"
	"github.com/sevenext/backend/internal/infrastructure/logger"
	"github.com/sevenext/backend/internal/infrastructure/persistence"
	"github.com/sevenext/backend/internal/infrastructure/sms"
	"github.com/sevenext/backend/internal/infrastructure/storage"
	"github.com/sevenext/backend/internal/infrastructure/telemetry"
	"github.com/sevenext/backend/internal/interfaces/http/handler"
	"github.com/sevenext/backend/internal/interfaces/http/middleware"
	"github.com/sevenext/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const cmsCacheTTL = 5 * time.Minute

//	@title			Sevenext Storefront API
//	@version		1.0
//	@description	Storefront backend: catalog with B2C/B2B pricing, orders, coupons, returns and shipping estimates.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	engineMetrics, err := telemetry.NewEngineMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Warn("Failed to register engine metrics, continuing without them", zap.Error(err))
		engineMetrics = telemetry.NoopEngineMetrics()
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal("Invalid app timezone", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}

	dbTracing := telemetry.NewDBTracing(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        cfg.Database.Driver,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Expiring key stores (OTP, throttle, token blacklist)
	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize key stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing key stores", zap.Error(err))
		}
	}()

	// Document storage
	var documents identityapp.DocumentStorage
	if cfg.Storage.Configured() {
		s3Storage, err := storage.NewS3DocumentStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		documents = s3Storage
	} else {
		log.Warn("Object storage not configured, B2B documents are kept in memory")
		documents = storage.NewMemoryObjectStorage("memory://documents")
	}

	rateCards, err := shippingapp.BuildRateCards(cfg.RateCard)
	if err != nil {
		log.Fatal("Invalid rate card configuration", zap.Error(err))
	}
	carrierClient := carrier.NewDelhiveryClient(cfg.Carrier, carrier.WithLogger(log))

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	applicationRepo := persistence.NewGormB2BApplicationRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	returnRepo := persistence.NewGormReturnRequestRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	contentRepo := persistence.NewGormContentRepository(db.DB)
	identityTx := persistence.NewIdentityTransactionScope(db.DB)
	tradeTx := persistence.NewTradeTransactionScope(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, applicationRepo, identityTx, documents, jwtService, stores.Blacklist, log)
	otpService := identityapp.NewOTPService(
		userRepo, applicationRepo, stores.OTP, stores.Throttle, sms.NewLogSender(log),
		jwtService, cfg.OTP, engineMetrics, log,
	)
	profileService := identityapp.NewProfileService(userRepo, applicationRepo, identityTx, documents, stores.Blacklist, jwtService, log)
	addressService := identityapp.NewAddressService(addressRepo, identityTx, log)
	productService := catalogapp.NewProductService(productRepo, reviewRepo, log)
	reviewService := catalogapp.NewReviewService(productRepo, reviewRepo, log)
	orderService := tradeapp.NewOrderService(orderRepo, tradeTx, location, engineMetrics, log)
	returnService := tradeapp.NewReturnService(returnRepo, tradeTx, log)
	couponService := promotionapp.NewCouponService(couponRepo, location, engineMetrics, log)
	contentService := cmsapp.NewContentService(contentRepo, cmsCacheTTL, log)
	shippingService := shippingapp.NewShippingService(carrierClient, rateCards, cfg.Carrier, engineMetrics, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// Order matters: the request id must exist before logging and recovery,
	// and tracing must wrap everything that records spans or metrics.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.HTTPMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName)))
	engine.Use(middleware.Profiling(profiler.IsEnabled()))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	// a B2B registration carries two documents plus its form fields
	engine.Use(middleware.BodyLimitWithUploads(cfg.HTTP.MaxBodySize, 2*cfg.HTTP.MaxUploadSize+cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	jwtConfig := middleware.JWTConfig{
		JWTService: jwtService,
		Blacklist:  stores.Blacklist,
		Logger:     log,
	}
	guards := router.Guards{
		RequireAuth:  middleware.JWTAuth(jwtConfig),
		OptionalAuth: middleware.OptionalJWTAuth(jwtConfig),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthLimit = middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow),
		)
	}

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, otpService, cfg.HTTP.MaxUploadSize),
		User:     handler.NewUserHandler(profileService, addressService),
		Product:  handler.NewProductHandler(productService, reviewService),
		Order:    handler.NewOrderHandler(orderService),
		Return:   handler.NewReturnHandler(returnService),
		Content:  handler.NewContentHandler(contentService),
		Shipping: handler.NewShippingHandler(shippingService),
		Coupon:   handler.NewCouponHandler(couponService),
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	routeCount := 0
	for _, group := range router.Storefront(handlers, guards) {
		r.Register(group)
		routeCount += group.RouteCount()
	}
	r.Setup()
	log.Info("Routes registered", zap.String("prefix", r.Prefix()), zap.Int("routes", routeCount))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
