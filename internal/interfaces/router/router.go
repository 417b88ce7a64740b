package router

import (
	allocsvc "brickmark-backend/internal/application/allocations"
	assetsvc "brickmark-backend/internal/application/assets"
	issuersvc "brickmark-backend/internal/application/issuers"
	ordersvc "brickmark-backend/internal/application/orders"
	uploadsvc "brickmark-backend/internal/application/uploads"
	authsvc "brickmark-backend/internal/auth"
	"brickmark-backend/internal/config"
	"brickmark-backend/internal/constants"
	"brickmark-backend/internal/infrastructure/database"
	allochandler "brickmark-backend/internal/interfaces/handlers/allocations"
	assethandler "brickmark-backend/internal/interfaces/handlers/assets"
	authhandler "brickmark-backend/internal/interfaces/handlers/auth"
	healthhandler "brickmark-backend/internal/interfaces/handlers/health"
	issuerhandler "brickmark-backend/internal/interfaces/handlers/issuers"
	orderhandler "brickmark-backend/internal/interfaces/handlers/orders"
	uploadhandler "brickmark-backend/internal/interfaces/handlers/uploads"
	"brickmark-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
	}

	// Stripe webhook mounted before the session middleware so the raw body
	// reaches signature verification untouched.
	var orderService *ordersvc.Service
	if db != nil {
		orderService = &ordersvc.Service{DB: db}
	}
	orderWebhook := &orderhandler.WebhookHandler{Service: orderService, WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/orders/webhook", orderWebhook.HandleWebhook)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// --- Routes (no auth) ---
	healthHandlers := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	authHandlers := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil && rdb != nil {
		issuerService := &issuersvc.Service{DB: db}
		issuerHandlers := &issuerhandler.Handlers{Service: issuerService, Config: sessionCfg}
		issuerGroup := app.Group("/api/v1/issuers", middleware.RequireAuth())
		issuerGroup.Post("/create-issuer", issuerHandlers.CreateIssuer)
		issuerGroup.Get("/view-issuer", issuerHandlers.ViewIssuer)
		issuerGroup.Patch("/update-issuer", middleware.AuthorizePermission(constants.UpdateIssuer), issuerHandlers.UpdateIssuer)

		assetService := &assetsvc.Service{DB: db}
		assetHandlers := &assethandler.Handlers{Service: assetService}
		assetGroup := app.Group("/api/v1/assets", middleware.RequireAuth())
		assetGroup.Post("/create-asset", middleware.AuthorizePermission(constants.CreateAsset), assetHandlers.CreateAsset)
		assetGroup.Get("/view-assets", assetHandlers.ListAssets)
		assetGroup.Get("/view-asset/:asset_id", assetHandlers.GetAsset)
		assetGroup.Patch("/token-information/:asset_id", middleware.AuthorizePermission(constants.EditAsset), assetHandlers.UpdateTokenInformation)

		allocService := &allocsvc.Service{DB: db, Assets: assetService}
		allocHandlers := &allochandler.Handlers{Service: allocService}
		allocGroup := app.Group("/api/v1/allocations", middleware.RequireAuth())
		allocGroup.Post("/create-category", middleware.AuthorizePermission(constants.ManageAllocations), allocHandlers.CreateCategory)
		allocGroup.Patch("/update-category/:allocation_id", middleware.AuthorizePermission(constants.ManageAllocations), allocHandlers.UpdateCategory)
		allocGroup.Delete("/delete-category/:allocation_id", middleware.AuthorizePermission(constants.ManageAllocations), allocHandlers.DeleteCategory)
		allocGroup.Get("/stats/:asset_id", middleware.AuthorizePermission(constants.ViewData), allocHandlers.GetStats)
		allocGroup.Get("/events/:asset_id", middleware.AuthorizePermission(constants.ViewData), allocHandlers.GetEvents)

		orderHandlers := &orderhandler.Handlers{
			Service:       orderService,
			StripeCreator: &orderhandler.RealStripeCreator{SecretKey: cfg.StripeSecretKey},
		}
		orderGroup := app.Group("/api/v1/orders", middleware.RequireAuth())
		orderGroup.Post("/create-order", middleware.AuthorizePermission(constants.CreateOrder), orderHandlers.CreateOrder)
		orderGroup.Get("/view-orders/:asset_id", middleware.AuthorizePermission(constants.ViewData), orderHandlers.ListOrders)

		storageClient := &uploadsvc.HTTPClient{
			BaseURL:   cfg.SupabaseURL,
			SecretKey: cfg.SupabaseSecretKey,
		}
		uploadService := &uploadsvc.Service{
			Client:      storageClient,
			SupabaseURL: cfg.SupabaseURL,
		}
		uploadHandlers := &uploadhandler.Handlers{Service: uploadService}
		uploadGroup := app.Group("/api/v1/uploads", middleware.RequireAuth(), middleware.AuthorizePermission(constants.UploadDocuments))
		uploadGroup.Post("/asset-image", uploadHandlers.UploadAssetImage)
		uploadGroup.Post("/asset-doc", uploadHandlers.UploadAssetDoc)
	}

	return app, db, rdb, nil
}
