package FiberConfig

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"

	"Gaadi/Config"
	"Gaadi/Controllers"
	"Gaadi/Ledger"
	"Gaadi/middleware"
)

// SetupRoutes mounts every API route. Permission levels: 1 clerk
// (read), 2 sales staff (record money movements), 3 admin (cancel
// entries, manage operators, audits).
func SetupRoutes(app *fiber.App, cfg *Config.Config, svc *Ledger.Service) {
	authController := Controllers.NewAuthController(cfg.JWTSecret)
	personController := Controllers.NewPersonController(svc)
	vehicleController := Controllers.NewVehicleController(svc)
	purchaseController := Controllers.NewPurchaseController(svc)
	saleController := Controllers.NewSaleController(svc)
	transactionController := Controllers.NewTransactionController(svc)
	analyticsController := Controllers.NewAnalyticsController(svc)
	reportController := Controllers.NewReportController(svc)
	imageController := Controllers.NewImageController(cfg.UploadDir)

	api := app.Group("/api")

	// Auth routes
	api.Post("/Login", authController.Login)
	api.Post("/Logout", authController.Logout)
	api.Get("/User", middleware.Verify(cfg.JWTSecret, 1), authController.Me)
	api.Post("/RegisterUser", middleware.Verify(cfg.JWTSecret, 3), authController.Register)

	// Person routes
	persons := api.Group("/persons", middleware.Verify(cfg.JWTSecret, 1))
	persons.Get("/", personController.GetPersons)
	persons.Post("/", middleware.Verify(cfg.JWTSecret, 2), personController.CreatePerson)
	persons.Get("/:id", personController.GetPerson)
	persons.Put("/:id", middleware.Verify(cfg.JWTSecret, 2), personController.UpdatePerson)
	persons.Get("/:id/balance", personController.GetPersonBalance)
	persons.Get("/:id/transactions", personController.GetPersonTransactions)
	persons.Get("/:id/export", reportController.ExportPersonLedger)

	// Vehicle routes
	vehicles := api.Group("/vehicles", middleware.Verify(cfg.JWTSecret, 1))
	vehicles.Get("/", vehicleController.GetVehicles)
	vehicles.Post("/", middleware.Verify(cfg.JWTSecret, 2), vehicleController.CreateVehicle)
	vehicles.Get("/:id", vehicleController.GetVehicle)
	vehicles.Put("/:id", middleware.Verify(cfg.JWTSecret, 2), vehicleController.UpdateVehicle)

	// Purchase routes
	purchases := api.Group("/purchases", middleware.Verify(cfg.JWTSecret, 1))
	purchases.Get("/", purchaseController.GetPurchases)
	purchases.Post("/", middleware.Verify(cfg.JWTSecret, 2), purchaseController.CreatePurchase)
	purchases.Get("/:id", purchaseController.GetPurchase)
	api.Get("/capital", middleware.Verify(cfg.JWTSecret, 3), purchaseController.GetCapitalTransactions)

	// Sale and installment routes
	sales := api.Group("/sales", middleware.Verify(cfg.JWTSecret, 1))
	sales.Get("/", saleController.GetSales)
	sales.Post("/", middleware.Verify(cfg.JWTSecret, 2), saleController.CreateSale)
	sales.Get("/:id", saleController.GetSale)
	sales.Post("/:id/payments", middleware.Verify(cfg.JWTSecret, 2), saleController.CreateEmiPayment)

	// Direct transaction routes
	transactions := api.Group("/transactions", middleware.Verify(cfg.JWTSecret, 1))
	transactions.Get("/:id", transactionController.GetTransaction)
	transactions.Post("/:id/cancel", middleware.Verify(cfg.JWTSecret, 3), transactionController.CancelTransaction)

	// Analytics routes
	analytics := api.Group("/analytics", middleware.Verify(cfg.JWTSecret, 3))
	analytics.Get("/summary", analyticsController.Summary)
	analytics.Get("/monthly", analyticsController.MonthlyTransactions)
	analytics.Get("/outstanding-emi", analyticsController.OutstandingEmi)

	// Image routes
	images := api.Group("/images", middleware.Verify(cfg.JWTSecret, 1))
	images.Post("/", middleware.Verify(cfg.JWTSecret, 2), imageController.UploadImage)
	images.Get("/:name", imageController.GetImage)
}

// FiberConfig builds the app with its middleware stack and blocks on
// Listen.
func FiberConfig(cfg *Config.Config, svc *Ledger.Service, log zerolog.Logger) error {
	app := fiber.New(fiber.Config{
		AppName: "Gaadi",
	})
	app.Use(middleware.RequestLogger(log))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, cfg, svc)
	app.Static("/uploads", cfg.UploadDir, fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	log.Info().Str("port", cfg.Port).Msg("server up")
	return app.Listen(cfg.Port)
}
