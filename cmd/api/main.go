package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-salon-ws/internal/config"
	"go-salon-ws/internal/handler"
	"go-salon-ws/internal/license"
	"go-salon-ws/internal/middleware"
	"go-salon-ws/internal/model"
	"go-salon-ws/internal/notifier"
	"go-salon-ws/internal/repository"
	"go-salon-ws/internal/service"
	"go-salon-ws/internal/session"
	"go-salon-ws/internal/ws"
	"go-salon-ws/pkg/database"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB(cfg.Database)
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.Store{}, &model.User{},
		&model.Permission{}, &model.UserPermission{},
		&model.Service{}, &model.Product{}, &model.Customer{},
		&model.Appointment{}, &model.Transaction{}, &model.TransactionItem{},
		&model.PromoCode{}, &model.MembershipPlan{}, &model.Membership{},
	)

	// 3. Seed permission catalog, demo store, and admin user
	seedPermissionsStoreAndAdmin(db)

	// 4. Setup WebSocket Hub (also the in-process change feed)
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Session storage: redis when reachable, in-process fallback otherwise
	sessionStorage := buildSessionStorage(cfg.Redis)

	// 6. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	permissionRepo := repository.NewPermissionRepo(db)
	storeRepo := repository.NewStoreRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	productRepo := repository.NewProductRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	appointmentRepo := repository.NewAppointmentRepo(db)
	transactionRepo := repository.NewTransactionRepo(db)
	promoRepo := repository.NewPromoRepo(db)
	membershipRepo := repository.NewMembershipRepo(db)
	txManager := repository.NewTransactionManager(db)

	permissionSource := service.NewPermissionSource(permissionRepo)
	sessions := session.NewRegistry(sessionStorage, permissionSource, wsHub)
	licenseGate := license.NewGate(storeRepo)
	invoiceSender := notifier.New(cfg.Notifier)

	authService := service.NewAuthService(userRepo, permissionRepo, sessions, wsHub)
	staffService := service.NewStaffPermissionService(userRepo, permissionRepo, txManager, wsHub)
	billingService := service.NewBillingService(appointmentRepo, serviceRepo, transactionRepo, promoRepo, storeRepo, txManager, invoiceSender, wsHub.Broadcast)
	appointmentService := service.NewAppointmentService(appointmentRepo, customerRepo, serviceRepo)
	catalogService := service.NewCatalogService(serviceRepo, productRepo, customerRepo, wsHub.Broadcast)
	promoService := service.NewPromoService(promoRepo, membershipRepo, customerRepo)
	userService := service.NewUserService(userRepo, permissionRepo, txManager)
	dashboardService := service.NewDashboardService(transactionRepo, appointmentRepo, productRepo, userRepo)

	authHandler := handler.NewAuthHandler(authService)
	staffHandler := handler.NewStaffPermissionHandler(staffService)
	billingHandler := handler.NewBillingHandler(billingService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	promoHandler := handler.NewPromoHandler(promoService)
	userHandler := handler.NewUserHandler(userService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, licenseGate, storeRepo)

	// 7. Membership expiry sweeper
	sweeper := service.StartMembershipSweeper(membershipRepo)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 9. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/logout", middleware.RequireAuth(userRepo), authHandler.Logout)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard and license status
	protected.Get("/dashboard/summary", middleware.RequirePermission(sessions, "dashboard"), dashboardHandler.Summary)
	protected.Get("/license/status", dashboardHandler.LicenseStatus)
	protected.Get("/stores/me", dashboardHandler.MyStore)

	// Appointments
	protected.Get("/appointments", middleware.RequirePermission(sessions, "appointment"), appointmentHandler.List)
	protected.Get("/appointments/:id", middleware.RequirePermission(sessions, "appointment"), appointmentHandler.Get)
	protected.Post("/appointments", middleware.RequirePermission(sessions, "appointment"), appointmentHandler.Create)
	protected.Patch("/appointments/:id/status", middleware.RequirePermission(sessions, "runningappointment"), appointmentHandler.UpdateStatus)

	// Billing (checkout is license-gated)
	protected.Post("/billing/checkout", middleware.RequirePermission(sessions, "billing"), middleware.RequireLicense(licenseGate), billingHandler.Checkout)
	protected.Get("/billing/transactions", middleware.RequirePermission(sessions, "appointmenthistory"), billingHandler.ListTransactions)
	protected.Get("/billing/transactions/:id", middleware.RequirePermission(sessions, "appointmenthistory"), billingHandler.GetTransaction)

	// Catalog: services, products, customers
	protected.Get("/services", middleware.RequirePermission(sessions, "services"), catalogHandler.ListServices)
	protected.Post("/services", middleware.RequirePermission(sessions, "services"), catalogHandler.CreateService)
	protected.Put("/services/:id", middleware.RequirePermission(sessions, "services"), catalogHandler.UpdateService)
	protected.Get("/products", middleware.RequirePermission(sessions, "inventory"), catalogHandler.ListProducts)
	protected.Post("/products", middleware.RequirePermission(sessions, "inventory"), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePermission(sessions, "inventory"), catalogHandler.UpdateProduct)
	protected.Get("/customers", middleware.RequirePermission(sessions, "customers"), catalogHandler.ListCustomers)
	protected.Post("/customers", middleware.RequirePermission(sessions, "customers"), catalogHandler.CreateCustomer)

	// Promos and memberships (license-gated features)
	protected.Get("/promos", middleware.RequirePermission(sessions, "promos"), promoHandler.ListPromos)
	protected.Post("/promos", middleware.RequirePermission(sessions, "promos"), middleware.RequireLicense(licenseGate), promoHandler.CreatePromo)
	protected.Put("/promos/:id", middleware.RequirePermission(sessions, "promos"), middleware.RequireLicense(licenseGate), promoHandler.UpdatePromo)
	protected.Post("/promos/apply", middleware.RequirePermission(sessions, "billing"), middleware.RequireLicense(licenseGate), promoHandler.ApplyPromo)
	protected.Get("/memberships/plans", middleware.RequirePermission(sessions, "memberships"), promoHandler.ListPlans)
	protected.Post("/memberships/plans", middleware.RequirePermission(sessions, "memberships"), middleware.RequireLicense(licenseGate), promoHandler.CreatePlan)
	protected.Post("/memberships", middleware.RequirePermission(sessions, "memberships"), middleware.RequireLicense(licenseGate), promoHandler.Enroll)
	protected.Get("/memberships/customer/:customerId", middleware.RequirePermission(sessions, "memberships"), promoHandler.ListMemberships)

	// Staff permission management
	protected.Get("/staff", middleware.RequirePermission(sessions, "staff"), staffHandler.ListStaff)
	protected.Put("/staff/:id/permissions", middleware.RequirePermission(sessions, "staff"), staffHandler.ReplacePermissions)

	// User management (admin-only via settings permission)
	protected.Get("/users", middleware.RequirePermission(sessions, "settings"), userHandler.List)
	protected.Get("/users/:id", middleware.RequirePermission(sessions, "settings"), userHandler.Get)
	protected.Post("/users", middleware.RequirePermission(sessions, "settings"), userHandler.Create)
	protected.Put("/users/:id", middleware.RequirePermission(sessions, "settings"), userHandler.Update)
	protected.Delete("/users/:id", middleware.RequirePermission(sessions, "settings"), userHandler.Deactivate)

	// Permission catalog (for the editor's checkbox list)
	protected.Get("/permissions", func(c *fiber.Ctx) error {
		permissions, err := permissionRepo.FindAll(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch permissions"})
		}
		return c.JSON(permissions)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := &ws.Client{Conn: c, UserID: c.Query("user_id")}
		wsHub.Register <- client
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 10. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sweeper.Stop()
	sessions.Close()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// buildSessionStorage pings redis and falls back to in-process storage when it
// is not reachable, so a dev machine runs without a redis instance.
func buildSessionStorage(cfg config.RedisConfig) session.Storage {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: redis not reachable at %s, using in-process session storage: %v", cfg.Addr, err)
		return session.NewMemoryStorage()
	}

	log.Println("Session storage: redis at", cfg.Addr)
	return session.NewRedisStorage(client)
}

// seedPermissionsStoreAndAdmin creates the permission catalog, a demo store,
// and the default admin user if they don't exist
func seedPermissionsStoreAndAdmin(db *gorm.DB) {
	ctx := context.Background()
	permissionRepo := repository.NewPermissionRepo(db)
	storeRepo := repository.NewStoreRepo(db)
	userRepo := repository.NewUserRepo(db)

	// 1. Seed the permission catalog
	if err := permissionRepo.SeedDefaults(ctx); err != nil {
		log.Printf("Warning: Failed to seed permissions: %v", err)
	}

	// 2. Seed a demo store
	stores, err := storeRepo.FindAll(ctx)
	if err != nil {
		log.Printf("Warning: Failed to list stores: %v", err)
		return
	}
	var store *model.Store
	if len(stores) > 0 {
		store = &stores[0]
	} else {
		store = &model.Store{
			Name:          "Main Salon",
			Settings:      model.JSONB{},
			LicenseActive: true,
		}
		store.CreatedBy = "system"
		store.UpdatedBy = "system"
		if err := storeRepo.Create(ctx, store); err != nil {
			log.Printf("Warning: Failed to create demo store: %v", err)
			return
		}
		log.Println("✅ Demo store created:", store.Name)
	}

	// 3. Create default admin user
	if _, err := userRepo.FindByEmail(ctx, "admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Salon Administrator",
		Role:     model.RoleAdmin,
		StoreID:  &store.ID,
		Profile:  model.JSONB{},
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("✅ Admin user created: admin@example.com / admin123")
	}
}
