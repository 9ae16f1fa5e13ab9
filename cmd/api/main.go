package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-retail-erp/internal/cache"
	"go-retail-erp/internal/handler"
	"go-retail-erp/internal/middleware"
	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"
	"go-retail-erp/internal/service"
	"go-retail-erp/internal/ws"
	"go-retail-erp/pkg/database"
	"go-retail-erp/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}

	db := database.ConnectDB(log)
	// Auto migrate; a dedicated migration tool is preferable in production
	db.AutoMigrate(
		&model.InventoryItem{}, &model.CostLot{},
		&model.Order{}, &model.OrderComment{},
		&model.Notification{},
		&model.RestockLog{}, &model.RestockTemplate{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	)

	seedPrivilegesRolesAndAdmin(db, log)

	statsCache := buildStatsCache(log)

	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// Dependency injection
	itemRepo := repository.NewItemRepo(db)
	lotRepo := repository.NewLotRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	restockRepo := repository.NewRestockRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	ledgerService := service.NewLedgerService(lotRepo)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, wsHub, log)
	orderService := service.NewOrderService(orderRepo, itemRepo, commentRepo, ledgerService, notificationService, db, wsHub, log)
	inventoryService := service.NewInventoryService(itemRepo, lotRepo, ledgerService, db, wsHub, log)
	restockService := service.NewRestockService(restockRepo, itemRepo, ledgerService, db, wsHub, log)
	dashboardService := service.NewDashboardService(itemRepo, orderRepo, statsCache, log)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	orderHandler := handler.NewOrderHandler(orderService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	restockHandler := handler.NewRestockHandler(restockService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	app := fiber.New(fiber.Config{
		AppName: "Retail ERP v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetStats)
	protected.Get("/dashboard/sales-summary", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetSalesSummary)
	protected.Get("/dashboard/monthly-sales", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetMonthlySales)

	// Inventory
	protected.Get("/inventory", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetItems)
	protected.Get("/inventory/stocktaking", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetStocktaking)
	protected.Get("/inventory/export", middleware.RequirePrivilege("inventory:export"), inventoryHandler.ExportStocktaking)
	protected.Get("/inventory/:id", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetItem)
	protected.Get("/inventory/:id/lots", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetItemLots)
	protected.Post("/inventory", middleware.RequirePrivilege("inventory:create"), inventoryHandler.CreateItem)
	protected.Put("/inventory/:id", middleware.RequirePrivilege("inventory:update"), inventoryHandler.UpdateItem)

	// Orders
	protected.Get("/orders", middleware.RequirePrivilege("order:view"), orderHandler.GetOrders)
	protected.Get("/orders/:id", middleware.RequirePrivilege("order:view"), orderHandler.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege("order:create"), orderHandler.PlaceOrder)
	protected.Put("/orders/:id/status", middleware.RequirePrivilege("order:update_status"), orderHandler.UpdateStatus)
	protected.Post("/orders/:id/comments", middleware.RequirePrivilege("order:comment"), orderHandler.AddComment)

	// Restocking
	protected.Get("/restocks", middleware.RequirePrivilege("restock:view"), restockHandler.GetLogs)
	protected.Post("/restocks", middleware.RequirePrivilege("restock:create"), restockHandler.Restock)
	protected.Get("/restocks/templates", middleware.RequirePrivilege("restock:view"), restockHandler.GetTemplates)
	protected.Post("/restocks/templates", middleware.RequirePrivilege("restock:template"), restockHandler.SaveTemplate)
	protected.Delete("/restocks/templates/:id", middleware.RequirePrivilege("restock:template"), restockHandler.DeleteTemplate)

	// Notifications (own notifications, no extra privilege)
	protected.Get("/notifications", notificationHandler.GetNotifications)
	protected.Put("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)

	// User management
	protected.Get("/users", middleware.RequirePrivilege("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege("user:view"), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket route; the token travels in the query string because
	// browsers cannot set headers on WS upgrade requests
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		claims, err := jwt.ValidateToken(c.Query("token"))
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("ws_user_id", claims.UserID.String())
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := uuid.Parse(c.Locals("ws_user_id").(string))
		wsHub.Register <- &ws.Client{Conn: c, UserID: userID}
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func buildStatsCache(log *logrus.Logger) cache.StatsCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Info("REDIS_ADDR not set, dashboard stats cache disabled")
		return cache.NoopStatsCache{}
	}

	redisCache := cache.NewRedisStatsCache(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.WithError(err).Warn("Redis unreachable, dashboard stats cache disabled")
		return cache.NoopStatsCache{}
	}

	log.WithField("addr", addr).Info("Redis stats cache connected")
	return redisCache
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, log *logrus.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.WithError(err).Warn("Failed to seed privileges")
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.WithError(err).Warn("Failed to seed roles")
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// ADMIN gets everything
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		db.Model(&adminRole).Association("Privileges").Replace(allPrivileges)
		log.Info("ADMIN role assigned all privileges")
	}

	// SALES_MANAGER gets everything except user administration
	managerRole, err := roleRepo.FindByCode(model.RoleSalesManager)
	if err == nil && len(managerRole.Privileges) == 0 {
		managerPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if !strings.HasPrefix(p.Code, "user:") {
				managerPrivileges = append(managerPrivileges, p)
			}
		}
		db.Model(&managerRole).Association("Privileges").Replace(managerPrivileges)
		log.Info("SALES_MANAGER role assigned privileges")
	}

	// SALES_REP gets the point-of-sale subset
	repRole, err := roleRepo.FindByCode(model.RoleSalesRep)
	if err == nil && len(repRole.Privileges) == 0 {
		repCodes := make(map[string]bool, len(model.SalesRepPrivileges))
		for _, code := range model.SalesRepPrivileges {
			repCodes[code] = true
		}
		repPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if repCodes[p.Code] {
				repPrivileges = append(repPrivileges, p)
			}
		}
		db.Model(&repRole).Association("Privileges").Replace(repPrivileges)
		log.Info("SALES_REP role assigned privileges")
	}

	// Default admin account
	_, err = userRepo.FindByLoginName("admin")
	if err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			LoginName:  "admin",
			Username:   "Administrator",
			RoleID:     &adminRole.ID,
			IsActive:   true,
			Privileges: adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.WithError(err).Warn("Failed to hash admin password")
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.WithError(err).Warn("Failed to create admin user")
		} else {
			log.Info("Admin user created: admin / admin123 (ADMIN)")
		}
	}
}
