package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/controllers"
	"github.com/printvala/printvala-api/middleware"
	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/services"
)

func main() {
	log.Println("Starting Printvala API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Promotion{},
		&models.Quote{},
		&models.Order{},
		&models.NotificationIntent{},
		&models.NumberSequence{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitArtworkService(s3Service)
	services.InitNotificationService(db)

	router := setupRouter(cfg)

	port := ":8080"
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter creates and configures the router with all application routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"https://printvala.in", "http://localhost:3000"}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Public storefront routes
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:slug", controllers.GetProduct)
		v1.POST("/products/:slug/price", controllers.PreviewPrice)
		v1.POST("/promotions/preview", controllers.PreviewPromotion)
		v1.POST("/quotes", controllers.CreateQuote)
		v1.POST("/quotes/:id/files", controllers.UploadQuoteFile)

		// Authenticated customer routes
		authenticated := v1.Group("")
		authenticated.Use(middleware.EnsureValidToken(cfg))
		{
			authenticated.POST("/users", controllers.CreateUser)
			authenticated.GET("/users/me", controllers.GetMyProfile)
			authenticated.PUT("/users/me", controllers.UpdateMyProfile)

			authenticated.POST("/orders", controllers.CreateOrder)

			withUser := authenticated.Group("")
			withUser.Use(middleware.RequireRole(models.RoleCustomer))
			{
				withUser.GET("/orders", controllers.ListOrders)
				withUser.GET("/orders/:id", controllers.GetOrder)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.EnsureValidToken(cfg), middleware.RequireAdmin())
		{
			admin.GET("/orders", controllers.ListOrders)
			admin.GET("/orders/:id", controllers.GetOrder)
			admin.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
			admin.PATCH("/orders/:id/payment", controllers.UpdatePaymentStatus)

			admin.GET("/quotes", controllers.ListQuotes)
			admin.GET("/quotes/:id", controllers.GetQuote)
			admin.PATCH("/quotes/:id/status", controllers.UpdateQuoteStatus)
			admin.PATCH("/quotes/:id/notes", controllers.UpdateQuoteNotes)
			admin.POST("/quotes/:id/convert", controllers.ConvertQuoteToOrder)

			admin.POST("/products", controllers.CreateProduct)
			admin.PUT("/products/:id", controllers.UpdateProduct)

			admin.GET("/promotions", controllers.ListPromotions)
			admin.POST("/promotions", controllers.CreatePromotion)
			admin.PATCH("/promotions/:id", controllers.UpdatePromotion)

			admin.GET("/artwork/:key", controllers.GetArtworkURL)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Printvala API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
