package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cafehub/coffeeshop-go/internal/cache"
	"github.com/cafehub/coffeeshop-go/internal/config"
	"github.com/cafehub/coffeeshop-go/internal/consumer"
	"github.com/cafehub/coffeeshop-go/internal/db"
	"github.com/cafehub/coffeeshop-go/internal/discovery"
	"github.com/cafehub/coffeeshop-go/internal/handlers"
	"github.com/cafehub/coffeeshop-go/internal/messaging"
	"github.com/cafehub/coffeeshop-go/internal/metrics"
)

const (
	serviceName = "product-service"
	serviceID   = "product-service-1"
	servicePort = 8081
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to PostgreSQL
	database, err := db.NewPostgresDB(cfg.PostgresHost, cfg.PostgresPort,
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, 5*time.Minute)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Connect to RabbitMQ and declare the exchange topology
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort,
		cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareTopology(); err != nil {
		log.Fatalf("Failed to declare broker topology: %v", err)
	}

	// Register with Consul
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Printf("⚠️ Failed to connect to Consul: %v", err)
	} else {
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   serviceID,
			Port: servicePort,
			Tags: []string{"api", "products"},
		})
		if err != nil {
			log.Fatalf("Failed to register service: %v", err)
		}
	}

	// Deregister on shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		if consul != nil {
			consul.Deregister(serviceID)
		}
		os.Exit(0)
	}()

	// Create repositories
	productRepo := db.NewProductRepository(database)
	cachedRepo := db.NewCachedProductRepository(productRepo, redisCache)
	categoryRepo := db.NewCategoryRepository(database)

	// Create handler
	productHandler := handlers.NewProductHandler(cachedRepo, categoryRepo)

	// Start the inventory reconciler
	reg := metrics.NewRegistry()
	go startInventoryConsumer(rabbitMQ, productRepo, cachedRepo, redisCache, reg)

	// Setup router
	router := gin.Default()

	router.GET("/health", productHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	router.GET("/products", productHandler.ListProducts)
	router.GET("/products/:id", productHandler.GetProduct)
	router.GET("/products/category/:categoryId", productHandler.ListProductsByCategory)
	router.POST("/products", productHandler.CreateProduct)
	router.PUT("/products/:id", productHandler.UpdateProduct)
	router.DELETE("/products/:id", productHandler.DeleteProduct)

	router.GET("/categories", productHandler.ListCategories)
	router.GET("/categories/:id", productHandler.GetCategory)
	router.POST("/categories", productHandler.CreateCategory)
	router.DELETE("/categories/:id", productHandler.DeleteCategory)

	// Start server
	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, servicePort)
	log.Println("   Consuming order.created events")
	router.Run(":8081")
}

func startInventoryConsumer(mq *messaging.RabbitMQ, repo *db.ProductRepository,
	cached *db.CachedProductRepository, redisCache *cache.RedisCache, reg *metrics.Registry) {

	messages, err := mq.Consume(messaging.OrderCreatedQueue)
	if err != nil {
		log.Fatalf("Failed to consume messages: %v", err)
	}

	inventoryConsumer := consumer.NewInventoryConsumer(repo, redisCache, cached, reg)
	inventoryConsumer.ProcessOrderCreated(context.Background(), messages)
}
