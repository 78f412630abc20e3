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

	"github.com/cafehub/coffeeshop-go/internal/client"
	"github.com/cafehub/coffeeshop-go/internal/config"
	"github.com/cafehub/coffeeshop-go/internal/db"
	"github.com/cafehub/coffeeshop-go/internal/discovery"
	"github.com/cafehub/coffeeshop-go/internal/handlers"
	"github.com/cafehub/coffeeshop-go/internal/messaging"
	"github.com/cafehub/coffeeshop-go/internal/outbox"
)

const (
	serviceName = "order-service"
	serviceID   = "order-service-1"
	servicePort = 8082
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

	// Outbox relay: events are written transactionally with their orders
	// and published from here, so a broker outage delays delivery instead
	// of losing events.
	outboxRepo := outbox.NewRepository(database.Conn)
	relay := outbox.NewRelay(outboxRepo, rabbitMQ, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	// Register with Consul
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Printf("⚠️ Failed to connect to Consul: %v", err)
	} else {
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   serviceID,
			Port: servicePort,
			Tags: []string{"api", "orders"},
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
		cancel()
		if consul != nil {
			consul.Deregister(serviceID)
		}
		os.Exit(0)
	}()

	// Create repositories and handlers
	productClient := client.NewProductClient(cfg.ProductServiceURL)
	orderRepo := db.NewOrderRepository(database, outboxRepo)
	storeRepo := db.NewStoreRepository(database)

	orderHandler := handlers.NewOrderHandler(orderRepo, productClient)
	storeHandler := handlers.NewStoreHandler(storeRepo)

	// Setup router
	router := gin.Default()

	router.GET("/health", orderHandler.HealthCheck)
	router.GET("/orders", orderHandler.ListOrders)
	router.GET("/orders/:id", orderHandler.GetOrder)
	router.GET("/orders/store/:storeId", orderHandler.ListOrdersByStore)
	router.POST("/orders", orderHandler.CreateOrder)
	router.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
	router.DELETE("/orders/:id", orderHandler.DeleteOrder)

	router.GET("/stores", storeHandler.ListStores)
	router.GET("/stores/:id", storeHandler.GetStore)
	router.POST("/stores", storeHandler.CreateStore)
	router.DELETE("/stores/:id", storeHandler.DeleteStore)

	// Start server
	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, servicePort)
	log.Println("   Publishing events through the outbox relay")
	router.Run(":8082")
}
