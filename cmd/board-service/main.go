package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cafehub/coffeeshop-go/internal/config"
	"github.com/cafehub/coffeeshop-go/internal/db"
	"github.com/cafehub/coffeeshop-go/internal/discovery"
	"github.com/cafehub/coffeeshop-go/internal/handlers"
)

const (
	serviceName = "board-service"
	serviceID   = "board-service-1"
	servicePort = 8083
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

	// Register with Consul
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Printf("⚠️ Failed to connect to Consul: %v", err)
	} else {
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   serviceID,
			Port: servicePort,
			Tags: []string{"api", "board"},
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

	boardRepo := db.NewBoardRepository(database)
	boardHandler := handlers.NewBoardHandler(boardRepo)

	// Setup router
	router := gin.Default()

	router.GET("/health", boardHandler.HealthCheck)

	router.GET("/posts", boardHandler.ListPosts)
	router.GET("/posts/:id", boardHandler.GetPost)
	router.POST("/posts", boardHandler.CreatePost)
	router.PUT("/posts/:id", boardHandler.UpdatePost)
	router.DELETE("/posts/:id", boardHandler.DeletePost)

	router.GET("/posts/:id/comments", boardHandler.ListComments)
	router.POST("/posts/:id/comments", boardHandler.CreateComment)
	router.PUT("/comments/:commentId", boardHandler.UpdateComment)
	router.DELETE("/comments/:commentId", boardHandler.DeleteComment)

	// Start server
	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, servicePort)
	router.Run(":8083")
}
