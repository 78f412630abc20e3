package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cafehub/coffeeshop-go/internal/cache"
	"github.com/cafehub/coffeeshop-go/internal/config"
	"github.com/cafehub/coffeeshop-go/internal/consumer"
	"github.com/cafehub/coffeeshop-go/internal/discovery"
	"github.com/cafehub/coffeeshop-go/internal/messaging"
	"github.com/cafehub/coffeeshop-go/internal/models"
)

type Gateway struct {
	consul    *discovery.ConsulClient
	fallbacks map[string]string
	proxies   map[string]*httputil.ReverseProxy
	mutex     sync.RWMutex
	services  map[string]string
}

func NewGateway(consul *discovery.ConsulClient, fallbacks map[string]string) *Gateway {
	g := &Gateway{
		consul:    consul,
		fallbacks: fallbacks,
		proxies:   make(map[string]*httputil.ReverseProxy),
		services:  make(map[string]string),
	}

	g.discoverServices()
	go g.watchServices()

	return g
}

func (g *Gateway) discoverServices() {
	for svc, fallback := range g.fallbacks {
		serviceURL := fallback
		if g.consul != nil {
			if resolved, err := g.consul.GetServiceURL(svc); err == nil {
				serviceURL = resolved
			} else {
				log.Printf("⚠️ Service %s not found, using fallback: %v", svc, err)
			}
		}
		g.updateProxy(svc, serviceURL)
	}
}

func (g *Gateway) updateProxy(serviceName, serviceURL string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.services[serviceName] == serviceURL {
		return
	}

	target, err := url.Parse(serviceURL)
	if err != nil {
		log.Printf("❌ Invalid URL for %s: %v", serviceName, err)
		return
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("❌ Proxy error for %s: %v", serviceName, err)
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error": "service unavailable"}`)
	}

	g.proxies[serviceName] = proxy
	g.services[serviceName] = serviceURL
	log.Printf("✅ Updated route: %s → %s", serviceName, serviceURL)
}

func (g *Gateway) watchServices() {
	ticker := time.NewTicker(10 * time.Second)
	for range ticker.C {
		g.discoverServices()
	}
}

func (g *Gateway) proxyTo(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		g.mutex.RLock()
		proxy := g.proxies[serviceName]
		g.mutex.RUnlock()

		if proxy == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": serviceName + " unavailable"})
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

func (g *Gateway) HealthCheck(c *gin.Context) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	statuses := make(map[string]string)
	allHealthy := true

	client := &http.Client{Timeout: 2 * time.Second}

	for name, serviceURL := range g.services {
		resp, err := client.Get(serviceURL + "/health")
		if err != nil || resp.StatusCode != http.StatusOK {
			statuses[name] = "unhealthy"
			allHealthy = false
		} else {
			statuses[name] = "healthy"
		}
		if resp != nil {
			resp.Body.Close()
		}
	}

	status := "healthy"
	if !allHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"service":  "api-gateway",
		"services": statuses,
	})
}

func (g *Gateway) ListServices(c *gin.Context) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	c.JSON(http.StatusOK, gin.H{"services": g.services})
}

// TrackOrder serves the order-tracking view fed by order.status.changed
// events. It answers from Redis only, so it works even while the order
// service is down.
func TrackOrder(statusCache *cache.RedisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var event models.OrderStatusChangedEvent
		err = statusCache.Get(c.Request.Context(), consumer.StatusKey(id), &event)
		if err == redis.Nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no tracking info for order"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, event)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Printf("⚠️ Failed to connect to Consul, using fallback URLs: %v", err)
		consul = nil
	}

	gateway := NewGateway(consul, map[string]string{
		"product-service": cfg.ProductServiceURL,
		"order-service":   cfg.OrderServiceURL,
		"board-service":   cfg.BoardServiceURL,
	})

	// Status tracking: consume order.status.changed into Redis
	statusCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer statusCache.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort,
		cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareTopology(); err != nil {
		log.Fatalf("Failed to declare broker topology: %v", err)
	}

	go func() {
		messages, err := rabbitMQ.Consume(messaging.OrderStatusChangedQueue)
		if err != nil {
			log.Fatalf("Failed to consume messages: %v", err)
		}
		statusConsumer := consumer.NewStatusConsumer(statusCache)
		statusConsumer.ProcessStatusChanged(context.Background(), messages)
	}()

	router := gin.Default()

	router.GET("/health", gateway.HealthCheck)
	router.GET("/services", gateway.ListServices)
	router.GET("/tracking/:id", TrackOrder(statusCache))

	router.Any("/products", gateway.proxyTo("product-service"))
	router.Any("/products/*path", gateway.proxyTo("product-service"))
	router.Any("/categories", gateway.proxyTo("product-service"))
	router.Any("/categories/*path", gateway.proxyTo("product-service"))
	router.Any("/orders", gateway.proxyTo("order-service"))
	router.Any("/orders/*path", gateway.proxyTo("order-service"))
	router.Any("/stores", gateway.proxyTo("order-service"))
	router.Any("/stores/*path", gateway.proxyTo("order-service"))
	router.Any("/posts", gateway.proxyTo("board-service"))
	router.Any("/posts/*path", gateway.proxyTo("board-service"))
	router.Any("/comments/*path", gateway.proxyTo("board-service"))

	log.Println("🚀 API Gateway starting on http://0.0.0.0:8080")
	router.Run(":8080")
}
