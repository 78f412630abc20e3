package config

import (
	"os"
	"strconv"
)

type Config struct {
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost string
	RedisPort int

	RabbitHost     string
	RabbitPort     int
	RabbitUser     string
	RabbitPassword string

	ConsulHost string
	ConsulPort int

	ProductServiceURL string
	OrderServiceURL   string
	BoardServiceURL   string
}

func Load() Config {
	return Config{
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getenv("POSTGRES_USER", "coffeeshop"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "coffeeshop123"),
		PostgresDB:       getenv("POSTGRES_DB", "coffeeshop"),

		RedisHost: getenv("REDIS_HOST", "localhost"),
		RedisPort: getenvInt("REDIS_PORT", 6379),

		RabbitHost:     getenv("RABBITMQ_HOST", "localhost"),
		RabbitPort:     getenvInt("RABBITMQ_PORT", 5672),
		RabbitUser:     getenv("RABBITMQ_USER", "guest"),
		RabbitPassword: getenv("RABBITMQ_PASSWORD", "guest"),

		ConsulHost: getenv("CONSUL_HOST", "localhost"),
		ConsulPort: getenvInt("CONSUL_PORT", 8500),

		ProductServiceURL: getenv("PRODUCT_SERVICE_URL", "http://localhost:8081"),
		OrderServiceURL:   getenv("ORDER_SERVICE_URL", "http://localhost:8082"),
		BoardServiceURL:   getenv("BOARD_SERVICE_URL", "http://localhost:8083"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
