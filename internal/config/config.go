package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort      string
	StoreDriver     string
	MySQLDSN        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	JWTSecret       string
	LogLevel        string
	LogFormat       string
	UploadDir       string
	DefaultLocation string
	SwaggerHost     string
	AdminEmail      string
	AdminPassword   string
	AdminName       string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		StoreDriver:     getEnv("STORE_DRIVER", DriverMySQL),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/cats?charset=utf8mb4&parseTime=True&loc=UTC"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "cats"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		DefaultLocation: getEnv("DEFAULT_LOCATION", "60.1699,24.9384"),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminName:       getEnv("ADMIN_NAME", "admin"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
