package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RedisURLEnv 持久化存储凭据所在的环境变量，存在即启用 Redis 后端
const RedisURLEnv = "REDIS_URL"

// Config stores the application configuration.
type Config struct {
	ServerPort      string
	RedisURL        string        // e.g., "redis://:password@127.0.0.1:6379/0"; empty means in-memory fallback
	KeyPrefix       string        // Redis key namespace for sessions
	SessionTTL      time.Duration // 会话不活跃过期时间
	CleanupInterval time.Duration // 内存回退存储的清理周期
	// 日志配置
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration syntax ("2h", "90s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		RedisURL:        os.Getenv(RedisURLEnv), // 不设默认值，缺失即走内存回退
		KeyPrefix:       getEnv("SESSION_KEY_PREFIX", "listen:session:"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 2*time.Hour),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 5*time.Minute),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		LogMaxSize:      getEnvInt("LOG_MAX_SIZE", 100),
		LogMaxBackups:   getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:       getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:     getEnvBool("LOG_COMPRESS", false),
	}
}

// DurableAvailable 运行时检查 Redis 凭据是否存在，每次存储调用都会重新检查
func DurableAvailable() bool {
	value, exists := os.LookupEnv(RedisURLEnv)
	return exists && value != ""
}
