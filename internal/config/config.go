package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// bcrypt work factor for password hashing
	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueueKey      string

	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Bucket    string

	OTLPEndpoint string

	CORSOrigins  []string
	MaxBodyBytes int64
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:  env,
		Port: port,

		DBURL: dbURL,

		BcryptCost: getEnvInt("BCRYPT_COST", 12),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		QueueKey:      getEnv("QUEUE_KEY", "authgate:jobs"),

		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Endpoint:  getEnv("S3_ENDPOINT", "http://127.0.0.1:9000"),
		S3Bucket:    getEnv("S3_BUCKET", "authgate-media"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		CORSOrigins:  getEnvList("CORS_ORIGINS", "http://localhost:3000"),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "authgate")
	pass := getEnv("DB_PASSWORD", "authgate")
	name := getEnv("DB_NAME", "authgate")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
