package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	PostgresDSN    string
	RedisAddr      string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxIdle  time.Duration
	DBConnMaxLife  time.Duration
	RequestTimeout time.Duration

	// SLASweepCron is a cron expression for the periodic breach scan.
	// Empty disables the in-process sweep; the endpoint stays available.
	SLASweepCron        string
	SLADefaultDays      int
	SLAAtRiskMarginDays int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		PostgresDSN:         getEnv("DATABASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		DBMaxOpenConns:      getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:      getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:       getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:       getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 10*time.Second),
		SLASweepCron:        getEnv("SLA_SWEEP_CRON", ""),
		SLADefaultDays:      getInt("SLA_DEFAULT_DAYS", 14),
		SLAAtRiskMarginDays: getInt("SLA_AT_RISK_MARGIN_DAYS", 3),
	}

	if cfg.PostgresDSN == "" {
		log.Fatal("DATABASE_URL is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
