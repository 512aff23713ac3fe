package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings is everything the server and the sweep command read from the
// environment.
type Settings struct {
	Port            string
	DBDriver        string
	DBLogLevel      string
	DBSeed          bool
	DefaultTimezone *time.Location
	SweepInterval   time.Duration
	SweepBatchSize  int
	RedisURL        string
	RedisPassword   string
	AMQPURL         string
	AMQPExchange    string
	AuthDisabled    bool
}

func EnvOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a boolean, using %v", key, raw, def)
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("⚠️ %s=%q is not a positive integer, using %d", key, raw, def)
		return def
	}
	return v
}

// envDuration accepts Go durations ("5m") and plain seconds ("300").
func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️ %s=%q is not a duration, using %s", key, raw, def)
	return def
}

// LoadDotEnv reads .env when present. A missing file is fine.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}
}

func Load() Settings {
	s := Settings{
		Port:            EnvOrDefault("PORT", "8080"),
		DBDriver:        strings.ToLower(EnvOrDefault("DB_DRIVER", "mysql")),
		DBLogLevel:      strings.ToLower(EnvOrDefault("DB_LOG_LEVEL", "warn")),
		DBSeed:          envBool("DB_SEED", true),
		DefaultTimezone: time.Local,
		SweepInterval:   envDuration("SWEEP_INTERVAL", 5*time.Minute),
		SweepBatchSize:  envInt("SWEEP_BATCH_SIZE", 50),
		RedisURL:        EnvOrDefault("REDIS_URL", ""),
		RedisPassword:   EnvOrDefault("REDIS_PASSWORD", ""),
		AMQPURL:         EnvOrDefault("AMQP_URL", ""),
		AMQPExchange:    EnvOrDefault("AMQP_EXCHANGE", "hotel.bookings"),
		AuthDisabled:    envBool("AUTH_DISABLED", false),
	}

	if tz := EnvOrDefault("DEFAULT_TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("⚠️ DEFAULT_TIMEZONE=%q is unknown, using %s", tz, time.Local)
		} else {
			s.DefaultTimezone = loc
		}
	}
	return s
}
