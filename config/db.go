package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops/models"
	"hotel-ops/repository"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	// Stay instants are compared as absolute times; keep the session in UTC.
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func databaseURL() string {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	return raw
}

func resolveMySQLDSN() (string, error) {
	if raw := databaseURL(); raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := EnvOrDefault("DB_USER", "root")
	pass := EnvOrDefault("DB_PASS", "")
	host := EnvOrDefault("DB_HOST", "127.0.0.1")
	port := EnvOrDefault("DB_PORT", "3306")
	dbName := EnvOrDefault("DB_NAME", "hotel_ops")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

// resolvePostgresDSN accepts DATABASE_URL as-is (postgres:// URL or
// key=value DSN) and otherwise builds a key=value DSN from DB_*.
func resolvePostgresDSN() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		EnvOrDefault("DB_HOST", "127.0.0.1"),
		EnvOrDefault("DB_USER", "postgres"),
		EnvOrDefault("DB_PASS", ""),
		EnvOrDefault("DB_NAME", "hotel_ops"),
		EnvOrDefault("DB_PORT", "5432"),
		EnvOrDefault("DB_SSLMODE", "disable"),
	)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// ConnectDatabase opens the configured database, migrates the schema and
// seeds it when DB_SEED is on. DB_DRIVER=memory returns an in-process
// store with nothing behind it.
func ConnectDatabase(s Settings) (repository.Store, *gorm.DB, error) {
	if s.DBDriver == "memory" {
		log.Println("⚠️  DB_DRIVER=memory: data lives only as long as this process")
		store := repository.NewMemoryStore()
		if s.DBSeed {
			if err := SeedDatabase(store); err != nil {
				return nil, nil, err
			}
		}
		return store, nil, nil
	}

	var dialector gorm.Dialector
	switch s.DBDriver {
	case "mysql", "":
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, nil, err
		}
		dialector = mysql.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(resolvePostgresDSN())
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(s.DBLogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, nil, err
	}

	// AutoMigrate in parent->child order
	if err := db.AutoMigrate(
		&models.Property{},
		&models.Room{},
		&models.Guest{},
		&models.Booking{},
		&models.BookedRoom{},
		&models.BookingEvent{},
		&models.MaintenanceAlert{},
		&models.Staff{},
	); err != nil {
		return nil, nil, err
	}

	store := repository.NewGormStore(db)
	if s.DBSeed {
		if err := SeedDatabase(store); err != nil {
			return nil, nil, err
		}
	}
	return store, db, nil
}

// CloseDatabase releases the connection pool behind db. A nil db (the memory
// driver) is a no-op.
func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("⚠️ could not get database handle: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("⚠️ database close: %v", err)
	}
}
