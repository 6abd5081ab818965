package database

import (
	"context"
	"log"
	"mortify/config"
	"mortify/models"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the SQLite options database described by cfg, applies the
// connection pool limits and optional PRAGMAs, and migrates the options table.
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	tuning := sqliteTuningFromConfig(cfg)
	db, err := gorm.Open(sqlite.Open(tuning.dsn(cfg.DatabaseURL)), &gorm.Config{
		Logger: sqliteMetricsLogger{inner: logger.New(
			log.New(log.Writer(), "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel: logLevel,
			},
		)},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	pool := tuning.pool
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// The DSN covers new connections; repeat the PRAGMAs once for an existing file.
	for _, stmt := range tuning.pragmaStatements() {
		db.Exec(stmt)
	}

	if err := db.AutoMigrate(&models.Option{}); err != nil {
		return nil, err
	}

	log.Printf("Database initialized: %s", cfg.DatabaseURL)
	return db, nil
}

// Close closes the database connection and releases resources
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}

// Ping reports whether the database answers within the context deadline,
// or within 200ms when ctx carries none.
func Ping(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}
