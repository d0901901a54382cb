// Package audit is the optional durable audit sink: InterruptionEvents,
// completed-session summaries and unit embeddings are written to Postgres
// via gorm for later review, whenever a caller records them.
// When a repository is attached, dialogue.Machine records an
// InterruptionRecord for each interruption message whose reallocation is
// not stability-blocked; outside the tests, nothing in this module calls
// RecordSessionCompletion or RecordUnitEmbedding.
// It is never on the hot path of a conversation turn — the dialogue state
// machine and reallocator never depend on it succeeding.
package audit

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSNConfig mirrors the teacher lineage's Postgres connection config shape.
type DSNConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func gormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

// Open connects to Postgres and runs the auto-migration for the audit
// tables. Callers that don't need durable audit (e.g. cmd/simulate in
// offline mode) simply never call this.
func Open(cfg DSNConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("audit: open postgres: %w", err)
	}
	if err := configureConnectionPool(db); err != nil {
		return nil, fmt.Errorf("audit: configure pool: %w", err)
	}
	if err := db.AutoMigrate(&InterruptionRecord{}, &SessionRecord{}); err != nil {
		return nil, fmt.Errorf("audit: auto-migrate: %w", err)
	}
	return db, nil
}
