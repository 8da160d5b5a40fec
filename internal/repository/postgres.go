package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/logger"
)

// canvasLockID is the fixed primary key of the single canvas-lock row.
const canvasLockID = 1

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	repo, err := New(db, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return repo, nil
}

// New wraps an already-open gorm connection. Used directly by tests with an
// in-memory SQLite database; NewPostgresDB delegates here.
func New(db *gorm.DB, logger *logger.Logger) (models.Repository, error) {
	if err := db.AutoMigrate(
		&models.Region{},
		&models.CreditBalance{},
		&models.PaymentRecord{},
		&models.ActivityEntry{},
		&models.CanvasLock{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}

	// Seed the canvas-lock row that purchase transactions serialize on.
	lock := models.CanvasLock{ID: canvasLockID, Version: 0}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock).Error; err != nil {
		return nil, fmt.Errorf("failed to seed canvas lock: %s", err)
	}

	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}
