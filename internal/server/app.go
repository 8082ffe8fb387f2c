package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens (and if needed creates) the plan database and keeps
// the schema current.
func OpenSQLite(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := database.AutoMigrate(&PlanRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return database, nil
}

// NewApp assembles the fiber application with the API routes mounted.
func NewApp(database *gorm.DB, secretKey []byte) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "mealsync-server",
	})
	app.Use(logger.New())

	handler := NewHandler(NewPlanRepository(database), secretKey)
	handler.RegisterRoutes(app)

	return app
}
