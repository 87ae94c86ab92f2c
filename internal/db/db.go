package db

import (
	"fmt"
	"strings"

	"go-shop/internal/comment"
	"go-shop/internal/config"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Init opens the store named by cfg.Postgres.DSN and migrates it. A DSN
// starting with "sqlite:" opens a local sqlite file instead of postgres.
func Init(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	dsn := cfg.Postgres.DSN
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = sqlite.Open(SQLiteDSN(strings.TrimPrefix(dsn, sqlitePrefix)))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}
	log.Info("[DB] Database connected and migrated")
	return db, nil
}

// Open connects through dialector and runs the auto-migrations.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// models must be migrated in a single AutoMigrate call. Migrated alone,
// Comment would pull in its Author/ProductRef projections as the users and
// products tables and rewrite their column types.
var models = []interface{}{&user.User{}, &product.Product{}, &comment.Comment{}}

// Migrate creates or updates every table; gorm orders parents before comentario.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// SQLiteDSN turns foreign key enforcement on for a sqlite file or URI.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
