package client

import (
	"log"
	"strings"
	"time"

	"online-store-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func InitDBClient(databaseURL string) *gorm.DB {
	db, err := gorm.Open(openDialector(databaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		log.Fatal(err)
	}

	return db
}

// openDialector picks the driver from the DSN shape. MySQL DSNs carry an
// address block ("user:pass@tcp(host:port)/dbname"); anything else is
// treated as a sqlite path.
func openDialector(databaseURL string) gorm.Dialector {
	if strings.Contains(databaseURL, "@tcp(") || strings.Contains(databaseURL, "@unix(") {
		return mysql.Open(databaseURL)
	}
	return sqlite.Open(databaseURL)
}

// Migrate creates the schema plus the unique index that enforces at most
// one PENDING order (the cart) per user.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.Refund{},
		&model.WebhookEvent{},
	); err != nil {
		return err
	}

	if db.Migrator().HasIndex(&model.Order{}, "idx_orders_one_pending_per_user") {
		return nil
	}

	// MySQL has no partial indexes; a functional key over a CASE expression
	// leaves non-PENDING rows NULL, and NULLs never collide in a unique
	// index. Requires MySQL 8.0.13+.
	if db.Dialector.Name() == "mysql" {
		return db.Exec(
			`CREATE UNIQUE INDEX idx_orders_one_pending_per_user
			 ON orders ((CASE WHEN status = 'PENDING' THEN user_id END))`,
		).Error
	}
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_pending_per_user
		 ON orders (user_id) WHERE status = 'PENDING'`,
	).Error
}
