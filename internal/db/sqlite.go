package db

import (
	"log"

	"github.com/glebarez/sqlite"
	"github.com/ikignosis/sopy/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the SQLite config store and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate all record kinds
	if err := db.AutoMigrate(
		&models.AdminCredential{},
		&models.UserAPIKey{},
		&models.Backend{},
		&models.ModelMapping{},
	); err != nil {
		return nil, err
	}

	migrateLegacyCredentials(db)

	return db, nil
}

// migrateLegacyCredentials moves rows from the pre-rename `credentials` table
// into `admin_credentials` and drops the old table. Databases created by
// earlier sopy versions used the old name.
func migrateLegacyCredentials(db *gorm.DB) {
	var count int64
	db.Raw("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='credentials'").Scan(&count)
	if count == 0 {
		return
	}

	log.Printf("🔀 Migrating legacy credentials table to admin_credentials...")
	if err := db.Exec("INSERT OR REPLACE INTO admin_credentials (name, credentials) SELECT name, credentials FROM credentials").Error; err != nil {
		log.Printf("⚠️ Legacy credentials migration failed: %v", err)
		return
	}
	if err := db.Exec("DROP TABLE credentials").Error; err != nil {
		log.Printf("⚠️ Failed to drop legacy credentials table: %v", err)
		return
	}
	log.Printf("✅ Legacy credentials migration completed")
}
