package database

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/PointsBridge/app/models"
)

const maxRetries = 5

var retryDelay = 5 * time.Second

// Open connects to MySQL, retrying while the server comes up. Duplicate-key
// errors are translated to gorm.ErrDuplicatedKey so the repository can
// report conflicts. With autoMigrate the schema is created from the models,
// which is meant for development; production runs cmd/migrate.
func Open(dsn string, autoMigrate bool) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         191,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}

		log.Warnf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := db.AutoMigrate(
			&models.AuthAttempt{},
			&models.Organization{},
			&models.OrgConfig{},
			&models.Transaction{},
		); err != nil {
			return nil, err
		}
	}
	return db, nil
}
