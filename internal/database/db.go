package database

import (
	"reqtrack/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Request{},
		&model.Comment{},
		&model.Attachment{},
		&model.AuditLog{},
		&model.DeletionLog{},
		&model.BoardMessage{},
	)
	if err != nil {
		logrus.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}
