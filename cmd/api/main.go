package main

import (
	_ "reqtrack/api/swagger" // swagger docs
	"reqtrack/internal/config"
	"reqtrack/internal/database"
	"reqtrack/internal/middleware"
	"reqtrack/internal/server"
	"reqtrack/internal/storage"

	"github.com/sirupsen/logrus"
)

// @title           Requirement Intake API
// @version         1.0
// @description     Requirement intake and review tracking: submission, review workflow, comments, attachments and a full audit trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	middleware.InitJWTSecret(cfg.JWTSecret)

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Info("Connected to PostgreSQL successfully.")

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Attachment store init failed: %v", err)
	}

	router := server.New(cfg, db, store, log)

	log.Infof("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
