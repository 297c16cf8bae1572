package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries everything the server needs from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"reqtrack"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret string `env:"JWT_SECRET"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// UploadDir is where attachment payloads live; MaxAttachmentMB caps a
	// single upload.
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxAttachmentMB int64  `env:"MAX_ATTACHMENT_MB" envDefault:"200"`

	// StrictIntake makes description and why required at request creation,
	// matching the stricter intake policy some deployments run with.
	StrictIntake bool `env:"STRICT_INTAKE_VALIDATION" envDefault:"false"`
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MaxAttachmentBytes converts the configured cap to bytes.
func (c Config) MaxAttachmentBytes() int64 {
	return c.MaxAttachmentMB * 1024 * 1024
}

// Load reads configs/.env if present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Debug("no configs/.env file found, relying on process environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
