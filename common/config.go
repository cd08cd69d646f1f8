package common

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the app reads from the environment. Required
// secrets are checked up front so the server never starts with an empty
// session secret or mail credential.
type Config struct {
	DbFile        string
	SessionSecret string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	ContactEmail  string // operator address that receives contact messages
	Port          string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	cfg := &Config{
		DbFile:        os.Getenv("sqlite_db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		ContactEmail:  os.Getenv("CONTACT_EMAIL"),
		Port:          os.Getenv("PORT"),
	}

	required := map[string]string{
		"sqlite_db":      cfg.DbFile,
		"SESSION_SECRET": cfg.SessionSecret,
		"SMTP_HOST":      cfg.SMTPHost,
		"SMTP_PORT":      cfg.SMTPPort,
		"SMTP_USER":      cfg.SMTPUser,
		"SMTP_PASSWORD":  cfg.SMTPPassword,
		"CONTACT_EMAIL":  cfg.ContactEmail,
	}
	for key, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%s environment variable not set", key)
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	return cfg, nil
}
