package main

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              int
	SiteURL           string
	BlogTitle         string
	SessionTTL        time.Duration
	AdminPasswordHash string
	MongoURI          string
	MongoDBName       string
	SecureCookies     bool
}

func envInt(key string, fallback int) int {
	parsed, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return parsed
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// loadConfig reads configuration from the environment. Required secrets
// (admin credential and database URI) are hard errors; everything else
// has a local-dev default.
func loadConfig() (*Config, error) {
	cfg := &Config{
		Port:          envInt("PORT", 3000),
		SiteURL:       envString("SITE_URL", "http://localhost:3000"),
		BlogTitle:     envString("BLOG_TITLE", "Rawdog Dev Log"),
		SessionTTL:    time.Duration(envInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDBName:   envString("MONGODB_DB_NAME", "myblogs"),
		SecureCookies: os.Getenv("SECURE_COOKIES") == "true",
	}

	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if cfg.AdminPasswordHash == "" {
		if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
			cfg.AdminPasswordHash = mustHashPassword(password)
			log.Println("[rawdog-blog] ADMIN_PASSWORD provided, hashing it for this session")
		}
	}
	if cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD_HASH (or ADMIN_PASSWORD for local dev) must be set")
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI must be set")
	}

	return cfg, nil
}
