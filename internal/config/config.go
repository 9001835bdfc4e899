package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	DBDSN         string
	CatalogAPIURL string
	LogFile       string
	AuthDelay     time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "ecofinds.db"
	} // sqlite file in project root
	api := os.Getenv("CATALOG_API_URL")
	if api == "" {
		api = "https://dummyjson.com"
	}
	// empty LOG_FILE keeps logging on stdout only
	logFile := os.Getenv("LOG_FILE")
	delayMs := 1000
	if v := os.Getenv("AUTH_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			delayMs = n
		}
	}

	cfg := Config{
		Port:          port,
		DBDSN:         dsn,
		CatalogAPIURL: api,
		LogFile:       logFile,
		AuthDelay:     time.Duration(delayMs) * time.Millisecond,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CATALOG_API_URL=%s LOG_FILE=%s AUTH_DELAY_MS=%d",
		cfg.Port, cfg.DBDSN, cfg.CatalogAPIURL, cfg.LogFile, delayMs)
	return cfg
}
