package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// The shop's historical supervisor passphrase, hashed at startup so the app
// runs with zero configuration. Override with SUPERVISOR_HASH in production.
const defaultSupervisorPass = "kaufmann"

type Config struct {
	Port           string
	DBDSN          string
	MediaDir       string
	LogFile        string
	SupervisorHash string
	CatalogTTL     time.Duration
}

func Load() Config {
	// .env is optional; real env vars win over file values.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "cotizador.db" // shared pricing store, sqlite file in project root
	}
	media := os.Getenv("MEDIA_DIR")
	if media == "" {
		media = "./web/media" // logos and watermarks
	}
	logFile := os.Getenv("LOG_FILE")

	supHash := os.Getenv("SUPERVISOR_HASH")
	if supHash == "" {
		h, _ := bcrypt.GenerateFromPassword([]byte(defaultSupervisorPass), 12)
		supHash = string(h)
	}

	ttl := 60 * time.Second
	if s := os.Getenv("CATALOG_TTL"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	cfg := Config{
		Port:           port,
		DBDSN:          dsn,
		MediaDir:       media,
		LogFile:        logFile,
		SupervisorHash: supHash,
		CatalogTTL:     ttl,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s CATALOG_TTL=%s", cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.CatalogTTL)
	return cfg
}
