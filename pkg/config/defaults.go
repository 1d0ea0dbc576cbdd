// Package config provides centralized default values for the lead service
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile applies .env overrides without clobbering values already set
// in the process environment.
func loadEnvFile() {
	envLoaded.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
		if err := godotenv.Load(); err != nil {
			log.Printf("Failed to parse .env file: %v", err)
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, redact(key, val), defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	log.Printf("Config override: %s=%v", key, out)
	return out
}

// redact keeps secrets out of the startup log.
func redact(key, val string) string {
	upper := strings.ToUpper(key)
	if strings.Contains(upper, "SECRET") || strings.Contains(upper, "PASSWORD") || strings.Contains(upper, "API_KEY") || strings.Contains(upper, "TOKEN") {
		return "********"
	}
	return val
}

var (
	// Server Configuration
	Port               string
	BaseURL            string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	ShutdownTimeout    time.Duration
	CORSOrigins        []string
	AdminStaticDir     string

	// Lead Store
	LeadsStore             string
	LeadsFile              string
	LeadsDBDriver          string
	LeadsDBURL             string
	LeadsDBAuthToken       string
	LeadsQuarantineCorrupt bool
	LeadsRetentionDays     int
	LeadsAutoPurge         bool
	SlowQueryThreshold     time.Duration

	// Maintenance
	BundleCacheTTL  time.Duration
	CleanupInterval time.Duration

	// Download Tokens
	DownloadTokenTTL time.Duration

	// Admin
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	AdminTokenTTL time.Duration

	// Email
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string
	LogJSON  bool
	LogDir   string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "3000")
	BaseURL = strings.TrimRight(getEnvString("BASE_URL", "http://localhost:"+Port), "/")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{"*"})
	AdminStaticDir = getEnvString("ADMIN_STATIC_DIR", "public/admin")

	// Lead Store
	LeadsStore = getEnvString("LEADS_STORE", "file")
	LeadsFile = getEnvString("LEADS_FILE", "data/leads.json")
	LeadsDBDriver = getEnvString("LEADS_DB_DRIVER", "sqlite3")
	LeadsDBURL = getEnvString("LEADS_DB_URL", "data/leads.db")
	LeadsDBAuthToken = getEnvString("LEADS_DB_AUTH_TOKEN", "")
	LeadsQuarantineCorrupt = getEnvBool("LEADS_QUARANTINE_CORRUPT", false)
	LeadsRetentionDays = getEnvInt("LEADS_RETENTION_DAYS", 365)
	LeadsAutoPurge = getEnvBool("LEADS_AUTO_PURGE", false)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Maintenance
	BundleCacheTTL = getEnvDuration("BUNDLE_CACHE_TTL", time.Hour)
	CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", time.Hour)

	// Download Tokens
	DownloadTokenTTL = getEnvDuration("DOWNLOAD_TOKEN_TTL", 24*time.Hour)

	// Admin
	AdminUsername = getEnvString("ADMIN_USERNAME", "admin")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminTokenTTL = getEnvDuration("ADMIN_TOKEN_TTL", 24*time.Hour)

	// Email
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	EmailFrom = getEnvString("EMAIL_FROM", "campaigns@adgrant.ai")
	EmailFromName = getEnvString("EMAIL_FROM_NAME", "Ad Grant AI")

	// Rate Limiting
	RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", 100)
	RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute)

	// Logging
	LogLevel = getEnvString("LOG_LEVEL", "info")
	LogJSON = getEnvBool("LOG_JSON", true)
	LogDir = getEnvString("LOG_DIR", "")
}
