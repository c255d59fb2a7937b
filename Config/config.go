package Config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Config is threaded explicitly into whatever needs it; there is no
// process-wide settings object.
type Config struct {
	Port                string `json:"port"`
	DatabasePath        string `json:"database_path"`
	FirebaseCredentials string `json:"firebase_credentials"`
	UseMemoryStore      bool   `json:"use_memory_store"`
	JWTSecret           string `json:"jwt_secret"`
	UploadDir           string `json:"upload_dir"`
	AuditOnStart        bool   `json:"audit_on_start"`
	AuditSchedule       string `json:"audit_schedule"`
}

// Load builds the configuration from defaults, an optional JSON5 file
// (GAADI_CONFIG, default config.json5 when present), then environment
// variables, later sources winning.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:          ":3000",
		DatabasePath:  "database.db",
		UploadDir:     "uploads",
		AuditSchedule: "0 0 2 * * *",
	}

	path := os.Getenv("GAADI_CONFIG")
	if path == "" {
		if _, err := os.Stat("config.json5"); err == nil {
			path = "config.json5"
		}
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file %s: %w", path, err)
		}
		defer f.Close()
		if err := json5.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = ":" + v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS"); v != "" {
		cfg.FirebaseCredentials = v
	}
	if v := os.Getenv("USE_MEMORY_STORE"); v != "" {
		cfg.UseMemoryStore, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("AUDIT_ON_START"); v != "" {
		cfg.AuditOnStart, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("AUDIT_SCHEDULE"); v != "" {
		cfg.AuditSchedule = v
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if !cfg.UseMemoryStore && cfg.FirebaseCredentials == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS is required unless USE_MEMORY_STORE is set")
	}
	return cfg, nil
}
