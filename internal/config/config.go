package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName names the XDG config directory.
const AppName = "plant-disease-detection"

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Pace multiplies the analysis script delays; 0 plays it instantly.
	Pace float64
	// Seed makes diagnosis draws reproducible when non-zero.
	Seed uint64

	CatalogFile string

	SessionMax int
	SessionTTL time.Duration

	UploadLimit   int64
	ReportFonts   []string
	AllowedOrigin string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          normalizePort(firstNonEmpty(os.Getenv("PORT"), "8080")),
		Env:           firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local"),
		LogLevel:      firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		CatalogFile:   strings.TrimSpace(os.Getenv("CATALOG_FILE")),
		AllowedOrigin: firstNonEmpty(strings.TrimSpace(os.Getenv("ALLOWED_ORIGIN")), "*"),
		ReportFonts:   splitList(os.Getenv("REPORT_FONT")),
	}

	var err error
	if cfg.Pace, err = floatEnv("ANALYSIS_PACE", 1); err != nil {
		return nil, err
	}
	if cfg.Seed, err = uintEnv("RANDOM_SEED", 0); err != nil {
		return nil, err
	}
	if cfg.SessionMax, err = intEnv("SESSION_MAX", 1024); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	limit, err := intEnv("UPLOAD_LIMIT", 32<<20)
	if err != nil {
		return nil, err
	}
	cfg.UploadLimit = int64(limit)

	if cfg.CatalogFile == "" {
		cfg.CatalogFile = defaultCatalogFile()
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Pace < 0:
		return ErrInvalidPace
	case c.SessionMax <= 0:
		return ErrInvalidSessionMax
	case c.SessionTTL <= 0:
		return ErrInvalidSessionTTL
	case c.UploadLimit <= 0:
		return ErrInvalidUploadLimit
	}
	return nil
}

// DefaultCatalogPath is where an operator can drop a catalog override.
func DefaultCatalogPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "catalog.yaml")
}

// defaultCatalogFile returns DefaultCatalogPath if the file exists, or "" for
// the built-in catalog.
func defaultCatalogFile() string {
	path := DefaultCatalogPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func uintEnv(key string, def uint64) (uint64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
