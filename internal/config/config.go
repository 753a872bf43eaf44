package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	BlobBasePath string
	MaxUploadMB  int

	AuthSecret string

	AdminUser       string
	AdminPassHash   string // bcrypt
	StudentUser     string
	StudentPassHash string // bcrypt

	CORSOrigins []string

	// StrictGift rejects uploads whose questions use the markup delimiters
	// inside prompts or options.
	StrictGift bool
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000,http://localhost:5173"
	if mode == ModeOnline {
		defOrigins = "https://portal.example.com"
	}
	return Config{
		Mode:         mode,
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),
		MaxUploadMB:  envInt("MAX_UPLOAD_MB", 32),
		AuthSecret:   envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		// admin/admin123 and student/student123
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2b$10$gaPMM8sEaORxEUxC8uetueQB3gbRsK1.MPHWzj5EYy1NRfXvV.1xe"),
		StudentUser:     envOr("STUDENT_USER", "student"),
		StudentPassHash: envOr("STUDENT_PASS_HASH", "$2b$10$X6GZqzYSc/JAicsL1jLyOOeZgS9snsZ3xACaIxagvxlt5NMqOsxJW"),

		CORSOrigins: csvOr("CORS_ORIGINS", defOrigins),
		StrictGift:  envBool("STRICT_GIFT", false),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
