package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPass          string
	DBName          string
	ServerPort      string
	RedisURL        string
	Env             string
	RedisTTL        time.Duration
	MinioURL        string
	MinioPublicURL  string
	MinioUser       string
	MinioPassword   string
	MinioBucket     string
	MaxFileSize     int64
	MaxFilesPerTask int
	JWTSecret       string
	JWKSURL         string
	JWTAudience     string
	JWTIssuer       string
	DefaultColumn   string
	DefaultColumns  []string
	SeedUserID      string
	FrontendURLs    []string
}

// source resolves a key from the process environment first and the optional
// TOML overlay second.
type source struct {
	file map[string]string
}

// LoadConfig reads the environment and, when CONFIG_FILE is set, the TOML
// overlay it names. An overlay that cannot be read is an error.
func LoadConfig() (Config, error) {
	src := source{}
	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		file, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		src.file = file
	}
	return src.load(), nil
}

func (s source) load() Config {
	ttlStr := s.getEnv("REDIS_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		ttl = 5 * time.Minute
	}

	maxFileSize := s.getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024) // 10MB default
	maxFilesPerTask := s.getEnvAsInt("MAX_FILES_PER_TASK", 10)

	return Config{
		DBHost:          s.getEnv("DB_HOST", "postgres"),
		DBPort:          s.getEnv("DB_PORT", "5432"),
		DBUser:          s.getEnv("DB_USER", "postgres"),
		DBPass:          s.getEnv("DB_PASSWORD", "password"),
		DBName:          s.getEnv("DB_NAME", "todoboard"),
		ServerPort:      s.getEnv("SERVER_PORT", "8080"),
		RedisURL:        s.getEnv("REDIS_URL", "redis:6379"),
		Env:             s.getEnv("ENV", "dev"),
		RedisTTL:        ttl,
		MinioURL:        s.getEnv("MINIO_URL", "localhost:9000"),
		MinioPublicURL:  s.getEnv("MINIO_PUBLIC_URL", ""),
		MinioUser:       s.getEnv("MINIO_USER", "minioadmin"),
		MinioPassword:   s.getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioBucket:     s.getEnv("MINIO_BUCKET", "img"),
		MaxFileSize:     maxFileSize,
		MaxFilesPerTask: maxFilesPerTask,
		JWTSecret:       s.getEnv("JWT_SECRET", ""),
		JWKSURL:         s.getEnv("JWKS_URL", ""),
		JWTAudience:     s.getEnv("JWT_AUDIENCE", ""),
		JWTIssuer:       s.getEnv("JWT_ISSUER", ""),
		DefaultColumn:   s.getEnv("DEFAULT_COLUMN", "ToDo"),
		DefaultColumns:  splitList(s.getEnv("DEFAULT_COLUMNS", "ToDo,In Progress,Done")),
		SeedUserID:      s.getEnv("SEED_USER_ID", ""),
		FrontendURLs:    splitList(s.getEnv("FRONTEND_URL", "http://localhost:3000,http://127.0.0.1:3000")),
	}
}

func loadFile(path string) (map[string]string, error) {
	raw := map[string]interface{}{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch tv := v.(type) {
		case []interface{}:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			values[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			values[strings.ToUpper(k)] = fmt.Sprint(tv)
		}
	}
	return values, nil
}

func (s source) getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if value, exists := s.file[key]; exists {
		return value
	}
	return fallback
}

func (s source) getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(s.getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func (s source) getEnvAsInt64(key string, fallback int64) int64 {
	if v, err := strconv.ParseInt(s.getEnv(key, ""), 10, 64); err == nil {
		return v
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}
