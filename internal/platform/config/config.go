package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LevelCounterKey    string
	ReportQueueName    string
	ReportLockTTLHours int
	WeeklyReportCron   string
	EmbeddedWorker     bool

	TanglePDFDir string
	OutlineDir   string
	ReportDir    string
	MaxUploadMB  int

	AcceptedEmailDomains []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	LogLevel string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		JWTKey:             []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:             time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "tangle_db"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		LevelCounterKey:    getEnv("LEVEL_COUNTER_KEY", "tangle_level_counter"),
		ReportQueueName:    getEnv("REPORT_QUEUE_NAME", "weekly_report_queue"),
		ReportLockTTLHours: getEnvAsInt("REPORT_LOCK_TTL_HOURS", 24),
		WeeklyReportCron:   getEnv("WEEKLY_REPORT_CRON", "@weekly"),
		EmbeddedWorker:     getEnvAsBool("EMBEDDED_WORKER", true),
		TanglePDFDir:       getEnv("TANGLE_PDF_DIR", "tangle_pdfs"),
		OutlineDir:         getEnv("OUTLINE_DIR", "outlines"),
		ReportDir:          getEnv("REPORT_DIR", "reports"),
		MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 50),

		AcceptedEmailDomains: getEnvAsList("ACCEPTED_EMAIL_DOMAINS", []string{"gmail.com", "yahoo.com"}),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

// RedisEnabled reports whether a Redis address is configured. An empty REDIS_ADDR
// runs the server without the weekly worker and with the in-process level allocator.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
