package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	Environment string
	LogLevel    string
	HTTPAddr    string

	// EnvFile is the dotenv file key rotation rewrites when the master or
	// static key changes.
	EnvFile string

	MasterKey string
	StaticKey string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Mail MailConfig
}

// MailConfig describes the shared default bot and its per-user usage cap.
type MailConfig struct {
	BotEmail    string
	BotPassword string
	SMTPHost    string
	SMTPPort    int
	FromName    string
	UsageLimit  int
}

// Load reads configuration from the environment and .env file. Mail defaults
// may also come from an optional hermes.yml; environment variables win.
func Load() Config {
	envFile := getenv("HERMES_ENV_FILE", ".env")
	_ = godotenv.Load(envFile)

	mail := loadMailDefaults()
	if v := getenv("BOT_EMAIL", ""); v != "" {
		mail.BotEmail = v
	}
	if v := getenv("BOT_PASSWORD", ""); v != "" {
		mail.BotPassword = v
	}
	if v := getenv("BOT_SMTP_SERVER", ""); v != "" {
		mail.SMTPHost = v
	}
	if v := getenvInt("BOT_SMTP_PORT", 0); v != 0 {
		mail.SMTPPort = v
	}
	if v := getenvInt("DEFAULT_BOT_LIMIT", 0); v != 0 {
		mail.UsageLimit = v
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "hermes"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		EnvFile:     envFile,
		MasterKey:   strings.TrimSpace(getenv("HERMES_MASTER_KEY", "")),
		StaticKey:   strings.TrimSpace(getenv("API_STATIC_KEY", "")),
		DBType:      getenv("DATABASE_TYPE", "postgres"),
		DBHost:      getenv("DATABASE_HOST", "localhost"),
		DBPort:      getenv("DATABASE_PORT", "5432"),
		DBName:      getenv("DATABASE_NAME", "hermes"),
		DBUser:      getenv("DATABASE_USER", "hermes"),
		DBPassword:  getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:   getenv("DATABASE_SSLMODE", "disable"),
		Mail:        mail,
	}
}

func loadMailDefaults() MailConfig {
	fallback := MailConfig{
		SMTPHost:   "smtp.gmail.com",
		SMTPPort:   587,
		FromName:   "Hermes Bot",
		UsageLimit: 50,
	}

	v := viper.New()
	v.SetConfigName("hermes")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/hermes")
	v.AddConfigPath(".")

	v.SetDefault("mail.smtpHost", fallback.SMTPHost)
	v.SetDefault("mail.smtpPort", fallback.SMTPPort)
	v.SetDefault("mail.fromName", fallback.FromName)
	v.SetDefault("mail.usageLimit", fallback.UsageLimit)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Malformed config file: run on defaults rather than refusing
			// to start.
			return fallback
		}
	}

	return MailConfig{
		BotEmail:    v.GetString("mail.botEmail"),
		BotPassword: v.GetString("mail.botPassword"),
		SMTPHost:    v.GetString("mail.smtpHost"),
		SMTPPort:    v.GetInt("mail.smtpPort"),
		FromName:    v.GetString("mail.fromName"),
		UsageLimit:  v.GetInt("mail.usageLimit"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
