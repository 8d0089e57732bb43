package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	env "github.com/Skotchmaster/inventory/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string
	JWTSecret   []byte
	FrontendURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	SupportEmail string
	MailTimeout  time.Duration

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
	S3Folder    string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("dotenv_not_loaded", "error", err)
	}

	smtpUser := env.EnvDefault("SMTP_USER", "")

	return Config{
		ServiceName: env.EnvDefault("SERVICE_NAME", "inventory"),
		ServerPort:  env.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    env.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: env.EnvDefault("DATABASE_URL", ""),
		JWTSecret:   []byte(env.EnvDefault("JWT_SECRET", "")),
		FrontendURL: env.EnvDefault("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost:     env.EnvDefault("SMTP_HOST", ""),
		SMTPPort:     env.EnvIntDefault("SMTP_PORT", 587),
		SMTPUser:     smtpUser,
		SMTPPassword: env.EnvDefault("SMTP_PASSWORD", ""),
		MailFrom:     env.EnvDefault("MAIL_FROM", smtpUser),
		SupportEmail: env.EnvDefault("SUPPORT_EMAIL", smtpUser),
		MailTimeout:  env.EnvDurationDefault("MAIL_TIMEOUT", 10*time.Second),

		S3Endpoint:  env.EnvDefault("S3_ENDPOINT", ""),
		S3Region:    env.EnvDefault("S3_REGION", "us-east-1"),
		S3Bucket:    env.EnvDefault("S3_BUCKET", ""),
		S3AccessKey: env.EnvDefault("S3_ACCESS_KEY", ""),
		S3SecretKey: env.EnvDefault("S3_SECRET_KEY", ""),
		S3PublicURL: env.EnvDefault("S3_PUBLIC_URL", ""),
		S3Folder:    env.EnvDefault("S3_FOLDER", "inventory"),

		KafkaBrokers: env.CSV(env.EnvDefault("KAFKA_BROKERS", "")),

		ESURL:      env.EnvDefault("ES_URL", ""),
		ESUser:     env.EnvDefault("ES_USER", ""),
		ESPassword: env.EnvDefault("ES_PASSWORD", ""),
		ESIndex:    env.EnvDefault("ES_INDEX", "products"),
	}
}

func (c Config) Validate() error {
	return env.RequireNonEmpty(map[string]string{
		"DATABASE_URL": c.DatabaseURL,
		"JWT_SECRET":   string(c.JWTSecret),
	}, "DATABASE_URL", "JWT_SECRET")
}

func (c Config) MailEnabled() bool   { return c.SMTPHost != "" }
func (c Config) StorageEnabled() bool { return c.S3Bucket != "" }
func (c Config) EventsEnabled() bool  { return len(c.KafkaBrokers) > 0 }
func (c Config) SearchEnabled() bool  { return c.ESURL != "" }
