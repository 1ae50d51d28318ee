package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Log     LogConfig
	Extract ExtractConfig
	CORS    CORSConfig
	Email   EmailConfig
	PDF     PDFConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractProviderConfig holds settings for a single LLM extraction provider.
// Providers get one attempt within TimeoutSecs; retries are handled by
// falling through to the next configured provider, never by re-calling.
type ExtractProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractConfig holds LLM extraction settings with multi-provider support.
type ExtractConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ExtractProviderConfig `mapstructure:"primary"`
	Secondary ExtractProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary extraction provider config, falling back to legacy flat fields.
func (e *ExtractConfig) PrimaryConfig() *ExtractProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return &ExtractProviderConfig{
		Provider:     e.Provider,
		APIKey:       e.APIKey,
		DefaultModel: e.DefaultModel,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary extraction provider config, or nil if not configured.
func (e *ExtractConfig) SecondaryConfig() *ExtractProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings. AccessKey and SecretKey are
// optional static AWS credentials; when empty the default credential chain
// is used.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
}

// PDFConfig holds document rendering settings.
type PDFConfig struct {
	CompanyName    string `mapstructure:"company_name"`
	CompanyAddress string `mapstructure:"company_address"`
	FooterNote     string `mapstructure:"footer_note"`
}

// Load reads configuration from environment variables with the BILLFORGE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billforge")
	v.SetDefault("db.password", "billforge_secret")
	v.SetDefault("db.name", "billforge_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Extract defaults (legacy flat)
	v.SetDefault("extract.provider", "claude")
	v.SetDefault("extract.api_key", "")
	v.SetDefault("extract.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extract.timeout_secs", 60)

	// Extract primary/secondary defaults
	v.SetDefault("extract.primary.provider", "")
	v.SetDefault("extract.primary.api_key", "")
	v.SetDefault("extract.primary.default_model", "")
	v.SetDefault("extract.primary.timeout_secs", 60)
	v.SetDefault("extract.secondary.provider", "")
	v.SetDefault("extract.secondary.api_key", "")
	v.SetDefault("extract.secondary.default_model", "")
	v.SetDefault("extract.secondary.timeout_secs", 60)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "billing@billforge.app")
	v.SetDefault("email.from_name", "BillForge")
	v.SetDefault("email.access_key", "")
	v.SetDefault("email.secret_key", "")

	// PDF defaults
	v.SetDefault("pdf.company_name", "BillForge")
	v.SetDefault("pdf.company_address", "")
	v.SetDefault("pdf.footer_note", "Thank you for your business.")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "BILLFORGE_SERVER_PORT",
		"server.read_timeout":             "BILLFORGE_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "BILLFORGE_SERVER_WRITE_TIMEOUT",
		"server.environment":              "BILLFORGE_SERVER_ENVIRONMENT",
		"db.host":                         "BILLFORGE_DB_HOST",
		"db.port":                         "BILLFORGE_DB_PORT",
		"db.user":                         "BILLFORGE_DB_USER",
		"db.password":                     "BILLFORGE_DB_PASSWORD",
		"db.name":                         "BILLFORGE_DB_NAME",
		"db.sslmode":                      "BILLFORGE_DB_SSLMODE",
		"db.max_open":                     "BILLFORGE_DB_MAX_OPEN",
		"db.max_idle":                     "BILLFORGE_DB_MAX_IDLE",
		"log.level":                       "BILLFORGE_LOG_LEVEL",
		"log.format":                      "BILLFORGE_LOG_FORMAT",
		"cors.allowed_origins":            "BILLFORGE_CORS_ALLOWED_ORIGINS",
		"extract.provider":                "BILLFORGE_EXTRACT_PROVIDER",
		"extract.api_key":                 "BILLFORGE_EXTRACT_API_KEY",
		"extract.default_model":           "BILLFORGE_EXTRACT_DEFAULT_MODEL",
		"extract.timeout_secs":            "BILLFORGE_EXTRACT_TIMEOUT_SECS",
		"extract.primary.provider":        "BILLFORGE_EXTRACT_PRIMARY_PROVIDER",
		"extract.primary.api_key":         "BILLFORGE_EXTRACT_PRIMARY_API_KEY",
		"extract.primary.default_model":   "BILLFORGE_EXTRACT_PRIMARY_DEFAULT_MODEL",
		"extract.primary.timeout_secs":    "BILLFORGE_EXTRACT_PRIMARY_TIMEOUT_SECS",
		"extract.secondary.provider":      "BILLFORGE_EXTRACT_SECONDARY_PROVIDER",
		"extract.secondary.api_key":       "BILLFORGE_EXTRACT_SECONDARY_API_KEY",
		"extract.secondary.default_model": "BILLFORGE_EXTRACT_SECONDARY_DEFAULT_MODEL",
		"extract.secondary.timeout_secs":  "BILLFORGE_EXTRACT_SECONDARY_TIMEOUT_SECS",
		"email.provider":                  "BILLFORGE_EMAIL_PROVIDER",
		"email.region":                    "BILLFORGE_EMAIL_REGION",
		"email.from_address":              "BILLFORGE_EMAIL_FROM_ADDRESS",
		"email.from_name":                 "BILLFORGE_EMAIL_FROM_NAME",
		"email.access_key":                "BILLFORGE_EMAIL_ACCESS_KEY",
		"email.secret_key":                "BILLFORGE_EMAIL_SECRET_KEY",
		"pdf.company_name":                "BILLFORGE_PDF_COMPANY_NAME",
		"pdf.company_address":             "BILLFORGE_PDF_COMPANY_ADDRESS",
		"pdf.footer_note":                 "BILLFORGE_PDF_FOOTER_NOTE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLFORGE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLFORGE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Extract = ExtractConfig{
		Provider:     v.GetString("extract.provider"),
		APIKey:       v.GetString("extract.api_key"),
		DefaultModel: v.GetString("extract.default_model"),
		TimeoutSecs:  v.GetInt("extract.timeout_secs"),
		Primary: ExtractProviderConfig{
			Provider:     v.GetString("extract.primary.provider"),
			APIKey:       v.GetString("extract.primary.api_key"),
			DefaultModel: v.GetString("extract.primary.default_model"),
			TimeoutSecs:  v.GetInt("extract.primary.timeout_secs"),
		},
		Secondary: ExtractProviderConfig{
			Provider:     v.GetString("extract.secondary.provider"),
			APIKey:       v.GetString("extract.secondary.api_key"),
			DefaultModel: v.GetString("extract.secondary.default_model"),
			TimeoutSecs:  v.GetInt("extract.secondary.timeout_secs"),
		},
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		AccessKey:   v.GetString("email.access_key"),
		SecretKey:   v.GetString("email.secret_key"),
	}

	cfg.PDF = PDFConfig{
		CompanyName:    v.GetString("pdf.company_name"),
		CompanyAddress: v.GetString("pdf.company_address"),
		FooterNote:     v.GetString("pdf.footer_note"),
	}

	return cfg, nil
}
