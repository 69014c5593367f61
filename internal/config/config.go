package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string
	DbMaxConn int32

	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	PasswordResetTTL        time.Duration
	ResetRevealUnknownEmail bool
	FrontendURL             string

	Log      string
	LogLevel string
	LogDir   string
	Env      string // dev|prod

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailWorkers  int
}

// LoadConfig reads .env (if present), then the environment, applying defaults.
// It does not log so that the logger can be built from its result.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	accessTTL, err := time.ParseDuration(def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "15m"))
	if err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRY: %w", err)
	}
	refreshTTL, err := time.ParseDuration(def(os.Getenv("REFRESH_TOKEN_EXPIRY"), "168h"))
	if err != nil {
		return nil, fmt.Errorf("REFRESH_TOKEN_EXPIRY: %w", err)
	}
	resetTTL, err := time.ParseDuration(def(os.Getenv("PASSWORD_RESET_TTL"), "5m"))
	if err != nil {
		return nil, fmt.Errorf("PASSWORD_RESET_TTL: %w", err)
	}
	reveal, err := strconv.ParseBool(def(os.Getenv("RESET_REVEAL_UNKNOWN_EMAIL"), "false"))
	if err != nil {
		return nil, fmt.Errorf("RESET_REVEAL_UNKNOWN_EMAIL: %w", err)
	}
	workers, err := strconv.Atoi(def(os.Getenv("MAIL_WORKERS"), "3"))
	if err != nil {
		return nil, fmt.Errorf("MAIL_WORKERS: %w", err)
	}
	maxConn, err := strconv.ParseInt(def(os.Getenv("DB_MAX_CONNS"), "10"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_CONNS: %w", err)
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),
		DbMaxConn: int32(maxConn),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       def(os.Getenv("JWT_ISSUER"), "ecommerce"),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,

		PasswordResetTTL:        resetTTL,
		ResetRevealUnknownEmail: reveal,
		FrontendURL:             strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		LogDir:   def(os.Getenv("LOG_DIR"), "logs"),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     def(os.Getenv("MAIL_FROM"), os.Getenv("SMTP_USER")),
		MailWorkers:  workers,
	}

	return cfg, nil
}

// Validate returns warnings plus a fatal error when the service cannot start.
func (c *Config) Validate() (warnings []string, err error) {
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	if len(c.JWTSecret) < 32 {
		warnings = append(warnings, "JWT_SECRET is shorter than 32 bytes")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.PasswordResetTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		warnings = append(warnings, "REFRESH_TOKEN_EXPIRY is shorter than ACCESS_TOKEN_EXPIRY")
	}

	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured, reset emails will fail")
	}
	if c.FrontendURL == "" {
		warnings = append(warnings, "FRONTEND_URL is empty, reset links will be relative")
	}
	if c.MailWorkers <= 0 {
		warnings = append(warnings, "MAIL_WORKERS <= 0, using 1")
		c.MailWorkers = 1
	}

	return warnings, nil
}

func (c *Config) dsnURL() *url.URL {
	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DbUser, c.DbPass),
		Host:     net.JoinHostPort(c.DbHost, c.DbPort),
		Path:     "/" + c.DbName,
		RawQuery: url.Values{"sslmode": {c.DbSSLMode}}.Encode(),
	}
}

// GetDSN returns the full DSN (with password). Credentials are URL-escaped.
func (c *Config) GetDSN() string {
	return c.dsnURL().String()
}

// GetDSNSafe returns the DSN with the password masked, for logs.
func (c *Config) GetDSNSafe() string {
	return c.dsnURL().Redacted()
}
