package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	PublicURL    string

	// Access token (short lived, proves identity on API calls)
	AccessTokenSecret         string
	AccessTokenExpiryDuration time.Duration
	AccessTokenCookieName     string

	// Refresh token (longer lived, exchanged for a new pair; rotated on use)
	RefreshTokenSecret         string
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string

	JWTIssuer string

	// Outgoing mail (password reset)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PUBLIC_URL", "http://localhost:3000")
	viper.SetDefault("ACCESS_TOKEN_SECRET", "insecure-access-secret-change-me")
	viper.SetDefault("ACCESS_TOKEN_EXPIRY_DURATION", "15m")
	viper.SetDefault("ACCESS_TOKEN_COOKIE_NAME", "Authentication")
	viper.SetDefault("REFRESH_TOKEN_SECRET", "insecure-refresh-secret-change-me")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "48h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "Refresh")
	viper.SetDefault("JWT_ISSUER", "resumeforge-backend")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("MAIL_FROM", "noreply@resumeforge.local")
	viper.SetDefault("MAIL_FROM_NAME", "ResumeForge")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.PublicURL = viper.GetString("PUBLIC_URL")

	accessSecret := viper.GetString("ACCESS_TOKEN_SECRET")
	if accessSecret == "insecure-access-secret-change-me" {
		log.Println("Warning: ACCESS_TOKEN_SECRET not set. Using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}

	refreshSecret := viper.GetString("REFRESH_TOKEN_SECRET")
	if refreshSecret == "insecure-refresh-secret-change-me" {
		log.Println("Warning: REFRESH_TOKEN_SECRET not set. Using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}

	accessExpiryStr := viper.GetString("ACCESS_TOKEN_EXPIRY_DURATION")
	accessExpiry, err := time.ParseDuration(accessExpiryStr)
	if err != nil {
		accessExpiry = 15 * time.Minute
		log.Printf("Warning: Invalid value for ACCESS_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", accessExpiryStr, accessExpiry)
	}

	refreshExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshExpiry, err := time.ParseDuration(refreshExpiryStr)
	if err != nil {
		refreshExpiry = 48 * time.Hour
		log.Printf("Warning: Invalid value for REFRESH_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", refreshExpiryStr, refreshExpiry)
	}

	cfg.AccessTokenSecret = accessSecret
	cfg.AccessTokenExpiryDuration = accessExpiry
	cfg.AccessTokenCookieName = viper.GetString("ACCESS_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenSecret = refreshSecret
	cfg.RefreshTokenExpiryDuration = refreshExpiry
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetString("SMTP_PORT")
	cfg.SMTPUsername = viper.GetString("SMTP_USERNAME")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.MailFrom = viper.GetString("MAIL_FROM")
	cfg.MailFromName = viper.GetString("MAIL_FROM_NAME")
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Password reset emails will not be delivered.")
	}

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}

	return cfg, nil
}
