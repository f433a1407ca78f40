package config

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/caseworks/appraisal-case-api/models"
)

// Config holds the project config values
type Config struct {
	URL              string
	DatabaseName     string
	RedisURI         string
	BaseURL          string
	Port             string
	CaseKey          string
	CaseIDPrefix     string
	APIUsername      string
	APIPasswordHash  string
	WebhookJWTSecret string
	SendgridAPIKey   string
	AlertEmailTo     string
	AlertEmailFrom   string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger, err := setLogger(os.Getenv("APP_ENV"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:              os.Getenv("DB_URI"),
		DatabaseName:     os.Getenv("DB_NAME"),
		RedisURI:         getEnv("REDIS_URI", "redis://127.0.0.1:6379/0"),
		BaseURL:          os.Getenv("BASE_URL"),
		Port:             os.Getenv("PORT"),
		CaseKey:          getEnv("CASE_KEY", "active-case"),
		CaseIDPrefix:     getEnv("CASE_ID_PREFIX", "DMG"),
		APIUsername:      os.Getenv("API_USERNAME"),
		APIPasswordHash:  os.Getenv("API_PASSWORD_HASH"),
		WebhookJWTSecret: os.Getenv("WEBHOOK_JWT_SECRET"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		AlertEmailTo:     os.Getenv("ALERT_EMAIL_TO"),
		AlertEmailFrom:   os.Getenv("ALERT_EMAIL_FROM"),
	}

}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		return cfg.Build()
	case "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		return cfg.Build()
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: err.Error()}})
	w.Write(b)
}
