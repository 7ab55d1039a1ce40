package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort         string
	AppBaseURL      string
	DBDSN           string
	JWTSecret       string
	JWTExpiresMin   int
	RedisAddr       string
	RedisPassword   string
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
	KhaltiSecretKey string
	KhaltiEnv       string
	SMTPHost        string
	SMTPPort        string
	SMTPUser        string
	SMTPPassword    string
	SMTPFrom        string
	LLMAPIKey       string
	LLMAPIURL       string
	UploadDir       string
	ReviewDays      int
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	reviewDays, _ := strconv.Atoi(get("REVIEW_DEADLINE_DAYS", "3"))
	return Config{
		AppPort:         get("APP_PORT", "8080"),
		AppBaseURL:      get("APP_BASE_URL", ""),
		DBDSN:           must("DB_DSN"),
		JWTSecret:       must("JWT_SECRET"),
		JWTExpiresMin:   expires,
		RedisAddr:       get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
		KhaltiSecretKey: get("KHALTI_SECRET_KEY", ""),
		KhaltiEnv:       get("KHALTI_ENV", "sandbox"),
		SMTPHost:        get("SMTP_HOST", ""),
		SMTPPort:        get("SMTP_PORT", "587"),
		SMTPUser:        get("SMTP_USER", ""),
		SMTPPassword:    get("SMTP_PASSWORD", ""),
		SMTPFrom:        get("SMTP_FROM", "no-reply@rojgar.app"),
		LLMAPIKey:       get("LLM_API_KEY", ""),
		LLMAPIURL:       get("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		UploadDir:       get("UPLOAD_DIR", "./uploads"),
		ReviewDays:      reviewDays,
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
