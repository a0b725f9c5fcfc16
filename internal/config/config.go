package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSTopicARN    string // empty disables push notifications

	JWTSecret string
	JWTExpiry time.Duration

	VerificationTTL time.Duration
	ResendInterval  time.Duration
	MaxCodeAttempts int
	NotifierTimeout time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users              string
	UniqueConstraints  string
	EmailVerifications string
	Posts              string
	Likes              string
	Interactions       string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:              getEnv("DYNAMO_TABLE_USERS", "users"),
			UniqueConstraints:  getEnv("DYNAMO_TABLE_UNIQUE_CONSTRAINTS", "unique_constraints"),
			EmailVerifications: getEnv("DYNAMO_TABLE_EMAIL_VERIFICATIONS", "email_verifications"),
			Posts:              getEnv("DYNAMO_TABLE_POSTS", "posts"),
			Likes:              getEnv("DYNAMO_TABLE_LIKES", "likes"),
			Interactions:       getEnv("DYNAMO_TABLE_INTERACTIONS", "interactions"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "dultive-images"),
		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		VerificationTTL: time.Duration(getEnvInt("VERIFICATION_TTL_MINUTES", 10)) * time.Minute,
		ResendInterval:  time.Duration(getEnvInt("VERIFICATION_RESEND_SECONDS", 60)) * time.Second,
		MaxCodeAttempts: getEnvInt("VERIFICATION_MAX_ATTEMPTS", 5),
		NotifierTimeout: time.Duration(getEnvInt("NOTIFIER_TIMEOUT_SECONDS", 5)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("EMAIL_FROM", "noreply@dultive.app"),
		SMTPUsername: getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
