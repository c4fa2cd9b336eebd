package config

import (
	"os"
	"strings"
	"time"
)

// Server captures gateway configuration. Everything comes from the
// environment so main stays lean.
type Server struct {
	Addr           string
	BackendBaseURL string
	PreviewTimeout time.Duration
	SessionTimeout time.Duration
	JWTSigningKey  string
	KafkaBrokers   []string
	AuditTopic     string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MEMO_GATEWAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	backendBaseURL := os.Getenv("DECISION_MEMO_API_URL")
	if backendBaseURL == "" {
		// Local backend default for development.
		backendBaseURL = "http://localhost:8000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "memo.access.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:           addr,
		BackendBaseURL: backendBaseURL,
		PreviewTimeout: durationFromEnv("MEMO_PREVIEW_TIMEOUT", 60*time.Second),
		SessionTimeout: durationFromEnv("MEMO_SESSION_TIMEOUT", 300*time.Second),
		JWTSigningKey:  jwtSigningKey,
		KafkaBrokers:   brokers,
		AuditTopic:     auditTopic,
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
