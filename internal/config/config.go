package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Lelo88/tienda-golang/internal/secrets"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"

	// MinSessionSecretLen coincide con el mínimo que exige el emisor de sesiones.
	MinSessionSecretLen = 32
)

// Config agrupa la configuración necesaria para correr la aplicación.
type Config struct {
	Port         string
	Env          string
	LogLevel     string
	StoreBackend string

	DatabaseURL   string
	RunMigrations bool

	FirebaseProjectID string
	CredentialsFile   string
	FirebaseAPIKey    string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	SendGridAPIKey string
	MailFrom       string
	MailFromName   string
	OrderNotifyTo  string

	GCSBucket          string
	AMQPURL            string
	CORSAllowedOrigins []string
}

// Load lee variables de entorno y valida lo mínimo indispensable.
// Los valores sm:// quedan sin resolver hasta ResolveSecrets.
func Load() (Config, error) {
	port := env("PORT", "8080")
	// Normalizamos por si alguien manda ":8080"
	port = strings.TrimPrefix(port, ":")

	backend := strings.ToLower(env("STORE_BACKEND", BackendFirestore))
	switch backend {
	case BackendFirestore, BackendPostgres, BackendMemory:
	default:
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q (firestore|postgres|memory)", backend)
	}

	runMigrations, err := envBool("RUN_MIGRATIONS", true)
	if err != nil {
		return Config{}, err
	}
	cookieSecure, err := envBool("COOKIE_SECURE", false)
	if err != nil {
		return Config{}, err
	}

	ttl := time.Hour
	if raw := env("SESSION_TTL", ""); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid SESSION_TTL %q", raw)
		}
	}

	cfg := Config{
		Port:               port,
		Env:                env("APP_ENV", "dev"),
		LogLevel:           env("LOG_LEVEL", "info"),
		StoreBackend:       backend,
		DatabaseURL:        env("DATABASE_URL", ""),
		RunMigrations:      runMigrations,
		FirebaseProjectID:  env("FIREBASE_PROJECT_ID", ""),
		CredentialsFile:    env("GOOGLE_APPLICATION_CREDENTIALS", ""),
		FirebaseAPIKey:     env("FIREBASE_API_KEY", ""),
		SessionSecret:      env("SESSION_SECRET", ""),
		SessionTTL:         ttl,
		CookieSecure:       cookieSecure,
		SendGridAPIKey:     env("SENDGRID_API_KEY", ""),
		MailFrom:           env("MAIL_FROM", ""),
		MailFromName:       env("MAIL_FROM_NAME", ""),
		OrderNotifyTo:      env("ORDER_NOTIFY_TO", ""),
		GCSBucket:          env("GCS_BUCKET", ""),
		AMQPURL:            env("AMQP_URL", ""),
		CORSAllowedOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "")),
	}

	required := []struct {
		name  string
		value string
	}{
		{"FIREBASE_PROJECT_ID", cfg.FirebaseProjectID},
		{"FIREBASE_API_KEY", cfg.FirebaseAPIKey},
		{"SESSION_SECRET", cfg.SessionSecret},
	}
	if backend == BackendPostgres {
		required = append(required, struct {
			name  string
			value string
		}{"DATABASE_URL", cfg.DatabaseURL})
	}
	for _, r := range required {
		if r.value == "" {
			return Config{}, fmt.Errorf("missing required env var: %s", r.name)
		}
	}

	if !secrets.IsReference(cfg.SessionSecret) {
		if err := cfg.validateSecret(); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// HasSecretRefs indica si algún campo apunta a Secret Manager.
func (c Config) HasSecretRefs() bool {
	for _, field := range c.secretFields() {
		if secrets.IsReference(*field) {
			return true
		}
	}
	return false
}

// ResolveSecrets reemplaza las referencias sm:// usando resolve.
func (c *Config) ResolveSecrets(ctx context.Context, resolve func(ctx context.Context, value string) (string, error)) error {
	for _, field := range c.secretFields() {
		value, err := resolve(ctx, *field)
		if err != nil {
			return fmt.Errorf("resolve secret: %w", err)
		}
		*field = value
	}
	return c.validateSecret()
}

func (c *Config) secretFields() []*string {
	return []*string{
		&c.DatabaseURL,
		&c.FirebaseAPIKey,
		&c.SessionSecret,
		&c.SendGridAPIKey,
		&c.AMQPURL,
	}
}

func (c Config) validateSecret() error {
	if len(c.SessionSecret) < MinSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLen)
	}
	return nil
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) (bool, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
