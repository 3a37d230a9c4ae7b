package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the relay reads from the environment.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	Push    PushConfig
	APNs    APNsConfig
	WebPush WebPushConfig
	Backup  BackupConfig
}

// PushConfig selects and tunes the delivery transport.
type PushConfig struct {
	// Transport is "apns" or "webpush".
	Transport string
	Workers   int
	Timeout   time.Duration
}

// APNsConfig configures the certificate-based APNs transport.
type APNsConfig struct {
	CertificatePath     string
	CertificatePassword string
	Topic               string
	Production          bool
}

// WebPushConfig configures the VAPID web push transport.
type WebPushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// BackupConfig configures scheduled database backups. Backups are disabled
// unless the bucket and both keys are set.
type BackupConfig struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Passphrase    string
	ScheduleHour  int
	RetentionDays int
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:      envOr("PUSH_PORT", "8080"),
		DBPath:    envOr("PUSH_DB_PATH", "push.db"),
		LogLevel:  os.Getenv("PUSH_LOG_LEVEL"),
		LogFormat: os.Getenv("PUSH_LOG_FORMAT"),
		Push: PushConfig{
			Transport: envOr("PUSH_TRANSPORT", "apns"),
			Workers:   envInt("PUSH_WORKERS", 8),
			Timeout:   envDuration("PUSH_TIMEOUT", 10*time.Second),
		},
		APNs: APNsConfig{
			CertificatePath:     os.Getenv("APNS_CERTIFICATE_PATH"),
			CertificatePassword: os.Getenv("APNS_CERTIFICATE_PASSWORD"),
			Topic:               os.Getenv("APNS_TOPIC"),
			Production:          envBool("APNS_PRODUCTION", false),
		},
		WebPush: WebPushConfig{
			VAPIDPublicKey:  os.Getenv("WEBPUSH_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("WEBPUSH_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("WEBPUSH_SUBSCRIBER"),
		},
		Backup: BackupConfig{
			Endpoint:      os.Getenv("BACKUP_S3_ENDPOINT"),
			Bucket:        os.Getenv("BACKUP_S3_BUCKET"),
			Region:        envOr("BACKUP_S3_REGION", "auto"),
			AccessKey:     os.Getenv("BACKUP_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("BACKUP_S3_SECRET_KEY"),
			Passphrase:    os.Getenv("BACKUP_PASSPHRASE"),
			ScheduleHour:  envInt("BACKUP_SCHEDULE_HOUR", 3),
			RetentionDays: envInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	switch cfg.Push.Transport {
	case "apns", "webpush":
	default:
		return Config{}, fmt.Errorf("unknown push transport %q", cfg.Push.Transport)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
