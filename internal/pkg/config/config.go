package config

import (
	"strconv"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/env"
)

// Config is the explicit application configuration, built once at startup
// from the environment and passed to components. Business logic never reads
// the environment directly.
type Config struct {
	App       App
	DB        DB
	Cache     Cache
	Stripe    Stripe
	PayPal    PayPal
	Bunny     Bunny
	PackStore PackStore
	Brevo     Brevo
	ManyChat  ManyChat
	Twilio    Twilio
	SMTP      SMTP
	HCaptcha  HCaptcha
	OAuth     OAuth
}

type App struct {
	Env            string
	Host           string
	Port           string
	PublicDomain   string
	DownloadSecret string // signs short-lived download tokens
	FTPHost        string // host buyers connect to with their pool account
	SupportEmail   string
}

type DB struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

type Cache struct {
	Host     string
	Port     string
	Password string
}

type Stripe struct {
	SecretKey     string
	WebhookSecret string
	// Tolerance for the webhook signature timestamp check.
	SignatureTolerance time.Duration
}

type PayPal struct {
	ClientID  string
	Secret    string
	WebhookID string
	BaseURL   string // https://api-m.paypal.com or the sandbox endpoint
}

type Bunny struct {
	Hostname    string // pull zone hostname, e.g. bearbeat.b-cdn.net
	TokenKey    string // URL token authentication key
	TokenExpiry time.Duration
}

type PackStore struct {
	Endpoint        string // Hetzner S3-compatible endpoint
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PresignExpiry   time.Duration
}

type Brevo struct {
	APIKey     string
	ListID     int64
	TemplateID int64
	Sender     string
}

type ManyChat struct {
	APIKey string
	FlowNS string // flow namespace triggered after purchase
}

type Twilio struct {
	AccountSID   string
	AuthToken    string
	FromSMS      string
	FromWhatsApp string
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

type HCaptcha struct {
	Secret string
}

type OAuth struct {
	GoogleKey    string
	GoogleSecret string
}

// Load builds the configuration from the already loaded environment.
func Load() *Config {
	return &Config{
		App: App{
			Env:            env.GetEnv("APP_ENV", "prod"),
			Host:           env.GetEnv("APP_HOST", "localhost"),
			Port:           env.GetEnv("APP_PORT", "4000"),
			PublicDomain:   env.GetEnv("PUBLIC_DOMAIN", ""),
			DownloadSecret: env.GetEnv("DOWNLOAD_TOKEN_SECRET", ""),
			FTPHost:        env.GetEnv("FTP_HOST", ""),
			SupportEmail:   env.GetEnv("SUPPORT_EMAIL", ""),
		},
		DB: DB{
			User:     env.GetEnv("DB_USER", ""),
			Password: env.GetEnv("DB_PASSWORD", ""),
			Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:     env.GetEnv("DB_PORT", "3306"),
			Name:     env.GetEnv("DB_NAME", ""),
		},
		Cache: Cache{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		},
		Stripe: Stripe{
			SecretKey:          env.GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:      env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			SignatureTolerance: 5 * time.Minute,
		},
		PayPal: PayPal{
			ClientID:  env.GetEnv("PAYPAL_CLIENT_ID", ""),
			Secret:    env.GetEnv("PAYPAL_SECRET", ""),
			WebhookID: env.GetEnv("PAYPAL_WEBHOOK_ID", ""),
			BaseURL:   env.GetEnv("PAYPAL_BASE_URL", "https://api-m.paypal.com"),
		},
		Bunny: Bunny{
			Hostname:    env.GetEnv("BUNNY_HOSTNAME", ""),
			TokenKey:    env.GetEnv("BUNNY_TOKEN_KEY", ""),
			TokenExpiry: durationEnv("BUNNY_TOKEN_EXPIRY_MINUTES", 60) * time.Minute,
		},
		PackStore: PackStore{
			Endpoint:        env.GetEnv("PACKSTORE_ENDPOINT", ""),
			Region:          env.GetEnv("PACKSTORE_REGION", "eu-central"),
			Bucket:          env.GetEnv("PACKSTORE_BUCKET", ""),
			AccessKeyID:     env.GetEnv("PACKSTORE_ACCESS_KEY_ID", ""),
			SecretAccessKey: env.GetEnv("PACKSTORE_SECRET_ACCESS_KEY", ""),
			PresignExpiry:   durationEnv("PACKSTORE_PRESIGN_EXPIRY_MINUTES", 120) * time.Minute,
		},
		Brevo: Brevo{
			APIKey:     env.GetEnv("BREVO_API_KEY", ""),
			ListID:     intEnv("BREVO_LIST_ID", 0),
			TemplateID: intEnv("BREVO_PURCHASE_TEMPLATE_ID", 0),
			Sender:     env.GetEnv("BREVO_SENDER", ""),
		},
		ManyChat: ManyChat{
			APIKey: env.GetEnv("MANYCHAT_API_KEY", ""),
			FlowNS: env.GetEnv("MANYCHAT_PURCHASE_FLOW", ""),
		},
		Twilio: Twilio{
			AccountSID:   env.GetEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    env.GetEnv("TWILIO_AUTH_TOKEN", ""),
			FromSMS:      env.GetEnv("TWILIO_FROM_SMS", ""),
			FromWhatsApp: env.GetEnv("TWILIO_FROM_WHATSAPP", ""),
		},
		SMTP: SMTP{
			Host:     env.GetEnv("SMTP_HOST", ""),
			Port:     env.GetEnv("SMTP_PORT", "587"),
			Username: env.GetEnv("SMTP_USERNAME", ""),
			Password: env.GetEnv("SMTP_PASSWORD", ""),
			Sender:   env.GetEnv("SMTP_SENDER", ""),
		},
		HCaptcha: HCaptcha{
			Secret: env.GetEnv("HCAPTCHA_SECRET", ""),
		},
		OAuth: OAuth{
			GoogleKey:    env.GetEnv("GOOGLE_KEY", ""),
			GoogleSecret: env.GetEnv("GOOGLE_SECRET", ""),
		},
	}
}

func (c *Config) IsDev() bool {
	return c.App.Env == "dev"
}

func intEnv(key string, def int64) int64 {
	v := env.GetEnv(key, "")
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func durationEnv(key string, def int64) time.Duration {
	return time.Duration(intEnv(key, def))
}
