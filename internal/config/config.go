package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database `envPrefix:"DATABASE_"`
	Session     Session  `envPrefix:"SESSION_"`
	Order       Order    `envPrefix:"ORDER_"`

	Billing      Billing      `envPrefix:"BILLING_"`
	Paypal       Paypal       `envPrefix:"PAYPAL_"`
	BrainTree    Braintree    `envPrefix:"BRAINTREE_"`
	Storage      Storage      `envPrefix:"STORAGE_"`
	Notification Notification `envPrefix:"NOTIFY_"`
	Admin        Admin        `envPrefix:"ADMIN_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host           string   `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port           string   `env:"HTTP_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL" envDefault:"bakerlane.db"`
}

type Session struct {
	TTL          time.Duration `env:"TTL" envDefault:"168h"`
	AdminTTL     time.Duration `env:"ADMIN_TTL" envDefault:"12h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

type Order struct {
	CancelWindow time.Duration `env:"CANCEL_WINDOW" envDefault:"1h"`
	// ContactRevealFrom is the first order status at which the counterpart's
	// email and phone are shown in order listings.
	ContactRevealFrom string `env:"CONTACT_REVEAL_FROM" envDefault:"delivered"`
}

type Billing struct {
	Provider      string `env:"PROVIDER" envDefault:"paypal"`
	PlanID        string `env:"PLAN_ID"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	ReturnURL    string `env:"RETURN_URL"`
	CancelURL    string `env:"CANCEL_URL"`
}

type Braintree struct {
	Environment  string `env:"ENVIRONMENT"`
	MerchantID   string `env:"MERCHANT_ID"`
	PublicKey    string `env:"PUBLIC_KEY"`
	PrivateKey   string `env:"PRIVATE_KEY"`
	PaymentToken string `env:"PAYMENT_TOKEN"`
}

type Storage struct {
	Dir     string `env:"DIR" envDefault:"./uploads"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080/uploads"`
}

type Notification struct {
	Workers   int    `env:"WORKERS" envDefault:"2"`
	QueueSize int    `env:"QUEUE_SIZE" envDefault:"256"`
	From      string `env:"FROM" envDefault:"BakerLane <no-reply@bakerlane.app>"`
}

type Admin struct {
	SeedEmail    string `env:"SEED_EMAIL"`
	SeedPassword string `env:"SEED_PASSWORD"`
}
