package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppName     string `envconfig:"APP_NAME"     default:"storefront"`
	Environment string `envconfig:"ENVIRONMENT"  default:"development"`
	Debug       bool   `envconfig:"DEBUG"        default:"false"`
	APIVersion  string `envconfig:"API_VERSION"  default:"1.0.0"`
	HTTPPort    string `envconfig:"HTTP_PORT"    default:":8080"`
	GrpcPort    string `envconfig:"GRPC_PORT"    default:":50051"` // grpc health service

	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL"    required:"true"`

	LogLevel     string `envconfig:"LOG_LEVEL"      default:"info"`
	LogDir       string `envconfig:"LOG_DIR"        default:"logs"`
	LogToConsole bool   `envconfig:"LOG_TO_CONSOLE" default:"true"`
	LogToFile    bool   `envconfig:"LOG_TO_FILE"    default:"false"`
	LogUseColors bool   `envconfig:"LOG_USE_COLORS" default:"false"`
	LogFormat    string `envconfig:"LOG_FORMAT"     default:"json"`

	JWTSecret      string        `envconfig:"JWT_SECRET"       required:"true"`
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"30m"`
	RememberMeTTL  time.Duration `envconfig:"REMEMBER_ME_TTL"  default:"720h"`
	CookieSecure   bool          `envconfig:"COOKIE_SECURE"    default:"false"`
	APIKeys        []string      `envconfig:"API_KEYS"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS"     default:"http://localhost:3000"`

	UploadDir      string `envconfig:"UPLOAD_DIR"       default:"uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	PaymentGatewayURL  string        `envconfig:"PAYMENT_GATEWAY_URL"  default:"http://localhost:9100"`
	ShippingCarrierURL string        `envconfig:"SHIPPING_CARRIER_URL" default:"http://localhost:9200"`
	UpstreamTimeout    time.Duration `envconfig:"UPSTREAM_TIMEOUT"     default:"5s"`

	SearchRateLimit float64 `envconfig:"SEARCH_RATE_LIMIT" default:"10"`
	SearchRateBurst int     `envconfig:"SEARCH_RATE_BURST" default:"20"`

	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// PublicConfig is the subset of settings safe to expose to clients.
type PublicConfig struct {
	AppName     string `json:"app_name"`
	Environment string `json:"environment"`
	Debug       bool   `json:"debug"`
	APIVersion  string `json:"api_version"`
}

func (c *Config) Public() PublicConfig {
	return PublicConfig{
		AppName:     c.AppName,
		Environment: c.Environment,
		Debug:       c.Debug,
		APIVersion:  c.APIVersion,
	}
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

var (
	config Config
	once   sync.Once
)

// Process reads the environment into a fresh Config.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	return &cfg, nil
}

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Process()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: App=%s, Environment=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s",
			config.AppName, config.Environment, config.HTTPPort, config.GrpcPort, config.LogLevel)
		logger.Infof("Configuration loaded: DatabaseDriver=%s, DatabaseURL is set", config.DatabaseDriver)
	})
	return &config
}
