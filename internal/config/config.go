package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied to every environment variable read by Load.
const EnvPrefix = "BROTOT"

type Config struct {
	App        AppConfig
	Auth       AuthConfig
	Sheets     SheetsConfig
	Cloudinary CloudinaryConfig
	Redis      RedisConfig
}

// Load reads the full configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"BROTOT_APP_ENV" default:"development"`
	Port     string `envconfig:"BROTOT_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"BROTOT_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "development")
}

// AuthConfig holds the single shared credential pair gating the app.
type AuthConfig struct {
	Username   string        `envconfig:"BROTOT_AUTH_USERNAME" required:"true"`
	Password   string        `envconfig:"BROTOT_AUTH_PASSWORD" required:"true"`
	SessionTTL time.Duration `envconfig:"BROTOT_AUTH_SESSION_TTL" default:"120h"`
}

type SheetsConfig struct {
	CredentialsPath   string `envconfig:"BROTOT_SHEETS_CREDENTIALS_PATH" default:"./service-account.json"`
	SpreadsheetID     string `envconfig:"BROTOT_SHEETS_SPREADSHEET_ID" required:"true"`
	MembersSheet      string `envconfig:"BROTOT_SHEETS_MEMBERS_SHEET" default:"Members"`
	TransactionsSheet string `envconfig:"BROTOT_SHEETS_TRANSACTIONS_SHEET" default:"Transactions"`
}

type CloudinaryConfig struct {
	CloudName     string        `envconfig:"BROTOT_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey        string        `envconfig:"BROTOT_CLOUDINARY_API_KEY" required:"true"`
	APISecret     string        `envconfig:"BROTOT_CLOUDINARY_API_SECRET" required:"true"`
	Folder        string        `envconfig:"BROTOT_CLOUDINARY_FOLDER" default:"gym_members"`
	UploadTimeout time.Duration `envconfig:"BROTOT_CLOUDINARY_UPLOAD_TIMEOUT" default:"30s"`
}

type RedisConfig struct {
	URL      string        `envconfig:"BROTOT_REDIS_URL" default:"redis://localhost:6379/0"`
	CacheTTL time.Duration `envconfig:"BROTOT_REDIS_CACHE_TTL" default:"5m"`
}
