package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// Config is read from an optional YAML file (CONFIG_FILE) and then from the
// environment. Environment values win.
type Config struct {
	Port                   string `yaml:"port" env:"PORT"`
	DBUser                 string `yaml:"db_user" env:"DB_USER"`
	DBPassword             string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost                 string `yaml:"db_host" env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `yaml:"db_name" env:"DB_NAME"`
	DBPort                 string `yaml:"db_port" env:"DB_PORT"`
	InstanceConnectionName string `yaml:"instance_connection_name" env:"INSTANCE_CONNECTION_NAME"`

	MaxUploadMB int      `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	InboxDir    string   `yaml:"inbox_dir" env:"INBOX_DIR"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`

	StorageBucket          string `yaml:"storage_bucket" env:"STORAGE_BUCKET"`
	StorageCredentialsFile string `yaml:"storage_credentials_file" env:"STORAGE_CREDENTIALS_FILE"`
	StorageEndpoint        string `yaml:"storage_endpoint" env:"STORAGE_ENDPOINT"`
	GeminiAPIKey           string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel            string `yaml:"gemini_model" env:"GEMINI_MODEL"`
	FirebaseProjectID      string `yaml:"firebase_project_id" env:"FIREBASE_PROJECT_ID"`
}

const (
	defaultPort        = "8080"
	defaultDBPort      = "3306"
	defaultMaxUploadMB = 32
	defaultGeminiModel = "gemini-2.5-flash"
)

func Load() (*Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.DBPort == "" {
		c.DBPort = defaultDBPort
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = defaultMaxUploadMB
	}
	if c.GeminiModel == "" {
		c.GeminiModel = defaultGeminiModel
	}
}

// Validate reports every missing database setting at once. An empty
// password is allowed for local servers.
func (c *Config) Validate() error {
	var missing []string
	if c.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DBHost == "" && c.InstanceConnectionName == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return errors.New("missing required config: " + strings.Join(missing, ", "))
	}
	return nil
}
