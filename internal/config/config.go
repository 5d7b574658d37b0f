package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	JWT struct {
		Secret         string `yaml:"secret"`
		AccessTTLMin   int    `yaml:"access_ttl_min"`
		RefreshTTLDays int    `yaml:"refresh_ttl_days"`
	} `yaml:"jwt"`

	Vault struct {
		EncryptionKey string `yaml:"encryption_key"`
	} `yaml:"vault"`

	Tenant struct {
		BaseDomain    string `yaml:"base_domain"`
		CacheTTLSec   int    `yaml:"cache_ttl_sec"`
		RootSubdomain string `yaml:"root_subdomain"`
	} `yaml:"tenant"`

	// Process-wide SMTP fallback used when a tenant has no SMTP config.
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_username"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		TemplatesDir string `yaml:"templates_dir"`
	} `yaml:"email"`

	Storage struct {
		Type      string `yaml:"type"` // local, s3
		BasePath  string `yaml:"base_path"`
		BaseURL   string `yaml:"base_url"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Endpoint  string `yaml:"endpoint"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"storage"`

	Tasks struct {
		Backend string `yaml:"backend"` // redis, inprocess
		Workers int    `yaml:"workers"`
	} `yaml:"tasks"`
}

// Load reads config/config.yaml when present, then lets env vars override
// every knob. Tests construct Config directly instead of calling Load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.applyDefaults()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if f, err := os.Open(configPath); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8000
	c.Server.Env = "development"
	c.JWT.AccessTTLMin = 30
	c.JWT.RefreshTTLDays = 7
	c.Tenant.CacheTTLSec = 30
	c.Tenant.RootSubdomain = "admin"
	c.Email.SMTPPort = 587
	c.Email.TemplatesDir = "templates/email"
	c.Storage.Type = "local"
	c.Storage.BasePath = "./uploads"
	c.Storage.BaseURL = "/api/files"
	c.Tasks.Backend = "inprocess"
	c.Tasks.Workers = 4
}

func (c *Config) applyEnv() {
	setStr(&c.Database.DSN, "DATABASE_URL")
	setStr(&c.Redis.URL, "REDIS_URL")
	setStr(&c.Server.Env, "SERVER_ENV")
	setStr(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setStr(&c.JWT.Secret, "JWT_SECRET")
	setInt(&c.JWT.AccessTTLMin, "ACCESS_TTL_MIN")
	setInt(&c.JWT.RefreshTTLDays, "REFRESH_TTL_DAYS")
	setStr(&c.Vault.EncryptionKey, "ENCRYPTION_KEY")
	setStr(&c.Tenant.BaseDomain, "BASE_DOMAIN")
	setStr(&c.Email.SMTPHost, "DEFAULT_SMTP_HOST")
	setInt(&c.Email.SMTPPort, "DEFAULT_SMTP_PORT")
	setStr(&c.Email.SMTPUsername, "DEFAULT_SMTP_USERNAME")
	setStr(&c.Email.SMTPPassword, "DEFAULT_SMTP_PASSWORD")
	setStr(&c.Email.FromEmail, "DEFAULT_FROM_EMAIL")
	setStr(&c.Email.FromName, "DEFAULT_FROM_NAME")
	setStr(&c.Email.TemplatesDir, "EMAIL_TEMPLATES_DIR")
	setStr(&c.Storage.Type, "STORAGE_TYPE")
	setStr(&c.Storage.Bucket, "STORAGE_BUCKET")
	setStr(&c.Storage.Region, "STORAGE_REGION")
	setStr(&c.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setStr(&c.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setStr(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	setStr(&c.Storage.Prefix, "STORAGE_PREFIX")
	setStr(&c.Tasks.Backend, "TASKS_BACKEND")
	setInt(&c.Tasks.Workers, "TASKS_WORKERS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
