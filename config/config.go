// ABOUTME: Runtime configuration for the onboard binary
// ABOUTME: Layers .env, an optional YAML file and ONBOARD_* environment variables over defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/whitefoxstudios/onboarding/models"
	"github.com/whitefoxstudios/onboarding/notify"
	"gopkg.in/yaml.v3"
)

const appName = "onboard"

// Mailer kinds.
const (
	MailerLog  = "log"
	MailerSMTP = "smtp"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config is the resolved configuration.
type Config struct {
	DBPath      string        `yaml:"db_path"`
	HTTPAddr    string        `yaml:"http_addr"`
	SiteURL     string        `yaml:"site_url"`
	SiteName    string        `yaml:"site_name"`
	AdminEmail  string        `yaml:"admin_email"`
	NonceSecret string        `yaml:"nonce_secret"`
	NonceTTL    time.Duration `yaml:"nonce_ttl"`
	LogLevel    string        `yaml:"log_level"`
	Mailer      string        `yaml:"mailer"`
	SMTP        SMTPConfig    `yaml:"smtp"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBPath:   filepath.Join(xdg.DataHome, appName, appName+".db"),
		HTTPAddr: ":8080",
		SiteURL:  "http://localhost:8080",
		SiteName: "White Fox Studios",
		NonceTTL: 24 * time.Hour,
		LogLevel: "info",
		Mailer:   MailerLog,
		SMTP:     SMTPConfig{Port: 587},
	}
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Load resolves the configuration. A missing .env or config file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DBPath, "ONBOARD_DB_PATH")
	setString(&c.HTTPAddr, "ONBOARD_HTTP_ADDR")
	setString(&c.SiteURL, "ONBOARD_SITE_URL")
	setString(&c.SiteName, "ONBOARD_SITE_NAME")
	setString(&c.AdminEmail, "ONBOARD_ADMIN_EMAIL")
	setString(&c.NonceSecret, "ONBOARD_NONCE_SECRET")
	setString(&c.LogLevel, "ONBOARD_LOG_LEVEL")
	setString(&c.Mailer, "ONBOARD_MAILER")
	setString(&c.SMTP.Host, "ONBOARD_SMTP_HOST")
	setString(&c.SMTP.Username, "ONBOARD_SMTP_USERNAME")
	setString(&c.SMTP.Password, "ONBOARD_SMTP_PASSWORD")

	if v := os.Getenv("ONBOARD_SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ONBOARD_SMTP_PORT %q: %w", v, err)
		}
		c.SMTP.Port = port
	}
	if v := os.Getenv("ONBOARD_NONCE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ONBOARD_NONCE_TTL %q: %w", v, err)
		}
		c.NonceTTL = ttl
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	switch strings.ToLower(c.Mailer) {
	case MailerLog:
	case MailerSMTP:
		if c.SMTP.Host == "" {
			return errors.New("smtp mailer requires smtp.host")
		}
		if c.SMTP.Port <= 0 {
			return fmt.Errorf("invalid smtp port %d", c.SMTP.Port)
		}
	default:
		return fmt.Errorf("unknown mailer %q", c.Mailer)
	}
	if c.NonceTTL <= 0 {
		return fmt.Errorf("nonce_ttl must be positive, got %s", c.NonceTTL)
	}
	return nil
}

// NotificationDefaults are the activation email settings used where the stored ones are empty.
func (c *Config) NotificationDefaults() models.NotificationSettings {
	return models.NotificationSettings{
		From:    models.Sender{Name: c.SiteName, Email: c.AdminEmail},
		Subject: notify.DefaultSubject,
		Message: notify.DefaultMessage,
	}
}
