package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DefaultConfigPath = "config/config.yaml"
)

// fileConfig mirrors config/config.yaml. Every value may be overridden from the environment.
type fileConfig struct {
	Env    string `yaml:"env"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL  string `yaml:"url"`
		Name string `yaml:"name"`
	} `yaml:"database"`
	JWT struct {
		Secret     string `yaml:"secret"`
		Expiration string `yaml:"expiration"`
		Issuer     string `yaml:"issuer"`
	} `yaml:"jwt"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
}

type Config struct {
	Env  string `mapstructure:"APP_ENV"`
	Port int    `mapstructure:"PORT"`

	// DatabaseURL selects the storage backend by scheme: mongodb://, postgres:// or memory:// (dev only).
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTExpiration string `mapstructure:"JWT_EXPIRATION"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	BcryptCost    int    `mapstructure:"BCRYPT_COST"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASS"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	CodeTTL           string `mapstructure:"CODE_TTL"`
	CodeSweepInterval string `mapstructure:"CODE_SWEEP_INTERVAL"`
	CodeMaxAttempts   int    `mapstructure:"CODE_MAX_ATTEMPTS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	LoginThrottleEnabled  bool   `mapstructure:"LOGIN_THROTTLE_ENABLED"`
	LoginThrottlePerEmail int    `mapstructure:"LOGIN_THROTTLE_PER_EMAIL"`
	LoginThrottlePerIP    int    `mapstructure:"LOGIN_THROTTLE_PER_IP"`
	LoginThrottleWindow   string `mapstructure:"LOGIN_THROTTLE_WINDOW"`

	// Telegram is an operator side channel for codes; refused in production.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `mapstructure:"TELEGRAM_CHAT_ID"`
}

// Load reads config/config.yaml (optional), then .env and the environment.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	fc, err := readFile(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // .env необязателен

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", orString(fc.Env, EnvDevelopment))
	v.SetDefault("PORT", orInt(fc.Server.Port, 3000))
	v.SetDefault("DATABASE_URL", orString(fc.Database.URL, "mongodb://localhost:27017"))
	v.SetDefault("DATABASE_NAME", orString(fc.Database.Name, "geekdeals"))
	v.SetDefault("JWT_SECRET", fc.JWT.Secret)
	v.SetDefault("JWT_EXPIRATION", orString(fc.JWT.Expiration, "1h"))
	v.SetDefault("JWT_ISSUER", orString(fc.JWT.Issuer, "geekdeals-api"))
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SMTP_HOST", fc.Email.SMTPHost)
	v.SetDefault("SMTP_PORT", orInt(fc.Email.SMTPPort, 587))
	v.SetDefault("SMTP_USER", fc.Email.SMTPUser)
	v.SetDefault("SMTP_PASS", fc.Email.SMTPPassword)
	v.SetDefault("SMTP_FROM", orString(fc.Email.FromEmail, `"Geek Deals" <noreply@geekdeals.com>`))
	v.SetDefault("CODE_TTL", "10m")
	v.SetDefault("CODE_SWEEP_INTERVAL", "5m")
	v.SetDefault("CODE_MAX_ATTEMPTS", 5)
	v.SetDefault("REDIS_ADDR", fc.Redis.Addr)
	v.SetDefault("REDIS_PASSWORD", fc.Redis.Password)
	v.SetDefault("REDIS_DB", fc.Redis.DB)
	v.SetDefault("LOGIN_THROTTLE_ENABLED", true)
	v.SetDefault("LOGIN_THROTTLE_PER_EMAIL", 10)
	v.SetDefault("LOGIN_THROTTLE_PER_IP", 30)
	v.SetDefault("LOGIN_THROTTLE_WINDOW", "15m")
	v.SetDefault("TELEGRAM_BOT_TOKEN", fc.Telegram.BotToken)
	v.SetDefault("TELEGRAM_CHAT_ID", fc.Telegram.ChatID)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
		return fc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}

// Validate fails fast on settings the process must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if _, err := parsePositive("JWT_EXPIRATION", c.JWTExpiration); err != nil {
		return err
	}
	ttl, err := parsePositive("CODE_TTL", c.CodeTTL)
	if err != nil {
		return err
	}
	sweep, err := parsePositive("CODE_SWEEP_INTERVAL", c.CodeSweepInterval)
	if err != nil {
		return err
	}
	if sweep >= ttl {
		return errors.New("config: CODE_SWEEP_INTERVAL must be shorter than CODE_TTL")
	}
	if c.CodeMaxAttempts <= 0 {
		return errors.New("config: CODE_MAX_ATTEMPTS must be positive")
	}
	if c.LoginThrottleEnabled {
		if _, err := parsePositive("LOGIN_THROTTLE_WINDOW", c.LoginThrottleWindow); err != nil {
			return err
		}
		if c.LoginThrottlePerEmail <= 0 {
			return errors.New("config: LOGIN_THROTTLE_PER_EMAIL must be positive")
		}
		if c.LoginThrottlePerIP <= 0 {
			return errors.New("config: LOGIN_THROTTLE_PER_IP must be positive")
		}
	}
	if c.IsProduction() && c.TelegramBotToken != "" {
		return errors.New("config: TELEGRAM_BOT_TOKEN must not be set when APP_ENV=production")
	}
	switch c.DatabaseBackend() {
	case BackendMongo, BackendPostgres:
	case BackendMemory:
		if c.IsProduction() {
			return errors.New("config: DATABASE_URL=memory:// is not allowed when APP_ENV=production")
		}
	default:
		return errors.New("config: DATABASE_URL must be a mongodb:// or postgres:// URL")
	}
	return nil
}

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DatabaseBackend maps the DATABASE_URL scheme to a storage backend, or "" if unknown.
func (c *Config) DatabaseBackend() string {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "mongodb://"), strings.HasPrefix(c.DatabaseURL, "mongodb+srv://"):
		return BackendMongo
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return BackendPostgres
	case strings.HasPrefix(c.DatabaseURL, "memory://"):
		return BackendMemory
	}
	return ""
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// SMTPConfigured reports whether a real mail transport was configured.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != ""
}

func (c *Config) TokenTTL() time.Duration     { return mustDuration(c.JWTExpiration, time.Hour) }
func (c *Config) CodeLifetime() time.Duration { return mustDuration(c.CodeTTL, 10*time.Minute) }
func (c *Config) SweepEvery() time.Duration   { return mustDuration(c.CodeSweepInterval, 5*time.Minute) }
func (c *Config) ThrottleWindow() time.Duration {
	return mustDuration(c.LoginThrottleWindow, 15*time.Minute)
}

func parsePositive(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}

func mustDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
