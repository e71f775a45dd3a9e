package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sign     SignConfig     `mapstructure:"sign"`
	SickNote SickNoteConfig `mapstructure:"sicknote"`
	Mail     MailConfig     `mapstructure:"mail"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SignConfig holds the secret used to sign applications for leave
type SignConfig struct {
	Secret string `mapstructure:"secret"`
}

// SickNoteConfig holds sick pay watch configuration
type SickNoteConfig struct {
	SickPayLimitDays int `mapstructure:"sick_pay_limit_days"`
	NotificationDays int `mapstructure:"notification_days"`
}

// MailConfig holds mail notification configuration
type MailConfig struct {
	SenderName    string `mapstructure:"sender_name"`
	SenderAddress string `mapstructure:"sender_address"`
}

// CalendarConfig holds calendar sync configuration
type CalendarConfig struct {
	Provider string `mapstructure:"provider"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/absence.db")

	viper.SetDefault("sicknote.sick_pay_limit_days", 42)
	viper.SetDefault("sicknote.notification_days", 7)

	viper.SetDefault("mail.sender_name", "Absence Engine")
	viper.SetDefault("mail.sender_address", "absence@localhost")

	viper.SetDefault("calendar.provider", "none")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("sign.secret", "ABSENCE_SIGN_SECRET")
	viper.BindEnv("database.path", "ABSENCE_DB_PATH")
	viper.BindEnv("mail.sender_address", "ABSENCE_MAIL_SENDER")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Sign.Secret == "" {
		return fmt.Errorf("sign.secret is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SickNote.SickPayLimitDays <= 0 {
		return fmt.Errorf("sicknote.sick_pay_limit_days must be positive")
	}
	if c.SickNote.NotificationDays < 0 {
		return fmt.Errorf("sicknote.notification_days must not be negative")
	}
	return nil
}
