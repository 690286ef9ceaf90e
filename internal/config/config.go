package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the application configuration
type Config struct {
	Telegram struct {
		Token          string `env:"TELEGRAM_BOT_TOKEN" env-description:"Bot token used to seed the settings file"`
		AllowedUserID  int64  `env:"TELEGRAM_ALLOWED_USER_ID" env-default:"0" env-description:"Only chat allowed to talk to the bot, 0 for any"`
		TimezoneOffset string `env:"TELEGRAM_TIMEZONE_OFFSET" env-description:"Minutes east of UTC"`
		TimezoneCity   string `env:"TELEGRAM_TIMEZONE_CITY"`
		Timezone       string `env:"TELEGRAM_TIMEZONE" env-description:"IANA zone name"`
		SettingsPath   string `env:"TELEGRAM_SETTINGS_PATH" env-default:"data/telegram-settings.json"`
	}

	BackendURL string `env:"TELEGRAM_BACKEND_URL" env-default:"http://localhost:5000/api"`

	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}
	if err := cleanenv.ReadEnv(config); err != nil {
		desc, _ := cleanenv.GetDescription(config, nil)
		return nil, fmt.Errorf("failed to read environment: %w; %s", err, desc)
	}

	if _, err := config.TimezoneOffsetMinutes(); err != nil {
		return nil, err
	}

	config.BackendURL = strings.TrimRight(config.BackendURL, "/")
	return config, nil
}

// AllowedUserID returns the configured chat id, or nil when any chat is allowed
func (c *Config) AllowedUserID() *int64 {
	if c.Telegram.AllowedUserID == 0 {
		return nil
	}
	id := c.Telegram.AllowedUserID
	return &id
}

// TimezoneOffsetMinutes parses TELEGRAM_TIMEZONE_OFFSET; nil when unset
func (c *Config) TimezoneOffsetMinutes() (*int, error) {
	raw := strings.TrimSpace(c.Telegram.TimezoneOffset)
	if raw == "" {
		return nil, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_TIMEZONE_OFFSET: %s", raw)
	}
	return &offset, nil
}

// Debug reports whether verbose logging was requested
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}
