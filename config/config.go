package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Identity IdentityConfig `yaml:"identity"`
	Calendar CalendarConfig `yaml:"calendar"`
	Email    EmailConfig    `yaml:"email"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	MeetingEventsTopic string   `yaml:"meeting_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

type IdentityConfig struct {
	APIURL        string `yaml:"api_url"`
	APIKey        string `yaml:"api_key"`
	SessionSecret string `yaml:"session_secret"`
	// How long an exchanged OAuth access token may be reused before asking
	// the provider again, in seconds.
	TokenCacheTTL int `yaml:"token_cache_ttl_seconds"`
}

type CalendarConfig struct {
	CalendarID string `yaml:"calendar_id"`
}

type EmailConfig struct {
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Calendar.CalendarID == "" {
		cfg.Calendar.CalendarID = "primary"
	}

	return &cfg, nil
}
