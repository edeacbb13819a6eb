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
	Station  StationConfig  `yaml:"station"`
	Worker   WorkerConfig   `yaml:"worker"`
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
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
	TripsTopic  string   `yaml:"trips_topic"`
	GroupID     string   `yaml:"group_id"`
}

type StationConfig struct {
	StationID          string `yaml:"station_id"`
	StationName        string `yaml:"station_name"`
	OpeningTime        string `yaml:"opening_time"` // "HH:MM", station local time
	ClosingTime        string `yaml:"closing_time"`
	MaxSeatsPerBooking int    `yaml:"max_seats_per_booking"`
	PriceCacheTTL      int    `yaml:"price_cache_ttl_seconds"`
}

type WorkerConfig struct {
	TransferCheckMinutes int `yaml:"transfer_check_minutes"`
	SafetySweepMinutes   int `yaml:"safety_sweep_minutes"`
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
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Station.MaxSeatsPerBooking == 0 {
		c.Station.MaxSeatsPerBooking = 20
	}
	if c.Station.PriceCacheTTL == 0 {
		c.Station.PriceCacheTTL = 300
	}
	if c.Station.OpeningTime == "" {
		c.Station.OpeningTime = "06:00"
	}
	if c.Station.ClosingTime == "" {
		c.Station.ClosingTime = "22:00"
	}
	if c.Worker.TransferCheckMinutes == 0 {
		c.Worker.TransferCheckMinutes = 1
	}
	if c.Worker.SafetySweepMinutes == 0 {
		c.Worker.SafetySweepMinutes = 30
	}
}
