package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ticket-service/internal/core/domain"
)

const (
	DefaultAdultPrice  = 25
	DefaultChildPrice  = 15
	DefaultInfantPrice = 0
	DefaultMaxTickets  = 25
)

// Env vars that override the ticketing section.
const (
	EnvAdultPrice  = "ADULT_TICKET_PRICE"
	EnvChildPrice  = "CHILD_TICKET_PRICE"
	EnvInfantPrice = "INFANT_TICKET_PRICE"
	EnvMaxTickets  = "MAX_TICKETS"
)

// TicketingConfig stores the pricing table and the purchase limit.
type TicketingConfig struct {
	AdultPrice  int `yaml:"adult_price"`
	ChildPrice  int `yaml:"child_price"`
	InfantPrice int `yaml:"infant_price"`
	MaxTickets  int `yaml:"max_tickets"`
}

// Pricing returns the unit prices as a domain pricing table.
func (c TicketingConfig) Pricing() domain.Pricing {
	return domain.Pricing{
		Adult:  c.AdultPrice,
		Child:  c.ChildPrice,
		Infant: c.InfantPrice,
	}
}

// GatewayConfig describes how to reach one external collaborator.
// Driver is "http", "kafka" (seat reservation only) or "log".
type GatewayConfig struct {
	Driver         string `yaml:"driver"`
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// RateLimitConfig bounds how many API requests one client IP may make per window.
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Kafka struct {
		BootstrapServers string `yaml:"bootstrap_servers"`
		SeatTopic        string `yaml:"seat_topic"`
	} `yaml:"kafka"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Jaeger struct {
		Port string `yaml:"port"`
	} `yaml:"jaeger"`
	JWT struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Gateways  struct {
		Payment         GatewayConfig `yaml:"payment"`
		SeatReservation GatewayConfig `yaml:"seat_reservation"`
	} `yaml:"gateways"`
	Ticketing TicketingConfig `yaml:"ticketing"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{}
	config.App.Env = "development"
	config.Server.Port = ":8080"
	config.Kafka.SeatTopic = "seats.reservation.requested"
	config.RateLimit = RateLimitConfig{Requests: 100, WindowSeconds: 60}
	config.Gateways.Payment = GatewayConfig{Driver: "log", TimeoutSeconds: 5}
	config.Gateways.SeatReservation = GatewayConfig{Driver: "log", TimeoutSeconds: 5}
	config.Ticketing = DefaultTicketing()
	return config
}

// DefaultTicketing returns the built-in prices and limit.
func DefaultTicketing() TicketingConfig {
	return TicketingConfig{
		AdultPrice:  DefaultAdultPrice,
		ChildPrice:  DefaultChildPrice,
		InfantPrice: DefaultInfantPrice,
		MaxTickets:  DefaultMaxTickets,
	}
}

// Load reads the YAML file at configPath on top of the defaults, then applies
// the ticketing env vars. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// First, we substitute environment variables into the raw YAML file.
		expandedFile := os.ExpandEnv(string(file))

		if err := yaml.Unmarshal([]byte(expandedFile), config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	config.Ticketing = TicketingFromEnv(config.Ticketing)
	return config, nil
}

// TicketingFromEnv overrides base with the ticketing env vars. A value that is
// missing, not an integer, or out of range leaves the base value (or the
// built-in default, if base itself is out of range) in place.
// A price is in range when MaxTickets tickets at that price still fit in an int.
func TicketingFromEnv(base TicketingConfig) TicketingConfig {
	defaults := DefaultTicketing()
	positive := func(v int) bool { return v > 0 }

	maxTickets := getIntEnv(EnvMaxTickets, orDefault(base.MaxTickets, defaults.MaxTickets, positive), positive)
	price := func(v int) bool { return v >= 0 && v <= math.MaxInt/maxTickets }

	return TicketingConfig{
		AdultPrice:  getIntEnv(EnvAdultPrice, orDefault(base.AdultPrice, defaults.AdultPrice, price), price),
		ChildPrice:  getIntEnv(EnvChildPrice, orDefault(base.ChildPrice, defaults.ChildPrice, price), price),
		InfantPrice: getIntEnv(EnvInfantPrice, orDefault(base.InfantPrice, defaults.InfantPrice, price), price),
		MaxTickets:  maxTickets,
	}
}

func orDefault(value, defaultValue int, valid func(int) bool) int {
	if valid(value) {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int, valid func(int) bool) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && valid(i) {
			return i
		}
	}
	return defaultValue
}
