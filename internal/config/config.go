// Package config содержит логику чтения конфигурации клиента витрины.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиента витрины.
type Config struct {
	APIBaseURL   string `env:"API_BASE_URL"`
	StateDir     string `env:"STATE_DIR"`
	SessionToken string `env:"SESSION_TOKEN"`
	UserID       string `env:"USER_ID"`
	UserEmail    string `env:"USER_EMAIL"`
	UserName     string `env:"USER_NAME"`

	ListenAddress string `env:"LISTEN_ADDRESS"`
	AuthSecret    string `env:"AUTH_SECRET"`

	ProductsInterval      time.Duration `env:"PRODUCTS_POLL_INTERVAL"`
	SettingsInterval      time.Duration `env:"SETTINGS_POLL_INTERVAL"`
	NotificationsInterval time.Duration `env:"NOTIFICATIONS_POLL_INTERVAL"`
	OrdersInterval        time.Duration `env:"ORDERS_POLL_INTERVAL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения. Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envAPIBaseURL := cfg.APIBaseURL
	envStateDir := cfg.StateDir
	envListenAddress := cfg.ListenAddress
	envProducts := cfg.ProductsInterval
	envSettings := cfg.SettingsInterval
	envNotifications := cfg.NotificationsInterval
	envOrders := cfg.OrdersInterval

	flag.StringVar(&cfg.APIBaseURL, "a", "localhost:5000/api", "base URL of the storefront backend")
	flag.StringVar(&cfg.StateDir, "d", ".nrx-state", "directory for persisted client state")
	flag.StringVar(&cfg.ListenAddress, "l", "localhost:5000", "address and port for the dev backend")
	flag.DurationVar(&cfg.ProductsInterval, "products-interval", 30*time.Second, "product catalog poll interval")
	flag.DurationVar(&cfg.SettingsInterval, "settings-interval", 10*time.Second, "settings poll interval")
	flag.DurationVar(&cfg.NotificationsInterval, "notifications-interval", 30*time.Second, "notifications poll interval")
	flag.DurationVar(&cfg.OrdersInterval, "orders-interval", 15*time.Second, "orders poll interval")

	flag.Parse()

	if envAPIBaseURL != "" {
		cfg.APIBaseURL = envAPIBaseURL
	}
	if envStateDir != "" {
		cfg.StateDir = envStateDir
	}
	if envListenAddress != "" {
		cfg.ListenAddress = envListenAddress
	}
	if envProducts != 0 {
		cfg.ProductsInterval = envProducts
	}
	if envSettings != 0 {
		cfg.SettingsInterval = envSettings
	}
	if envNotifications != 0 {
		cfg.NotificationsInterval = envNotifications
	}
	if envOrders != 0 {
		cfg.OrdersInterval = envOrders
	}

	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "storefront-secret"
	}

	return cfg, nil
}
