package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		apiBaseURL       string
		stateDir         string
		listenAddress    string
		productsInterval time.Duration
		ordersInterval   time.Duration
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				apiBaseURL:       "localhost:5000/api",
				stateDir:         ".nrx-state",
				listenAddress:    "localhost:5000",
				productsInterval: 30 * time.Second,
				ordersInterval:   15 * time.Second,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"API_BASE_URL":           "https://api.example.com/api",
				"STATE_DIR":              "/var/lib/nrx",
				"LISTEN_ADDRESS":         "localhost:9999",
				"PRODUCTS_POLL_INTERVAL": "5s",
				"ORDERS_POLL_INTERVAL":   "3s",
			},
			flags: []string{},
			want: want{
				apiBaseURL:       "https://api.example.com/api",
				stateDir:         "/var/lib/nrx",
				listenAddress:    "localhost:9999",
				productsInterval: 5 * time.Second,
				ordersInterval:   3 * time.Second,
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-a", "localhost:7777/api",
				"-d", "/tmp/state",
				"-l", "localhost:7777",
				"-products-interval", "10s",
				"-orders-interval", "7s",
			},
			want: want{
				apiBaseURL:       "localhost:7777/api",
				stateDir:         "/tmp/state",
				listenAddress:    "localhost:7777",
				productsInterval: 10 * time.Second,
				ordersInterval:   7 * time.Second,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"API_BASE_URL": "env:9000/api",
				"STATE_DIR":    "/env/state",
			},
			flags: []string{
				"-a", "flag:8000/api",
				"-d", "/flag/state",
			},
			want: want{
				apiBaseURL:       "env:9000/api",
				stateDir:         "/env/state",
				listenAddress:    "localhost:5000",
				productsInterval: 30 * time.Second,
				ordersInterval:   15 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.apiBaseURL, cfg.APIBaseURL)
			assert.Equal(t, tt.want.stateDir, cfg.StateDir)
			assert.Equal(t, tt.want.listenAddress, cfg.ListenAddress)
			assert.Equal(t, tt.want.productsInterval, cfg.ProductsInterval)
			assert.Equal(t, tt.want.ordersInterval, cfg.OrdersInterval)
		})
	}
}
