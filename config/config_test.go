package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - reaper",
			input:    "reaper",
			expected: map[ServiceMode]bool{ServiceModeReaper: true},
		},
		{
			name:  "services with spaces",
			input: " http , reaper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeReaper: true,
			},
		},
		{
			name:     "duplicate services",
			input:    "http,http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name     string
		services string
		http     bool
		reaper   bool
	}{
		{name: "default", services: "http,reaper", http: true, reaper: true},
		{name: "http only", services: "http", http: true},
		{name: "reaper only", services: "reaper", reaper: true},
		{name: "invalid", services: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}
			if got := cfg.IsHTTPServerEnabled(); got != tt.http {
				t.Errorf("IsHTTPServerEnabled() = %v, want %v", got, tt.http)
			}
			if got := cfg.IsReaperEnabled(); got != tt.reaper {
				t.Errorf("IsReaperEnabled() = %v, want %v", got, tt.reaper)
			}
		})
	}
}

func TestValidServiceModes(t *testing.T) {
	modes := ValidServiceModes()
	for _, mode := range modes {
		if _, err := ParseServices(string(mode)); err != nil {
			t.Errorf("mode %q should parse: %v", mode, err)
		}
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("Upstream.Timeout = %v", cfg.Upstream.Timeout)
	}
	if cfg.View.PageSize != 5 {
		t.Errorf("View.PageSize = %d, want 5", cfg.View.PageSize)
	}
	if cfg.View.RollbackOnToggleFailure {
		t.Error("rollback must be off by default")
	}
	if cfg.Session.Store != SessionStoreMemory {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Namespace != "backoffice" {
		t.Errorf("unexpected metrics config: %#v", cfg.Observability.Metrics)
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", " https://admin.example.com/ ")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("UPSTREAM_API_TOKEN", "secret")
	t.Setenv("VIEW_PAGE_SIZE", "10")
	t.Setenv("VIEW_ROLLBACK_ON_TOGGLE_FAILURE", "true")
	t.Setenv("VIEW_IDLE_TTL", "30m")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIS_URI", "redis://cache:6379/0")
	t.Setenv("REDIS_CLUSTER_NODES", "a:1,b:2")
	t.Setenv("LOG_LEVEL", "DEBUG")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expectedUpstream := UpstreamConfig{
		BaseURL:   "https://admin.example.com",
		Timeout:   5 * time.Second,
		APIToken:  "secret",
		UserAgent: "backoffice-console",
	}
	if !reflect.DeepEqual(cfg.Upstream, expectedUpstream) {
		t.Fatalf("unexpected upstream configuration:\nexpected: %#v\ngot:      %#v", expectedUpstream, cfg.Upstream)
	}
	if cfg.View.PageSize != 10 || !cfg.View.RollbackOnToggleFailure || cfg.View.IdleTTL != 30*time.Minute {
		t.Errorf("unexpected view configuration: %#v", cfg.View)
	}
	if cfg.Session.Store != SessionStoreRedis || cfg.Session.TTL != time.Hour {
		t.Errorf("unexpected session configuration: %#v", cfg.Session)
	}
	if cfg.Redis.URI != "redis://cache:6379/0" || !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:1", "b:2"}) {
		t.Errorf("unexpected redis configuration: %#v", cfg.Redis)
	}
	if cfg.Observability.Logging.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.Observability.Logging.SlogLevel())
	}
}

func TestViewConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   ViewConfig
		want ViewConfig
	}{
		{
			name: "zero values restore defaults",
			in:   ViewConfig{},
			want: ViewConfig{PageSize: 5, IdleTTL: 15 * time.Minute, ReapInterval: time.Minute},
		},
		{
			name: "page size is capped",
			in:   ViewConfig{PageSize: 1000, IdleTTL: time.Minute, ReapInterval: time.Second, SettleTimeout: -1},
			want: ViewConfig{PageSize: 100, IdleTTL: time.Minute, ReapInterval: time.Second, SettleTimeout: 2 * time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Sanitize()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	if h.CompressionLevel != 9 || h.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected http configuration: %#v", h)
	}
	h.CompressionLevel = -3
	h.Sanitize()
	if h.CompressionLevel != 1 {
		t.Errorf("CompressionLevel = %d, want 1", h.CompressionLevel)
	}
}

func TestObservabilityLoggingConfig_Sanitize(t *testing.T) {
	c := ObservabilityLoggingConfig{Level: " Warn ", Format: "yaml"}
	c.Sanitize()
	if c.Format != "json" || c.SlogLevel() != slog.LevelWarn {
		t.Errorf("unexpected logging configuration: %#v", c)
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}
}
