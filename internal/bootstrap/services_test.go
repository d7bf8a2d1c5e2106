package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULEEP/admin-frontend/config"
	"github.com/JULEEP/admin-frontend/internal/adapters/memstore"
	redisstore "github.com/JULEEP/admin-frontend/internal/adapters/redis"
	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/testutil"
)

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{
			name: "no services enabled",
			want: 0,
		},
		{
			name:  "http only",
			modes: []config.ServiceMode{config.ServiceModeHTTP},
			want:  1,
		},
		{
			name:  "all services enabled",
			modes: config.ValidServiceModes(),
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}

			if got := errorChannelCapacity(enabled); got != tt.want {
				t.Fatalf("errorChannelCapacity(%v) = %d, want %d", tt.modes, got, tt.want)
			}
			if got := errorChannelBufferSize(enabled); got != tt.want+1 {
				t.Fatalf("errorChannelBufferSize(%v) = %d, want %d", tt.modes, got, tt.want+1)
			}
		})
	}
}

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Services: "http,reaper",
		Upstream: config.UpstreamConfig{BaseURL: "http://127.0.0.1:9"},
		Session:  config.SessionConfig{Store: config.SessionStoreMemory},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_MemorySessions(t *testing.T) {
	cfg := testAppConfig()
	cfg.Observability.Metrics.Enabled = true

	svc, err := NewServices(&ServiceDeps{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(svc.Views.Close)

	assert.NotNil(t, svc.Catalog)
	assert.Len(t, svc.Catalog.All(), 5)
	assert.NotNil(t, svc.Dashboard)
	assert.NotNil(t, svc.Metrics)
	assert.IsType(t, &memstore.SessionStore{}, svc.Sessions)
	assert.NotNil(t, svc.Pruner)
}

func TestNewServices_RedisSessions(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	cfg := testAppConfig()
	cfg.Session.Store = config.SessionStoreRedis

	svc, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: client})
	require.NoError(t, err)
	t.Cleanup(svc.Views.Close)

	assert.IsType(t, &redisstore.SessionStore{}, svc.Sessions)
	assert.Nil(t, svc.Pruner)
	assert.Nil(t, svc.Metrics)
}

func TestNewServices_RedisSessionsRequireClient(t *testing.T) {
	cfg := testAppConfig()
	cfg.Session.Store = config.SessionStoreRedis

	_, err := NewServices(&ServiceDeps{Config: cfg})
	require.Error(t, err)
}

func TestNewServices_RequiresConfig(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)
}

func TestValidateServiceConfig(t *testing.T) {
	require.Error(t, ValidateServiceConfig(nil))

	cfg := testAppConfig()
	require.NoError(t, ValidateServiceConfig(cfg))

	cfg.Services = "bogus"
	require.Error(t, ValidateServiceConfig(cfg))

	cfg = testAppConfig()
	cfg.Upstream.BaseURL = ""
	require.Error(t, ValidateServiceConfig(cfg))
}

func TestGetEnabledServices(t *testing.T) {
	cfg := testAppConfig()
	assert.Equal(t, []string{"http", "reaper"}, GetEnabledServices(cfg))

	cfg.Services = "reaper"
	assert.Equal(t, []string{"reaper"}, GetEnabledServices(cfg))

	assert.Empty(t, GetEnabledServices(nil))
}

func TestConfigureLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := ConfigureLogger(&buf, config.ObservabilityLoggingConfig{Level: "warn", Format: "text"})
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestGracefulStopClosesViews(t *testing.T) {
	cfg := testAppConfig()
	svc, err := NewServices(&ServiceDeps{Config: cfg})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}
	require.NoError(t, gracefulStop(shutdownConfig{
		ctx:        ctx,
		cancel:     cancel,
		httpServer: server,
		views:      svc.Views,
		timeout:    time.Second,
		logger:     slog.Default(),
	}))

	_, err = svc.Views.Navigate(model.Session{ID: "sess-1"}, "products")
	require.Error(t, err)
}

func TestWaitForShutdownReturnsServiceError(t *testing.T) {
	errCh := make(chan error, 1)
	errCh <- assert.AnError

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := waitForShutdown(shutdownConfig{
		ctx:    ctx,
		cancel: cancel,
		errCh:  errCh,
		logger: slog.Default(),
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Error(t, ctx.Err())
}
