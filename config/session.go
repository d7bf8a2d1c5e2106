package config

import (
	"strings"
	"time"
)

// SessionStoreKind selects the session backend.
type SessionStoreKind string

const (
	SessionStoreMemory SessionStoreKind = "memory"
	SessionStoreRedis  SessionStoreKind = "redis"
)

// SessionConfig controls console sessions.
type SessionConfig struct {
	// TTL is the lifetime of a console session.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// Store is "memory" or "redis".
	Store SessionStoreKind `env:"SESSION_STORE" envDefault:"memory"`

	// CookieName names the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"backoffice_session"`

	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`
}

// Sanitize normalizes the store kind and restores defaults.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 12 * time.Hour
	}
	switch SessionStoreKind(strings.ToLower(strings.TrimSpace(string(s.Store)))) {
	case SessionStoreRedis:
		s.Store = SessionStoreRedis
	default:
		s.Store = SessionStoreMemory
	}
	if strings.TrimSpace(s.CookieName) == "" {
		s.CookieName = "backoffice_session"
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "session:"
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
