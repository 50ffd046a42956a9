// Package config loads the server configuration from environment variables
// and validates it on startup.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/tableview/internal/core"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	View     ViewConfig
	Store    StoreConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP and X-Forwarded-For
	// headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds the optional PostgreSQL connection. Without a URL the
// server only serves uploaded files.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"4"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Tables lists the tables served as sources, "[schema.]table[:key1+key2]".
	Tables []string `env:"DB_TABLES"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// ViewConfig holds table view layout and session settings.
type ViewConfig struct {
	ColumnWidth    float64 `env:"VIEW_COLUMN_WIDTH" default:"100"`
	MinColumnWidth float64 `env:"VIEW_MIN_COLUMN_WIDTH" default:"50"`
	CellHeight     float64 `env:"VIEW_CELL_HEIGHT" default:"25"`
	SeparatorWidth float64 `env:"VIEW_SEPARATOR_WIDTH" default:"2"`

	// MaxSessions caps open views (default: 64)
	MaxSessions int `env:"VIEW_MAX_SESSIONS" default:"64"`

	// SyncInterval is how often views reconcile with their sources (default: 5s)
	SyncInterval time.Duration `env:"VIEW_SYNC_INTERVAL" default:"5s"`

	// SessionTTL closes views idle for this long (default: 30m)
	SessionTTL time.Duration `env:"VIEW_SESSION_TTL" default:"30m"`

	// MaxUploadSize is the largest accepted upload in bytes (default: 100MB)
	MaxUploadSize int64 `env:"VIEW_MAX_UPLOAD_SIZE" default:"104857600"`

	MaxConcurrentUploads int           `env:"VIEW_MAX_CONCURRENT_UPLOADS" default:"5"`
	UploadWait           time.Duration `env:"VIEW_UPLOAD_WAIT" default:"30s"`

	// AuditSize is how many audit entries are kept in memory, 0 disables (default: 1000)
	AuditSize int `env:"VIEW_AUDIT_SIZE" default:"1000"`
}

// Layout returns the configured view geometry.
func (c *ViewConfig) Layout() core.Layout {
	return core.Layout{
		ColumnWidth:    c.ColumnWidth,
		MinColumnWidth: c.MinColumnWidth,
		CellHeight:     c.CellHeight,
		SeparatorWidth: c.SeparatorWidth,
	}
}

// StoreConfig holds the settings store location.
type StoreConfig struct {
	// Path is the store directory; "~" is expanded (default: ~/.tableview)
	Path string `env:"STORE_PATH" default:"~/.tableview"`

	// CacheSize is the in-memory cache size in bytes (default: 1MB)
	CacheSize int64 `env:"STORE_CACHE_SIZE" default:"1048576"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
