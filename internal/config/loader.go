package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables, applies defaults
// for unset values and validates the result.
func Load() (*Config, error) {
	return loadFrom(os.LookupEnv)
}

// lookupFunc resolves one environment variable.
type lookupFunc func(name string) (string, bool)

func loadFrom(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := fill(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envTag is the parsed env/envAlt/default/required tag set of one field.
type envTag struct {
	names    []string
	fallback string
	required bool
}

func parseTag(f reflect.StructField) (envTag, bool) {
	name := f.Tag.Get("env")
	if name == "" {
		return envTag{}, false
	}
	tag := envTag{
		names:    []string{name},
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	if alt := f.Tag.Get("envAlt"); alt != "" {
		tag.names = append(tag.names, alt)
	}
	return tag, true
}

// resolve returns the first non-empty variable, then the default.
func (t envTag) resolve(lookup lookupFunc) (string, error) {
	for _, name := range t.names {
		if v, ok := lookup(name); ok && v != "" {
			return v, nil
		}
	}
	if t.required {
		return "", fmt.Errorf("required environment variable %s is not set", t.names[0])
	}
	return t.fallback, nil
}

// fill populates tagged fields of the struct v, descending into sections.
func fill(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := fill(fv, lookup); err != nil {
				return err
			}
			continue
		}

		tag, ok := parseTag(sf)
		if !ok {
			continue
		}
		raw, err := tag.resolve(lookup)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", tag.names[0], raw, err)
		}
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// assign parses raw into dst according to dst's type.
func assign(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)
	case reflect.Float64:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		dst.SetFloat(x)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", dst.Type().Elem().Kind())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", dst.Kind())
	}
	return nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate checks the configuration and reports every failure at once.
func (c *Config) Validate() error {
	var p problems

	db := c.Database
	if db.Enabled() {
		p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
		p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
		p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
	} else {
		p.check(len(db.Tables) == 0, "DB_TABLES is set but DATABASE_URL is empty")
	}

	srv := c.Server
	p.check(srv.Port > 0 && srv.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", srv.Port)
	p.check(srv.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(srv.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	view := c.View
	p.check(view.MinColumnWidth > 0, "VIEW_MIN_COLUMN_WIDTH must be positive")
	p.check(view.ColumnWidth >= view.MinColumnWidth, "VIEW_COLUMN_WIDTH (%g) must be >= VIEW_MIN_COLUMN_WIDTH (%g)",
		view.ColumnWidth, view.MinColumnWidth)
	p.check(view.CellHeight > 0, "VIEW_CELL_HEIGHT must be positive")
	p.check(view.SeparatorWidth >= 0, "VIEW_SEPARATOR_WIDTH must be non-negative")
	p.check(view.MaxSessions >= 0, "VIEW_MAX_SESSIONS must be non-negative")
	p.check(view.SyncInterval >= 0, "VIEW_SYNC_INTERVAL must be non-negative")
	p.check(view.MaxUploadSize > 0, "VIEW_MAX_UPLOAD_SIZE must be positive")
	p.check(view.MaxConcurrentUploads > 0, "VIEW_MAX_CONCURRENT_UPLOADS must be positive")
	p.check(view.UploadWait > 0, "VIEW_UPLOAD_WAIT must be positive")
	p.check(view.AuditSize >= 0, "VIEW_AUDIT_SIZE must be non-negative")

	p.check(c.Store.Path != "", "STORE_PATH must not be empty")
	p.check(c.Store.CacheSize >= 0, "STORE_CACHE_SIZE must be non-negative")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String returns the config for logging with the database URL masked.
func (c *Config) String() string {
	db := "{disabled}"
	if c.Database.Enabled() {
		db = fmt.Sprintf("{URL: [MASKED], MaxConns: %d, Tables: %d}", c.Database.MaxConns, len(c.Database.Tables))
	}
	return fmt.Sprintf("Config{Server: {Host: %q, Port: %d}, Database: %s, "+
		"View: {MaxSessions: %d, SyncInterval: %s, SessionTTL: %s, AuditSize: %d}, "+
		"Store: {Path: %q}, Logging: {Level: %q, Format: %q}}",
		c.Server.Host, c.Server.Port, db,
		c.View.MaxSessions, c.View.SyncInterval, c.View.SessionTTL, c.View.AuditSize,
		c.Store.Path,
		c.Logging.Level, c.Logging.Format)
}
