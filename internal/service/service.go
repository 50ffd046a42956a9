// Package service manages table view sessions.
//
// A view pairs one data source model with one core.State. Every operation on
// a view runs under that view's mutex, so the engine sees a single control
// thread even though HTTP requests and the background sync run
// concurrently. Settings changed by an operation are persisted per source.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/ingest"
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/JonMunkholm/tableview/internal/pgsource"
	"github.com/JonMunkholm/tableview/internal/store"
)

// Options configures a Service.
type Options struct {
	Layout core.Layout

	MaxViews   int           // open view limit, 0 for no limit
	SessionTTL time.Duration // idle views are closed after this, 0 to keep

	MaxUploadSize        int64
	MaxConcurrentUploads int
	UploadWait           time.Duration

	AuditSize int // audit entries kept in memory, 0 to disable
}

// Syncer is implemented by models that refresh from an external system.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Service owns the source registry and the open views.
type Service struct {
	registry *Registry
	store    *store.Store
	opts     Options
	limiter  *UploadLimiter
	audit    *AuditLog

	mu    sync.RWMutex
	views map[string]*view
}

type view struct {
	id     string
	source SourceInfo

	mu       sync.Mutex
	state    *core.State
	lastUsed time.Time
}

// New creates a service. st may be nil to disable settings persistence.
func New(registry *Registry, st *store.Store, opts Options) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		registry: registry,
		store:    st,
		opts:     opts,
		limiter:  NewUploadLimiter(opts.MaxConcurrentUploads, opts.UploadWait),
		audit:    NewAuditLog(opts.AuditSize),
		views:    make(map[string]*view),
	}
}

// Registry returns the source registry.
func (s *Service) Registry() *Registry { return s.registry }

// MaxUploadSize returns the upload size limit in bytes, 0 for none.
func (s *Service) MaxUploadSize() int64 { return s.opts.MaxUploadSize }

// Sources lists the registered sources.
func (s *Service) Sources() []SourceInfo { return s.registry.All() }

// RegisterTables registers one source per Postgres table. Each view opens
// its own snapshot of the table.
func (s *Service) RegisterTables(db pgsource.DB, specs []pgsource.TableSpec) error {
	for _, spec := range specs {
		spec := spec
		err := s.registry.Register(SourceDefinition{
			Info: SourceInfo{
				Key:     spec.Source(),
				Group:   GroupPostgres,
				Label:   spec.Schema + "." + spec.Name,
				KeyCols: spec.Key,
			},
			Open: func(ctx context.Context) (core.Model, error) {
				t := pgsource.New(db, spec)
				if err := t.Load(ctx); err != nil {
					return nil, err
				}
				return t, nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// AddUpload parses an uploaded file and registers it as a source. Views of
// the upload each get a private copy of the parsed rows.
func (s *Service) AddUpload(ctx context.Context, name string, r io.Reader, keyCols []string) (SourceInfo, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return SourceInfo{}, fmt.Errorf("upload %q: %w", name, err)
	}
	defer s.limiter.Release()

	start := time.Now()
	model, err := ingest.Load(ctx, name, r, ingest.Options{
		Key:      keyCols,
		MaxBytes: s.opts.MaxUploadSize,
	})
	if err != nil {
		return SourceInfo{}, fmt.Errorf("upload %q: %w", name, err)
	}

	info := SourceInfo{
		Key:     "upload:" + uuid.New().String(),
		Group:   GroupUpload,
		Label:   name,
		KeyCols: keyCols,
	}
	err = s.registry.Register(SourceDefinition{
		Info: info,
		Open: func(context.Context) (core.Model, error) {
			return model.Clone(), nil
		},
	})
	if err != nil {
		return SourceInfo{}, err
	}

	s.audit.Record(ctx, AuditEntry{Action: ActionUpload, Source: info.Key, Row: -1, NewValue: name})
	logging.WithFields(ctx, "source", info.Key).Info("upload registered",
		"file", name,
		"rows", model.Rows(),
		"columns", model.Columns(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return info, nil
}

// OpenView opens a view of a source and restores its saved settings.
func (s *Service) OpenView(ctx context.Context, sourceKey string) (*Snapshot, error) {
	def, ok := s.registry.Get(sourceKey)
	if !ok {
		return nil, fmt.Errorf("open view of %s: %w", sourceKey, core.ErrSourceNotFound)
	}

	s.mu.RLock()
	full := s.opts.MaxViews > 0 && len(s.views) >= s.opts.MaxViews
	s.mu.RUnlock()
	if full {
		return nil, fmt.Errorf("open view of %s: %w", sourceKey, core.ErrTooManyViews)
	}

	model, err := def.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open view of %s: %w", sourceKey, err)
	}

	v := &view{
		id:       uuid.New().String(),
		source:   def.Info,
		lastUsed: time.Now(),
	}
	logger := logging.WithFields(ctx, "view_id", v.id, "source", sourceKey)

	v.state = core.NewState(model, s.opts.Layout)
	v.state.Logger = logger
	v.state.RefreshModel()
	s.restore(v, logger)

	s.mu.Lock()
	if s.opts.MaxViews > 0 && len(s.views) >= s.opts.MaxViews {
		s.mu.Unlock()
		return nil, fmt.Errorf("open view of %s: %w", sourceKey, core.ErrTooManyViews)
	}
	s.views[v.id] = v
	s.mu.Unlock()

	logger.Info("view opened", "rows", model.Rows(), "columns", model.Columns())

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot(), nil
}

// restore applies persisted settings for the view's source, if any.
func (s *Service) restore(v *view, logger *slog.Logger) {
	if s.store == nil {
		return
	}
	settings, err := s.store.Load(v.source.Key, v.state.Headers())
	if err != nil {
		logger.Debug("no saved settings restored", "error", err)
		return
	}
	if v.state.AdoptSettings(settings) {
		logger.Debug("saved settings restored")
	}
}

// CloseView closes a view.
func (s *Service) CloseView(ctx context.Context, id string) error {
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("close view %s: %w", id, core.ErrViewNotFound)
	}
	s.audit.Record(ctx, AuditEntry{Action: ActionViewClose, Source: v.source.Key, ViewID: id, Row: -1})
	logging.ForView(ctx, id).Info("view closed")
	return nil
}

// ViewInfo summarizes an open view.
type ViewInfo struct {
	ID       string     `json:"id"`
	Source   SourceInfo `json:"source"`
	LastUsed time.Time  `json:"last_used"`
}

// Views lists the open views.
func (s *Service) Views() []ViewInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ViewInfo, 0, len(s.views))
	for _, v := range s.views {
		v.mu.Lock()
		out = append(out, ViewInfo{ID: v.id, Source: v.source, LastUsed: v.lastUsed})
		v.mu.Unlock()
	}
	return out
}

func (s *Service) view(id string) (*view, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.views[id]
	if !ok {
		return nil, fmt.Errorf("view %s: %w", id, core.ErrViewNotFound)
	}
	return v, nil
}

// Do runs fn on a view's state under the view lock, reconciles the model
// afterwards, persists changed settings and returns a snapshot.
func (s *Service) Do(ctx context.Context, id string, fn func(st *core.State) error) (*Snapshot, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastUsed = time.Now()
	v.state.RefreshModel()

	if fn != nil {
		if err := fn(v.state); err != nil {
			return nil, err
		}
		v.state.RefreshModel()
	}

	if v.state.SettingsChanged {
		s.persist(ctx, v)
	}
	return v.snapshot(), nil
}

// persist saves the view's settings under its source key.
func (s *Service) persist(ctx context.Context, v *view) {
	v.state.SettingsChanged = false
	if s.store == nil {
		return
	}
	if err := s.store.Save(v.source.Key, v.state.Headers(), v.state.Settings); err != nil {
		logging.ForView(ctx, v.id).Error("save settings failed", "error", err)
	}
}

// Snapshot returns the current state of a view.
func (s *Service) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	return s.Do(ctx, id, nil)
}

// SaveView stores the view's settings under a name.
func (s *Service) SaveView(ctx context.Context, id, name string) error {
	if s.store == nil {
		return fmt.Errorf("save view %q: settings store disabled", name)
	}
	snap, err := s.Do(ctx, id, func(st *core.State) error {
		return s.store.Save(namedKey(name), st.Headers(), st.Settings)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{Action: ActionViewSave, Source: snap.Source.Key, ViewID: id, Row: -1, NewValue: name})
	return nil
}

// Audit returns recorded audit entries, newest first.
func (s *Service) Audit(f AuditFilter) []AuditEntry {
	return s.audit.Entries(f)
}

// LoadView applies settings saved under a name.
func (s *Service) LoadView(ctx context.Context, id, name string) (*Snapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("load view %q: %w", name, core.ErrSettingsNotFound)
	}
	return s.Do(ctx, id, func(st *core.State) error {
		settings, err := s.store.Load(namedKey(name), st.Headers())
		if err != nil {
			return err
		}
		if !st.AdoptSettings(settings) {
			return fmt.Errorf("load view %q: %w", name, core.ErrSchemaMismatch)
		}
		st.SettingsChanged = true
		return nil
	})
}

// SavedViews lists the names passed to SaveView.
func (s *Service) SavedViews(ctx context.Context) []string {
	if s.store == nil {
		return nil
	}
	var names []string
	for _, key := range s.store.Names(ctx) {
		if name, ok := strings.CutPrefix(key, namedPrefix); ok {
			names = append(names, name)
		}
	}
	return names
}

const namedPrefix = "named:"

func namedKey(name string) string { return namedPrefix + name }
