package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tableview/internal/logging"
)

// AuditAction identifies the kind of audited operation.
type AuditAction string

const (
	ActionUpload    AuditAction = "upload"
	ActionCellEdit  AuditAction = "cell_edit"
	ActionViewSave  AuditAction = "view_save"
	ActionViewClose AuditAction = "view_close"
)

// AuditEntry is one audited operation.
type AuditEntry struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	Source    string      `json:"source"`
	ViewID    string      `json:"view_id,omitempty"`
	RowKey    []string    `json:"row_key,omitempty"`
	Row       int         `json:"row"` // -1 unless the entry is a cell edit
	Column    string      `json:"column,omitempty"`
	OldValue  string      `json:"old_value,omitempty"`
	NewValue  string      `json:"new_value,omitempty"`
	IPAddress string      `json:"ip_address,omitempty"`
	UserAgent string      `json:"user_agent,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuditFilter selects audit entries. Zero fields match everything.
type AuditFilter struct {
	Source string
	ViewID string
	Action AuditAction
	Limit  int
}

func (f AuditFilter) matches(e AuditEntry) bool {
	return (f.Source == "" || e.Source == f.Source) &&
		(f.ViewID == "" || e.ViewID == f.ViewID) &&
		(f.Action == "" || e.Action == f.Action)
}

// AuditLog keeps the most recent audit entries in memory.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	max     int
}

// NewAuditLog creates a log holding at most max entries. A non-positive max
// disables auditing.
func NewAuditLog(max int) *AuditLog {
	return &AuditLog{max: max}
}

// Record stamps e with an ID, time and the client from ctx, and stores it.
// The oldest entry is dropped when the log is full.
func (l *AuditLog) Record(ctx context.Context, e AuditEntry) AuditEntry {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()
	e.IPAddress, e.UserAgent = clientFromContext(ctx)

	logging.WithFields(ctx, "source", e.Source).Info("audit",
		"action", e.Action,
		"view_id", e.ViewID,
		"column", e.Column,
	)

	if l.max <= 0 {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == l.max {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.max-1]
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns matching entries, newest first.
func (l *AuditLog) Entries(f AuditFilter) []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []AuditEntry{}
	for i := len(l.entries) - 1; i >= 0; i-- {
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
		if f.matches(l.entries[i]) {
			out = append(out, l.entries[i])
		}
	}
	return out
}
