package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// ToolTrace records one tool execution triggered by a dialogue turn.
// Indexed by tenant and session for per-conversation retrieval.
type ToolTrace struct {
	ID            uint                   `gorm:"primarykey" json:"-"`
	CreatedAt     time.Time              `json:"-"`
	TenantID      string                 `gorm:"index:idx_trace_session;not null" json:"tenant_id"`
	SessionID     string                 `gorm:"index:idx_trace_session;not null" json:"session_id"`
	RequestID     string                 `json:"request_id,omitempty"`
	TraceID       string                 `gorm:"not null" json:"trace_id"`
	Tool          string                 `gorm:"index:idx_trace_tool;not null" json:"tool"`
	ArgumentsJSON string                 `gorm:"type:text" json:"-"`
	Arguments     map[string]interface{} `gorm:"-" json:"arguments,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	Timestamp     int64                  `gorm:"not null" json:"timestamp"`
	DurationMS    int64                  `json:"duration_ms"`
}

// BeforeSave marshals Arguments to ArgumentsJSON
func (t *ToolTrace) BeforeSave(tx *gorm.DB) error {
	if t.Arguments != nil {
		data, err := json.Marshal(t.Arguments)
		if err != nil {
			return err
		}
		t.ArgumentsJSON = string(data)
	}
	return nil
}

// AfterFind unmarshals ArgumentsJSON to Arguments
func (t *ToolTrace) AfterFind(tx *gorm.DB) error {
	if t.ArgumentsJSON != "" {
		return json.Unmarshal([]byte(t.ArgumentsJSON), &t.Arguments)
	}
	return nil
}

// TraceStore interface for trace persistence operations
type TraceStore interface {
	SaveTrace(ctx context.Context, trace *ToolTrace) error

	// GetTracesBySession retrieves all traces for a session, oldest first
	GetTracesBySession(ctx context.Context, tenantID, sessionID string) ([]*ToolTrace, error)

	DeleteTracesBySession(ctx context.Context, tenantID, sessionID string) error
}

// GORMTraceStore implements TraceStore for SQLite/PostgreSQL via GORM
type GORMTraceStore struct {
	db *gorm.DB
}

// NewGORMTraceStore creates a trace store from an existing GORM database connection
func NewGORMTraceStore(db *gorm.DB) (*GORMTraceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if err := db.AutoMigrate(&ToolTrace{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tool_traces table: %w", err)
	}

	return &GORMTraceStore{db: db}, nil
}

func (s *GORMTraceStore) SaveTrace(ctx context.Context, trace *ToolTrace) error {
	return s.db.WithContext(ctx).Create(trace).Error
}

func (s *GORMTraceStore) GetTracesBySession(ctx context.Context, tenantID, sessionID string) ([]*ToolTrace, error) {
	var traces []*ToolTrace
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("timestamp ASC").
		Find(&traces).Error
	return traces, err
}

func (s *GORMTraceStore) DeleteTracesBySession(ctx context.Context, tenantID, sessionID string) error {
	return s.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Delete(&ToolTrace{}).Error
}

// MemoryTraceStore keeps traces in process memory.
type MemoryTraceStore struct {
	mu     sync.RWMutex
	traces map[sessionKey][]*ToolTrace
}

func NewMemoryTraceStore() *MemoryTraceStore {
	return &MemoryTraceStore{traces: make(map[sessionKey][]*ToolTrace)}
}

func (s *MemoryTraceStore) SaveTrace(_ context.Context, trace *ToolTrace) error {
	key := sessionKey{tenant: trace.TenantID, session: trace.SessionID}
	s.mu.Lock()
	s.traces[key] = append(s.traces[key], trace)
	s.mu.Unlock()
	return nil
}

func (s *MemoryTraceStore) GetTracesBySession(_ context.Context, tenantID, sessionID string) ([]*ToolTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.traces[sessionKey{tenant: tenantID, session: sessionID}]
	out := make([]*ToolTrace, len(src))
	copy(out, src)
	return out, nil
}

func (s *MemoryTraceStore) DeleteTracesBySession(_ context.Context, tenantID, sessionID string) error {
	s.mu.Lock()
	delete(s.traces, sessionKey{tenant: tenantID, session: sessionID})
	s.mu.Unlock()
	return nil
}
