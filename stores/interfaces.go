package stores

import (
	"context"
	"errors"
	"time"

	"github.com/Desarso/intentagent/models"
	"gorm.io/gorm"
)

var (
	// ErrInvalidRole is returned when a message is appended with an unknown role.
	ErrInvalidRole = errors.New("invalid message role")
	// ErrMissingKey is returned when tenant or session id is empty.
	ErrMissingKey = errors.New("tenant_id and session_id are required")
)

// MessageRecord is the durable form of one session log entry.
type MessageRecord struct {
	gorm.Model
	TenantID  string `gorm:"uniqueIndex:idx_session_seq;not null"`
	SessionID string `gorm:"uniqueIndex:idx_session_seq;not null"`
	Sequence  int    `gorm:"uniqueIndex:idx_session_seq;not null"`
	Role      string `gorm:"not null"` // "user", "assistant", "assistant_raw"
	Content   string `gorm:"type:text"`
}

// SessionRecord holds metadata for one tenant session.
type SessionRecord struct {
	gorm.Model
	TenantID     string `gorm:"uniqueIndex:idx_tenant_session;not null"`
	SessionID    string `gorm:"uniqueIndex:idx_tenant_session;not null"`
	MessageCount int    `gorm:"default:0"`
}

// SessionInfo holds basic session metadata for listing
type SessionInfo struct {
	TenantID     string `json:"tenant_id"`
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// SessionStore is the append-only conversation log keyed by tenant and
// session. Sessions are created lazily by the first AddMessage.
type SessionStore interface {
	// GetHistory returns the session's messages in insertion order. An
	// unknown session yields an empty slice.
	GetHistory(ctx context.Context, tenantID, sessionID string) ([]models.Message, error)
	AddMessage(ctx context.Context, tenantID, sessionID string, role models.Role, content string) error

	ListSessions(ctx context.Context, tenantID string) ([]SessionInfo, error)

	// Connection management
	Ping(ctx context.Context) error
	Close() error
}

// StoreConfig holds configuration for session stores
type StoreConfig struct {
	Type       string            `json:"type"`       // "memory", "sqlite", "postgres", "redis"
	Connection string            `json:"connection"` // DSN, file path or redis address
	Options    map[string]string `json:"options"`    // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	c.Options[key] = value
	return c
}

func validateAppend(tenantID, sessionID string, role models.Role) error {
	if tenantID == "" || sessionID == "" {
		return ErrMissingKey
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

const timeLayout = time.RFC3339
