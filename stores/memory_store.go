package stores

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Desarso/intentagent/models"
)

type sessionKey struct {
	tenant  string
	session string
}

type memorySession struct {
	mu        sync.RWMutex
	messages  []models.Message
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore keeps sessions for the lifetime of the process. Each session
// has its own lock so appends to different sessions never contend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*memorySession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[sessionKey]*memorySession)}
}

func (s *MemoryStore) lookup(tenantID, sessionID string, create bool) *memorySession {
	key := sessionKey{tenant: tenantID, session: sessionID}

	s.mu.RLock()
	sess := s.sessions[key]
	s.mu.RUnlock()
	if sess != nil || !create {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess = s.sessions[key]; sess == nil {
		now := time.Now()
		sess = &memorySession{createdAt: now, updatedAt: now}
		s.sessions[key] = sess
	}
	return sess
}

func (s *MemoryStore) GetHistory(_ context.Context, tenantID, sessionID string) ([]models.Message, error) {
	sess := s.lookup(tenantID, sessionID, false)
	if sess == nil {
		return []models.Message{}, nil
	}
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	out := make([]models.Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, tenantID, sessionID string, role models.Role, content string) error {
	if err := validateAppend(tenantID, sessionID, role); err != nil {
		return err
	}
	sess := s.lookup(tenantID, sessionID, true)
	sess.mu.Lock()
	sess.messages = append(sess.messages, models.Message{Role: role, Content: content})
	sess.updatedAt = time.Now()
	sess.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context, tenantID string) ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]SessionInfo, 0)
	for key, sess := range s.sessions {
		if key.tenant != tenantID {
			continue
		}
		sess.mu.RLock()
		result = append(result, SessionInfo{
			TenantID:     key.tenant,
			SessionID:    key.session,
			MessageCount: len(sess.messages),
			CreatedAt:    sess.createdAt.Format(timeLayout),
			UpdatedAt:    sess.updatedAt.Format(timeLayout),
		})
		sess.mu.RUnlock()
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SessionID < result[j].SessionID })
	return result, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
