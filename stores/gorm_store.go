package stores

import (
	"context"
	"fmt"

	"github.com/Desarso/intentagent/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements SessionStore on any GORM dialect. SQLiteStore and
// PostgresStore embed it and only differ in how they open the connection.
type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) migrate() error {
	if err := s.db.AutoMigrate(&SessionRecord{}, &MessageRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// DB exposes the connection so other stores (traces) can share it.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *gormStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (s *gormStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// AddMessage appends a message, creating the session record on first use.
// The sequence number is assigned inside the transaction.
func (s *gormStore) AddMessage(ctx context.Context, tenantID, sessionID string, role models.Role, content string) error {
	if err := validateAppend(tenantID, sessionID, role); err != nil {
		return err
	}
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := SessionRecord{TenantID: tenantID, SessionID: sessionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session record: %w", err)
		}

		var count int64
		if err := tx.Model(&MessageRecord{}).
			Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count existing messages: %w", err)
		}
		seq := int(count) + 1

		msg := MessageRecord{
			TenantID:  tenantID,
			SessionID: sessionID,
			Sequence:  seq,
			Role:      string(role),
			Content:   content,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to create message record: %w", err)
		}

		if err := tx.Model(&SessionRecord{}).
			Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
			Update("message_count", seq).Error; err != nil {
			return fmt.Errorf("failed to update session message count: %w", err)
		}
		return nil
	})
}

// GetHistory retrieves messages for a session in sequence order
func (s *gormStore) GetHistory(ctx context.Context, tenantID, sessionID string) ([]models.Message, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var records []MessageRecord
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("sequence ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	msgs := make([]models.Message, len(records))
	for i, r := range records {
		msgs[i] = models.Message{Role: models.Role(r.Role), Content: r.Content}
	}
	return msgs, nil
}

// ListSessions returns all sessions of a tenant, most recently updated first
func (s *gormStore) ListSessions(ctx context.Context, tenantID string) ([]SessionInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var sessions []SessionRecord
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("updated_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	result := make([]SessionInfo, len(sessions))
	for i, sr := range sessions {
		result[i] = SessionInfo{
			TenantID:     sr.TenantID,
			SessionID:    sr.SessionID,
			MessageCount: sr.MessageCount,
			CreatedAt:    sr.CreatedAt.Format(timeLayout),
			UpdatedAt:    sr.UpdatedAt.Format(timeLayout),
		}
	}
	return result, nil
}
