// Package audit records tool invocations in a write-only audit log.
// The log is opt-in and never sits on the request critical path beyond a
// single insert; recording failures are logged, not propagated.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vpsbridge/vpsbridge/internal/registry"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ToolCall is one recorded tool invocation.
type ToolCall struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Tool       string         `gorm:"index" json:"tool"`
	Arguments  datatypes.JSON `json:"arguments,omitempty"`
	Outcome    string         `json:"outcome"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// Store persists ToolCall records.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a Store and migrates the audit schema.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&ToolCall{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Observer returns a registry observer that records every dispatch outcome.
func (s *Store) Observer() registry.InvocationObserver {
	return func(_ context.Context, tool string, args registry.Arguments, invokeErr error, elapsed time.Duration) {
		rec := &ToolCall{
			Tool:       tool,
			Outcome:    outcomeLabel(invokeErr),
			DurationMs: elapsed.Milliseconds(),
		}
		if invokeErr != nil {
			rec.Error = invokeErr.Error()
		}
		if raw, err := json.Marshal(args); err == nil {
			rec.Arguments = datatypes.JSON(raw)
		}
		if err := s.db.Create(rec).Error; err != nil {
			s.logger.Warn("failed to record tool call",
				zap.String("tool", tool),
				zap.Error(err),
			)
		}
	}
}

// Recent returns the most recent limit records, newest first.
func (s *Store) Recent(limit int) ([]ToolCall, error) {
	var calls []ToolCall
	if err := s.db.Order("id desc").Limit(limit).Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit records: %w", err)
	}
	return calls, nil
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
