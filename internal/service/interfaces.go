// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// RecordStore defines the contract for the session history of extracted
// records. Records are ordered newest-first. Update replaces in place and is
// a no-op when the id is absent, so store order is never disturbed by edits.
type RecordStore interface {
	Append(ctx context.Context, record model.Record) error
	Update(ctx context.Context, id string, record model.Record) error
	Get(ctx context.Context, id string) (*model.Record, error)
	All(ctx context.Context) ([]model.Record, error)
	FindDuplicate(ctx context.Context, candidate model.Record) (*model.Record, error)
	Clear(ctx context.Context) error
	Close() error
}

// CorrectionStore defines the persistence contract for learned
// keyword-to-category corrections. The mapping outlives any one session.
type CorrectionStore interface {
	All(ctx context.Context) ([]model.Correction, error)
	Save(ctx context.Context, correction *model.Correction) error
	Delete(ctx context.Context, keyword string) error
	IncrementUseCount(ctx context.Context, keyword string) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
