package repository

import (
	"context"

	"github.com/linkyfire/guide-backend/internal/domain/entity"
)

// MessageRepository is the durable append-only log of chat exchanges.
// Records are create/read/delete only; no update exists.
type MessageRepository interface {
	// Save inserts one record, assigning id and timestamp, and returns it.
	Save(ctx context.Context, userID int64, userMessage, aiResponse string) (*entity.Message, error)

	// ListByUser returns the user's records newest-first, bounded by
	// limit/offset. An empty slice is a normal outcome.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Message, error)

	// FindByID returns the record or a not-found AppError.
	FindByID(ctx context.Context, id uint) (*entity.Message, error)

	// DeleteByID removes the record, reporting whether a row existed.
	// A missing row is not an error.
	DeleteByID(ctx context.Context, id uint) (bool, error)
}
