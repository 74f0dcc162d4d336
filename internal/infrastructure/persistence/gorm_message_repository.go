package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/linkyfire/guide-backend/internal/domain/entity"
	"github.com/linkyfire/guide-backend/internal/domain/repository"
	"github.com/linkyfire/guide-backend/internal/infrastructure/persistence/models"
	domainErrors "github.com/linkyfire/guide-backend/pkg/errors"
)

// GormMessageRepository is the gorm-backed message store.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates the gorm message repository.
func NewGormMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &GormMessageRepository{
		db: db,
	}
}

// Save inserts one record; id and timestamp are store-assigned.
func (r *GormMessageRepository) Save(ctx context.Context, userID int64, userMessage, aiResponse string) (*entity.Message, error) {
	model := &models.MessageModel{
		UserID:      userID,
		UserMessage: userMessage,
		AIResponse:  aiResponse,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, domainErrors.NewInternalError("failed to save message: " + err.Error())
	}

	return r.toEntity(model), nil
}

// ListByUser returns the user's records newest-first.
func (r *GormMessageRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Message, error) {
	var rows []models.MessageModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error

	if err != nil {
		return nil, domainErrors.NewInternalError("failed to list messages: " + err.Error())
	}

	messages := make([]*entity.Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, r.toEntity(&rows[i]))
	}

	return messages, nil
}

// FindByID returns the record or a not-found error.
func (r *GormMessageRepository) FindByID(ctx context.Context, id uint) (*entity.Message, error) {
	var model models.MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewNotFoundError("message not found")
		}
		return nil, domainErrors.NewInternalError("failed to find message: " + err.Error())
	}

	return r.toEntity(&model), nil
}

// DeleteByID removes the record; a missing row yields (false, nil).
func (r *GormMessageRepository) DeleteByID(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.MessageModel{}, "id = ?", id)
	if result.Error != nil {
		return false, domainErrors.NewInternalError("failed to delete message: " + result.Error.Error())
	}
	return result.RowsAffected > 0, nil
}

func (r *GormMessageRepository) toEntity(model *models.MessageModel) *entity.Message {
	return &entity.Message{
		ID:          model.ID,
		UserID:      model.UserID,
		UserMessage: model.UserMessage,
		AIResponse:  model.AIResponse,
		Timestamp:   model.Timestamp,
	}
}
