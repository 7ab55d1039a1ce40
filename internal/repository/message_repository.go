package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

// MessageRepository is append-only: messages are never edited or deleted.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *messageRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("proposal_id = ?", proposalID).
			Order("created_at ASC").
			Find(&messages).Error
	})
	return messages, translate(err)
}
