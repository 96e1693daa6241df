package repository

import (
	"fmt"

	"gorm.io/gorm"

	"chatbot-backend/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByChatID(chatID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("chat_id = ?", chatID).Order("sent_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// ListRecentByChatID returns the last limit messages re-ordered
// chronologically ascending, the shape the provider context expects.
func (r *MessageRepository) ListRecentByChatID(chatID uint, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 10
	}

	var messages []model.Message
	if err := r.db.Where("chat_id = ?", chatID).Order("sent_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByChatID(chatID uint) error {
	if err := r.db.Where("chat_id = ?", chatID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages failed: %w", err)
	}
	return nil
}
