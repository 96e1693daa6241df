package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"chatbot-backend/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

// GetByIDAndUserID returns (nil, nil) both when the chat does not exist
// and when it belongs to another user, so callers cannot tell the two
// apart.
func (r *ChatRepository) GetByIDAndUserID(chatID, userID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) ListByUserID(userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) UpdateTitle(chatID uint, title string) error {
	err := r.db.Model(&model.Chat{}).Where("id = ?", chatID).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("update chat title failed: %w", err)
	}
	return nil
}

// Touch advances updated_at, keeping the chat list ordered by recency.
func (r *ChatRepository) Touch(chatID uint) error {
	err := r.db.Model(&model.Chat{}).Where("id = ?", chatID).
		Update("updated_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("touch chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) DeleteByIDAndUserID(chatID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).Delete(&model.Chat{}).Error; err != nil {
		return fmt.Errorf("delete chat failed: %w", err)
	}
	return nil
}
