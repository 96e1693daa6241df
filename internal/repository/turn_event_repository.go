package repository

import (
	"fmt"

	"gorm.io/gorm"

	"chatbot-backend/internal/model"
)

type TurnEventRepository struct {
	db *gorm.DB
}

func NewTurnEventRepository(db *gorm.DB) *TurnEventRepository {
	return &TurnEventRepository{db: db}
}

func (r *TurnEventRepository) Create(event *model.TurnEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create turn event failed: %w", err)
	}
	return nil
}
