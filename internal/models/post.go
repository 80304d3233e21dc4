package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	SkinType    string    `json:"skin_type"`
	IsSaved     bool      `json:"isSaved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title       string `json:"title" binding:"max=200"`
	Description string `json:"description" binding:"max=5000"`
	Image       string `json:"image" binding:"omitempty,url,max=2048"`
	SkinType    string `json:"skin_type" binding:"max=50"`
}

// UpdatePostRequest: частичное обновление: nil поля не трогаем.
type UpdatePostRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Image       *string `json:"image" binding:"omitempty,max=2048"`
	SkinType    *string `json:"skin_type" binding:"omitempty,max=50"`
}
