package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post"`
	UserID     uuid.UUID `json:"user"`
	Comment    string    `json:"comment"`
	AuthorName string    `json:"author_name,omitempty"`
	AuthorMail string    `json:"author_email,omitempty"`
	PostTitle  string    `json:"post_title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CommentRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
}
