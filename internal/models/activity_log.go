package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog: запись журнала действий пользователя (хранится в БД).
type ActivityLog struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id"`
	UserEmail string     `json:"user_email,omitempty"`
	UserRole  string     `json:"user_role,omitempty"`
	Action    string     `json:"action"`
	IPAddress string     `json:"ip_address"`
	CreatedAt time.Time  `json:"timestamp"`
}

// SecurityEvent: строка JSON в файле журнала безопасности.
type SecurityEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Meta      map[string]any `json:"meta,omitempty"`
}
