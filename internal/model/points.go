package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDailyClaim = "daily_claim"
	TypeGiftSent   = "gift_sent"
	TypeAdminGrant = "admin_grant"
	TypeAdjustment = "adjustment"
)

// PointBalance holds a user's current point total, one row per user.
// Created lazily on first credit and mutated only inside the credit
// transaction; Point never goes negative.
type PointBalance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Point     int       `gorm:"not null;default:0" json:"point"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PointHistory is an append-only ledger line. Entries for a user, ordered by
// creation, form a running total equal to the balance's Point.
type PointHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index:idx_history_user_date,priority:1;not null" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount"` // positive = credit, negative = debit
	Type        string    `gorm:"size:50;not null" json:"type"`
	Description string    `gorm:"size:255" json:"description"`
	AfterPoint  int       `gorm:"not null" json:"after_point"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_history_user_date,priority:2" json:"created_at"`
}
