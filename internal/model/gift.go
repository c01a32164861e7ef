package model

import (
	"time"

	"github.com/google/uuid"
)

// GiftTransfer records one user-to-streamer transfer. The unique index over
// (sender_id, idempotency_key) makes client retries safe: a replayed key hits
// the constraint and the stored result is returned instead of a second debit.
// Rows without a key never collide (NULLs are distinct).
type GiftTransfer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uk_gift_sender_idem,priority:1" json:"sender_id"`
	StreamerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"streamer_id"`
	Amount         int       `gorm:"not null" json:"amount"`
	Note           string    `gorm:"size:255" json:"note"`
	IdempotencyKey *string   `gorm:"size:64;uniqueIndex:uk_gift_sender_idem,priority:2" json:"-"`
	SenderAfter    int       `gorm:"not null" json:"sender_after"`
	StreamerTotal  int64     `gorm:"not null" json:"streamer_total"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
