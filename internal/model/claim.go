package model

import (
	"time"

	"github.com/google/uuid"
)

// DailyClaim records one reward claim per (user, calendar day). The unique
// index is the race-safety primitive: concurrent first claims of the day race
// on the insert, the constraint picks a single winner, and losers re-read the
// winner's row. CreditedAt flips from null to a timestamp exactly once.
type DailyClaim struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;uniqueIndex:uk_claim_user_date,priority:1;not null" json:"user_id"`
	ClaimDate  string     `gorm:"size:10;uniqueIndex:uk_claim_user_date,priority:2;not null" json:"claim_date"` // YYYY-MM-DD in the reference timezone
	Amount     int        `gorm:"not null" json:"amount"`
	CreditedAt *time.Time `json:"credited_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
