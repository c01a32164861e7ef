package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Streamer is a directory entry. Its lifecycle (registration, profile edits)
// is managed outside the ledger; the ledger only credits its gift inbox.
type Streamer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Slug       string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Platform   string    `gorm:"size:50" json:"platform"`
	ChannelURL string    `gorm:"type:text" json:"channel_url"`
	AvatarURL  *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Streamer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StreamerInbox accumulates the points a streamer has received as gifts.
// Invariant: Total equals the sum of all successful gift transfers directed
// at this streamer. Mutated only inside the gift transfer transaction.
type StreamerInbox struct {
	StreamerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"streamer_id"`
	Streamer   Streamer  `gorm:"foreignKey:StreamerID;constraint:OnDelete:CASCADE" json:"-"`
	Total      int64     `gorm:"not null;default:0" json:"total"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
