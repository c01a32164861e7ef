package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/model"
	"gorm.io/gorm"
)

type StreamerRanking struct {
	Streamer model.Streamer
	Total    int64
}

type StreamerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Streamer, error)
	Create(ctx context.Context, streamer *model.Streamer) error
	InboxTotal(ctx context.Context, streamerID uuid.UUID) (int64, error)
	TopByGifts(ctx context.Context, limit int) ([]StreamerRanking, error)
}

type streamerRepository struct {
	db *gorm.DB
}

func NewStreamerRepository(db *gorm.DB) StreamerRepository {
	return &streamerRepository{db: db}
}

func (r *streamerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Streamer, error) {
	var streamer model.Streamer
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&streamer).Error; err != nil {
		return nil, err
	}
	return &streamer, nil
}

func (r *streamerRepository) Create(ctx context.Context, streamer *model.Streamer) error {
	return r.db.WithContext(ctx).Create(streamer).Error
}

func (r *streamerRepository) InboxTotal(ctx context.Context, streamerID uuid.UUID) (int64, error) {
	var inbox model.StreamerInbox
	if err := r.db.WithContext(ctx).
		Where("streamer_id = ?", streamerID).
		First(&inbox).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return inbox.Total, nil
}

func (r *streamerRepository) TopByGifts(ctx context.Context, limit int) ([]StreamerRanking, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var inboxes []model.StreamerInbox
	if err := r.db.WithContext(ctx).
		Preload("Streamer").
		Order("total DESC").
		Limit(limit).
		Find(&inboxes).Error; err != nil {
		return nil, err
	}

	rankings := make([]StreamerRanking, 0, len(inboxes))
	for _, inbox := range inboxes {
		rankings = append(rankings, StreamerRanking{
			Streamer: inbox.Streamer,
			Total:    inbox.Total,
		})
	}
	return rankings, nil
}
