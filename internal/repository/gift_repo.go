package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateTransfer signals that the idempotency key was already used by
// this sender; the stored transfer holds the original result.
var ErrDuplicateTransfer = errors.New("transfer already processed")

type GiftRepository interface {
	// Transfer debits the sender, credits the streamer inbox, and records
	// the transfer row as one transaction. No partial state can persist.
	Transfer(ctx context.Context, transfer *model.GiftTransfer) error
	FindByIdempotencyKey(ctx context.Context, senderID uuid.UUID, key string) (*model.GiftTransfer, error)
	ListByStreamer(ctx context.Context, streamerID uuid.UUID, page, limit int) ([]model.GiftTransfer, int64, error)
}

type giftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) Transfer(ctx context.Context, transfer *model.GiftTransfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The transfer row goes in first so a replayed idempotency key
		// aborts before any balance is touched.
		if err := tx.Create(transfer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTransfer
			}
			return err
		}

		after, err := applyCredit(tx, transfer.SenderID, -transfer.Amount, model.TypeGiftSent,
			fmt.Sprintf("Gift to streamer %s", transfer.StreamerID))
		if err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "streamer_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total":      gorm.Expr("streamer_inboxes.total + ?", transfer.Amount),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(&model.StreamerInbox{
			StreamerID: transfer.StreamerID,
			Total:      int64(transfer.Amount),
		}).Error; err != nil {
			return err
		}

		var inbox model.StreamerInbox
		if err := tx.Where("streamer_id = ?", transfer.StreamerID).First(&inbox).Error; err != nil {
			return err
		}

		transfer.SenderAfter = after
		transfer.StreamerTotal = inbox.Total
		return tx.Model(transfer).Updates(map[string]interface{}{
			"sender_after":   after,
			"streamer_total": inbox.Total,
		}).Error
	})
}

func (r *giftRepository) FindByIdempotencyKey(ctx context.Context, senderID uuid.UUID, key string) (*model.GiftTransfer, error) {
	var transfer model.GiftTransfer
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND idempotency_key = ?", senderID, key).
		First(&transfer).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *giftRepository) ListByStreamer(ctx context.Context, streamerID uuid.UUID, page, limit int) ([]model.GiftTransfer, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.GiftTransfer{}).
		Where("streamer_id = ?", streamerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var transfers []model.GiftTransfer
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, 0, err
	}

	return transfers, total, nil
}
