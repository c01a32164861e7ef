package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryFilter struct {
	Type  string
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

type PointsRepository interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int, entryType, description string) (int, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	ListHistory(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]model.PointHistory, int64, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

// Credit applies a signed balance change and appends the matching history
// entry in one transaction. Every balance mutation in the ledger flows
// through applyCredit, here or inside the claim/gift transactions.
func (r *pointsRepository) Credit(ctx context.Context, userID uuid.UUID, amount int, entryType, description string) (int, error) {
	var after int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		after, err = applyCredit(tx, userID, amount, entryType, description)
		return err
	})
	if err != nil {
		return 0, err
	}
	return after, nil
}

// applyCredit mutates the balance row inside the caller's transaction.
// The guarded UPDATE (point + amount >= 0) both serializes concurrent
// mutations on the row lock and rejects any change that would drive the
// balance negative. The row is created lazily on a user's first credit.
func applyCredit(tx *gorm.DB, userID uuid.UUID, amount int, entryType, description string) (int, error) {
	res := tx.Model(&model.PointBalance{}).
		Where("user_id = ? AND point + ? >= 0", userID, amount).
		Update("point", gorm.Expr("point + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.PointBalance{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count > 0 || amount < 0 {
			return 0, apperror.ErrInsufficientPoints
		}

		// First credit for this user. DO NOTHING on conflict keeps a lost
		// insert race from aborting the surrounding transaction on postgres,
		// where a plain unique violation would poison it.
		balance := model.PointBalance{UserID: userID, Point: amount}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&balance)
		if ins.Error != nil {
			return 0, ins.Error
		}
		if ins.RowsAffected == 0 {
			// Lost the first-credit race; the row exists now, apply as an update.
			res = tx.Model(&model.PointBalance{}).
				Where("user_id = ? AND point + ? >= 0", userID, amount).
				Update("point", gorm.Expr("point + ?", amount))
			if res.Error != nil {
				return 0, res.Error
			}
			if res.RowsAffected == 0 {
				return 0, apperror.ErrInsufficientPoints
			}
		}
	}

	var balance model.PointBalance
	if err := tx.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		return 0, err
	}

	entry := model.PointHistory{
		UserID:      userID,
		Amount:      amount,
		Type:        entryType,
		Description: description,
		AfterPoint:  balance.Point,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}

	return balance.Point, nil
}

func (r *pointsRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance model.PointBalance
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row yet means the user simply has no points.
			return 0, nil
		}
		return 0, err
	}
	return balance.Point, nil
}

func (r *pointsRepository) ListHistory(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]model.PointHistory, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.PointHistory{}).
		Where("user_id = ?", userID)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	var entries []model.PointHistory
	if err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
