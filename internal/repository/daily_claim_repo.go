package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/model"
	"gorm.io/gorm"
)

type DailyClaimRepository interface {
	// Find returns nil without error when no claim exists for that day.
	Find(ctx context.Context, userID uuid.UUID, claimDate string) (*model.DailyClaim, error)
	// Insert surfaces gorm.ErrDuplicatedKey when a concurrent claim won the
	// (user, claim_date) uniqueness race.
	Insert(ctx context.Context, claim *model.DailyClaim) error
	// CreditClaim credits the claim's amount and flips CreditedAt in a single
	// transaction. credited is false when another call already claimed the
	// crediting step; the caller then just reports the stored amount.
	CreditClaim(ctx context.Context, claim *model.DailyClaim, description string) (after int, credited bool, err error)
}

type dailyClaimRepository struct {
	db *gorm.DB
}

func NewDailyClaimRepository(db *gorm.DB) DailyClaimRepository {
	return &dailyClaimRepository{db: db}
}

func (r *dailyClaimRepository) Find(ctx context.Context, userID uuid.UUID, claimDate string) (*model.DailyClaim, error) {
	var claim model.DailyClaim
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND claim_date = ?", userID, claimDate).
		First(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

func (r *dailyClaimRepository) Insert(ctx context.Context, claim *model.DailyClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *dailyClaimRepository) CreditClaim(ctx context.Context, claim *model.DailyClaim, description string) (int, bool, error) {
	var after int
	credited := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional update is the gate: only one transaction flips
		// credited_at, concurrent ones block on the row lock and then see
		// zero rows affected. A crash before commit rolls back the flag
		// together with the credit, so a later call self-heals.
		now := time.Now()
		res := tx.Model(&model.DailyClaim{}).
			Where("id = ? AND credited_at IS NULL", claim.ID).
			Update("credited_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var err error
		after, err = applyCredit(tx, claim.UserID, claim.Amount, model.TypeDailyClaim, description)
		if err != nil {
			return err
		}

		claim.CreditedAt = &now
		credited = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return after, credited, nil
}
