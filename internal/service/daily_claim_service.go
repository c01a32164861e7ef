package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/dto"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"gorm.io/gorm"
)

type DailyClaimService interface {
	Claim(ctx context.Context, userID uuid.UUID) (*dto.ClaimResponse, error)
}

type dailyClaimService struct {
	claimRepo  repository.DailyClaimRepository
	pointsRepo repository.PointsRepository
	location   *time.Location
	rewardMin  int
	rewardMax  int
	now        func() time.Time
}

func NewDailyClaimService(claimRepo repository.DailyClaimRepository, pointsRepo repository.PointsRepository, timezone string, rewardMin, rewardMax int) (DailyClaimService, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid claim timezone %q: %w", timezone, err)
	}

	return &dailyClaimService{
		claimRepo:  claimRepo,
		pointsRepo: pointsRepo,
		location:   location,
		rewardMin:  rewardMin,
		rewardMax:  rewardMax,
		now:        time.Now,
	}, nil
}

// Claim hands out the once-per-day reward. Repeated calls on the same day
// converge to the same amount: the (user, claim_date) uniqueness constraint
// picks a single winner among concurrent first claims, and every later call
// reports the winner's row.
func (s *dailyClaimService) Claim(ctx context.Context, userID uuid.UUID) (*dto.ClaimResponse, error) {
	today := s.now().In(s.location).Format("2006-01-02")

	claim, err := s.claimRepo.Find(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	if claim == nil {
		amount, err := s.rollReward()
		if err != nil {
			return nil, err
		}

		claim = &model.DailyClaim{
			UserID:    userID,
			ClaimDate: today,
			Amount:    amount,
		}
		if err := s.claimRepo.Insert(ctx, claim); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
			}
			// A concurrent attempt won the insert; its amount is the amount.
			claim, err = s.claimRepo.Find(ctx, userID, today)
			if err != nil || claim == nil {
				return nil, fmt.Errorf("%w: claim row vanished after duplicate insert", apperror.ErrStorageUnavailable)
			}
		}
	}

	alreadyClaimed := claim.CreditedAt != nil

	if !alreadyClaimed {
		description := fmt.Sprintf("Daily reward for %s", claim.ClaimDate)
		after, credited, err := s.claimRepo.CreditClaim(ctx, claim, description)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
		}
		if credited {
			return &dto.ClaimResponse{
				Amount:              claim.Amount,
				AfterBalance:        after,
				AlreadyClaimedToday: false,
			}, nil
		}
		// Another call credited between our read and the gate.
		alreadyClaimed = true
	}

	balance, err := s.pointsRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	return &dto.ClaimResponse{
		Amount:              claim.Amount,
		AfterBalance:        balance,
		AlreadyClaimedToday: alreadyClaimed,
	}, nil
}

func (s *dailyClaimService) rollReward() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(s.rewardMax-s.rewardMin+1)))
	if err != nil {
		return 0, fmt.Errorf("failed to roll reward amount: %w", err)
	}
	return s.rewardMin + int(n.Int64()), nil
}
