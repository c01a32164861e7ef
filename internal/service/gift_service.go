package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/soranokaze/glimpanel/internal/dto"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"gorm.io/gorm"
)

type GiftService interface {
	Gift(ctx context.Context, senderID, streamerID uuid.UUID, amount int, note, idempotencyKey string) (*dto.GiftResponse, error)
}

type giftService struct {
	giftRepo     repository.GiftRepository
	pointsRepo   repository.PointsRepository
	streamerRepo repository.StreamerRepository
	notePolicy   *bluemonday.Policy
}

func NewGiftService(giftRepo repository.GiftRepository, pointsRepo repository.PointsRepository, streamerRepo repository.StreamerRepository) GiftService {
	return &giftService{
		giftRepo:     giftRepo,
		pointsRepo:   pointsRepo,
		streamerRepo: streamerRepo,
		// Notes are rendered on streamer pages, strip all markup.
		notePolicy: bluemonday.StrictPolicy(),
	}
}

func (s *giftService) Gift(ctx context.Context, senderID, streamerID uuid.UUID, amount int, note, idempotencyKey string) (*dto.GiftResponse, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount
	}

	if _, err := s.streamerRepo.FindByID(ctx, streamerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: streamer %s", apperror.ErrNotFound, streamerID)
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	// Pre-flight check only; the real guard is the non-negative constraint
	// inside the transfer transaction.
	balance, err := s.pointsRepo.GetBalance(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	if balance < amount {
		return nil, apperror.ErrInsufficientPoints
	}

	transfer := &model.GiftTransfer{
		SenderID:   senderID,
		StreamerID: streamerID,
		Amount:     amount,
		Note:       strings.TrimSpace(s.notePolicy.Sanitize(note)),
	}
	if idempotencyKey != "" {
		transfer.IdempotencyKey = &idempotencyKey
	}

	if err := s.giftRepo.Transfer(ctx, transfer); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransfer) {
			return s.replayTransfer(ctx, transfer, idempotencyKey)
		}
		if errors.Is(err, apperror.ErrInsufficientPoints) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	return &dto.GiftResponse{
		UserAfterBalance:   transfer.SenderAfter,
		StreamerAfterTotal: transfer.StreamerTotal,
		AlreadyProcessed:   false,
	}, nil
}

// replayTransfer reports the outcome of the earlier transfer that holds this
// idempotency key. The sender was debited exactly once; a retried request
// (e.g. after a client timeout) observes that result rather than paying twice.
// A key reused with a different streamer or amount is a client bug, not a
// retry, and is rejected.
func (s *giftService) replayTransfer(ctx context.Context, attempted *model.GiftTransfer, idempotencyKey string) (*dto.GiftResponse, error) {
	previous, err := s.giftRepo.FindByIdempotencyKey(ctx, attempted.SenderID, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	if previous.StreamerID != attempted.StreamerID || previous.Amount != attempted.Amount {
		return nil, fmt.Errorf("%w: idempotency key already used for a different transfer", apperror.ErrInvalidInput)
	}

	return &dto.GiftResponse{
		UserAfterBalance:   previous.SenderAfter,
		StreamerAfterTotal: previous.StreamerTotal,
		AlreadyProcessed:   true,
	}, nil
}
