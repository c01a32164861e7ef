package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/dto"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"gorm.io/gorm"
)

type StreamerService interface {
	GetTopByGifts(ctx context.Context, limit int) ([]dto.StreamerRankingEntry, error)
	GetGifts(ctx context.Context, streamerID uuid.UUID, page, limit int) (*dto.PaginatedGiftListResponse, error)
}

type streamerService struct {
	streamerRepo repository.StreamerRepository
	giftRepo     repository.GiftRepository
}

func NewStreamerService(streamerRepo repository.StreamerRepository, giftRepo repository.GiftRepository) StreamerService {
	return &streamerService{
		streamerRepo: streamerRepo,
		giftRepo:     giftRepo,
	}
}

func (s *streamerService) GetTopByGifts(ctx context.Context, limit int) ([]dto.StreamerRankingEntry, error) {
	rankings, err := s.streamerRepo.TopByGifts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	entries := make([]dto.StreamerRankingEntry, 0, len(rankings))
	for i, ranking := range rankings {
		entries = append(entries, dto.StreamerRankingEntry{
			StreamerID: ranking.Streamer.ID,
			Name:       ranking.Streamer.Name,
			Slug:       ranking.Streamer.Slug,
			Platform:   ranking.Streamer.Platform,
			AvatarURL:  ranking.Streamer.AvatarURL,
			Total:      ranking.Total,
			Position:   i + 1,
		})
	}
	return entries, nil
}

func (s *streamerService) GetGifts(ctx context.Context, streamerID uuid.UUID, page, limit int) (*dto.PaginatedGiftListResponse, error) {
	if _, err := s.streamerRepo.FindByID(ctx, streamerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: streamer %s", apperror.ErrNotFound, streamerID)
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	transfers, total, err := s.giftRepo.ListByStreamer(ctx, streamerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	data := make([]dto.GiftListEntry, 0, len(transfers))
	for _, transfer := range transfers {
		data = append(data, dto.GiftListEntry{
			Amount:    transfer.Amount,
			Note:      transfer.Note,
			CreatedAt: transfer.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.PaginatedGiftListResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}
