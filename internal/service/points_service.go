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
)

type PointsService interface {
	CreditPoints(ctx context.Context, userID uuid.UUID, amount int, entryType, description string) (int, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	GetHistory(ctx context.Context, userID uuid.UUID, filter dto.HistoryFilter) (*dto.PaginatedHistoryResponse, error)
}

type pointsService struct {
	pointsRepo repository.PointsRepository
}

func NewPointsService(pointsRepo repository.PointsRepository) PointsService {
	return &pointsService{pointsRepo: pointsRepo}
}

func (s *pointsService) CreditPoints(ctx context.Context, userID uuid.UUID, amount int, entryType, description string) (int, error) {
	if amount == 0 {
		return 0, apperror.ErrInvalidAmount
	}
	if entryType == "" {
		return 0, apperror.ErrInvalidInput
	}

	after, err := s.pointsRepo.Credit(ctx, userID, amount, entryType, description)
	if err != nil {
		if errors.Is(err, apperror.ErrInsufficientPoints) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	return after, nil
}

func (s *pointsService) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	point, err := s.pointsRepo.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	return point, nil
}

func (s *pointsService) GetHistory(ctx context.Context, userID uuid.UUID, filter dto.HistoryFilter) (*dto.PaginatedHistoryResponse, error) {
	repoFilter := repository.HistoryFilter{
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	if filter.From != "" {
		from, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return nil, apperror.ErrInvalidInput
		}
		repoFilter.From = &from
	}
	if filter.To != "" {
		to, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return nil, apperror.ErrInvalidInput
		}
		repoFilter.To = &to
	}

	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit < 1 || repoFilter.Limit > 100 {
		repoFilter.Limit = 20
	}

	entries, total, err := s.pointsRepo.ListHistory(ctx, userID, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	data := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, dto.HistoryEntryResponse{
			Amount:      entry.Amount,
			Type:        entry.Type,
			Description: entry.Description,
			AfterPoint:  entry.AfterPoint,
			CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.PaginatedHistoryResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: repoFilter.Page,
			TotalPages:  int(math.Ceil(float64(total) / float64(repoFilter.Limit))),
			TotalItems:  total,
			Limit:       repoFilter.Limit,
		},
	}, nil
}
