package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/dto"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditPointsValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPointsService(repository.NewPointsRepository(db))
	ctx := context.Background()

	_, err := svc.CreditPoints(ctx, uuid.New(), 0, model.TypeAdminGrant, "zero")
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)

	_, err = svc.CreditPoints(ctx, uuid.New(), 10, "", "no type")
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCreditPointsSurfacesInsufficient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPointsService(repository.NewPointsRepository(db))

	_, err := svc.CreditPoints(context.Background(), uuid.New(), -10, model.TypeAdjustment, "overdraw")
	require.ErrorIs(t, err, apperror.ErrInsufficientPoints)
}

// Replaying the full history always reproduces the current balance.
func TestHistorySumMatchesBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPointsService(repository.NewPointsRepository(db))
	ctx := context.Background()
	userID := uuid.New()

	for _, amount := range []int{50, -20, 35, -5, 100} {
		_, err := svc.CreditPoints(ctx, userID, amount, model.TypeAdjustment, "op")
		require.NoError(t, err)
	}

	res, err := svc.GetHistory(ctx, userID, dto.HistoryFilter{Limit: 100})
	require.NoError(t, err)

	sum := 0
	for _, entry := range res.Data {
		sum += entry.Amount
	}

	balance, err := svc.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
	assert.Equal(t, 160, balance)
}

func TestGetHistoryRejectsBadDates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPointsService(repository.NewPointsRepository(db))

	_, err := svc.GetHistory(context.Background(), uuid.New(), dto.HistoryFilter{From: "30-08-2026"})
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
}
