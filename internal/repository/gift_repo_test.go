package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStreamer(t *testing.T, repo StreamerRepository) uuid.UUID {
	t.Helper()
	streamer := &model.Streamer{Name: "Test Streamer", Slug: "test-streamer-" + uuid.NewString()[:8]}
	require.NoError(t, repo.Create(context.Background(), streamer))
	return streamer.ID
}

func TestTransferMovesBothSides(t *testing.T) {
	db := setupTestDB(t)
	giftRepo := NewGiftRepository(db)
	pointsRepo := NewPointsRepository(db)
	streamerRepo := NewStreamerRepository(db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := seedStreamer(t, streamerRepo)

	_, err := pointsRepo.Credit(ctx, senderID, 100, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	transfer := &model.GiftTransfer{SenderID: senderID, StreamerID: streamerID, Amount: 10, Note: "nice stream"}
	require.NoError(t, giftRepo.Transfer(ctx, transfer))

	assert.Equal(t, 90, transfer.SenderAfter)
	assert.EqualValues(t, 10, transfer.StreamerTotal)

	point, err := pointsRepo.GetBalance(ctx, senderID)
	require.NoError(t, err)
	assert.Equal(t, 90, point)

	total, err := streamerRepo.InboxTotal(ctx, streamerID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)

	var entry model.PointHistory
	require.NoError(t, db.Where("user_id = ? AND type = ?", senderID, model.TypeGiftSent).First(&entry).Error)
	assert.Equal(t, -10, entry.Amount)
	assert.Equal(t, 90, entry.AfterPoint)
}

func TestTransferInsufficientLeavesNothingBehind(t *testing.T) {
	db := setupTestDB(t)
	giftRepo := NewGiftRepository(db)
	pointsRepo := NewPointsRepository(db)
	streamerRepo := NewStreamerRepository(db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := seedStreamer(t, streamerRepo)

	_, err := pointsRepo.Credit(ctx, senderID, 5, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	transfer := &model.GiftTransfer{SenderID: senderID, StreamerID: streamerID, Amount: 10}
	err = giftRepo.Transfer(ctx, transfer)
	require.ErrorIs(t, err, apperror.ErrInsufficientPoints)

	point, err := pointsRepo.GetBalance(ctx, senderID)
	require.NoError(t, err)
	assert.Equal(t, 5, point)

	total, err := streamerRepo.InboxTotal(ctx, streamerID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	var count int64
	require.NoError(t, db.Model(&model.GiftTransfer{}).Where("sender_id = ?", senderID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestTransferIdempotencyKeyBlocksReplay(t *testing.T) {
	db := setupTestDB(t)
	giftRepo := NewGiftRepository(db)
	pointsRepo := NewPointsRepository(db)
	streamerRepo := NewStreamerRepository(db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := seedStreamer(t, streamerRepo)
	key := "retry-abc123"

	_, err := pointsRepo.Credit(ctx, senderID, 100, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	first := &model.GiftTransfer{SenderID: senderID, StreamerID: streamerID, Amount: 10, IdempotencyKey: &key}
	require.NoError(t, giftRepo.Transfer(ctx, first))

	replay := &model.GiftTransfer{SenderID: senderID, StreamerID: streamerID, Amount: 10, IdempotencyKey: &key}
	err = giftRepo.Transfer(ctx, replay)
	require.ErrorIs(t, err, ErrDuplicateTransfer)

	// Only the first debit happened.
	point, err := pointsRepo.GetBalance(ctx, senderID)
	require.NoError(t, err)
	assert.Equal(t, 90, point)

	stored, err := giftRepo.FindByIdempotencyKey(ctx, senderID, key)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.SenderAfter)
	assert.EqualValues(t, 10, stored.StreamerTotal)
}

func TestTransfersAccumulateInbox(t *testing.T) {
	db := setupTestDB(t)
	giftRepo := NewGiftRepository(db)
	pointsRepo := NewPointsRepository(db)
	streamerRepo := NewStreamerRepository(db)
	ctx := context.Background()

	streamerID := seedStreamer(t, streamerRepo)

	for i := 0; i < 3; i++ {
		senderID := uuid.New()
		_, err := pointsRepo.Credit(ctx, senderID, 50, model.TypeAdminGrant, "seed")
		require.NoError(t, err)

		transfer := &model.GiftTransfer{SenderID: senderID, StreamerID: streamerID, Amount: 20}
		require.NoError(t, giftRepo.Transfer(ctx, transfer))
	}

	total, err := streamerRepo.InboxTotal(ctx, streamerID)
	require.NoError(t, err)
	assert.EqualValues(t, 60, total)

	transfers, count, err := giftRepo.ListByStreamer(ctx, streamerID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Len(t, transfers, 3)
}
