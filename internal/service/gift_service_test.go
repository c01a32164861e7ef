package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type giftFixture struct {
	svc          GiftService
	pointsRepo   repository.PointsRepository
	streamerRepo repository.StreamerRepository
	giftRepo     repository.GiftRepository
}

func newGiftFixture(t *testing.T, db *gorm.DB) *giftFixture {
	t.Helper()

	pointsRepo := repository.NewPointsRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	streamerRepo := repository.NewStreamerRepository(db)

	return &giftFixture{
		svc:          NewGiftService(giftRepo, pointsRepo, streamerRepo),
		pointsRepo:   pointsRepo,
		streamerRepo: streamerRepo,
		giftRepo:     giftRepo,
	}
}

func (f *giftFixture) seedStreamer(t *testing.T) uuid.UUID {
	t.Helper()
	streamer := &model.Streamer{Name: "Test Streamer", Slug: "streamer-" + uuid.NewString()[:8]}
	require.NoError(t, f.streamerRepo.Create(context.Background(), streamer))
	return streamer.ID
}

func TestGiftRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)
	ctx := context.Background()

	for _, amount := range []int{0, -10} {
		_, err := f.svc.Gift(ctx, uuid.New(), uuid.New(), amount, "", "")
		require.ErrorIs(t, err, apperror.ErrInvalidAmount)
	}

	// Rejected before any storage write.
	var count int64
	require.NoError(t, db.Model(&model.GiftTransfer{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestGiftUnknownStreamer(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)

	_, err := f.svc.Gift(context.Background(), uuid.New(), uuid.New(), 10, "", "")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGiftHappyPath(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := f.seedStreamer(t)

	_, err := f.pointsRepo.Credit(ctx, senderID, 100, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	res, err := f.svc.Gift(ctx, senderID, streamerID, 10, "great content", "")
	require.NoError(t, err)

	assert.Equal(t, 90, res.UserAfterBalance)
	assert.EqualValues(t, 10, res.StreamerAfterTotal)
	assert.False(t, res.AlreadyProcessed)

	var entry model.PointHistory
	require.NoError(t, db.Where("user_id = ? AND type = ?", senderID, model.TypeGiftSent).First(&entry).Error)
	assert.Equal(t, -10, entry.Amount)
	assert.Equal(t, 90, entry.AfterPoint)
}

func TestGiftInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := f.seedStreamer(t)

	_, err := f.pointsRepo.Credit(ctx, senderID, 5, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	_, err = f.svc.Gift(ctx, senderID, streamerID, 10, "", "")
	require.ErrorIs(t, err, apperror.ErrInsufficientPoints)

	point, err := f.pointsRepo.GetBalance(ctx, senderID)
	require.NoError(t, err)
	assert.Equal(t, 5, point)

	total, err := f.streamerRepo.InboxTotal(ctx, streamerID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestGiftIdempotentReplay(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := f.seedStreamer(t)

	_, err := f.pointsRepo.Credit(ctx, senderID, 100, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	first, err := f.svc.Gift(ctx, senderID, streamerID, 10, "", "retry-key-1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	replay, err := f.svc.Gift(ctx, senderID, streamerID, 10, "", "retry-key-1")
	require.NoError(t, err)

	assert.True(t, replay.AlreadyProcessed)
	assert.Equal(t, first.UserAfterBalance, replay.UserAfterBalance)
	assert.Equal(t, first.StreamerAfterTotal, replay.StreamerAfterTotal)

	// Debited exactly once.
	point, err := f.pointsRepo.GetBalance(ctx, senderID)
	require.NoError(t, err)
	assert.Equal(t, 90, point)
}

func TestGiftReplayRejectsMismatchedParameters(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := f.seedStreamer(t)
	otherStreamerID := f.seedStreamer(t)

	_, err := f.pointsRepo.Credit(ctx, senderID, 100, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	_, err = f.svc.Gift(ctx, senderID, streamerID, 10, "", "retry-key-2")
	require.NoError(t, err)

	// Same key, different amount.
	_, err = f.svc.Gift(ctx, senderID, streamerID, 25, "", "retry-key-2")
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	// Same key, different streamer.
	_, err = f.svc.Gift(ctx, senderID, otherStreamerID, 10, "", "retry-key-2")
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	// Only the original transfer was applied.
	point, err := f.pointsRepo.GetBalance(ctx, senderID)
	require.NoError(t, err)
	assert.Equal(t, 90, point)

	total, err := f.streamerRepo.InboxTotal(ctx, otherStreamerID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestGiftNoteIsSanitized(t *testing.T) {
	db := setupTestDB(t)
	f := newGiftFixture(t, db)
	ctx := context.Background()

	senderID := uuid.New()
	streamerID := f.seedStreamer(t)

	_, err := f.pointsRepo.Credit(ctx, senderID, 100, model.TypeAdminGrant, "seed")
	require.NoError(t, err)

	_, err = f.svc.Gift(ctx, senderID, streamerID, 10, "<b>love</b> the stream", "")
	require.NoError(t, err)

	var transfer model.GiftTransfer
	require.NoError(t, db.Where("sender_id = ?", senderID).First(&transfer).Error)
	assert.Equal(t, "love the stream", transfer.Note)
}
