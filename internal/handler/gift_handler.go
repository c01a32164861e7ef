package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/dto"
	"github.com/soranokaze/glimpanel/internal/service"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"github.com/soranokaze/glimpanel/pkg/response"
)

type GiftHandler struct {
	giftService service.GiftService
	guard       *service.SubmissionGuard
}

func NewGiftHandler(giftService service.GiftService, guard *service.SubmissionGuard) *GiftHandler {
	return &GiftHandler{
		giftService: giftService,
		guard:       guard,
	}
}

func (h *GiftHandler) SendGift(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.GiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	streamerID, err := uuid.Parse(req.StreamerID)
	if err != nil {
		response.ResponseError(c, apperror.ErrInvalidInput)
		return
	}

	// Advisory only: suppresses accidental double submissions (two tabs,
	// double click) before they hit the ledger.
	token, ok := h.guard.Acquire(c.Request.Context(), userID)
	if !ok {
		response.ResponseError(c, apperror.ErrSubmissionInFlight)
		return
	}
	defer h.guard.Release(c.Request.Context(), userID, token)

	res, err := h.giftService.Gift(c.Request.Context(), userID, streamerID, req.Amount, req.Note, req.IdempotencyKey)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
