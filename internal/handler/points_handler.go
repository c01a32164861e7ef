package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/dto"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/service"
	"github.com/soranokaze/glimpanel/pkg/apperror"
	"github.com/soranokaze/glimpanel/pkg/response"
)

type PointsHandler struct {
	pointsService service.PointsService
	claimService  service.DailyClaimService
	cooldown      *service.Cooldown
}

func NewPointsHandler(pointsService service.PointsService, claimService service.DailyClaimService, cooldown *service.Cooldown) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
		claimService:  claimService,
		cooldown:      cooldown,
	}
}

func (h *PointsHandler) GetBalance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	point, err := h.pointsService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Point: point})
}

func (h *PointsHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	res, err := h.pointsService.GetHistory(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PointsHandler) Claim(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	allowed, err := h.cooldown.Allow(c.Request.Context(), userID, service.ActionDailyClaim)
	if err == nil && !allowed {
		ttl, _ := h.cooldown.Remaining(c.Request.Context(), userID, service.ActionDailyClaim)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("please wait %s before claiming again", ttl.Round(time.Second)),
		})
		return
	}

	res, err := h.claimService.Claim(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PointsHandler) AdminCredit(c *gin.Context) {
	var req dto.AdminCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.ResponseError(c, apperror.ErrInvalidInput)
		return
	}

	description := req.Description
	if description == "" {
		description = "Granted by admin"
	}

	after, err := h.pointsService.CreditPoints(c.Request.Context(), userID, req.Amount, model.TypeAdminGrant, description)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AdminCreditResponse{AfterBalance: after})
}
