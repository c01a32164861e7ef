package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soranokaze/glimpanel/internal/service"
	"github.com/soranokaze/glimpanel/pkg/response"
)

type StreamerHandler struct {
	streamerService service.StreamerService
}

func NewStreamerHandler(streamerService service.StreamerService) *StreamerHandler {
	return &StreamerHandler{streamerService: streamerService}
}

func (h *StreamerHandler) GetTopStreamers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	entries, err := h.streamerService.GetTopByGifts(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *StreamerHandler) GetStreamerGifts(c *gin.Context) {
	streamerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid streamer id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := h.streamerService.GetGifts(c.Request.Context(), streamerID, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
