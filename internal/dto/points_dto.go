package dto

import "github.com/google/uuid"

type BalanceResponse struct {
	Point int `json:"point"`
}

type HistoryFilter struct {
	Type  string `form:"type"`
	From  string `form:"from"` // YYYY-MM-DD
	To    string `form:"to"`   // YYYY-MM-DD, exclusive
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

type HistoryEntryResponse struct {
	Amount      int    `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	AfterPoint  int    `json:"after_point"`
	CreatedAt   string `json:"created_at"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PaginatedHistoryResponse struct {
	Data []HistoryEntryResponse `json:"data"`
	Meta PaginationMeta         `json:"meta"`
}

type ClaimResponse struct {
	Amount              int  `json:"amount"`
	AfterBalance        int  `json:"after_balance"`
	AlreadyClaimedToday bool `json:"already_claimed_today"`
}

type GiftRequest struct {
	StreamerID     string `json:"streamer_id" binding:"required,uuid"`
	Amount         int    `json:"amount" binding:"required"`
	Note           string `json:"note" binding:"max=200"`
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,max=64"`
}

type GiftResponse struct {
	UserAfterBalance   int   `json:"user_after_balance"`
	StreamerAfterTotal int64 `json:"streamer_after_total"`
	AlreadyProcessed   bool  `json:"already_processed"`
}

type AdminCreditRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	Amount      int    `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=200"`
}

type AdminCreditResponse struct {
	AfterBalance int `json:"after_balance"`
}

type StreamerRankingEntry struct {
	StreamerID uuid.UUID `json:"streamer_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Platform   string    `json:"platform"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	Total      int64     `json:"total"`
	Position   int       `json:"position"` // 1-based position in leaderboard
}

type GiftListEntry struct {
	Amount    int    `json:"amount"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

type PaginatedGiftListResponse struct {
	Data []GiftListEntry `json:"data"`
	Meta PaginationMeta  `json:"meta"`
}
