package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
)

// CreditServiceInterface defines quota and ledger operations
type CreditServiceInterface interface {
	Summary(ctx context.Context, userID string, callerLoc *time.Location) (*services.CreditSummary, error)
	AdjustBankedCredits(ctx context.Context, actorID, userID string, delta int, note string) (*models.CreditTransaction, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

// CreditHandler handles credit requests
type CreditHandler struct {
	service CreditServiceInterface
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(service CreditServiceInterface) *CreditHandler {
	return &CreditHandler{service: service}
}

// AdjustCreditsRequest represents the request body for an admin balance adjustment
type AdjustCreditsRequest struct {
	Delta int    `json:"delta" validate:"ne=0,gte=-10000,lte=10000"`
	Note  string `json:"note" validate:"max=500"`
}

// CreditSummaryResponse is the caller's daily allowance and banked balance
type CreditSummaryResponse struct {
	Limit          int    `json:"limit"`
	Used           int    `json:"used"`
	Remaining      int    `json:"remaining"`
	WindowStart    string `json:"windowStart"`
	ResetAt        string `json:"resetAt"`
	ResetInSeconds int64  `json:"resetInSeconds"`
	Timezone       string `json:"timezone"`
	BankedCredits  int    `json:"bankedCredits"`
}

// CreditTransactionResponse is one ledger entry
type CreditTransactionResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	Delta        int     `json:"delta"`
	BalanceAfter int     `json:"balanceAfter"`
	Reason       string  `json:"reason"`
	ActorID      *string `json:"actorId,omitempty"`
	Note         *string `json:"note,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// ListTransactionsResponse represents a page of ledger entries
type ListTransactionsResponse struct {
	Transactions []*CreditTransactionResponse `json:"transactions"`
	Total        int                          `json:"total"`
}

func transactionModelToResponse(txn *models.CreditTransaction) *CreditTransactionResponse {
	return &CreditTransactionResponse{
		ID:           txn.ID,
		UserID:       txn.UserID,
		Delta:        txn.Delta,
		BalanceAfter: txn.BalanceAfter,
		Reason:       txn.Reason,
		ActorID:      txn.ActorID,
		Note:         txn.Note,
		CreatedAt:    formatTime(txn.CreatedAt),
	}
}

// Summary handles GET /api/credits
// @Summary Daily allowance and banked credits
// @Tags credits
// @Produce json
// @Param X-Timezone header string false "Caller IANA timezone, used when the profile has none"
// @Success 200 {object} CreditSummaryResponse
// @Router /api/credits [get]
func (h *CreditHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), claims.UserID, pkghttp.CallerLocation(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	q := summary.Quota
	timezone := ""
	if q.Location != nil {
		timezone = q.Location.String()
	}

	writeJSON(w, http.StatusOK, &CreditSummaryResponse{
		Limit:          q.Limit,
		Used:           q.Used,
		Remaining:      q.Remaining,
		WindowStart:    q.WindowStart.Format(time.RFC3339),
		ResetAt:        q.ResetAt.Format(time.RFC3339),
		ResetInSeconds: int64(q.ResetIn / time.Second),
		Timezone:       timezone,
		BankedCredits:  summary.BankedCredits,
	})
}

// Adjust handles POST /api/admin/users/{id}/credits
// @Summary Adjust a user's banked credits
// @Description The balance may not go below zero
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} CreditTransactionResponse
// @Failure 422 {object} pkghttp.ErrorResponse
// @Router /api/admin/users/{id}/credits [post]
func (h *CreditHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req AdjustCreditsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.service.AdjustBankedCredits(r.Context(), claims.UserID, id, req.Delta, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Credits, views.Users, views.Notifications)
	writeJSON(w, http.StatusOK, transactionModelToResponse(txn))
}

// Transactions handles GET /api/admin/users/{id}/credits
// @Summary A user's credit ledger
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} ListTransactionsResponse
// @Router /api/admin/users/{id}/credits [get]
func (h *CreditHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	txns, err := h.service.ListTransactions(r.Context(), id, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListTransactionsResponse{Transactions: make([]*CreditTransactionResponse, 0, len(txns))}
	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, transactionModelToResponse(txn))
	}
	resp.Total = len(resp.Transactions)

	writeJSON(w, http.StatusOK, resp)
}
