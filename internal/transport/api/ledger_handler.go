package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	svs     LedgerServicer
	timeout time.Duration
}

func NewLedgerHandler(svs LedgerServicer, timeout time.Duration) *LedgerHandler {
	return &LedgerHandler{
		svs:     svs,
		timeout: timeout,
	}
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// Balance GET RouteGroup + BalanceRoute.
func (l *LedgerHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, l.timeout)
	defer cancel()

	balance, err := l.svs.GetBalance(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{Balance: balance})
}

type LedgerEntryResponse struct {
	ID                int64                  `json:"id"`
	Amount            int64                  `json:"amount"`
	PreviousBalance   int64                  `json:"previous_balance"`
	NewBalance        int64                  `json:"new_balance"`
	TransactionType   domain.TransactionType `json:"transaction_type"`
	RelatedEntityType string                 `json:"related_entity_type"`
	RelatedEntityID   int64                  `json:"related_entity_id"`
	CreatedAt         string                 `json:"created_at"`
}

// Ledger GET RouteGroup + LedgerRoute.
func (l *LedgerHandler) Ledger(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, l.timeout)
	defer cancel()

	entries, err := l.svs.GetUserLedger(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if len(entries) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]LedgerEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = LedgerEntryResponse{
			ID:                entry.ID,
			Amount:            entry.Amount,
			PreviousBalance:   entry.PreviousBalance,
			NewBalance:        entry.NewBalance,
			TransactionType:   entry.TransactionType,
			RelatedEntityType: string(entry.RelatedEntityType),
			RelatedEntityID:   entry.RelatedEntityID,
			CreatedAt:         entry.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, response)
}

type ReconcileResponse struct {
	InitialBalance  int64   `json:"initial_balance"`
	TotalDebits     int64   `json:"total_debits"`
	TotalCredits    int64   `json:"total_credits"`
	ReplayedBalance int64   `json:"replayed_balance"`
	CurrentBalance  int64   `json:"current_balance"`
	Consistent      bool    `json:"consistent"`
	BrokenEntryIDs  []int64 `json:"broken_entry_ids"`
}

// Reconcile GET RouteGroup + ReconcileRoute.
func (l *LedgerHandler) Reconcile(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, l.timeout)
	defer cancel()

	rec, err := l.svs.Reconcile(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	broken := rec.BrokenEntryIDs
	if broken == nil {
		broken = []int64{}
	}
	c.JSON(http.StatusOK, &ReconcileResponse{
		InitialBalance:  rec.InitialBalance,
		TotalDebits:     rec.TotalDebits,
		TotalCredits:    rec.TotalCredits,
		ReplayedBalance: rec.ReplayedBalance,
		CurrentBalance:  rec.CurrentBalance,
		Consistent:      rec.Consistent,
		BrokenEntryIDs:  broken,
	})
}
