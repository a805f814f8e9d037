package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

type RedemptionHandler struct {
	svs     RedemptionServicer
	timeout time.Duration
}

func NewRedemptionHandler(svs RedemptionServicer, timeout time.Duration) *RedemptionHandler {
	return &RedemptionHandler{
		svs:     svs,
		timeout: timeout,
	}
}

type RedeemResponse struct {
	Code       string                      `json:"code"`
	Status     domain.RedemptionStatusType `json:"status"`
	ExpiresAt  time.Time                   `json:"expires_at"`
	NewBalance int64                       `json:"new_balance"`
}

// Redeem POST RouteGroup + RedeemRoute.
func (r *RedemptionHandler) Redeem(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params IDParams
	if bindErr := c.ShouldBindUri(&params); bindErr != nil {
		middlewares.AbortWithError(c, http.StatusBadRequest, bindErr, gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, r.timeout)
	defer cancel()

	res, err := r.svs.Redeem(reqCtx, currentUserID, params.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, &RedeemResponse{
		Code:       res.Code,
		Status:     res.Status,
		ExpiresAt:  res.ExpiresAt,
		NewBalance: res.NewBalance,
	})
}

type CancelResponse struct {
	RefundedAmount int64 `json:"refunded_amount"`
}

// Cancel POST RouteGroup + CancelRoute.
func (r *RedemptionHandler) Cancel(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params IDParams
	if bindErr := c.ShouldBindUri(&params); bindErr != nil {
		middlewares.AbortWithError(c, http.StatusBadRequest, bindErr, gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, r.timeout)
	defer cancel()

	res, err := r.svs.Cancel(reqCtx, currentUserID, params.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, &CancelResponse{RefundedAmount: res.RefundedAmount})
}

type RedemptionResponse struct {
	ID          int64                       `json:"id"`
	RewardID    int64                       `json:"reward_id"`
	AmountSpent int64                       `json:"amount_spent"`
	Code        string                      `json:"code"`
	Status      domain.RedemptionStatusType `json:"status"`
	RedeemedAt  time.Time                   `json:"redeemed_at"`
	ExpiresAt   time.Time                   `json:"expires_at"`
	CancelledAt *time.Time                  `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time                  `json:"completed_at,omitempty"`
}

func newRedemptionResponse(r domain.Redemption) RedemptionResponse {
	return RedemptionResponse{
		ID:          r.ID,
		RewardID:    r.RewardID,
		AmountSpent: r.AmountSpent,
		Code:        r.Code,
		Status:      r.Status,
		RedeemedAt:  r.RedeemedAt,
		ExpiresAt:   r.ExpiresAt,
		CancelledAt: r.CancelledAt,
		CompletedAt: r.CompletedAt,
	}
}

// Index GET RouteGroup + RedemptionsRoute.
func (r *RedemptionHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, r.timeout)
	defer cancel()

	redemptions, err := r.svs.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if len(redemptions) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]RedemptionResponse, len(redemptions))
	for i, redemption := range redemptions {
		response[i] = newRedemptionResponse(redemption)
	}
	c.JSON(http.StatusOK, response)
}

// Complete POST RouteGroup + CompleteRoute. Только для партнеров.
func (r *RedemptionHandler) Complete(c *gin.Context) {
	var params CodeParams
	if bindErr := c.ShouldBindUri(&params); bindErr != nil {
		middlewares.AbortWithError(c, http.StatusBadRequest, bindErr, gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, r.timeout)
	defer cancel()

	redemption, err := r.svs.Complete(reqCtx, params.Code)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRedemptionResponse(*redemption))
}
