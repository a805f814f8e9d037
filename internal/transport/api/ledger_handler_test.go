package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/service"
	"github.com/fsdevblog/groph-rewards/internal/transport/api/middlewares"
	"github.com/golang/mock/gomock"
)

func (s *RedemptionHandlerTestSuite) TestBalance() {
	s.Run("all ok", func() {
		s.mockLedgerService.EXPECT().GetBalance(gomock.Any(), testUserID).Return(int64(200), nil)

		res := s.request(http.MethodGet, RouteGroup+BalanceRoute, s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)
		s.JSONEq(`{"balance":200}`, string(res.Body))
	})

	s.Run("unknown user", func() {
		s.mockLedgerService.EXPECT().GetBalance(gomock.Any(), testUserID).Return(int64(0), domain.ErrRecordNotFound)

		res := s.request(http.MethodGet, RouteGroup+BalanceRoute, s.userToken)
		s.Equal(http.StatusNotFound, res.StatusCode)
		s.Equal(middlewares.KindNotFound, s.errorKind(res))
	})
}

func (s *RedemptionHandlerTestSuite) TestLedger() {
	s.Run("entries", func() {
		s.mockLedgerService.EXPECT().GetUserLedger(gomock.Any(), testUserID).Return([]domain.LedgerEntry{
			{
				ID:                1,
				CreatedAt:         time.Now(),
				UserID:            testUserID,
				Amount:            -150,
				PreviousBalance:   200,
				NewBalance:        50,
				TransactionType:   domain.TransactionTypeRedemptionDebit,
				RelatedEntityType: domain.RelatedEntityRedemption,
				RelatedEntityID:   10,
			},
			{
				ID:                2,
				CreatedAt:         time.Now(),
				UserID:            testUserID,
				Amount:            150,
				PreviousBalance:   50,
				NewBalance:        200,
				TransactionType:   domain.TransactionTypeRefundCredit,
				RelatedEntityType: domain.RelatedEntityRedemption,
				RelatedEntityID:   10,
			},
		}, nil)

		res := s.request(http.MethodGet, RouteGroup+LedgerRoute, s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)

		var body []LedgerEntryResponse
		s.Require().NoError(json.Unmarshal(res.Body, &body))
		s.Require().Len(body, 2)
		s.Equal(int64(-150), body[0].Amount)
		s.Equal(domain.TransactionTypeRefundCredit, body[1].TransactionType)
		s.Equal("redemption", body[1].RelatedEntityType)
	})

	s.Run("empty", func() {
		s.mockLedgerService.EXPECT().GetUserLedger(gomock.Any(), testUserID).Return([]domain.LedgerEntry{}, nil)

		res := s.request(http.MethodGet, RouteGroup+LedgerRoute, s.userToken)
		s.Equal(http.StatusNoContent, res.StatusCode)
	})
}

func (s *RedemptionHandlerTestSuite) TestReconcile() {
	s.Run("consistent", func() {
		s.mockLedgerService.EXPECT().Reconcile(gomock.Any(), testUserID).Return(&service.Reconciliation{
			InitialBalance:  200,
			TotalDebits:     150,
			TotalCredits:    150,
			ReplayedBalance: 200,
			CurrentBalance:  200,
			Consistent:      true,
		}, nil)

		res := s.request(http.MethodGet, RouteGroup+ReconcileRoute, s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)
		s.JSONEq(`{
			"initial_balance": 200,
			"total_debits": 150,
			"total_credits": 150,
			"replayed_balance": 200,
			"current_balance": 200,
			"consistent": true,
			"broken_entry_ids": []
		}`, string(res.Body))
	})

	s.Run("broken", func() {
		s.mockLedgerService.EXPECT().Reconcile(gomock.Any(), testUserID).Return(&service.Reconciliation{
			CurrentBalance: 10,
			Consistent:     false,
			BrokenEntryIDs: []int64{3},
		}, nil)

		res := s.request(http.MethodGet, RouteGroup+ReconcileRoute, s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)

		var body ReconcileResponse
		s.Require().NoError(json.Unmarshal(res.Body, &body))
		s.False(body.Consistent)
		s.Equal([]int64{3}, body.BrokenEntryIDs)
	})
}
