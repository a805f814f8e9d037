package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/service"
	"github.com/fsdevblog/groph-rewards/internal/service/tokens"
	"github.com/fsdevblog/groph-rewards/internal/transport/api/middlewares"
	"github.com/fsdevblog/groph-rewards/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-rewards/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type RedemptionHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockRedemptionService *mocks.MockRedemptionServicer
	mockLedgerService     *mocks.MockLedgerServicer
	jwtSecret             []byte
	userToken             string
	partnerToken          string
}

const testUserID int64 = 1

func TestRedemptionHandlerSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RedemptionHandlerTestSuite))
}

func (s *RedemptionHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockRedemptionService = mocks.NewMockRedemptionServicer(mockCtrl)
	s.mockLedgerService = mocks.NewMockLedgerServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.router, err = New(RouterArgs{
		Logger:            l,
		RedemptionService: s.mockRedemptionService,
		LedgerService:     s.mockLedgerService,
		JWTSecretKey:      s.jwtSecret,
	})
	s.Require().NoError(err)

	s.userToken, err = tokens.GenerateUserJWT(testUserID, tokens.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	s.partnerToken, err = tokens.GenerateUserJWT(100, tokens.RolePartner, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
}

func (s *RedemptionHandlerTestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *RedemptionHandlerTestSuite) request(method, url, token string) *testutils.Response {
	var opts []func(*testutils.RequestOptions)
	if token != "" {
		opts = append(opts, testutils.WithBearer(token))
	}
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
	}, opts...)
	s.Require().NoError(err)
	return res
}

func (s *RedemptionHandlerTestSuite) errorKind(res *testutils.Response) string {
	var payload map[string]string
	s.Require().NoError(json.Unmarshal(res.Body, &payload))
	return payload["kind"]
}

func redeemURL(rewardID any) string {
	return fmt.Sprintf("%s/rewards/%v/redeem", RouteGroup, rewardID)
}

func (s *RedemptionHandlerTestSuite) TestRedeem() {
	s.Run("all ok", func() {
		expiresAt := time.Now().Add(15 * 24 * time.Hour).UTC().Truncate(time.Second)
		s.mockRedemptionService.EXPECT().
			Redeem(gomock.Any(), testUserID, int64(7)).
			Return(&service.RedeemResult{
				RedemptionID: 10,
				Code:         "ABCD1234",
				Status:       domain.RedemptionStatusPending,
				ExpiresAt:    expiresAt,
				NewBalance:   50,
			}, nil)

		res := s.request(http.MethodPost, redeemURL(7), s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)

		var body RedeemResponse
		s.Require().NoError(json.Unmarshal(res.Body, &body))
		s.Equal("ABCD1234", body.Code)
		s.Equal(domain.RedemptionStatusPending, body.Status)
		s.Equal(int64(50), body.NewBalance)
		s.True(expiresAt.Equal(body.ExpiresAt))
	})

	s.Run("not authorized", func() {
		res := s.request(http.MethodPost, redeemURL(7), "")
		s.Equal(http.StatusUnauthorized, res.StatusCode)
		s.Equal(middlewares.KindUnauthorized, s.errorKind(res))
	})

	s.Run("invalid token", func() {
		res := s.request(http.MethodPost, redeemURL(7), "not-a-token")
		s.Equal(http.StatusUnauthorized, res.StatusCode)
	})

	for _, id := range []string{"abc", "0", "-1"} {
		s.Run("invalid reward id "+id, func() {
			res := s.request(http.MethodPost, redeemURL(id), s.userToken)
			s.Equal(http.StatusBadRequest, res.StatusCode)
			s.Equal(middlewares.KindBadRequest, s.errorKind(res))
		})
	}

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not found", domain.ErrRecordNotFound, http.StatusNotFound, middlewares.KindNotFound},
		{"inactive", domain.ErrRewardInactive, http.StatusBadRequest, middlewares.KindInactive},
		{"expired", domain.ErrRewardExpired, http.StatusBadRequest, middlewares.KindExpired},
		{"out of stock", domain.ErrOutOfStock, http.StatusBadRequest, middlewares.KindOutOfStock},
		{
			"insufficient balance",
			domain.ErrNotEnoughBalance,
			http.StatusBadRequest,
			middlewares.KindInsufficientBalance,
		},
		{"limit reached", domain.ErrLimitReached, http.StatusForbidden, middlewares.KindLimitReached},
		{"conflict", domain.ErrConflict, http.StatusConflict, middlewares.KindConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, middlewares.KindInternal},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockRedemptionService.EXPECT().
				Redeem(gomock.Any(), testUserID, int64(7)).
				Return(nil, fmt.Errorf("redeem: %w", tc.err))

			res := s.request(http.MethodPost, redeemURL(7), s.userToken)
			s.Equal(tc.wantStatus, res.StatusCode)
			s.Equal(tc.wantKind, s.errorKind(res))
			s.Contains(res.Header.Get("Content-Type"), "application/json")
			if tc.wantStatus == http.StatusConflict {
				s.Equal("1", res.Header.Get("Retry-After"))
			}
			if tc.wantStatus == http.StatusInternalServerError {
				s.NotContains(string(res.Body), "boom")
			}
		})
	}
}

func (s *RedemptionHandlerTestSuite) TestCancel() {
	cancelURL := RouteGroup + "/user/redemptions/10/cancel"

	s.Run("all ok", func() {
		s.mockRedemptionService.EXPECT().
			Cancel(gomock.Any(), testUserID, int64(10)).
			Return(&service.CancelResult{RefundedAmount: 150, NewBalance: 200}, nil)

		res := s.request(http.MethodPost, cancelURL, s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)
		s.JSONEq(`{"refunded_amount":150}`, string(res.Body))
	})

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"deadline expired", domain.ErrDeadlineExpired, http.StatusForbidden, middlewares.KindDeadlineExpired},
		{"already cancelled", domain.ErrInvalidState, http.StatusBadRequest, middlewares.KindInvalidState},
		{"foreign redemption", domain.ErrRecordNotFound, http.StatusNotFound, middlewares.KindNotFound},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockRedemptionService.EXPECT().
				Cancel(gomock.Any(), testUserID, int64(10)).
				Return(nil, tc.err)

			res := s.request(http.MethodPost, cancelURL, s.userToken)
			s.Equal(tc.wantStatus, res.StatusCode)
			s.Equal(tc.wantKind, s.errorKind(res))
		})
	}
}

func (s *RedemptionHandlerTestSuite) TestIndex() {
	url := RouteGroup + RedemptionsRoute

	s.Run("list", func() {
		now := time.Now().UTC()
		s.mockRedemptionService.EXPECT().GetByUserID(gomock.Any(), testUserID).Return([]domain.Redemption{
			{ID: 2, RewardID: 7, Code: "ZZZZ0000", Status: domain.RedemptionStatusCancelled, RedeemedAt: now},
			{ID: 1, RewardID: 7, Code: "AAAA1111", Status: domain.RedemptionStatusPending, RedeemedAt: now},
		}, nil)

		res := s.request(http.MethodGet, url, s.userToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)

		var body []RedemptionResponse
		s.Require().NoError(json.Unmarshal(res.Body, &body))
		s.Require().Len(body, 2)
		s.Equal(int64(2), body[0].ID)
		s.Equal("AAAA1111", body[1].Code)
	})

	s.Run("empty", func() {
		s.mockRedemptionService.EXPECT().GetByUserID(gomock.Any(), testUserID).Return(nil, nil)

		res := s.request(http.MethodGet, url, s.userToken)
		s.Equal(http.StatusNoContent, res.StatusCode)
	})
}

func (s *RedemptionHandlerTestSuite) TestComplete() {
	completeURL := func(code string) string {
		return fmt.Sprintf("%s/partner/redemptions/%s/complete", RouteGroup, code)
	}

	s.Run("partner completes", func() {
		completedAt := time.Now().UTC()
		s.mockRedemptionService.EXPECT().
			Complete(gomock.Any(), "ABCD1234").
			Return(&domain.Redemption{
				ID:          10,
				Code:        "ABCD1234",
				Status:      domain.RedemptionStatusCompleted,
				CompletedAt: &completedAt,
			}, nil)

		res := s.request(http.MethodPost, completeURL("ABCD1234"), s.partnerToken)
		s.Require().Equal(http.StatusOK, res.StatusCode)

		var body RedemptionResponse
		s.Require().NoError(json.Unmarshal(res.Body, &body))
		s.Equal(domain.RedemptionStatusCompleted, body.Status)
		s.NotNil(body.CompletedAt)
	})

	s.Run("user role forbidden", func() {
		res := s.request(http.MethodPost, completeURL("ABCD1234"), s.userToken)
		s.Equal(http.StatusForbidden, res.StatusCode)
		s.Equal(middlewares.KindForbidden, s.errorKind(res))
	})

	for _, code := range []string{"abcd1234", "ABC", "ABCD12345", "ABCD-234"} {
		s.Run("invalid code "+code, func() {
			res := s.request(http.MethodPost, completeURL(code), s.partnerToken)
			s.Equal(http.StatusBadRequest, res.StatusCode)
		})
	}

	s.Run("redemption expired", func() {
		s.mockRedemptionService.EXPECT().
			Complete(gomock.Any(), "ABCD1234").
			Return(nil, domain.ErrRedemptionExpired)

		res := s.request(http.MethodPost, completeURL("ABCD1234"), s.partnerToken)
		s.Equal(http.StatusBadRequest, res.StatusCode)
		s.Equal(middlewares.KindRedemptionExpired, s.errorKind(res))
	})
}
