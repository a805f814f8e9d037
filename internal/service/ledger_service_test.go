package service

import (
	"testing"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/internal/service/mocks"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-rewards/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockUserRepo   *mocks.MockUserRepository
	mockLedgerRepo *mocks.MockLedgerRepository
	service        *LedgerService
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockLedgerRepo = mocks.NewMockLedgerRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).Return(s.mockUserRepo, nil)
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.LedgerEntryRepoName)).
		Return(s.mockLedgerRepo, nil)

	var err error
	s.service, err = NewLedgerService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *LedgerServiceTestSuite) TestGetBalance() {
	s.mockUserRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&domain.User{ID: 1, Balance: 75}, nil)

	balance, err := s.service.GetBalance(s.T().Context(), 1)
	s.Require().NoError(err)
	s.Equal(int64(75), balance)
}

func (s *LedgerServiceTestSuite) TestReconcile() {
	s.mockUserRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&domain.User{ID: 1, Balance: 200}, nil)
	s.mockLedgerRepo.EXPECT().GetByUserID(gomock.Any(), int64(1)).Return([]domain.LedgerEntry{
		{ID: 1, Amount: -150, PreviousBalance: 200, NewBalance: 50},
		{ID: 2, Amount: 150, PreviousBalance: 50, NewBalance: 200},
	}, nil)

	res, err := s.service.Reconcile(s.T().Context(), 1)
	s.Require().NoError(err)
	s.True(res.Consistent)
	s.Equal(int64(200), res.InitialBalance)
	s.Equal(int64(150), res.TotalDebits)
	s.Equal(int64(150), res.TotalCredits)
	s.Equal(int64(200), res.ReplayedBalance)
	s.Empty(res.BrokenEntryIDs)
}

func (s *LedgerServiceTestSuite) TestReconcile_UserNotFound() {
	s.mockUserRepo.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.Reconcile(s.T().Context(), 9)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *LedgerServiceTestSuite) TestReplayLedger() {
	cases := []struct {
		name       string
		entries    []domain.LedgerEntry
		current    int64
		consistent bool
		replayed   int64
		broken     []int64
	}{
		{
			name:       "empty ledger",
			current:    300,
			consistent: true,
			replayed:   300,
			broken:     []int64{},
		},
		{
			name: "chain with drift in current balance",
			entries: []domain.LedgerEntry{
				{ID: 1, Amount: -100, PreviousBalance: 300, NewBalance: 200},
			},
			current:    250,
			consistent: false,
			replayed:   200,
			broken:     []int64{},
		},
		{
			name: "broken link",
			entries: []domain.LedgerEntry{
				{ID: 1, Amount: -100, PreviousBalance: 300, NewBalance: 200},
				{ID: 2, Amount: -50, PreviousBalance: 210, NewBalance: 160},
				{ID: 3, Amount: 40, PreviousBalance: 160, NewBalance: 200},
			},
			current:    200,
			consistent: false,
			replayed:   190,
			broken:     []int64{2},
		},
		{
			name: "wrong arithmetic",
			entries: []domain.LedgerEntry{
				{ID: 1, Amount: -100, PreviousBalance: 300, NewBalance: 210},
			},
			current:    210,
			consistent: false,
			replayed:   200,
			broken:     []int64{1},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			res := ReplayLedger(tc.entries, tc.current)
			s.Equal(tc.consistent, res.Consistent)
			s.Equal(tc.replayed, res.ReplayedBalance)
			s.Equal(tc.broken, res.BrokenEntryIDs)
			s.Equal(tc.current, res.CurrentBalance)
		})
	}
}
