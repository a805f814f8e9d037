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

type ManagersTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockTX         *uowmocks.MockTX
	mockUserRepo   *mocks.MockUserRepository
	mockRewardRepo *mocks.MockRewardRepository
	mockLedgerRepo *mocks.MockLedgerRepository
	balance        *BalanceManager
	inventory      *InventoryManager
}

func TestManagersSuite(t *testing.T) {
	suite.Run(t, new(ManagersTestSuite))
}

func (s *ManagersTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockRewardRepo = mocks.NewMockRewardRepository(s.mockCtrl)
	s.mockLedgerRepo = mocks.NewMockLedgerRepository(s.mockCtrl)
	s.balance = NewBalanceManager()
	s.inventory = NewInventoryManager()

	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.RewardRepoName)).Return(s.mockRewardRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.LedgerEntryRepoName)).
		Return(s.mockLedgerRepo, nil).AnyTimes()
}

func (s *ManagersTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *ManagersTestSuite) TestDebit() {
	s.mockUserRepo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(&domain.User{ID: 1, Balance: 100}, nil)
	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), int64(1), int64(0)).Return(nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), repoargs.CreateLedgerEntry{
		UserID:            1,
		Amount:            -100,
		PreviousBalance:   100,
		NewBalance:        0,
		TransactionType:   domain.TransactionTypeRedemptionDebit,
		RelatedEntityType: domain.RelatedEntityRedemption,
		RelatedEntityID:   5,
	}).Return(&domain.LedgerEntry{ID: 1}, nil)

	balance, err := s.balance.Debit(s.T().Context(), s.mockTX, BalanceChange{
		UserID:            1,
		Amount:            100,
		RelatedEntityType: domain.RelatedEntityRedemption,
		RelatedEntityID:   5,
	})
	s.Require().NoError(err)
	s.Equal(int64(0), balance)
}

func (s *ManagersTestSuite) TestDebit_NotEnoughBalance() {
	s.mockUserRepo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(&domain.User{ID: 1, Balance: 99}, nil)
	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.balance.Debit(s.T().Context(), s.mockTX, BalanceChange{UserID: 1, Amount: 100})
	s.Require().ErrorIs(err, domain.ErrNotEnoughBalance)
}

func (s *ManagersTestSuite) TestCredit() {
	s.mockUserRepo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(&domain.User{ID: 1, Balance: 50}, nil)
	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), int64(1), int64(200)).Return(nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, args repoargs.CreateLedgerEntry) (*domain.LedgerEntry, error) {
			s.Equal(int64(150), args.Amount)
			s.Equal(domain.TransactionTypeRefundCredit, args.TransactionType)
			return &domain.LedgerEntry{ID: 2}, nil
		})

	balance, err := s.balance.Credit(s.T().Context(), s.mockTX, BalanceChange{UserID: 1, Amount: 150})
	s.Require().NoError(err)
	s.Equal(int64(200), balance)
}

func (s *ManagersTestSuite) TestInvalidAmounts() {
	_, err := s.balance.Debit(s.T().Context(), s.mockTX, BalanceChange{UserID: 1, Amount: 0})
	s.ErrorIs(err, domain.ErrInvalidAmount)

	_, err = s.balance.Credit(s.T().Context(), s.mockTX, BalanceChange{UserID: 1, Amount: -5})
	s.ErrorIs(err, domain.ErrInvalidAmount)

	_, err = s.inventory.DecrementStock(s.T().Context(), s.mockTX, 10, 0)
	s.ErrorIs(err, domain.ErrInvalidAmount)

	_, err = s.inventory.IncrementStock(s.T().Context(), s.mockTX, 10, -1)
	s.ErrorIs(err, domain.ErrInvalidAmount)
}

func (s *ManagersTestSuite) TestDecrementStock() {
	s.mockRewardRepo.EXPECT().GetForUpdate(gomock.Any(), int64(10)).Return(&domain.Reward{ID: 10, Stock: 2}, nil)
	s.mockRewardRepo.EXPECT().UpdateStock(gomock.Any(), int64(10), int64(1)).Return(nil)

	reward, err := s.inventory.DecrementStock(s.T().Context(), s.mockTX, 10, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), reward.Stock)
}

func (s *ManagersTestSuite) TestDecrementStock_OutOfStock() {
	s.mockRewardRepo.EXPECT().GetForUpdate(gomock.Any(), int64(10)).Return(&domain.Reward{ID: 10, Stock: 1}, nil)
	s.mockRewardRepo.EXPECT().UpdateStock(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.inventory.DecrementStock(s.T().Context(), s.mockTX, 10, 2)
	s.Require().ErrorIs(err, domain.ErrOutOfStock)
}

func (s *ManagersTestSuite) TestIncrementStock() {
	s.mockRewardRepo.EXPECT().GetForUpdate(gomock.Any(), int64(10)).Return(&domain.Reward{ID: 10, Stock: 0}, nil)
	s.mockRewardRepo.EXPECT().UpdateStock(gomock.Any(), int64(10), int64(3)).Return(nil)

	reward, err := s.inventory.IncrementStock(s.T().Context(), s.mockTX, 10, 3)
	s.Require().NoError(err)
	s.Equal(int64(3), reward.Stock)
}

func (s *ManagersTestSuite) TestLock_NotFound() {
	s.mockUserRepo.EXPECT().GetForUpdate(gomock.Any(), int64(404)).Return(nil, domain.ErrRecordNotFound)
	_, err := s.balance.Lock(s.T().Context(), s.mockTX, 404)
	s.ErrorIs(err, domain.ErrRecordNotFound)

	s.mockRewardRepo.EXPECT().GetForUpdate(gomock.Any(), int64(404)).Return(nil, domain.ErrRecordNotFound)
	_, err = s.inventory.Lock(s.T().Context(), s.mockTX, 404)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}
