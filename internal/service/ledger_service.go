package service

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

// Reconciliation результат сверки баланса пользователя с его журналом.
type Reconciliation struct {
	InitialBalance  int64
	TotalDebits     int64
	TotalCredits    int64
	ReplayedBalance int64
	CurrentBalance  int64
	Consistent      bool
	// BrokenEntryIDs записи, чей previous_balance не совпал с new_balance предыдущей записи
	// или new_balance не равен previous_balance + amount.
	BrokenEntryIDs []int64
}

type LedgerService struct {
	userRepo   UserRepository
	ledgerRepo LedgerRepository
}

func NewLedgerService(u uow.UOW) (*LedgerService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}
	ledgerRepo, ledgerRepoErr := uow.GetRepositoryAs[LedgerRepository](
		u,
		uow.RepositoryName(repoargs.LedgerEntryRepoName),
	)
	if ledgerRepoErr != nil {
		return nil, ledgerRepoErr //nolint:wrapcheck
	}
	return &LedgerService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
	}, nil
}

func (l *LedgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return user.Balance, nil
}

// GetUserLedger возвращает журнал пользователя в порядке вставки.
func (l *LedgerService) GetUserLedger(ctx context.Context, userID int64) ([]domain.LedgerEntry, error) {
	entries, err := l.ledgerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return entries, nil
}

// Reconcile проигрывает журнал пользователя и сравнивает результат с текущим балансом.
func (l *LedgerService) Reconcile(ctx context.Context, userID int64) (*Reconciliation, error) {
	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	entries, err := l.ledgerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	res := ReplayLedger(entries, user.Balance)
	return &res, nil
}

// ReplayLedger восстанавливает баланс по записям журнала, entries должны идти в порядке вставки.
// Без записей начальный баланс равен текущему.
func ReplayLedger(entries []domain.LedgerEntry, currentBalance int64) Reconciliation {
	res := Reconciliation{
		InitialBalance: currentBalance,
		CurrentBalance: currentBalance,
		BrokenEntryIDs: make([]int64, 0),
	}
	if len(entries) == 0 {
		res.ReplayedBalance = currentBalance
		res.Consistent = true
		return res
	}

	res.InitialBalance = entries[0].PreviousBalance
	replayed := res.InitialBalance
	expectedPrevious := res.InitialBalance

	for _, entry := range entries {
		if entry.PreviousBalance != expectedPrevious || entry.PreviousBalance+entry.Amount != entry.NewBalance {
			res.BrokenEntryIDs = append(res.BrokenEntryIDs, entry.ID)
		}
		if entry.Amount < 0 {
			res.TotalDebits += -entry.Amount
		} else {
			res.TotalCredits += entry.Amount
		}
		replayed += entry.Amount
		// после разрыва сверяем следующую запись с фактическим new_balance, чтобы не пометить весь хвост.
		expectedPrevious = entry.NewBalance
	}

	res.ReplayedBalance = replayed
	res.Consistent = len(res.BrokenEntryIDs) == 0 && replayed == currentBalance
	return res
}
