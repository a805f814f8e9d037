package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

// BalanceChange описывает одно изменение баланса. Amount всегда положительный, направление задает
// метод BalanceManager.
type BalanceChange struct {
	UserID            int64
	Amount            int64
	TransactionType   domain.TransactionType
	RelatedEntityType domain.RelatedEntityType
	RelatedEntityID   int64
}

// BalanceManager единственный, кто меняет users.balance. Каждое изменение сопровождается записью в журнал.
// Работает только внутри транзакции вызывающего.
type BalanceManager struct{}

func NewBalanceManager() *BalanceManager {
	return new(BalanceManager)
}

// Lock блокирует строку пользователя до конца транзакции.
func (b *BalanceManager) Lock(ctx context.Context, tx uow.TX, userID int64) (*domain.User, error) {
	repo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	user, err := repo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user balance: %w", err)
	}
	return user, nil
}

// Debit списывает change.Amount. Возвращает domain.ErrNotEnoughBalance если средств не хватает.
func (b *BalanceManager) Debit(ctx context.Context, tx uow.TX, change BalanceChange) (int64, error) {
	if change.Amount <= 0 {
		return 0, fmt.Errorf("debit: %w", domain.ErrInvalidAmount)
	}
	if change.TransactionType == "" {
		change.TransactionType = domain.TransactionTypeRedemptionDebit
	}
	return b.apply(ctx, tx, change, -change.Amount)
}

// Credit зачисляет change.Amount.
func (b *BalanceManager) Credit(ctx context.Context, tx uow.TX, change BalanceChange) (int64, error) {
	if change.Amount <= 0 {
		return 0, fmt.Errorf("credit: %w", domain.ErrInvalidAmount)
	}
	if change.TransactionType == "" {
		change.TransactionType = domain.TransactionTypeRefundCredit
	}
	return b.apply(ctx, tx, change, change.Amount)
}

func (b *BalanceManager) apply(ctx context.Context, tx uow.TX, change BalanceChange, delta int64) (int64, error) {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return 0, userRepoErr //nolint:wrapcheck
	}
	ledgerRepo, ledgerRepoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerEntryRepoName))
	if ledgerRepoErr != nil {
		return 0, ledgerRepoErr //nolint:wrapcheck
	}

	// баланс всегда читается под блокировкой, повторный FOR UPDATE в той же транзакции не ждет.
	user, err := userRepo.GetForUpdate(ctx, change.UserID)
	if err != nil {
		return 0, fmt.Errorf("lock user balance: %w", err)
	}

	newBalance := user.Balance + delta
	if newBalance < 0 {
		if delta < 0 {
			return 0, fmt.Errorf("user %d has %d, needs %d: %w",
				user.ID, user.Balance, -delta, domain.ErrNotEnoughBalance)
		}
		newBalance = 0
	}

	if updErr := userRepo.UpdateBalance(ctx, user.ID, newBalance); updErr != nil {
		return 0, fmt.Errorf("update user balance: %w", updErr)
	}

	if _, entryErr := ledgerRepo.Create(ctx, repoargs.CreateLedgerEntry{
		UserID:            user.ID,
		Amount:            newBalance - user.Balance,
		PreviousBalance:   user.Balance,
		NewBalance:        newBalance,
		TransactionType:   change.TransactionType,
		RelatedEntityType: change.RelatedEntityType,
		RelatedEntityID:   change.RelatedEntityID,
	}); entryErr != nil {
		return 0, fmt.Errorf("append ledger entry: %w", entryErr)
	}

	return newBalance, nil
}
