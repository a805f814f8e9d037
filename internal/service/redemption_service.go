package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
	"github.com/sirupsen/logrus"
)

const (
	// CancellationWindow время после погашения, в течение которого пользователь может его отменить.
	CancellationWindow = time.Hour

	maxCodeAttempts      = 5
	defaultNotifyTimeout = 5 * time.Second
)

type RedeemResult struct {
	RedemptionID int64
	Code         string
	Status       domain.RedemptionStatusType
	ExpiresAt    time.Time
	NewBalance   int64
}

type CancelResult struct {
	RefundedAmount int64
	NewBalance     int64
}

type RedemptionService struct {
	uow            uow.UOW
	redemptionRepo RedemptionRepository
	balance        *BalanceManager
	inventory      *InventoryManager
	notifier       Notifier
	generateCode   CodeGenerator
	now            func() time.Time
	notifyTimeout  time.Duration
	notifyWG       sync.WaitGroup
	logger         *logrus.Entry
}

func NewRedemptionService(u uow.UOW, notifier Notifier, l *logrus.Logger) (*RedemptionService, error) {
	rName := uow.RepositoryName(repoargs.RedemptionRepoName)
	redemptionRepo, repoErr := uow.GetRepositoryAs[RedemptionRepository](u, rName)
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	return &RedemptionService{
		uow:            u,
		redemptionRepo: redemptionRepo,
		balance:        NewBalanceManager(),
		inventory:      NewInventoryManager(),
		notifier:       notifier,
		generateCode:   GenerateCode,
		now:            time.Now,
		notifyTimeout:  defaultNotifyTimeout,
		logger: l.WithFields(logrus.Fields{
			"component": "service",
			"module":    "redemption",
		}),
	}, nil
}

func (r *RedemptionService) SetClock(now func() time.Time) *RedemptionService {
	r.now = now
	return r
}

func (r *RedemptionService) SetCodeGenerator(gen CodeGenerator) *RedemptionService {
	r.generateCode = gen
	return r
}

func (r *RedemptionService) SetNotifyTimeout(d time.Duration) *RedemptionService {
	r.notifyTimeout = d
	return r
}

// Redeem обменивает баллы пользователя на единицу награды. Списание, уменьшение остатка, погашение и запись
// журнала фиксируются одной транзакцией; уведомление отправляется асинхронно после коммита.
func (r *RedemptionService) Redeem(ctx context.Context, userID, rewardID int64) (*RedeemResult, error) {
	var (
		result     RedeemResult
		rewardName string
	)
	now := r.now()

	txErr := r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		// порядок блокировок: пользователь, затем награда.
		user, err := r.balance.Lock(ctx, tx, userID)
		if err != nil {
			return err
		}
		reward, err := r.inventory.Lock(ctx, tx, rewardID)
		if err != nil {
			return err
		}

		if validErr := validateReward(reward, now); validErr != nil {
			return validErr
		}
		if user.Balance < reward.Cost {
			return fmt.Errorf("user %d has %d, reward costs %d: %w",
				user.ID, user.Balance, reward.Cost, domain.ErrNotEnoughBalance)
		}
		if limitErr := r.checkLimit(ctx, tx, user.ID, reward); limitErr != nil {
			return limitErr
		}

		if _, err = r.inventory.DecrementStock(ctx, tx, reward.ID, 1); err != nil {
			return err
		}

		redemption, err := r.createRedemption(ctx, tx, repoargs.CreateRedemption{
			UserID:      user.ID,
			RewardID:    reward.ID,
			AmountSpent: reward.Cost,
			RedeemedAt:  now,
			ExpiresAt:   ExpiryFor(reward.Category, now),
		})
		if err != nil {
			return err
		}

		newBalance, err := r.balance.Debit(ctx, tx, BalanceChange{
			UserID:            user.ID,
			Amount:            reward.Cost,
			TransactionType:   domain.TransactionTypeRedemptionDebit,
			RelatedEntityType: domain.RelatedEntityRedemption,
			RelatedEntityID:   redemption.ID,
		})
		if err != nil {
			return err
		}

		rewardName = reward.Name
		result = RedeemResult{
			RedemptionID: redemption.ID,
			Code:         redemption.Code,
			Status:       domain.RedemptionStatusPending,
			ExpiresAt:    redemption.ExpiresAt,
			NewBalance:   newBalance,
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("redeem reward %d: %w", rewardID, txErr)
	}

	r.notifyAsync(ctx, domain.RedemptionEvent{
		UserID:     userID,
		Type:       domain.NotificationRedemptionSuccess,
		RewardName: rewardName,
		Code:       result.Code,
		OccurredAt: now,
	})

	return &result, nil
}

// Cancel отменяет собственное pending погашение пользователя в течение CancellationWindow и возвращает
// потраченные баллы.
func (r *RedemptionService) Cancel(ctx context.Context, userID, redemptionID int64) (*CancelResult, error) {
	var (
		result     CancelResult
		rewardName string
		code       string
	)
	now := r.now()

	txErr := r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[RedemptionRepository](tx, uow.RepositoryName(repoargs.RedemptionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		redemption, err := repo.GetForUpdateByUser(ctx, redemptionID, userID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if redemption.Status != domain.RedemptionStatusPending {
			return fmt.Errorf("redemption %d is %s: %w", redemption.ID, redemption.Status, domain.ErrInvalidState)
		}
		if now.After(redemption.RedeemedAt.Add(CancellationWindow)) {
			return fmt.Errorf("redemption %d redeemed at %s: %w",
				redemption.ID, redemption.RedeemedAt.Format(time.RFC3339), domain.ErrDeadlineExpired)
		}

		if _, err = r.balance.Lock(ctx, tx, userID); err != nil {
			return err
		}

		if err = repo.UpdateStatus(ctx, repoargs.RedemptionStatusUpdate{
			ID:     redemption.ID,
			Status: domain.RedemptionStatusCancelled,
			At:     now,
		}); err != nil {
			return err //nolint:wrapcheck
		}

		reward, err := r.inventory.IncrementStock(ctx, tx, redemption.RewardID, 1)
		if err != nil {
			return err
		}

		newBalance, err := r.balance.Credit(ctx, tx, BalanceChange{
			UserID:            userID,
			Amount:            redemption.AmountSpent,
			TransactionType:   domain.TransactionTypeRefundCredit,
			RelatedEntityType: domain.RelatedEntityRedemption,
			RelatedEntityID:   redemption.ID,
		})
		if err != nil {
			return err
		}

		rewardName = reward.Name
		code = redemption.Code
		result = CancelResult{RefundedAmount: redemption.AmountSpent, NewBalance: newBalance}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancel redemption %d: %w", redemptionID, txErr)
	}

	r.notifyAsync(ctx, domain.RedemptionEvent{
		UserID:     userID,
		Type:       domain.NotificationRedemptionCancelled,
		RewardName: rewardName,
		Code:       code,
		OccurredAt: now,
	})

	return &result, nil
}

// Complete подтверждает выдачу награды партнером по коду погашения.
func (r *RedemptionService) Complete(ctx context.Context, code string) (*domain.Redemption, error) {
	var result *domain.Redemption
	now := r.now()

	txErr := r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[RedemptionRepository](tx, uow.RepositoryName(repoargs.RedemptionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		redemption, err := repo.GetForUpdateByCode(ctx, code)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if redemption.Status != domain.RedemptionStatusPending {
			return fmt.Errorf("redemption %d is %s: %w", redemption.ID, redemption.Status, domain.ErrInvalidState)
		}
		if now.After(redemption.ExpiresAt) {
			return fmt.Errorf("redemption %d expired at %s: %w",
				redemption.ID, redemption.ExpiresAt.Format(time.RFC3339), domain.ErrRedemptionExpired)
		}
		if err = repo.UpdateStatus(ctx, repoargs.RedemptionStatusUpdate{
			ID:     redemption.ID,
			Status: domain.RedemptionStatusCompleted,
			At:     now,
		}); err != nil {
			return err //nolint:wrapcheck
		}
		redemption.Status = domain.RedemptionStatusCompleted
		redemption.CompletedAt = &now
		result = redemption
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("complete redemption: %w", txErr)
	}
	return result, nil
}

// PendingForExpiry возвращает до limit pending погашений с истекшим сроком.
func (r *RedemptionService) PendingForExpiry(ctx context.Context, limit uint) ([]domain.Redemption, error) {
	redemptions, err := r.redemptionRepo.GetExpiredPending(ctx, repoargs.ExpiredPending{
		Now:   r.now(),
		Limit: limit,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return redemptions, nil
}

// Expire отменяет просроченное pending погашение: возвращает остаток и баллы. Если погашение уже не
// pending или срок еще не истек, ничего не делает и возвращает false.
func (r *RedemptionService) Expire(ctx context.Context, redemptionID int64) (bool, error) {
	var expired bool
	now := r.now()

	txErr := r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[RedemptionRepository](tx, uow.RepositoryName(repoargs.RedemptionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		redemption, err := repo.GetForUpdate(ctx, redemptionID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if redemption.Status != domain.RedemptionStatusPending || redemption.ExpiresAt.After(now) {
			return nil
		}

		if _, err = r.balance.Lock(ctx, tx, redemption.UserID); err != nil {
			return err
		}
		if err = repo.UpdateStatus(ctx, repoargs.RedemptionStatusUpdate{
			ID:     redemption.ID,
			Status: domain.RedemptionStatusCancelled,
			At:     now,
		}); err != nil {
			return err //nolint:wrapcheck
		}
		if _, err = r.inventory.IncrementStock(ctx, tx, redemption.RewardID, 1); err != nil {
			return err
		}
		if _, err = r.balance.Credit(ctx, tx, BalanceChange{
			UserID:            redemption.UserID,
			Amount:            redemption.AmountSpent,
			TransactionType:   domain.TransactionTypeExpiryRefundCredit,
			RelatedEntityType: domain.RelatedEntityRedemption,
			RelatedEntityID:   redemption.ID,
		}); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if txErr != nil {
		return false, fmt.Errorf("expire redemption %d: %w", redemptionID, txErr)
	}
	return expired, nil
}

// GetByUserID возвращает погашения пользователя, новые первыми.
func (r *RedemptionService) GetByUserID(ctx context.Context, userID int64) ([]domain.Redemption, error) {
	redemptions, err := r.redemptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return redemptions, nil
}

// WaitNotifications ждет завершения отправки уже запущенных уведомлений.
func (r *RedemptionService) WaitNotifications() {
	r.notifyWG.Wait()
}

func (r *RedemptionService) checkLimit(ctx context.Context, tx uow.TX, userID int64, reward *domain.Reward) error {
	if reward.MaxPerUser == nil {
		return nil
	}
	repo, repoErr := uow.GetAs[RedemptionRepository](tx, uow.RepositoryName(repoargs.RedemptionRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	count, err := repo.CountActiveByUserAndReward(ctx, userID, reward.ID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if count >= *reward.MaxPerUser {
		return fmt.Errorf("user %d already has %d of reward %d: %w", userID, count, reward.ID, domain.ErrLimitReached)
	}
	return nil
}

// createRedemption сохраняет погашение с новым кодом, при коллизии кода генерирует следующий.
func (r *RedemptionService) createRedemption(
	ctx context.Context,
	tx uow.TX,
	args repoargs.CreateRedemption,
) (*domain.Redemption, error) {
	repo, repoErr := uow.GetAs[RedemptionRepository](tx, uow.RepositoryName(repoargs.RedemptionRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, genErr := r.generateCode()
		if genErr != nil {
			return nil, genErr
		}
		args.Code = code
		redemption, err := repo.Create(ctx, args)
		if err == nil {
			return redemption, nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return nil, err //nolint:wrapcheck
		}
		r.logger.WithField("attempt", attempt).Debug("redemption code collision, regenerating")
	}
	return nil, fmt.Errorf("no free redemption code after %d attempts: %w", maxCodeAttempts, domain.ErrUnknown)
}

func (r *RedemptionService) notifyAsync(ctx context.Context, event domain.RedemptionEvent) {
	if r.notifier == nil {
		return
	}
	r.notifyWG.Add(1)
	go func() {
		defer r.notifyWG.Done()
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.notifyTimeout)
		defer cancel()

		if err := r.notifier.Notify(notifyCtx, event); err != nil {
			r.logger.WithError(err).
				WithFields(logrus.Fields{"user_id": event.UserID, "type": event.Type}).
				Warn("failed to send redemption notification")
		}
	}()
}

func validateReward(reward *domain.Reward, now time.Time) error {
	if !reward.Active {
		return fmt.Errorf("reward %d: %w", reward.ID, domain.ErrRewardInactive)
	}
	if reward.IsExpiredAt(now) {
		return fmt.Errorf("reward %d: %w", reward.ID, domain.ErrRewardExpired)
	}
	if reward.Stock <= 0 {
		return fmt.Errorf("reward %d: %w", reward.ID, domain.ErrOutOfStock)
	}
	return nil
}
