package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const redemptionColumns = "id, user_id, reward_id, amount_spent, code, status::text, redeemed_at, cancelled_at, " +
	"completed_at, expires_at"

type RedemptionRepository struct {
	conn uow.DBTX
}

func NewRedemptionRepository(conn uow.DBTX) *RedemptionRepository {
	return &RedemptionRepository{conn: conn}
}

// Create сохраняет новое погашение в статусе pending. При занятом коде возвращает domain.ErrDuplicateKey,
// транзакция при этом остается рабочей (ON CONFLICT DO NOTHING), вызывающий может повторить с другим кодом.
func (r *RedemptionRepository) Create(
	ctx context.Context,
	args repoargs.CreateRedemption,
) (*domain.Redemption, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO redemptions (user_id, reward_id, amount_spent, code, status, redeemed_at, expires_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6)
		ON CONFLICT (code) DO NOTHING
		RETURNING `+redemptionColumns,
		args.UserID, args.RewardID, args.AmountSpent, args.Code, args.RedeemedAt, args.ExpiresAt,
	)
	redemption, err := scanRedemption(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("[repository/creating redemption] %w: code %s is taken", domain.ErrDuplicateKey, args.Code)
	}
	if err != nil {
		return nil, convertErr(err, "creating redemption")
	}
	return redemption, nil
}

// GetForUpdate блокирует погашение по id.
func (r *RedemptionRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Redemption, error) {
	row := r.conn.QueryRow(ctx, "SELECT "+redemptionColumns+" FROM redemptions WHERE id = $1 FOR UPDATE", id)
	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "locking redemption %d", id)
	}
	return redemption, nil
}

// GetForUpdateByUser блокирует погашение пользователя. Чужое погашение неотличимо от несуществующего:
// в обоих случаях domain.ErrRecordNotFound.
func (r *RedemptionRepository) GetForUpdateByUser(
	ctx context.Context,
	id int64,
	userID int64,
) (*domain.Redemption, error) {
	row := r.conn.QueryRow(ctx,
		"SELECT "+redemptionColumns+" FROM redemptions WHERE id = $1 AND user_id = $2 FOR UPDATE",
		id, userID,
	)
	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "locking redemption %d of user %d", id, userID)
	}
	return redemption, nil
}

func (r *RedemptionRepository) GetForUpdateByCode(ctx context.Context, code string) (*domain.Redemption, error) {
	row := r.conn.QueryRow(ctx, "SELECT "+redemptionColumns+" FROM redemptions WHERE code = $1 FOR UPDATE", code)
	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, convertErr(err, "locking redemption by code")
	}
	return redemption, nil
}

// CountActiveByUserAndReward считает не отмененные погашения награды пользователем.
func (r *RedemptionRepository) CountActiveByUserAndReward(
	ctx context.Context,
	userID int64,
	rewardID int64,
) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx,
		"SELECT count(*) FROM redemptions WHERE user_id = $1 AND reward_id = $2 AND status <> 'cancelled'",
		userID, rewardID,
	).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting redemptions of reward %d by user %d", rewardID, userID)
	}
	return count, nil
}

// UpdateStatus переводит погашение в новый статус и проставляет соответствующую ему отметку времени.
func (r *RedemptionRepository) UpdateStatus(ctx context.Context, args repoargs.RedemptionStatusUpdate) error {
	var query string
	switch args.Status {
	case domain.RedemptionStatusCancelled:
		query = "UPDATE redemptions SET status = 'cancelled', cancelled_at = $2 WHERE id = $1"
	case domain.RedemptionStatusCompleted:
		query = "UPDATE redemptions SET status = 'completed', completed_at = $2 WHERE id = $1"
	default:
		return fmt.Errorf("[repository/updating redemption status] %w: unsupported status %s",
			domain.ErrUnknown, args.Status)
	}

	tag, err := r.conn.Exec(ctx, query, args.ID, args.At)
	if err != nil {
		return convertErr(err, "updating status of redemption %d", args.ID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "updating status of redemption %d", args.ID)
	}
	return nil
}

// GetByUserID возвращает погашения пользователя, новые первыми.
func (r *RedemptionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Redemption, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT "+redemptionColumns+" FROM redemptions WHERE user_id = $1 ORDER BY redeemed_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting redemptions of user %d", userID)
	}
	redemptions, err := collect(rows, scanRedemption)
	if err != nil {
		return nil, convertErr(err, "scanning redemptions of user %d", userID)
	}
	return redemptions, nil
}

// GetExpiredPending возвращает pending погашения с истекшим expires_at, старые первыми. Строки не
// блокируются, статус перепроверяется под блокировкой при отмене.
func (r *RedemptionRepository) GetExpiredPending(
	ctx context.Context,
	args repoargs.ExpiredPending,
) ([]domain.Redemption, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT "+redemptionColumns+` FROM redemptions
		WHERE status = 'pending' AND expires_at <= $1
		ORDER BY expires_at, id
		LIMIT $2`,
		args.Now, int64(args.Limit),
	)
	if err != nil {
		return nil, convertErr(err, "getting expired pending redemptions")
	}
	redemptions, err := collect(rows, scanRedemption)
	if err != nil {
		return nil, convertErr(err, "scanning expired pending redemptions")
	}
	return redemptions, nil
}

func scanRedemption(row rowScanner) (*domain.Redemption, error) {
	var (
		redemption domain.Redemption
		status     string
	)
	if err := row.Scan(
		&redemption.ID,
		&redemption.UserID,
		&redemption.RewardID,
		&redemption.AmountSpent,
		&redemption.Code,
		&status,
		&redemption.RedeemedAt,
		&redemption.CancelledAt,
		&redemption.CompletedAt,
		&redemption.ExpiresAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	redemption.Status = domain.RedemptionStatusType(status)
	return &redemption, nil
}
