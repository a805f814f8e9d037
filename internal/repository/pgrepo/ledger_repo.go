package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

const ledgerColumns = "id, user_id, amount, previous_balance, new_balance, transaction_type::text, " +
	"related_entity_type, related_entity_id, created_at"

// LedgerRepository журнал изменений баланса. Только вставка и чтение, записи не изменяются и не удаляются.
type LedgerRepository struct {
	conn uow.DBTX
}

func NewLedgerRepository(conn uow.DBTX) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

func (l *LedgerRepository) Create(ctx context.Context, args repoargs.CreateLedgerEntry) (*domain.LedgerEntry, error) {
	row := l.conn.QueryRow(ctx,
		`INSERT INTO ledger_entries
		(user_id, amount, previous_balance, new_balance, transaction_type, related_entity_type, related_entity_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+ledgerColumns,
		args.UserID,
		args.Amount,
		args.PreviousBalance,
		args.NewBalance,
		string(args.TransactionType),
		string(args.RelatedEntityType),
		args.RelatedEntityID,
	)
	entry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, convertErr(err, "creating ledger entry for user %d", args.UserID)
	}
	return entry, nil
}

// GetByUserID возвращает записи пользователя в порядке вставки.
func (l *LedgerRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.LedgerEntry, error) {
	rows, err := l.conn.Query(ctx, "SELECT "+ledgerColumns+" FROM ledger_entries WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, convertErr(err, "getting ledger of user %d", userID)
	}
	entries, err := collect(rows, scanLedgerEntry)
	if err != nil {
		return nil, convertErr(err, "scanning ledger of user %d", userID)
	}
	return entries, nil
}

func scanLedgerEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var (
		entry           domain.LedgerEntry
		transactionType string
		entityType      string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.PreviousBalance,
		&entry.NewBalance,
		&transactionType,
		&entityType,
		&entry.RelatedEntityID,
		&entry.CreatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	entry.TransactionType = domain.TransactionType(transactionType)
	entry.RelatedEntityType = domain.RelatedEntityType(entityType)
	return &entry, nil
}
