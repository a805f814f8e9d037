package repoargs

import "github.com/fsdevblog/groph-rewards/internal/domain"

type CreateLedgerEntry struct {
	UserID            int64
	Amount            int64
	PreviousBalance   int64
	NewBalance        int64
	TransactionType   domain.TransactionType
	RelatedEntityType domain.RelatedEntityType
	RelatedEntityID   int64
}
