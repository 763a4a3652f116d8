// Package ledger holds the transactional core of the service: the engine that
// applies credits and debits atomically, and the reader that builds the
// recent-transaction extract.
package ledger

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

const (
	minDescriptionLen = 1
	maxDescriptionLen = 10
)

// Snapshot is the (balance, limit) pair produced by the same atomic statement
// that applied a transaction.
type Snapshot struct {
	Balance int64
	Limit   int64
}

// Config carries the deploy-time knobs of the core. The account id domain is
// a closed set fixed outside the service.
type Config struct {
	MinAccountID int64
	MaxAccountID int64
	// ExtractLimit is the number of transactions an extract displays.
	ExtractLimit int
	// EmptyExtractAsError reports a valid account with zero transactions as
	// ErrNoHistory instead of an empty extract.
	EmptyExtractAsError bool
	// StorageTimeout bounds every storage call, pool acquisition included,
	// so an exhausted pool surfaces as ErrStorageUnavailable instead of
	// blocking for as long as the client stays connected. Zero disables
	// the bound.
	StorageTimeout time.Duration
}

type Service struct {
	db  *gorm.DB
	cfg Config
}

func NewService(db *gorm.DB, cfg Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) knownAccount(id int64) bool {
	return id >= s.cfg.MinAccountID && id <= s.cfg.MaxAccountID
}

func (s *Service) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StorageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StorageTimeout)
}

// The balance check and the balance mutation must be evaluated by postgres as
// one conditional write; reading the balance first and checking it in Go
// would let two concurrent debits both pass against a stale value. The CTE
// chains the conditional UPDATE with the audit-record INSERT so both land in
// one implicit transaction, and the inserted snapshot columns come from the
// RETURNING of the very update that produced them.
const creditQuery = `
WITH updated AS (
	UPDATE accounts SET balance = balance + ?
	WHERE id = ?
	RETURNING id, balance, overdraft_limit
)
INSERT INTO transactions (account_id, amount, kind, description, balance_after, limit_after, created_at)
SELECT id, ?, ?, ?, balance, overdraft_limit, now()
FROM updated
RETURNING balance_after, limit_after`

const debitQuery = `
WITH updated AS (
	UPDATE accounts SET balance = balance - ?
	WHERE id = ? AND balance - ? >= -ABS(overdraft_limit)
	RETURNING id, balance, overdraft_limit
)
INSERT INTO transactions (account_id, amount, kind, description, balance_after, limit_after, created_at)
SELECT id, ?, ?, ?, balance, overdraft_limit, now()
FROM updated
RETURNING balance_after, limit_after`

type applyRow struct {
	BalanceAfter int64
	LimitAfter   int64
}

// Apply validates the request, then applies it as a single atomic statement.
// On success the returned snapshot is the post-update state taken from that
// same statement, never a separate re-read.
func (s *Service) Apply(ctx context.Context, accountID, amount int64, kind Kind, description string) (Snapshot, error) {
	if !s.knownAccount(accountID) {
		return Snapshot{}, ErrAccountNotFound
	}
	if amount <= 0 {
		return Snapshot{}, ErrInvalidAmount
	}
	switch kind {
	case KindCredit, KindDebit:
	default:
		return Snapshot{}, ErrInvalidKind
	}
	if n := len(description); n < minDescriptionLen || n > maxDescriptionLen {
		return Snapshot{}, ErrInvalidDescription
	}

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	var row applyRow
	var res *gorm.DB
	if kind == KindCredit {
		res = s.db.WithContext(ctx).Raw(creditQuery,
			amount, accountID,
			amount, string(kind), description,
		).Scan(&row)
	} else {
		res = s.db.WithContext(ctx).Raw(debitQuery,
			amount, accountID, amount,
			amount, string(kind), description,
		).Scan(&row)
	}
	if res.Error != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		// The statement wrote nothing. A credit cannot be blocked by the
		// limit, so zero rows means the account row is missing.
		if kind == KindCredit {
			return Snapshot{}, ErrAccountNotFound
		}
		return Snapshot{}, ErrOverdraftRejected
	}
	return Snapshot{Balance: row.BalanceAfter, Limit: row.LimitAfter}, nil
}
