package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mgelashvili/ledger_service/internal/models"
	"gorm.io/gorm"
)

// ExtractSnapshot is the account state the extract is consistent with. AsOf
// is server-generated at build time and independent of any transaction
// timestamp.
type ExtractSnapshot struct {
	Balance int64
	Limit   int64
	AsOf    time.Time
}

type ExtractEntry struct {
	Amount      int64
	Kind        Kind
	Description string
	At          time.Time
}

// Extract is the recent-transaction view: newest first, at most the display
// limit.
type Extract struct {
	Snapshot     ExtractSnapshot
	Transactions []ExtractEntry
}

// Ordering is by the insertion sequence, not created_at, whose precision does
// not guarantee uniqueness. One row beyond the display limit is fetched and
// dropped again before the response is built.
const extractQuery = `
SELECT amount, kind, description, created_at, balance_after, limit_after
FROM transactions
WHERE account_id = ?
ORDER BY id DESC
LIMIT ?`

type extractRow struct {
	Amount       int64
	Kind         string
	Description  string
	CreatedAt    time.Time
	BalanceAfter int64
	LimitAfter   int64
}

// Extract returns the most recent transactions of the account plus a snapshot
// derived from the newest returned row, so the snapshot and the list agree
// even when a concurrent write lands mid-read.
func (s *Service) Extract(ctx context.Context, accountID int64) (Extract, error) {
	if !s.knownAccount(accountID) {
		return Extract{}, ErrAccountNotFound
	}

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	var rows []extractRow
	res := s.db.WithContext(ctx).Raw(extractQuery, accountID, s.cfg.ExtractLimit+1).Scan(&rows)
	if res.Error != nil {
		return Extract{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, res.Error)
	}

	if len(rows) == 0 {
		if s.cfg.EmptyExtractAsError {
			return Extract{}, ErrNoHistory
		}
		return s.emptyExtract(ctx, accountID)
	}

	if len(rows) > s.cfg.ExtractLimit {
		rows = rows[:s.cfg.ExtractLimit]
	}

	entries := make([]ExtractEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, ExtractEntry{
			Amount:      r.Amount,
			Kind:        Kind(r.Kind),
			Description: r.Description,
			At:          r.CreatedAt,
		})
	}

	return Extract{
		Snapshot: ExtractSnapshot{
			Balance: rows[0].BalanceAfter,
			Limit:   rows[0].LimitAfter,
			AsOf:    time.Now(),
		},
		Transactions: entries,
	}, nil
}

// emptyExtract covers the one case with no transaction row to derive the
// snapshot from: it falls back to reading the account row directly.
func (s *Service) emptyExtract(ctx context.Context, accountID int64) (Extract, error) {
	var acct models.Account
	err := s.db.WithContext(ctx).First(&acct, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Extract{}, ErrAccountNotFound
	}
	if err != nil {
		return Extract{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return Extract{
		Snapshot: ExtractSnapshot{
			Balance: acct.Balance,
			Limit:   acct.OverdraftLimit,
			AsOf:    time.Now(),
		},
		Transactions: []ExtractEntry{},
	}, nil
}
