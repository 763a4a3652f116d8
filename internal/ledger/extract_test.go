package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractPattern = `FROM transactions`

func extractRowsFixture(rows []extractRow) *sqlmock.Rows {
	out := sqlmock.NewRows([]string{"amount", "kind", "description", "created_at", "balance_after", "limit_after"})
	for _, r := range rows {
		out.AddRow(r.Amount, r.Kind, r.Description, r.CreatedAt, r.BalanceAfter, r.LimitAfter)
	}
	return out
}

func TestExtractUnknownAccount(t *testing.T) {
	svc, mock := newMockService(t, defaultConfig())

	_, err := svc.Extract(context.Background(), 999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractOrderingAndTrim(t *testing.T) {
	svc, mock := newMockService(t, defaultConfig())

	// Eleven rows come back, newest first by insertion sequence; the extra
	// oldest one must be dropped before the response is built.
	fixture := make([]extractRow, 0, 11)
	for i := 0; i < 11; i++ {
		fixture = append(fixture, extractRow{
			Amount:       int64(100 + i),
			Kind:         "credit",
			Description:  fmt.Sprintf("tx-%d", i),
			CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			BalanceAfter: int64(5000 - i),
			LimitAfter:   1000,
		})
	}

	mock.ExpectQuery(extractPattern).
		WithArgs(int64(2), 11).
		WillReturnRows(extractRowsFixture(fixture))

	ext, err := svc.Extract(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, ext.Transactions, 10)
	assert.Equal(t, int64(100), ext.Transactions[0].Amount)
	assert.Equal(t, int64(109), ext.Transactions[9].Amount)

	// The snapshot is the newest row's denormalized state.
	assert.Equal(t, int64(5000), ext.Snapshot.Balance)
	assert.Equal(t, int64(1000), ext.Snapshot.Limit)
	assert.False(t, ext.Snapshot.AsOf.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractFewerThanLimit(t *testing.T) {
	svc, mock := newMockService(t, defaultConfig())

	mock.ExpectQuery(extractPattern).
		WithArgs(int64(1), 11).
		WillReturnRows(extractRowsFixture([]extractRow{
			{Amount: 300, Kind: "debit", Description: "coffee", BalanceAfter: -300, LimitAfter: 1000},
		}))

	ext, err := svc.Extract(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ext.Transactions, 1)
	assert.Equal(t, KindDebit, ext.Transactions[0].Kind)
	assert.Equal(t, int64(-300), ext.Snapshot.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractEmptyAsError(t *testing.T) {
	svc, mock := newMockService(t, defaultConfig())

	mock.ExpectQuery(extractPattern).
		WithArgs(int64(3), 11).
		WillReturnRows(extractRowsFixture(nil))

	_, err := svc.Extract(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNoHistory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractEmptyAllowed(t *testing.T) {
	cfg := defaultConfig()
	cfg.EmptyExtractAsError = false
	svc, mock := newMockService(t, cfg)

	mock.ExpectQuery(extractPattern).
		WithArgs(int64(3), 11).
		WillReturnRows(extractRowsFixture(nil))
	// With no transaction row to derive the snapshot from, the account row
	// is read directly.
	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "overdraft_limit", "balance"}).
			AddRow(3, "account-3", 1000000, 0))

	ext, err := svc.Extract(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, ext.Transactions)
	assert.Equal(t, int64(0), ext.Snapshot.Balance)
	assert.Equal(t, int64(1000000), ext.Snapshot.Limit)
	assert.False(t, ext.Snapshot.AsOf.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractEmptyAllowedMissingAccount(t *testing.T) {
	cfg := defaultConfig()
	cfg.EmptyExtractAsError = false
	svc, mock := newMockService(t, cfg)

	mock.ExpectQuery(extractPattern).
		WithArgs(int64(4), 11).
		WillReturnRows(extractRowsFixture(nil))
	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "overdraft_limit", "balance"}))

	_, err := svc.Extract(context.Background(), 4)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractStorageError(t *testing.T) {
	svc, mock := newMockService(t, defaultConfig())

	mock.ExpectQuery(extractPattern).
		WillReturnError(errors.New("pool exhausted"))

	_, err := svc.Extract(context.Background(), 1)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
