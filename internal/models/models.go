package models

import "time"

// Account rows are pre-provisioned with a fixed set of small ids; the id is
// assigned by the seed, never by the database.
type Account struct {
	ID             int64  `gorm:"primaryKey"`
	Name           string `gorm:"size:50;not null"`
	OverdraftLimit int64  `gorm:"not null"` // non-negative; balance may go down to -OverdraftLimit
	Balance        int64  `gorm:"not null"`
}

// Transaction is append-only. ID is the insertion sequence used for
// "most recent N" ordering; CreatedAt alone is not unique enough for that.
// BalanceAfter/LimitAfter are denormalized from the account row by the same
// atomic statement that inserted the record.
type Transaction struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	AccountID    int64  `gorm:"index;not null"`
	Amount       int64  `gorm:"not null"` // positive magnitude
	Kind         string `gorm:"size:6;not null"` // credit | debit
	Description  string `gorm:"size:10;not null"`
	BalanceAfter int64  `gorm:"not null"`
	LimitAfter   int64  `gorm:"not null"`
	CreatedAt    time.Time
}
