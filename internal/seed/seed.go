package seed

import (
	"github.com/mgelashvili/ledger_service/internal/logger"
	"github.com/mgelashvili/ledger_service/internal/models"
	"github.com/mgelashvili/ledger_service/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The account set is fixed at deploy time: ids 1..5 with these overdraft
// limits, balances starting at zero. The service never creates accounts at
// runtime.
var accounts = []models.Account{
	{ID: 1, Name: "account-1", OverdraftLimit: 100000},
	{ID: 2, Name: "account-2", OverdraftLimit: 80000},
	{ID: 3, Name: "account-3", OverdraftLimit: 1000000},
	{ID: 4, Name: "account-4", OverdraftLimit: 10000000},
	{ID: 5, Name: "account-5", OverdraftLimit: 500000},
}

// Run provisions the fixed account set, idempotently: accounts that already
// exist are left untouched, balances included.
func Run() {
	db := store.DB

	ids := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}

	var count int64
	if err := db.Model(&models.Account{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count >= int64(len(accounts)) {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, a := range accounts {
			acct := a
			if err := tx.FirstOrCreate(&acct, models.Account{ID: a.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
	logger.Log.Info("seeded accounts", zap.Int("count", len(accounts)))
}
