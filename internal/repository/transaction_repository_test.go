package repository

import (
	"testing"
	"time"

	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB renders SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=vantrack_test"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestDebtsDueBefore_OnlyUnremindedDebts(t *testing.T) {
	db := dryRunDB(t)
	cutoff := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var txns []models.Transaction
		return debtsDueBefore(tx, cutoff).Find(&txns)
	})

	assert.Contains(t, sql, "reminder_sent_at IS NULL")
	assert.NotContains(t, sql, "reminder_sent_at <", "a reminded debt must not come back on a later day")
	assert.Contains(t, sql, "due_date <= '2025-03-03")
	for _, typ := range []string{"credit_receivable", "credit_payable", "loan_receivable", "loan_payable"} {
		assert.Contains(t, sql, typ)
	}
	assert.NotContains(t, sql, "payment_")
	assert.Contains(t, sql, "ORDER BY user_id ASC, due_date ASC")
}
