package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLockForUpdateRendersRowLockOnPostgres(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=salonstreak",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var row struct{ ID uint }
	stmt := LockForUpdate(db.Table("user_challenges").Where("id = ?", 1)).Find(&row).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestLockForUpdateIsDroppedOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		DryRun: true,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var row struct{ ID uint }
	stmt := LockForUpdate(db.Table("user_challenges").Where("id = ?", 1)).Find(&row).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}
