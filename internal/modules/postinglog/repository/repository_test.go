package repository

import (
	"context"
	"testing"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) PostingLogRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entity.Role{}, &entity.User{}, &entity.PostingLog{}))

	return NewPostingLogRepository(db)
}

func TestInsertGateRejectsSecondLogForSameDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Insert(ctx, &entity.PostingLog{UserID: userID, Date: "2025-03-10"}))

	err := repo.Insert(ctx, &entity.PostingLog{UserID: userID, Date: "2025-03-10"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyLogged)

	// A different user is not affected by the gate.
	require.NoError(t, repo.Insert(ctx, &entity.PostingLog{UserID: uuid.New(), Date: "2025-03-10"}))
}

func TestHasLoggedOnDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Insert(ctx, &entity.PostingLog{UserID: userID, Date: "2025-03-10"}))

	logged, err := repo.HasLoggedOnDate(ctx, userID, "2025-03-10")
	require.NoError(t, err)
	assert.True(t, logged)

	logged, err = repo.HasLoggedOnDate(ctx, userID, "2025-03-11")
	require.NoError(t, err)
	assert.False(t, logged)
}

func TestRecentDatesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, d := range []string{"2025-03-08", "2025-03-10", "2025-03-09"} {
		require.NoError(t, repo.Insert(ctx, &entity.PostingLog{UserID: userID, Date: d}))
	}

	dates, err := repo.RecentDates(ctx, userID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-10", "2025-03-09"}, dates)

	all, err := repo.AllDates(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-08", "2025-03-09", "2025-03-10"}, all)
}
