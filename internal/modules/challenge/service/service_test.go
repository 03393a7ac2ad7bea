package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/internal/modules/challenge/repository"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/dateutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type challengeFixture struct {
	svc    *challengeService
	def    *entity.ChallengeDefinition
	userID uuid.UUID
	today  string
}

func newChallengeFixture(t *testing.T, durationDays, postsRequired int) *challengeFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.ChallengeDefinition{},
		&entity.UserChallenge{},
	))

	def := &entity.ChallengeDefinition{
		Slug:          "test-challenge",
		Title:         "Test Challenge",
		DurationDays:  durationDays,
		PostsRequired: postsRequired,
	}
	require.NoError(t, db.Create(def).Error)

	repo := repository.NewChallengeRepository(db)
	svc := NewChallengeService(repo, nil, nil).(*challengeService)

	f := &challengeFixture{
		svc:    svc,
		def:    def,
		userID: uuid.New(),
		today:  "2025-03-10",
	}
	svc.now = func() time.Time {
		parsed, err := dateutil.Parse(f.today)
		require.NoError(t, err)
		return parsed
	}

	return f
}

func (f *challengeFixture) advanceDay() {
	f.today = dateutil.AddDays(f.today, 1)
}

func TestStartCreatesActiveEnrollment(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)

	enrollment, err := f.svc.Start(context.Background(), f.userID, f.def.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ChallengeStatusActive, enrollment.Status)
	assert.Equal(t, 0, enrollment.PostsCompleted)
}

func TestSecondStartWhileActiveRejected(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, f.userID, f.def.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyActive)
}

func TestStartUnknownChallengeRejected(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)

	_, err := f.svc.Start(context.Background(), f.userID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLogProgressByStrangerForbidden(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)

	_, err = f.svc.LogProgress(ctx, uuid.New(), uuid.MustParse(enrollment.ID))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestLogProgressTwiceSameDayRejected(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	id := uuid.MustParse(enrollment.ID)

	_, err = f.svc.LogProgress(ctx, f.userID, id)
	require.NoError(t, err)

	_, err = f.svc.LogProgress(ctx, f.userID, id)
	assert.ErrorIs(t, err, apperror.ErrAlreadyLoggedToday)
}

func TestMissedDayResetsChallengeStreak(t *testing.T) {
	f := newChallengeFixture(t, 14, 14)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	id := uuid.MustParse(enrollment.ID)

	_, err = f.svc.LogProgress(ctx, f.userID, id)
	require.NoError(t, err)
	f.advanceDay()
	_, err = f.svc.LogProgress(ctx, f.userID, id)
	require.NoError(t, err)

	f.advanceDay()
	f.advanceDay() // skip a day
	progress, err := f.svc.LogProgress(ctx, f.userID, id)
	require.NoError(t, err)

	assert.Equal(t, 1, progress.CurrentStreak)
	assert.Equal(t, 2, progress.LongestStreak)
	assert.Equal(t, 3, progress.PostsCompleted)
	assert.Equal(t, entity.ChallengeStatusActive, progress.Status)
}

func TestChallengeCompletesOnRequiredPosts(t *testing.T) {
	f := newChallengeFixture(t, 3, 3)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	id := uuid.MustParse(enrollment.ID)

	for i := 0; i < 3; i++ {
		if i > 0 {
			f.advanceDay()
		}
		enrollment, err = f.svc.LogProgress(ctx, f.userID, id)
		require.NoError(t, err)
	}

	assert.Equal(t, entity.ChallengeStatusCompleted, enrollment.Status)
	assert.NotNil(t, enrollment.CompletedAt)

	// Terminal enrollments take no further logs.
	f.advanceDay()
	_, err = f.svc.LogProgress(ctx, f.userID, id)
	assert.ErrorIs(t, err, apperror.ErrNotActive)
}

func TestRestartAllowedAfterCompletion(t *testing.T) {
	f := newChallengeFixture(t, 3, 3)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	id := uuid.MustParse(enrollment.ID)

	for i := 0; i < 3; i++ {
		if i > 0 {
			f.advanceDay()
		}
		_, err = f.svc.LogProgress(ctx, f.userID, id)
		require.NoError(t, err)
	}

	fresh, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ChallengeStatusActive, fresh.Status)
	assert.Equal(t, 0, fresh.PostsCompleted)

	enrollments, err := f.svc.MyEnrollments(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 2)
}

func TestAbandonEndsAttemptAndAllowsRestart(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	id := uuid.MustParse(enrollment.ID)

	require.NoError(t, f.svc.Abandon(ctx, f.userID, id))

	_, err = f.svc.LogProgress(ctx, f.userID, id)
	assert.ErrorIs(t, err, apperror.ErrNotActive)

	_, err = f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
}

func TestAbandonTwiceRejected(t *testing.T) {
	f := newChallengeFixture(t, 7, 7)
	ctx := context.Background()

	enrollment, err := f.svc.Start(ctx, f.userID, f.def.ID)
	require.NoError(t, err)
	id := uuid.MustParse(enrollment.ID)

	require.NoError(t, f.svc.Abandon(ctx, f.userID, id))
	assert.ErrorIs(t, f.svc.Abandon(ctx, f.userID, id), apperror.ErrNotActive)
}
