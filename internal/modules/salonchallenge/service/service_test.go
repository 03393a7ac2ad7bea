package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"anoa.com/salonstreak/internal/entity"
	salonRepo "anoa.com/salonstreak/internal/modules/salon/repository"
	"anoa.com/salonstreak/internal/modules/salonchallenge/dto"
	"anoa.com/salonstreak/internal/modules/salonchallenge/repository"
	userRepo "anoa.com/salonstreak/internal/modules/user/repository"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/dateutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type salonChallengeFixture struct {
	db       *gorm.DB
	svc      *salonChallengeService
	repo     repository.SalonChallengeRepository
	mail     *mockMailer
	owner    *entity.User
	salon    *entity.Salon
	stylists []*entity.User
	today    string
}

func newSalonChallengeFixture(t *testing.T, accepted, pending int) *salonChallengeFixture {
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
		&entity.Salon{},
		&entity.SalonMember{},
		&entity.SalonChallenge{},
		&entity.StylistChallengeProgress{},
	))

	owner := &entity.User{
		Username:     "owner",
		Email:        "owner@example.com",
		PasswordHash: "x",
		DisplayName:  "The Owner",
	}
	require.NoError(t, db.Create(owner).Error)

	salon := &entity.Salon{OwnerID: owner.ID, Name: "Shear Genius"}
	require.NoError(t, db.Create(salon).Error)

	f := &salonChallengeFixture{
		db:    db,
		repo:  repository.NewSalonChallengeRepository(db),
		mail:  &mockMailer{},
		owner: owner,
		salon: salon,
		today: "2025-03-10",
	}

	for i := 0; i < accepted+pending; i++ {
		stylist := &entity.User{
			Username:     fmt.Sprintf("stylist%d", i),
			Email:        fmt.Sprintf("stylist%d@example.com", i),
			PasswordHash: "x",
			DisplayName:  fmt.Sprintf("Stylist %d", i),
		}
		require.NoError(t, db.Create(stylist).Error)
		f.stylists = append(f.stylists, stylist)

		status := entity.MemberStatusAccepted
		if i >= accepted {
			status = entity.MemberStatusPending
		}
		require.NoError(t, db.Create(&entity.SalonMember{
			SalonID: salon.ID,
			UserID:  stylist.ID,
			Status:  status,
		}).Error)
	}

	svc := NewSalonChallengeService(
		f.repo,
		salonRepo.NewSalonRepository(db),
		userRepo.NewUserRepository(db),
		nil,
		f.mail,
	).(*salonChallengeService)
	svc.now = func() time.Time {
		parsed, err := dateutil.Parse(f.today)
		require.NoError(t, err)
		return parsed
	}
	f.svc = svc

	return f
}

func (f *salonChallengeFixture) createChallenge(t *testing.T, durationDays int) *dto.SalonChallengeResponse {
	t.Helper()
	challenge, err := f.svc.Create(context.Background(), f.owner.ID, dto.CreateSalonChallengeInput{
		Title:        "Spring Sprint",
		DurationDays: durationDays,
		RewardText:   "Free product bundle",
	})
	require.NoError(t, err)
	return challenge
}

func (f *salonChallengeFixture) progressFor(t *testing.T, challengeID string, stylistID uuid.UUID) *entity.StylistChallengeProgress {
	t.Helper()
	progress, err := f.repo.FindProgress(context.Background(), uuid.MustParse(challengeID), stylistID)
	require.NoError(t, err)
	return progress
}

func (f *salonChallengeFixture) advanceDay() {
	f.today = dateutil.AddDays(f.today, 1)
}

func TestFanOutEnrollsAcceptedMembersOnly(t *testing.T) {
	f := newSalonChallengeFixture(t, 5, 2)

	challenge := f.createChallenge(t, 7)
	assert.Equal(t, 5, challenge.EnrolledCount)

	board, err := f.svc.Board(context.Background(), f.owner.ID, uuid.MustParse(challenge.ID))
	require.NoError(t, err)
	assert.Len(t, board.Progress, 5)
}

func TestCreateStripsMarkupFromOwnerText(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)

	challenge, err := f.svc.Create(context.Background(), f.owner.ID, dto.CreateSalonChallengeInput{
		Title:        "Spring <b>Sprint</b>",
		DurationDays: 7,
		RewardText:   "<script>alert('x')</script>Free product bundle",
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring Sprint", challenge.Title)
	assert.Equal(t, "Free product bundle", challenge.RewardText)

	stored, err := f.repo.FindChallengeByID(context.Background(), uuid.MustParse(challenge.ID))
	require.NoError(t, err)
	assert.Equal(t, "Spring Sprint", stored.Title)
	assert.Equal(t, "Free product bundle", stored.RewardText)
}

func TestLateAcceptorNotEnrolled(t *testing.T) {
	f := newSalonChallengeFixture(t, 2, 1)

	challenge := f.createChallenge(t, 7)

	// The pending member accepts after the fan-out. The frozen roster does
	// not grow.
	late := f.stylists[2]
	require.NoError(t, f.db.Model(&entity.SalonMember{}).
		Where("salon_id = ? AND user_id = ?", f.salon.ID, late.ID).
		Update("status", entity.MemberStatusAccepted).Error)

	board, err := f.svc.Board(context.Background(), f.owner.ID, uuid.MustParse(challenge.ID))
	require.NoError(t, err)
	assert.Len(t, board.Progress, 2)
}

func TestBoardByStrangerForbidden(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)

	challenge := f.createChallenge(t, 7)

	_, err := f.svc.Board(context.Background(), uuid.New(), uuid.MustParse(challenge.ID))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestStylistLogsProgress(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)
	ctx := context.Background()

	challenge := f.createChallenge(t, 7)
	stylist := f.stylists[0]
	progress := f.progressFor(t, challenge.ID, stylist.ID)

	got, err := f.svc.LogProgress(ctx, stylist.ID, progress.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PostsCompleted)
	assert.Equal(t, 1, got.CurrentStreak)

	_, err = f.svc.LogProgress(ctx, stylist.ID, progress.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyLoggedToday)

	_, err = f.svc.LogProgress(ctx, uuid.New(), progress.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestFinishedChallengeTakesNoLogs(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)
	ctx := context.Background()

	challenge := f.createChallenge(t, 7)
	stylist := f.stylists[0]
	progress := f.progressFor(t, challenge.ID, stylist.ID)

	require.NoError(t, f.svc.Finish(ctx, f.owner.ID, uuid.MustParse(challenge.ID)))

	_, err := f.svc.LogProgress(ctx, stylist.ID, progress.ID)
	assert.ErrorIs(t, err, apperror.ErrNotActive)
}

func TestOwnerNotifiedExactlyOnceOnCompletion(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)
	ctx := context.Background()

	f.mail.On("Send", f.owner.Email, mock.Anything, mock.Anything).Return(nil)

	challenge := f.createChallenge(t, 2)
	stylist := f.stylists[0]
	progress := f.progressFor(t, challenge.ID, stylist.ID)

	_, err := f.svc.LogProgress(ctx, stylist.ID, progress.ID)
	require.NoError(t, err)
	f.advanceDay()
	got, err := f.svc.LogProgress(ctx, stylist.ID, progress.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ChallengeStatusCompleted, got.Status)

	// The retry worker re-scans; the claimed sentinel keeps it quiet.
	require.NoError(t, f.svc.NotifyPendingOnce(ctx))
	require.NoError(t, f.svc.NotifyPendingOnce(ctx))

	f.mail.AssertNumberOfCalls(t, "Send", 1)
}

func TestRetryWorkerPicksUpUnclaimedCompletion(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)
	ctx := context.Background()

	f.mail.On("Send", f.owner.Email, mock.Anything, mock.Anything).Return(nil)

	challenge := f.createChallenge(t, 7)
	stylist := f.stylists[0]
	progress := f.progressFor(t, challenge.ID, stylist.ID)

	// Simulate a crash after the completion committed but before the
	// notification was claimed.
	completedAt := time.Now()
	_, err := f.repo.MutateProgress(ctx, progress.ID, func(p *entity.StylistChallengeProgress) error {
		p.Status = entity.ChallengeStatusCompleted
		p.CompletedAt = &completedAt
		p.ActiveKey = nil
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.NotifyPendingOnce(ctx))
	require.NoError(t, f.svc.NotifyPendingOnce(ctx))

	f.mail.AssertNumberOfCalls(t, "Send", 1)
}

func TestFailedSendIsNotRetried(t *testing.T) {
	f := newSalonChallengeFixture(t, 1, 0)
	ctx := context.Background()

	f.mail.On("Send", f.owner.Email, mock.Anything, mock.Anything).Return(fmt.Errorf("smtp down"))

	challenge := f.createChallenge(t, 1)
	stylist := f.stylists[0]
	progress := f.progressFor(t, challenge.ID, stylist.ID)

	got, err := f.svc.LogProgress(ctx, stylist.ID, progress.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ChallengeStatusCompleted, got.Status)

	// At-most-once: the claim was consumed before the send, so a failed
	// send stays failed instead of risking a duplicate.
	require.NoError(t, f.svc.NotifyPendingOnce(ctx))

	f.mail.AssertNumberOfCalls(t, "Send", 1)
}
