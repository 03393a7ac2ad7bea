package service

import (
	"context"
	"testing"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/internal/modules/salon/dto"
	"anoa.com/salonstreak/internal/modules/salon/repository"
	userRepo "anoa.com/salonstreak/internal/modules/user/repository"
	"anoa.com/salonstreak/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type salonFixture struct {
	db      *gorm.DB
	svc     SalonService
	repo    repository.SalonRepository
	owner   *entity.User
	stylist *entity.User
}

func newSalonFixture(t *testing.T) *salonFixture {
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
	))

	owner := &entity.User{Username: "owner", Email: "owner@example.com", PasswordHash: "x", DisplayName: "Owner"}
	stylist := &entity.User{Username: "casey", Email: "casey@example.com", PasswordHash: "x", DisplayName: "Casey"}
	require.NoError(t, db.Create(owner).Error)
	require.NoError(t, db.Create(stylist).Error)

	repo := repository.NewSalonRepository(db)
	return &salonFixture{
		db:      db,
		svc:     NewSalonService(repo, userRepo.NewUserRepository(db), nil),
		repo:    repo,
		owner:   owner,
		stylist: stylist,
	}
}

func TestOnlyOneSalonPerOwner(t *testing.T) {
	f := newSalonFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSalon(ctx, f.owner.ID, dto.CreateSalonInput{Name: "Shear Genius"})
	require.NoError(t, err)

	_, err = f.svc.CreateSalon(ctx, f.owner.ID, dto.CreateSalonInput{Name: "Second Shop"})
	assert.Error(t, err)
}

func TestInviteAcceptFlow(t *testing.T) {
	f := newSalonFixture(t)
	ctx := context.Background()

	salon, err := f.svc.CreateSalon(ctx, f.owner.ID, dto.CreateSalonInput{Name: "Shear Genius"})
	require.NoError(t, err)

	require.NoError(t, f.svc.InviteMember(ctx, f.owner.ID, dto.InviteMemberInput{Username: "casey"}))

	invites, err := f.svc.MyInvites(ctx, f.stylist.ID)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, "Shear Genius", invites[0].SalonName)

	salonID := invites[0].SalonID
	require.Equal(t, salon.ID, salonID)
	require.NoError(t, f.svc.AcceptInvite(ctx, uuid.MustParse(salonID), f.stylist.ID))

	accepted, err := f.repo.AcceptedMembers(ctx, uuid.MustParse(salonID))
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, f.stylist.ID, accepted[0].UserID)

	// Resolving the same invite again is rejected.
	err = f.svc.AcceptInvite(ctx, uuid.MustParse(salonID), f.stylist.ID)
	assert.Error(t, err)
}

func TestDuplicateInviteRejected(t *testing.T) {
	f := newSalonFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSalon(ctx, f.owner.ID, dto.CreateSalonInput{Name: "Shear Genius"})
	require.NoError(t, err)

	require.NoError(t, f.svc.InviteMember(ctx, f.owner.ID, dto.InviteMemberInput{Username: "casey"}))
	assert.Error(t, f.svc.InviteMember(ctx, f.owner.ID, dto.InviteMemberInput{Username: "casey"}))
}

func TestDeclinedMemberNotAccepted(t *testing.T) {
	f := newSalonFixture(t)
	ctx := context.Background()

	salon, err := f.svc.CreateSalon(ctx, f.owner.ID, dto.CreateSalonInput{Name: "Shear Genius"})
	require.NoError(t, err)

	require.NoError(t, f.svc.InviteMember(ctx, f.owner.ID, dto.InviteMemberInput{Username: "casey"}))
	require.NoError(t, f.svc.DeclineInvite(ctx, uuid.MustParse(salon.ID), f.stylist.ID))

	accepted, err := f.repo.AcceptedMembers(ctx, uuid.MustParse(salon.ID))
	require.NoError(t, err)
	assert.Empty(t, accepted)
}

func TestInviteUnknownUsername(t *testing.T) {
	f := newSalonFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSalon(ctx, f.owner.ID, dto.CreateSalonInput{Name: "Shear Genius"})
	require.NoError(t, err)

	err = f.svc.InviteMember(ctx, f.owner.ID, dto.InviteMemberInput{Username: "ghost"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
