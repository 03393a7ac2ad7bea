package repository

import (
	"context"
	"errors"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error)
	// Mutate claims the counted-day marker for (user, date) and, when the
	// claim wins, runs fn against the user's streak row inside the same
	// transaction, creating the row on first use. A lost claim means the
	// date was already counted; counted is false and the state is untouched.
	// Before and after let the caller detect milestone crossings.
	Mutate(ctx context.Context, userID uuid.UUID, date string, fn func(state *entity.UserStreak) error) (before, after entity.UserStreak, counted bool, err error)
	// InsertBadge mints a milestone badge. Reports false when the badge was
	// already unlocked; the unique index makes repeats harmless.
	InsertBadge(ctx context.Context, userID uuid.UUID, milestoneDays int) (bool, error)
	Badges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error) {
	var state entity.UserStreak
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.UserStreak{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *streakRepository) Mutate(ctx context.Context, userID uuid.UUID, date string, fn func(state *entity.UserStreak) error) (entity.UserStreak, entity.UserStreak, bool, error) {
	var before, after entity.UserStreak
	var counted bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		marker := entity.StreakDay{UserID: userID, Date: date}
		claim := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}
		counted = true

		var state entity.UserStreak
		err := database.LockForUpdate(tx).
			Where("user_id = ?", userID).
			First(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = entity.UserStreak{UserID: userID}
			if err := tx.Create(&state).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		before = state
		if err := fn(&state); err != nil {
			return err
		}
		after = state

		return tx.Save(&state).Error
	})

	return before, after, counted, err
}

func (r *streakRepository) InsertBadge(ctx context.Context, userID uuid.UUID, milestoneDays int) (bool, error) {
	badge := entity.UserBadge{UserID: userID, MilestoneDays: milestoneDays}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&badge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *streakRepository) Badges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var badges []entity.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("milestone_days asc").
		Find(&badges).Error
	return badges, err
}
