package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalonChallengeRepository interface {
	// CreateWithFanOut writes the challenge and its per-stylist progress rows
	// in one transaction. Either the whole roster is enrolled or nothing is.
	CreateWithFanOut(ctx context.Context, challenge *entity.SalonChallenge, progresses []entity.StylistChallengeProgress) error
	FindChallengeByID(ctx context.Context, id uuid.UUID) (*entity.SalonChallenge, error)
	ChallengesBySalon(ctx context.Context, salonID uuid.UUID) ([]entity.SalonChallenge, error)
	FinishChallenge(ctx context.Context, id uuid.UUID) error
	FindProgress(ctx context.Context, challengeID, stylistID uuid.UUID) (*entity.StylistChallengeProgress, error)
	ProgressByChallenge(ctx context.Context, challengeID uuid.UUID) ([]entity.StylistChallengeProgress, error)
	ProgressByStylist(ctx context.Context, stylistID uuid.UUID) ([]entity.StylistChallengeProgress, error)
	// MutateProgress loads, applies fn and saves inside one transaction so
	// check-then-increment races cannot lose updates.
	MutateProgress(ctx context.Context, id uuid.UUID, fn func(progress *entity.StylistChallengeProgress) error) (*entity.StylistChallengeProgress, error)
	// ClaimOwnerNotification flips owner_notified_at from NULL exactly once.
	// Returns true only for the caller that won the claim.
	ClaimOwnerNotification(ctx context.Context, progressID uuid.UUID, at time.Time) (bool, error)
	// UnnotifiedCompleted lists completed rows whose owner notification never
	// went out, oldest first, for the retry worker.
	UnnotifiedCompleted(ctx context.Context, limit int) ([]entity.StylistChallengeProgress, error)
}

type salonChallengeRepository struct {
	db *gorm.DB
}

func NewSalonChallengeRepository(db *gorm.DB) SalonChallengeRepository {
	return &salonChallengeRepository{db: db}
}

func (r *salonChallengeRepository) CreateWithFanOut(ctx context.Context, challenge *entity.SalonChallenge, progresses []entity.StylistChallengeProgress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(challenge).Error; err != nil {
			return err
		}

		for i := range progresses {
			progresses[i].SalonChallengeID = challenge.ID
		}
		if len(progresses) == 0 {
			return nil
		}
		return tx.Create(&progresses).Error
	})
}

func (r *salonChallengeRepository) FindChallengeByID(ctx context.Context, id uuid.UUID) (*entity.SalonChallenge, error) {
	var challenge entity.SalonChallenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *salonChallengeRepository) ChallengesBySalon(ctx context.Context, salonID uuid.UUID) ([]entity.SalonChallenge, error) {
	var challenges []entity.SalonChallenge
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("created_at desc").
		Find(&challenges).Error
	return challenges, err
}

func (r *salonChallengeRepository) FinishChallenge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.SalonChallenge{}).
		Where("id = ?", id).
		Update("status", entity.SalonChallengeStatusFinished).Error
}

func (r *salonChallengeRepository) FindProgress(ctx context.Context, challengeID, stylistID uuid.UUID) (*entity.StylistChallengeProgress, error) {
	var progress entity.StylistChallengeProgress
	err := r.db.WithContext(ctx).
		Where("salon_challenge_id = ? AND stylist_id = ?", challengeID, stylistID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

func (r *salonChallengeRepository) ProgressByChallenge(ctx context.Context, challengeID uuid.UUID) ([]entity.StylistChallengeProgress, error) {
	var progresses []entity.StylistChallengeProgress
	err := r.db.WithContext(ctx).
		Preload("Stylist").
		Where("salon_challenge_id = ?", challengeID).
		Order("posts_completed desc, current_streak desc").
		Find(&progresses).Error
	return progresses, err
}

func (r *salonChallengeRepository) ProgressByStylist(ctx context.Context, stylistID uuid.UUID) ([]entity.StylistChallengeProgress, error) {
	var progresses []entity.StylistChallengeProgress
	err := r.db.WithContext(ctx).
		Preload("SalonChallenge").
		Where("stylist_id = ?", stylistID).
		Order("created_at desc").
		Find(&progresses).Error
	return progresses, err
}

func (r *salonChallengeRepository) MutateProgress(ctx context.Context, id uuid.UUID, fn func(progress *entity.StylistChallengeProgress) error) (*entity.StylistChallengeProgress, error) {
	var progress entity.StylistChallengeProgress

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock so two same-day logs serialize on the load instead of
		// both passing the already-logged check off the same stale read.
		if err := database.LockForUpdate(tx).
			Preload("SalonChallenge").
			Where("id = ?", id).
			First(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		if err := fn(&progress); err != nil {
			return err
		}

		return tx.Save(&progress).Error
	})
	if err != nil {
		return nil, err
	}

	return &progress, nil
}

func (r *salonChallengeRepository) ClaimOwnerNotification(ctx context.Context, progressID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.StylistChallengeProgress{}).
		Where("id = ? AND owner_notified_at IS NULL", progressID).
		Update("owner_notified_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *salonChallengeRepository) UnnotifiedCompleted(ctx context.Context, limit int) ([]entity.StylistChallengeProgress, error) {
	var progresses []entity.StylistChallengeProgress
	err := r.db.WithContext(ctx).
		Preload("Stylist").
		Preload("SalonChallenge").
		Preload("SalonChallenge.Salon").
		Where("status = ? AND owner_notified_at IS NULL", entity.ChallengeStatusCompleted).
		Order("completed_at asc").
		Limit(limit).
		Find(&progresses).Error
	return progresses, err
}
