package repository

import (
	"context"
	"errors"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeRepository interface {
	Definitions(ctx context.Context) ([]entity.ChallengeDefinition, error)
	FindDefinitionByID(ctx context.Context, id uuid.UUID) (*entity.ChallengeDefinition, error)
	// CreateEnrollment inserts a fresh Active attempt. The partial-style
	// unique index (user, challenge, active_key) rejects a second live
	// attempt with ErrAlreadyActive while leaving finished history alone.
	CreateEnrollment(ctx context.Context, enrollment *entity.UserChallenge) error
	FindEnrollmentByID(ctx context.Context, id uuid.UUID) (*entity.UserChallenge, error)
	EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserChallenge, error)
	// MutateEnrollment loads, applies fn and saves inside one transaction so
	// check-then-increment races cannot lose updates.
	MutateEnrollment(ctx context.Context, id uuid.UUID, fn func(enrollment *entity.UserChallenge) error) (*entity.UserChallenge, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Definitions(ctx context.Context) ([]entity.ChallengeDefinition, error) {
	var defs []entity.ChallengeDefinition
	err := r.db.WithContext(ctx).Order("duration_days asc").Find(&defs).Error
	return defs, err
}

func (r *challengeRepository) FindDefinitionByID(ctx context.Context, id uuid.UUID) (*entity.ChallengeDefinition, error) {
	var def entity.ChallengeDefinition
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *challengeRepository) CreateEnrollment(ctx context.Context, enrollment *entity.UserChallenge) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrAlreadyActive
		}
		return err
	}
	return nil
}

func (r *challengeRepository) FindEnrollmentByID(ctx context.Context, id uuid.UUID) (*entity.UserChallenge, error) {
	var enrollment entity.UserChallenge
	err := r.db.WithContext(ctx).
		Preload("Challenge").
		Where("id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *challengeRepository) EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserChallenge, error) {
	var enrollments []entity.UserChallenge
	err := r.db.WithContext(ctx).
		Preload("Challenge").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *challengeRepository) MutateEnrollment(ctx context.Context, id uuid.UUID, fn func(enrollment *entity.UserChallenge) error) (*entity.UserChallenge, error) {
	var enrollment entity.UserChallenge

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock so two same-day logs serialize on the load instead of
		// both passing the already-logged check off the same stale read.
		if err := database.LockForUpdate(tx).
			Preload("Challenge").
			Where("id = ?", id).
			First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		if err := fn(&enrollment); err != nil {
			return err
		}

		return tx.Save(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	return &enrollment, nil
}
