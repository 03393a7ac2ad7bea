package repository

import (
	"context"
	"errors"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostingLogRepository is the append-only ledger of manual confirmations.
// Rows are never updated or deleted.
type PostingLogRepository interface {
	// Insert writes one confirmation for (user, date). The unique index is
	// the arbiter: under concurrent calls for the same key exactly one
	// insert lands and every other caller gets ErrAlreadyLogged.
	Insert(ctx context.Context, log *entity.PostingLog) error
	HasLoggedOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error)
	// RecentDates returns up to limit logged dates, newest first.
	RecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
	AllDates(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type postingLogRepository struct {
	db *gorm.DB
}

func NewPostingLogRepository(db *gorm.DB) PostingLogRepository {
	return &postingLogRepository{db: db}
}

func (r *postingLogRepository) Insert(ctx context.Context, log *entity.PostingLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrAlreadyLogged
		}
		return err
	}
	return nil
}

func (r *postingLogRepository) HasLoggedOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PostingLog{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&count).Error
	return count > 0, err
}

func (r *postingLogRepository) RecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&entity.PostingLog{}).
		Where("user_id = ?", userID).
		Order("date desc").
		Limit(limit).
		Pluck("date", &dates).Error
	return dates, err
}

func (r *postingLogRepository) AllDates(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&entity.PostingLog{}).
		Where("user_id = ?", userID).
		Order("date asc").
		Pluck("date", &dates).Error
	return dates, err
}
