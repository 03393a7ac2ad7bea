package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/salonstreak/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateSignal marks a re-reported media id or an already-covered day.
// The ingest path treats it as a silent no-op.
var ErrDuplicateSignal = errors.New("signal already recorded")

type SocialSignalRepository interface {
	// Insert stores a discovered post. Duplicate media ids and second
	// signals for an already-covered (user, day) both come back as
	// ErrDuplicateSignal.
	Insert(ctx context.Context, signal *entity.SocialPostSignal) error
	HasSignalOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error)
	AllDates(ctx context.Context, userID uuid.UUID) ([]string, error)
	// Unprocessed returns stored signals the streak engine has not folded in
	// yet, oldest date first so the forward delta stays cheap.
	Unprocessed(ctx context.Context, limit int) ([]entity.SocialPostSignal, error)
	MarkProcessed(ctx context.Context, id uint) error
}

type socialSignalRepository struct {
	db *gorm.DB
}

func NewSocialSignalRepository(db *gorm.DB) SocialSignalRepository {
	return &socialSignalRepository{db: db}
}

func (r *socialSignalRepository) Insert(ctx context.Context, signal *entity.SocialPostSignal) error {
	if err := r.db.WithContext(ctx).Create(signal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSignal
		}
		return err
	}
	return nil
}

func (r *socialSignalRepository) HasSignalOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.SocialPostSignal{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&count).Error
	return count > 0, err
}

func (r *socialSignalRepository) AllDates(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&entity.SocialPostSignal{}).
		Where("user_id = ?", userID).
		Order("date asc").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *socialSignalRepository) Unprocessed(ctx context.Context, limit int) ([]entity.SocialPostSignal, error) {
	var signals []entity.SocialPostSignal
	err := r.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Order("date asc").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}

func (r *socialSignalRepository) MarkProcessed(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.SocialPostSignal{}).
		Where("id = ?", id).
		Update("processed_at", now).Error
}
