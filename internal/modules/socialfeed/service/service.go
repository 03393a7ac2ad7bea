package service

import (
	"context"
	"errors"
	"log"
	"time"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/internal/modules/socialfeed/repository"
	streakService "anoa.com/salonstreak/internal/modules/streak/service"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/dateutil"
	"github.com/google/uuid"
)

const reconcileBatchSize = 100

// SocialFeedService receives externally observed posts and folds them into
// the streak engine. The upstream fetcher (token refresh, rate limits) is a
// separate job; all it owes this service is (user, date, media id) triples.
type SocialFeedService interface {
	IngestSignal(ctx context.Context, userID uuid.UUID, date, externalMediaID string) error
	HasSocialPostOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error)
	// ReconcileOnce re-drives stored signals that never made it into the
	// streak state. Returns how many signals were settled.
	ReconcileOnce(ctx context.Context) (int, error)
	StartReconcileWorker(ctx context.Context, every time.Duration)
}

type socialFeedService struct {
	repo    repository.SocialSignalRepository
	streaks streakService.StreakService
}

func NewSocialFeedService(repo repository.SocialSignalRepository, streaks streakService.StreakService) SocialFeedService {
	return &socialFeedService{
		repo:    repo,
		streaks: streaks,
	}
}

func (s *socialFeedService) IngestSignal(ctx context.Context, userID uuid.UUID, date, externalMediaID string) error {
	if !dateutil.IsValid(date) || externalMediaID == "" {
		return apperror.ErrInvalidInput
	}

	signal := &entity.SocialPostSignal{
		UserID:          userID,
		Date:            date,
		ExternalMediaID: externalMediaID,
	}

	if err := s.repo.Insert(ctx, signal); err != nil {
		if errors.Is(err, repository.ErrDuplicateSignal) {
			// Re-reported media or a second post on the same day: the day is
			// already covered, nothing to count.
			return nil
		}
		return err
	}

	return s.settle(ctx, signal)
}

// settle folds one stored signal into the streak state and marks it
// processed. When folding fails the processed_at sentinel stays NULL and the
// reconcile worker retries later; re-driving an already-folded date is a
// no-op inside the engine, so retries cannot double count.
func (s *socialFeedService) settle(ctx context.Context, signal *entity.SocialPostSignal) error {
	if err := s.streaks.OnNewSignal(ctx, signal.UserID, signal.Date, streakService.SourceSocial); err != nil {
		return err
	}
	if err := s.repo.MarkProcessed(ctx, signal.ID); err != nil {
		log.Printf("Failed to mark social signal %d processed: %v", signal.ID, err)
	}
	return nil
}

func (s *socialFeedService) HasSocialPostOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	return s.repo.HasSignalOnDate(ctx, userID, date)
}

func (s *socialFeedService) ReconcileOnce(ctx context.Context) (int, error) {
	signals, err := s.repo.Unprocessed(ctx, reconcileBatchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for i := range signals {
		if err := s.settle(ctx, &signals[i]); err != nil {
			log.Printf("Failed to reconcile social signal %d: %v", signals[i].ID, err)
			continue
		}
		settled++
	}

	return settled, nil
}

func (s *socialFeedService) StartReconcileWorker(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				settled, err := s.ReconcileOnce(ctx)
				if err != nil {
					log.Printf("❌ Social signal reconciliation failed: %v", err)
					continue
				}
				if settled > 0 {
					log.Printf("✅ Reconciled %d social signals", settled)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
