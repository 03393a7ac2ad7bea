package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"anoa.com/salonstreak/internal/entity"
	notifService "anoa.com/salonstreak/internal/modules/notification/service"
	postinglogRepo "anoa.com/salonstreak/internal/modules/postinglog/repository"
	socialRepo "anoa.com/salonstreak/internal/modules/socialfeed/repository"
	"anoa.com/salonstreak/internal/modules/streak/dto"
	streakRepo "anoa.com/salonstreak/internal/modules/streak/repository"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/dateutil"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Source tags which producer reported a posting date. Both feed the same
// ingestion path so a date can never be counted twice.
type Source string

const (
	SourceManual Source = "manual"
	SourceSocial Source = "social"
)

const snapshotTTL = 10 * time.Minute

type StreakService interface {
	// LogManualPost appends to the posting ledger and advances the streak.
	// A second confirmation for the same day fails with ErrAlreadyLogged.
	LogManualPost(ctx context.Context, userID uuid.UUID, date string, contentRef *string) (*entity.PostingLog, error)
	// OnNewSignal folds one accepted signal into the counter state. Safe to
	// call from both sources for the same date, concurrently or repeatedly;
	// the date is counted exactly once.
	OnNewSignal(ctx context.Context, userID uuid.UUID, date string, source Source) error
	EffectivePostedDates(ctx context.Context, userID uuid.UUID) ([]string, error)
	HasPostedToday(ctx context.Context, userID uuid.UUID) (bool, error)
	Snapshot(ctx context.Context, userID uuid.UUID) (*dto.StreakSnapshot, error)
}

type streakService struct {
	postingRepo         postinglogRepo.PostingLogRepository
	socialRepo          socialRepo.SocialSignalRepository
	repo                streakRepo.StreakRepository
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	now                 func() time.Time
}

func NewStreakService(
	postingRepo postinglogRepo.PostingLogRepository,
	socialRepo socialRepo.SocialSignalRepository,
	repo streakRepo.StreakRepository,
	notificationService notifService.NotificationService,
	redisClient *redis.Client,
) StreakService {
	return &streakService{
		postingRepo:         postingRepo,
		socialRepo:          socialRepo,
		repo:                repo,
		notificationService: notificationService,
		redisClient:         redisClient,
		now:                 time.Now,
	}
}

func (s *streakService) LogManualPost(ctx context.Context, userID uuid.UUID, date string, contentRef *string) (*entity.PostingLog, error) {
	if date == "" {
		date = dateutil.Format(s.now())
	}
	if !dateutil.IsValid(date) {
		return nil, apperror.ErrInvalidInput
	}

	entry := &entity.PostingLog{
		UserID:     userID,
		Date:       date,
		ContentRef: contentRef,
	}

	// The unique (user_id, date) index arbitrates concurrent confirmations;
	// the loser sees ErrAlreadyLogged and no counter moves twice.
	if err := s.postingRepo.Insert(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.OnNewSignal(ctx, userID, date, SourceManual); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *streakService) OnNewSignal(ctx context.Context, userID uuid.UUID, date string, source Source) error {
	if !dateutil.IsValid(date) {
		return apperror.ErrInvalidInput
	}

	switch source {
	case SourceManual, SourceSocial:
	default:
		return apperror.ErrInvalidInput
	}

	// A date counts once no matter which source reports it, or how many
	// report it at the same instant. The counted-day marker inside Mutate is
	// the arbiter: checking the other source's rows instead would let two
	// racing signals each see the other and both skip the count.
	before, after, counted, err := s.repo.Mutate(ctx, userID, date, func(state *entity.UserStreak) error {
		return s.advance(ctx, state, date)
	})
	if err != nil {
		return err
	}
	if !counted {
		return nil
	}

	s.invalidateSnapshot(ctx, userID)
	s.unlockMilestones(ctx, userID, before.CurrentStreak, after.CurrentStreak)

	return nil
}

// advance applies the O(1) forward delta. When a backfilled date arrives out
// of order the delta would misread contiguity, so the state is rebuilt from
// the merged date set instead.
func (s *streakService) advance(ctx context.Context, state *entity.UserStreak, date string) error {
	if state.LastLoggedDate != nil {
		last := *state.LastLoggedDate
		if date == last {
			return nil
		}
		if dateutil.Before(date, last) {
			return s.recompute(ctx, state)
		}
	}

	if state.LastLoggedDate != nil && *state.LastLoggedDate == dateutil.Yesterday(date) {
		state.CurrentStreak++
	} else {
		state.CurrentStreak = 1
	}
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	state.TotalPosts++
	state.LastLoggedDate = &date

	return nil
}

func (s *streakService) recompute(ctx context.Context, state *entity.UserStreak) error {
	dates, err := s.EffectivePostedDates(ctx, state.UserID)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		return nil
	}

	current, longest := computeStreaks(dates, dateutil.Yesterday)
	state.CurrentStreak = current
	if longest > state.LongestStreak {
		state.LongestStreak = longest
	}
	state.TotalPosts = len(dates)
	last := dates[len(dates)-1]
	state.LastLoggedDate = &last

	return nil
}

// EffectivePostedDates is the de-duplicated union of manual log dates and
// social signal dates, ascending.
func (s *streakService) EffectivePostedDates(ctx context.Context, userID uuid.UUID) ([]string, error) {
	manual, err := s.postingRepo.AllDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	social, err := s.socialRepo.AllDates(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(manual)+len(social))
	merged := make([]string, 0, len(manual)+len(social))
	for _, d := range append(manual, social...) {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		merged = append(merged, d)
	}
	sort.Strings(merged)

	return merged, nil
}

func (s *streakService) HasPostedToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	today := dateutil.Format(s.now())

	logged, err := s.postingRepo.HasLoggedOnDate(ctx, userID, today)
	if err != nil {
		return false, err
	}
	if logged {
		return true, nil
	}

	return s.socialRepo.HasSignalOnDate(ctx, userID, today)
}

func (s *streakService) Snapshot(ctx context.Context, userID uuid.UUID) (*dto.StreakSnapshot, error) {
	cacheKey := snapshotKey(userID)

	if s.redisClient != nil {
		if raw, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var snap dto.StreakSnapshot
			if json.Unmarshal([]byte(raw), &snap) == nil {
				return &snap, nil
			}
		}
	}

	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates, err := s.EffectivePostedDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent := make([]string, 0, 30)
	for i := len(dates) - 1; i >= 0 && len(recent) < 30; i-- {
		recent = append(recent, dates[i])
	}

	postedToday, err := s.HasPostedToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.repo.Badges(ctx, userID)
	if err != nil {
		return nil, err
	}
	badgeDays := make([]int, 0, len(badges))
	for _, b := range badges {
		badgeDays = append(badgeDays, b.MilestoneDays)
	}

	snap := &dto.StreakSnapshot{
		CurrentStreak:  state.CurrentStreak,
		LongestStreak:  state.LongestStreak,
		TotalPosts:     state.TotalPosts,
		LastLoggedDate: state.LastLoggedDate,
		PostedToday:    postedToday,
		RecentDates:    recent,
		Badges:         badgeDays,
	}

	if s.redisClient != nil {
		if raw, err := json.Marshal(snap); err == nil {
			s.redisClient.Set(ctx, cacheKey, raw, snapshotTTL)
		}
	}

	return snap, nil
}

func (s *streakService) invalidateSnapshot(ctx context.Context, userID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, snapshotKey(userID)).Err(); err != nil {
		log.Printf("Failed to invalidate streak snapshot for user %s: %v", userID, err)
	}
}

func (s *streakService) unlockMilestones(ctx context.Context, userID uuid.UUID, prevStreak, newStreak int) {
	for _, m := range MilestonesCrossed(prevStreak, newStreak) {
		created, err := s.repo.InsertBadge(ctx, userID, m)
		if err != nil {
			log.Printf("Failed to insert badge %d for user %s: %v", m, userID, err)
			continue
		}
		if !created || s.notificationService == nil {
			continue
		}

		notif := &entity.Notification{
			UserID:     userID,
			ActorID:    userID, // self-triggered
			EntityID:   userID,
			EntityType: "badge",
			Type:       entity.NotificationTypeBadgeUnlocked,
			Message:    fmt.Sprintf("🔥 %d-day posting streak! New badge unlocked.", m),
		}
		if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
			log.Printf("Failed to send badge notification to user %s: %v", userID, err)
		}
	}
}

func snapshotKey(userID uuid.UUID) string {
	return fmt.Sprintf("streak:snapshot:%s", userID.String())
}
