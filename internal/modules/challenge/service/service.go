package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/internal/modules/challenge/dto"
	"anoa.com/salonstreak/internal/modules/challenge/repository"
	notifService "anoa.com/salonstreak/internal/modules/notification/service"
	search "anoa.com/salonstreak/internal/modules/search/service"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/dateutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeService interface {
	ListDefinitions(ctx context.Context, query string) ([]dto.DefinitionResponse, error)
	// Start creates a fresh Active enrollment. Fails with ErrAlreadyActive
	// while a live attempt for the same (user, challenge) exists; terminal
	// attempts never block a restart.
	Start(ctx context.Context, userID, challengeID uuid.UUID) (*dto.EnrollmentResponse, error)
	// LogProgress advances an Active enrollment by one day. At most one log
	// per calendar day; completion is checked on every log.
	LogProgress(ctx context.Context, userID, enrollmentID uuid.UUID) (*dto.EnrollmentResponse, error)
	Abandon(ctx context.Context, userID, enrollmentID uuid.UUID) error
	MyEnrollments(ctx context.Context, userID uuid.UUID) ([]dto.EnrollmentResponse, error)
}

type challengeService struct {
	repo                repository.ChallengeRepository
	searchService       search.CatalogSearchService
	notificationService notifService.NotificationService
	now                 func() time.Time
}

func NewChallengeService(repo repository.ChallengeRepository, searchService search.CatalogSearchService, notificationService notifService.NotificationService) ChallengeService {
	return &challengeService{
		repo:                repo,
		searchService:       searchService,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

func (s *challengeService) ListDefinitions(ctx context.Context, query string) ([]dto.DefinitionResponse, error) {
	// Full-text search goes through Meilisearch; the plain listing stays on
	// the database so the catalog works without the search sidecar.
	if query != "" && s.searchService != nil {
		hits, err := s.searchService.SearchDefinitions(ctx, query)
		if err == nil {
			return toDefinitionResponses(hits), nil
		}
		log.Printf("Catalog search failed, falling back to listing: %v", err)
	}

	defs, err := s.repo.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	return toDefinitionResponses(defs), nil
}

func (s *challengeService) Start(ctx context.Context, userID, challengeID uuid.UUID) (*dto.EnrollmentResponse, error) {
	def, err := s.repo.FindDefinitionByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	activeKey := entity.ActiveKeyValue
	enrollment := &entity.UserChallenge{
		UserID:      userID,
		ChallengeID: def.ID,
		Status:      entity.ChallengeStatusActive,
		ActiveKey:   &activeKey,
		StartedAt:   s.now(),
	}

	if err := s.repo.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	enrollment.Challenge = *def

	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

func (s *challengeService) LogProgress(ctx context.Context, userID, enrollmentID uuid.UUID) (*dto.EnrollmentResponse, error) {
	today := dateutil.Format(s.now())
	completed := false

	enrollment, err := s.repo.MutateEnrollment(ctx, enrollmentID, func(e *entity.UserChallenge) error {
		if e.UserID != userID {
			return apperror.ErrForbidden
		}
		if e.Status != entity.ChallengeStatusActive {
			return apperror.ErrNotActive
		}
		if e.LastPostDate != nil && *e.LastPostDate == today {
			return apperror.ErrAlreadyLoggedToday
		}

		if e.LastPostDate != nil && *e.LastPostDate == dateutil.Yesterday(today) {
			e.CurrentStreak++
		} else {
			e.CurrentStreak = 1
		}
		if e.CurrentStreak > e.LongestStreak {
			e.LongestStreak = e.CurrentStreak
		}
		e.PostsCompleted++
		e.LastPostDate = &today

		elapsedDays := int(s.now().Sub(e.StartedAt).Hours() / 24)
		if e.PostsCompleted >= e.Challenge.PostsRequired || elapsedDays >= e.Challenge.DurationDays {
			now := s.now()
			e.Status = entity.ChallengeStatusCompleted
			e.CompletedAt = &now
			e.ActiveKey = nil
			completed = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.notifyCompleted(enrollment)
	}

	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

func (s *challengeService) Abandon(ctx context.Context, userID, enrollmentID uuid.UUID) error {
	_, err := s.repo.MutateEnrollment(ctx, enrollmentID, func(e *entity.UserChallenge) error {
		if e.UserID != userID {
			return apperror.ErrForbidden
		}
		if e.Status != entity.ChallengeStatusActive {
			return apperror.ErrNotActive
		}

		e.Status = entity.ChallengeStatusAbandoned
		e.ActiveKey = nil
		return nil
	})
	return err
}

func (s *challengeService) MyEnrollments(ctx context.Context, userID uuid.UUID) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.EnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		resp = append(resp, toEnrollmentResponse(&enrollments[i]))
	}
	return resp, nil
}

func (s *challengeService) notifyCompleted(enrollment *entity.UserChallenge) {
	if s.notificationService == nil {
		return
	}

	notif := &entity.Notification{
		UserID:     enrollment.UserID,
		ActorID:    enrollment.UserID,
		EntityID:   enrollment.ID,
		EntityType: "challenge",
		Type:       entity.NotificationTypeChallengeCompleted,
		Message:    fmt.Sprintf("🎉 Challenge \"%s\" completed!", enrollment.Challenge.Title),
	}
	if err := s.notificationService.CreateNotification(context.Background(), notif); err != nil {
		log.Printf("Failed to send challenge completion notification: %v", err)
	}
}

func toDefinitionResponses(defs []entity.ChallengeDefinition) []dto.DefinitionResponse {
	resp := make([]dto.DefinitionResponse, 0, len(defs))
	for i := range defs {
		resp = append(resp, toDefinitionResponse(&defs[i]))
	}
	return resp
}

func toDefinitionResponse(def *entity.ChallengeDefinition) dto.DefinitionResponse {
	return dto.DefinitionResponse{
		ID:            def.ID.String(),
		Slug:          def.Slug,
		Title:         def.Title,
		Description:   def.Description,
		DurationDays:  def.DurationDays,
		PostsRequired: def.PostsRequired,
	}
}

func toEnrollmentResponse(e *entity.UserChallenge) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:             e.ID.String(),
		Challenge:      toDefinitionResponse(&e.Challenge),
		Status:         e.Status,
		StartedAt:      e.StartedAt,
		PostsCompleted: e.PostsCompleted,
		CurrentStreak:  e.CurrentStreak,
		LongestStreak:  e.LongestStreak,
		LastPostDate:   e.LastPostDate,
		CompletedAt:    e.CompletedAt,
	}
}
