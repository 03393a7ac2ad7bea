package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"anoa.com/salonstreak/internal/entity"
	notifService "anoa.com/salonstreak/internal/modules/notification/service"
	salonRepo "anoa.com/salonstreak/internal/modules/salon/repository"
	"anoa.com/salonstreak/internal/modules/salonchallenge/dto"
	"anoa.com/salonstreak/internal/modules/salonchallenge/repository"
	userRepo "anoa.com/salonstreak/internal/modules/user/repository"
	"anoa.com/salonstreak/pkg/apperror"
	"anoa.com/salonstreak/pkg/dateutil"
	commonDto "anoa.com/salonstreak/pkg/dto"
	"anoa.com/salonstreak/pkg/mailer"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type SalonChallengeService interface {
	// Create fans the challenge out to every member accepted at creation
	// time. Stylists who join the salon later are not enrolled.
	Create(ctx context.Context, ownerID uuid.UUID, input dto.CreateSalonChallengeInput) (*dto.SalonChallengeResponse, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]dto.SalonChallengeResponse, error)
	Finish(ctx context.Context, ownerID, challengeID uuid.UUID) error
	// Board is the owner's aggregate view over every enrolled stylist.
	Board(ctx context.Context, ownerID, challengeID uuid.UUID) (*dto.ChallengeBoardResponse, error)
	// LogProgress advances the stylist's own row by one day, at most once per
	// calendar day. Completion triggers the owner notification.
	LogProgress(ctx context.Context, stylistID, progressID uuid.UUID) (*dto.MyProgressResponse, error)
	MyProgress(ctx context.Context, stylistID uuid.UUID) ([]dto.MyProgressResponse, error)
	// NotifyPendingOnce re-drives owner notifications for completions whose
	// send never went out (crash between commit and claim).
	NotifyPendingOnce(ctx context.Context) error
	StartNotifyRetryWorker(every time.Duration)
}

type salonChallengeService struct {
	repo                repository.SalonChallengeRepository
	salonRepo           salonRepo.SalonRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	mail                mailer.Mailer
	sanitizer           *bluemonday.Policy
	now                 func() time.Time
}

func NewSalonChallengeService(
	repo repository.SalonChallengeRepository,
	salonRepository salonRepo.SalonRepository,
	userRepository userRepo.UserRepository,
	notificationService notifService.NotificationService,
	mail mailer.Mailer,
) SalonChallengeService {
	return &salonChallengeService{
		repo:                repo,
		salonRepo:           salonRepository,
		userRepo:            userRepository,
		notificationService: notificationService,
		mail:                mail,
		sanitizer:           bluemonday.StrictPolicy(),
		now:                 time.Now,
	}
}

// cleanText strips markup from owner-authored text. Titles and reward notes
// end up in notification messages and emails, never rendered back as HTML.
func (s *salonChallengeService) cleanText(in string) string {
	text := html.UnescapeString(s.sanitizer.Sanitize(in))
	return strings.Join(strings.Fields(text), " ")
}

func (s *salonChallengeService) Create(ctx context.Context, ownerID uuid.UUID, input dto.CreateSalonChallengeInput) (*dto.SalonChallengeResponse, error) {
	salon, err := s.salonRepo.FindSalonByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	members, err := s.salonRepo.AcceptedMembers(ctx, salon.ID)
	if err != nil {
		return nil, err
	}

	challenge := &entity.SalonChallenge{
		SalonID:       salon.ID,
		Title:         s.cleanText(input.Title),
		DurationDays:  input.DurationDays,
		PostsRequired: input.PostsRequired,
		RewardText:    s.cleanText(input.RewardText),
		Status:        entity.SalonChallengeStatusActive,
	}

	// The roster is frozen here: one progress row per accepted member.
	activeKey := entity.ActiveKeyValue
	startedAt := s.now()
	progresses := make([]entity.StylistChallengeProgress, 0, len(members))
	for _, m := range members {
		progresses = append(progresses, entity.StylistChallengeProgress{
			StylistID: m.UserID,
			Status:    entity.ChallengeStatusActive,
			ActiveKey: &activeKey,
			StartedAt: startedAt,
		})
	}

	if err := s.repo.CreateWithFanOut(ctx, challenge, progresses); err != nil {
		return nil, err
	}

	log.Printf("🔥 Salon challenge %q created, %d stylists enrolled", challenge.Title, len(progresses))

	for _, p := range progresses {
		s.notifyEnrolled(challenge, ownerID, p.StylistID)
	}

	resp := toSalonChallengeResponse(challenge)
	resp.EnrolledCount = len(progresses)
	return &resp, nil
}

func (s *salonChallengeService) List(ctx context.Context, ownerID uuid.UUID) ([]dto.SalonChallengeResponse, error) {
	salon, err := s.salonRepo.FindSalonByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	challenges, err := s.repo.ChallengesBySalon(ctx, salon.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.SalonChallengeResponse, 0, len(challenges))
	for i := range challenges {
		resp = append(resp, toSalonChallengeResponse(&challenges[i]))
	}
	return resp, nil
}

func (s *salonChallengeService) Finish(ctx context.Context, ownerID, challengeID uuid.UUID) error {
	if _, err := s.ownedChallenge(ctx, ownerID, challengeID); err != nil {
		return err
	}
	return s.repo.FinishChallenge(ctx, challengeID)
}

func (s *salonChallengeService) Board(ctx context.Context, ownerID, challengeID uuid.UUID) (*dto.ChallengeBoardResponse, error) {
	challenge, err := s.ownedChallenge(ctx, ownerID, challengeID)
	if err != nil {
		return nil, err
	}

	progresses, err := s.repo.ProgressByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	board := &dto.ChallengeBoardResponse{
		Challenge: toSalonChallengeResponse(challenge),
		Progress:  make([]dto.StylistProgressResponse, 0, len(progresses)),
	}
	board.Challenge.EnrolledCount = len(progresses)

	for i := range progresses {
		p := &progresses[i]
		if p.Status == entity.ChallengeStatusCompleted {
			board.Challenge.CompletedCount++
		}
		board.Progress = append(board.Progress, dto.StylistProgressResponse{
			ID: p.ID.String(),
			Stylist: commonDto.StylistResponse{
				Username:    p.Stylist.Username,
				DisplayName: p.Stylist.DisplayName,
				AvatarURL:   p.Stylist.AvatarURL,
			},
			Status:         p.Status,
			StartedAt:      p.StartedAt,
			PostsCompleted: p.PostsCompleted,
			CurrentStreak:  p.CurrentStreak,
			LongestStreak:  p.LongestStreak,
			LastPostDate:   p.LastPostDate,
			CompletedAt:    p.CompletedAt,
		})
	}

	return board, nil
}

func (s *salonChallengeService) LogProgress(ctx context.Context, stylistID, progressID uuid.UUID) (*dto.MyProgressResponse, error) {
	today := dateutil.Format(s.now())
	completed := false

	progress, err := s.repo.MutateProgress(ctx, progressID, func(p *entity.StylistChallengeProgress) error {
		if p.StylistID != stylistID {
			return apperror.ErrForbidden
		}
		if p.Status != entity.ChallengeStatusActive {
			return apperror.ErrNotActive
		}
		if p.SalonChallenge.Status != entity.SalonChallengeStatusActive {
			return apperror.ErrNotActive
		}
		if p.LastPostDate != nil && *p.LastPostDate == today {
			return apperror.ErrAlreadyLoggedToday
		}

		if p.LastPostDate != nil && *p.LastPostDate == dateutil.Yesterday(today) {
			p.CurrentStreak++
		} else {
			p.CurrentStreak = 1
		}
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
		p.PostsCompleted++
		p.LastPostDate = &today

		elapsedDays := int(s.now().Sub(p.StartedAt).Hours() / 24)
		if p.PostsCompleted >= p.SalonChallenge.PostsRequired || elapsedDays >= p.SalonChallenge.DurationDays {
			now := s.now()
			p.Status = entity.ChallengeStatusCompleted
			p.CompletedAt = &now
			p.ActiveKey = nil
			completed = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.notifyOwner(ctx, progress)
	}

	resp := toMyProgressResponse(progress)
	return &resp, nil
}

func (s *salonChallengeService) MyProgress(ctx context.Context, stylistID uuid.UUID) ([]dto.MyProgressResponse, error) {
	progresses, err := s.repo.ProgressByStylist(ctx, stylistID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.MyProgressResponse, 0, len(progresses))
	for i := range progresses {
		resp = append(resp, toMyProgressResponse(&progresses[i]))
	}
	return resp, nil
}

// notifyOwner congratulates the owner about a stylist's completion. The claim
// runs before the send, so the notification goes out at most once even when
// completion checks race or the worker re-scans the row.
func (s *salonChallengeService) notifyOwner(ctx context.Context, progress *entity.StylistChallengeProgress) {
	won, err := s.repo.ClaimOwnerNotification(ctx, progress.ID, s.now())
	if err != nil {
		log.Printf("Failed to claim owner notification for progress %s: %v", progress.ID, err)
		return
	}
	if !won {
		return
	}

	challenge := progress.SalonChallenge
	if challenge.ID == uuid.Nil {
		loaded, err := s.repo.FindChallengeByID(ctx, progress.SalonChallengeID)
		if err != nil {
			log.Printf("Failed to load salon challenge %s: %v", progress.SalonChallengeID, err)
			return
		}
		challenge = *loaded
	}

	salon, err := s.salonRepo.FindSalonByID(ctx, challenge.SalonID)
	if err != nil {
		log.Printf("Failed to load salon %s: %v", challenge.SalonID, err)
		return
	}

	stylist := progress.Stylist
	if stylist.ID == uuid.Nil {
		if loaded, err := s.userRepo.FindByID(ctx, progress.StylistID.String()); err == nil {
			stylist = *loaded
		}
	}
	stylistName := stylist.DisplayName
	if stylistName == "" {
		stylistName = progress.StylistID.String()
	}

	message := fmt.Sprintf("🎉 %s completed the challenge %q", stylistName, challenge.Title)

	if s.notificationService != nil {
		notif := &entity.Notification{
			UserID:     salon.OwnerID,
			ActorID:    progress.StylistID,
			EntityID:   progress.ID,
			EntityType: "salon_challenge",
			Type:       entity.NotificationTypeSalonCompleted,
			Message:    message,
		}
		if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
			log.Printf("Failed to send owner notification: %v", err)
		}
	}

	if s.mail != nil {
		owner, err := s.userRepo.FindByID(ctx, salon.OwnerID.String())
		if err != nil {
			log.Printf("Failed to load owner %s for email: %v", salon.OwnerID, err)
			return
		}

		body := fmt.Sprintf("%s\n\nReward: %s\n", message, challenge.RewardText)
		if err := s.mail.Send(owner.Email, "A stylist finished your salon challenge", body); err != nil {
			log.Printf("Failed to email owner %s: %v", owner.Email, err)
		}
	}
}

func (s *salonChallengeService) notifyEnrolled(challenge *entity.SalonChallenge, ownerID, stylistID uuid.UUID) {
	if s.notificationService == nil {
		return
	}

	notif := &entity.Notification{
		UserID:     stylistID,
		ActorID:    ownerID,
		EntityID:   challenge.ID,
		EntityType: "salon_challenge",
		Type:       entity.NotificationTypeSalonChallenge,
		Message:    fmt.Sprintf("Your salon started the challenge %q", challenge.Title),
	}
	if err := s.notificationService.CreateNotification(context.Background(), notif); err != nil {
		log.Printf("Failed to send enrollment notification: %v", err)
	}
}

func (s *salonChallengeService) NotifyPendingOnce(ctx context.Context) error {
	progresses, err := s.repo.UnnotifiedCompleted(ctx, 50)
	if err != nil {
		return err
	}

	for i := range progresses {
		s.notifyOwner(ctx, &progresses[i])
	}
	return nil
}

func (s *salonChallengeService) StartNotifyRetryWorker(every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		log.Printf("✅ Owner notification retry worker started (every %s)", every)
		for range ticker.C {
			if err := s.NotifyPendingOnce(context.Background()); err != nil {
				log.Printf("❌ Owner notification retry failed: %v", err)
			}
		}
	}()
}

func (s *salonChallengeService) ownedChallenge(ctx context.Context, ownerID, challengeID uuid.UUID) (*entity.SalonChallenge, error) {
	challenge, err := s.repo.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	salon, err := s.salonRepo.FindSalonByID(ctx, challenge.SalonID)
	if err != nil {
		return nil, err
	}
	if salon.OwnerID != ownerID {
		return nil, apperror.ErrForbidden
	}

	return challenge, nil
}

func toSalonChallengeResponse(c *entity.SalonChallenge) dto.SalonChallengeResponse {
	return dto.SalonChallengeResponse{
		ID:            c.ID.String(),
		SalonID:       c.SalonID.String(),
		Title:         c.Title,
		DurationDays:  c.DurationDays,
		PostsRequired: c.PostsRequired,
		RewardText:    c.RewardText,
		Status:        c.Status,
		CreatedAt:     c.CreatedAt,
	}
}

func toMyProgressResponse(p *entity.StylistChallengeProgress) dto.MyProgressResponse {
	return dto.MyProgressResponse{
		ID:             p.ID.String(),
		Challenge:      toSalonChallengeResponse(&p.SalonChallenge),
		Status:         p.Status,
		PostsCompleted: p.PostsCompleted,
		CurrentStreak:  p.CurrentStreak,
		LongestStreak:  p.LongestStreak,
		LastPostDate:   p.LastPostDate,
		CompletedAt:    p.CompletedAt,
	}
}
