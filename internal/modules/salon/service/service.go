package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/salonstreak/internal/entity"
	notifService "anoa.com/salonstreak/internal/modules/notification/service"
	"anoa.com/salonstreak/internal/modules/salon/dto"
	"anoa.com/salonstreak/internal/modules/salon/repository"
	userRepo "anoa.com/salonstreak/internal/modules/user/repository"
	"anoa.com/salonstreak/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalonService interface {
	CreateSalon(ctx context.Context, ownerID uuid.UUID, input dto.CreateSalonInput) (*dto.SalonResponse, error)
	MySalon(ctx context.Context, ownerID uuid.UUID) (*dto.SalonResponse, error)
	InviteMember(ctx context.Context, ownerID uuid.UUID, input dto.InviteMemberInput) error
	AcceptInvite(ctx context.Context, salonID, userID uuid.UUID) error
	DeclineInvite(ctx context.Context, salonID, userID uuid.UUID) error
	Members(ctx context.Context, ownerID uuid.UUID) ([]dto.MemberResponse, error)
	MyInvites(ctx context.Context, userID uuid.UUID) ([]dto.InviteResponse, error)
}

type salonService struct {
	repo                repository.SalonRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
}

func NewSalonService(repo repository.SalonRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService) SalonService {
	return &salonService{
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *salonService) CreateSalon(ctx context.Context, ownerID uuid.UUID, input dto.CreateSalonInput) (*dto.SalonResponse, error) {
	if _, err := s.repo.FindSalonByOwner(ctx, ownerID); err == nil {
		return nil, apperror.New(409, "owner already has a salon", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	salon := &entity.Salon{
		OwnerID: ownerID,
		Name:    input.Name,
	}
	if err := s.repo.CreateSalon(ctx, salon); err != nil {
		return nil, err
	}

	resp := toSalonResponse(salon)
	return &resp, nil
}

func (s *salonService) MySalon(ctx context.Context, ownerID uuid.UUID) (*dto.SalonResponse, error) {
	salon, err := s.repo.FindSalonByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	resp := toSalonResponse(salon)
	return &resp, nil
}

func (s *salonService) InviteMember(ctx context.Context, ownerID uuid.UUID, input dto.InviteMemberInput) error {
	salon, err := s.repo.FindSalonByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	member := &entity.SalonMember{
		SalonID: salon.ID,
		UserID:  user.ID,
		Status:  entity.MemberStatusPending,
	}
	if err := s.repo.InviteMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return apperror.New(409, err.Error(), apperror.ErrBadRequest)
		}
		return err
	}

	if s.notificationService != nil {
		notif := &entity.Notification{
			UserID:     user.ID,
			ActorID:    ownerID,
			EntityID:   salon.ID,
			EntityType: "salon",
			Type:       entity.NotificationTypeSalonInvite,
			Message:    fmt.Sprintf("You have been invited to join %s", salon.Name),
		}
		if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
			log.Printf("Failed to send salon invite notification: %v", err)
		}
	}

	return nil
}

func (s *salonService) AcceptInvite(ctx context.Context, salonID, userID uuid.UUID) error {
	return s.resolveInvite(ctx, salonID, userID, entity.MemberStatusAccepted)
}

func (s *salonService) DeclineInvite(ctx context.Context, salonID, userID uuid.UUID) error {
	return s.resolveInvite(ctx, salonID, userID, entity.MemberStatusDeclined)
}

func (s *salonService) resolveInvite(ctx context.Context, salonID, userID uuid.UUID, status string) error {
	member, err := s.repo.FindMember(ctx, salonID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if member.Status != entity.MemberStatusPending {
		return apperror.New(409, "invite already resolved", apperror.ErrBadRequest)
	}

	member.Status = status
	if status == entity.MemberStatusAccepted {
		now := time.Now()
		member.AcceptedAt = &now
	}

	return s.repo.UpdateMember(ctx, member)
}

func (s *salonService) Members(ctx context.Context, ownerID uuid.UUID) ([]dto.MemberResponse, error) {
	salon, err := s.repo.FindSalonByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	members, err := s.repo.Members(ctx, salon.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, dto.MemberResponse{
			UserID:      m.UserID.String(),
			Username:    m.User.Username,
			DisplayName: m.User.DisplayName,
			Status:      m.Status,
			InvitedAt:   m.InvitedAt,
			AcceptedAt:  m.AcceptedAt,
		})
	}

	return resp, nil
}

func (s *salonService) MyInvites(ctx context.Context, userID uuid.UUID) ([]dto.InviteResponse, error) {
	invites, err := s.repo.PendingInvites(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.InviteResponse, 0, len(invites))
	for _, inv := range invites {
		resp = append(resp, dto.InviteResponse{
			SalonID:   inv.SalonID.String(),
			SalonName: inv.Salon.Name,
			InvitedAt: inv.InvitedAt,
		})
	}

	return resp, nil
}

func toSalonResponse(salon *entity.Salon) dto.SalonResponse {
	return dto.SalonResponse{
		ID:        salon.ID.String(),
		Name:      salon.Name,
		OwnerID:   salon.OwnerID.String(),
		CreatedAt: salon.CreatedAt,
	}
}
