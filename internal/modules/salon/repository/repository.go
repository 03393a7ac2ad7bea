package repository

import (
	"context"
	"errors"

	"anoa.com/salonstreak/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAlreadyMember = errors.New("user is already invited to this salon")

type SalonRepository interface {
	CreateSalon(ctx context.Context, salon *entity.Salon) error
	FindSalonByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error)
	FindSalonByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Salon, error)
	InviteMember(ctx context.Context, member *entity.SalonMember) error
	FindMember(ctx context.Context, salonID, userID uuid.UUID) (*entity.SalonMember, error)
	UpdateMember(ctx context.Context, member *entity.SalonMember) error
	Members(ctx context.Context, salonID uuid.UUID) ([]entity.SalonMember, error)
	// AcceptedMembers is the fan-out source set for salon challenges.
	AcceptedMembers(ctx context.Context, salonID uuid.UUID) ([]entity.SalonMember, error)
	PendingInvites(ctx context.Context, userID uuid.UUID) ([]entity.SalonMember, error)
}

type salonRepository struct {
	db *gorm.DB
}

func NewSalonRepository(db *gorm.DB) SalonRepository {
	return &salonRepository{db: db}
}

func (r *salonRepository) CreateSalon(ctx context.Context, salon *entity.Salon) error {
	return r.db.WithContext(ctx).Create(salon).Error
}

func (r *salonRepository) FindSalonByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error) {
	var salon entity.Salon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&salon).Error
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *salonRepository) FindSalonByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Salon, error) {
	var salon entity.Salon
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&salon).Error
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *salonRepository) InviteMember(ctx context.Context, member *entity.SalonMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *salonRepository) FindMember(ctx context.Context, salonID, userID uuid.UUID) (*entity.SalonMember, error) {
	var member entity.SalonMember
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND user_id = ?", salonID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *salonRepository) UpdateMember(ctx context.Context, member *entity.SalonMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *salonRepository) Members(ctx context.Context, salonID uuid.UUID) ([]entity.SalonMember, error) {
	var members []entity.SalonMember
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Preload("User").
		Find(&members).Error
	return members, err
}

func (r *salonRepository) AcceptedMembers(ctx context.Context, salonID uuid.UUID) ([]entity.SalonMember, error) {
	var members []entity.SalonMember
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND status = ?", salonID, entity.MemberStatusAccepted).
		Preload("User").
		Find(&members).Error
	return members, err
}

func (r *salonRepository) PendingInvites(ctx context.Context, userID uuid.UUID) ([]entity.SalonMember, error) {
	var invites []entity.SalonMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.MemberStatusPending).
		Preload("Salon").
		Find(&invites).Error
	return invites, err
}
