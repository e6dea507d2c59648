package repository

import (
	"context"

	"anoa.com/bloodlink/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, request *entity.BloodRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BloodRequest, error)
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.BloodRequest, error)
	FindPending(ctx context.Context) ([]entity.BloodRequest, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *entity.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BloodRequest, error) {
	var request entity.BloodRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByDoctor returns every request of the doctor, newest first, any status.
func (r *requestRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.BloodRequest, error) {
	var requests []entity.BloodRequest
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}

// FindPending is the global validation queue shared by all banks.
func (r *requestRepository) FindPending(ctx context.Context) ([]entity.BloodRequest, error) {
	var requests []entity.BloodRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.RequestPending).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}
