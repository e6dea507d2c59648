package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/bloodlink/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRequestNotPending is returned when a request was already moved out of
// pending by another bank.
var ErrRequestNotPending = errors.New("request is no longer pending")

type AlertRepository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	CreateFromRequest(ctx context.Context, alert *entity.Alert, requestID, bankID uuid.UUID, validatedAt time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Alert, error)
	FindActive(ctx context.Context) ([]entity.Alert, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.AlertStatus) (bool, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *entity.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// CreateFromRequest claims the pending request and inserts its alert in one
// transaction. Only the first bank to claim the request succeeds.
func (r *alertRepository) CreateFromRequest(ctx context.Context, alert *entity.Alert, requestID, bankID uuid.UUID, validatedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.BloodRequest{}).
			Where("id = ? AND status = ?", requestID, entity.RequestPending).
			Updates(map[string]interface{}{
				"status":               entity.RequestAccepted,
				"validated_at":         validatedAt,
				"validated_by_bank_id": bankID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotPending
		}

		return tx.Create(alert).Error
	})
}

func (r *alertRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Alert, error) {
	var alert entity.Alert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) FindActive(ctx context.Context) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.AlertActive).
		Order("alert_date DESC").
		Find(&alerts).Error
	return alerts, err
}

// UpdateStatus moves the alert from one status to another and reports
// whether this call made the change.
func (r *alertRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.AlertStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Alert{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
