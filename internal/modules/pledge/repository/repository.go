package repository

import (
	"context"
	"errors"

	"anoa.com/bloodlink/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlertNotActive  = errors.New("alert is not active")
	ErrDuplicatePledge = errors.New("pledge already recorded")
)

const decrementFloored = "CASE WHEN response_count > 0 THEN response_count - 1 ELSE 0 END"

// CounterDrift is an alert whose stored response_count disagrees with its
// pledge rows.
type CounterDrift struct {
	AlertID uuid.UUID
	Stored  int
	Actual  int
}

type PledgeRepository interface {
	// Toggle removes the donor's pledge when present, otherwise records
	// snapshot. It reports whether a pledge was added and the new counter.
	Toggle(ctx context.Context, snapshot *entity.AlertResponse) (bool, int, error)
	FindByAlert(ctx context.Context, alertID uuid.UUID) ([]entity.AlertResponse, error)
	FindByDonor(ctx context.Context, donorID uuid.UUID) ([]entity.AlertResponse, error)
	Exists(ctx context.Context, alertID, donorID uuid.UUID) (bool, error)
	FindCounterDrift(ctx context.Context) ([]CounterDrift, error)
	Recount(ctx context.Context, alertID uuid.UUID) error
}

type pledgeRepository struct {
	db *gorm.DB
}

func NewPledgeRepository(db *gorm.DB) PledgeRepository {
	return &pledgeRepository{db: db}
}

func (r *pledgeRepository) Toggle(ctx context.Context, snapshot *entity.AlertResponse) (bool, int, error) {
	var (
		added bool
		count int
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alert entity.Alert
		if err := tx.Select("id", "status").Where("id = ?", snapshot.AlertID).First(&alert).Error; err != nil {
			return err
		}

		del := tx.Where("alert_id = ? AND donor_id = ?", snapshot.AlertID, snapshot.DonorID).
			Delete(&entity.AlertResponse{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			if err := tx.Model(&entity.Alert{}).
				Where("id = ?", snapshot.AlertID).
				Update("response_count", gorm.Expr(decrementFloored)).Error; err != nil {
				return err
			}
		} else {
			if alert.Status != entity.AlertActive {
				return ErrAlertNotActive
			}

			snapshot.ID = entity.PledgeID(snapshot.AlertID, snapshot.DonorID)
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(snapshot)
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected == 0 {
				return ErrDuplicatePledge
			}

			if err := tx.Model(&entity.Alert{}).
				Where("id = ?", snapshot.AlertID).
				Update("response_count", gorm.Expr("response_count + 1")).Error; err != nil {
				return err
			}
			added = true
		}

		return tx.Model(&entity.Alert{}).
			Select("response_count").
			Where("id = ?", snapshot.AlertID).
			Scan(&count).Error
	})
	if err != nil {
		return false, 0, err
	}

	return added, count, nil
}

func (r *pledgeRepository) FindByAlert(ctx context.Context, alertID uuid.UUID) ([]entity.AlertResponse, error) {
	var responses []entity.AlertResponse
	err := r.db.WithContext(ctx).
		Where("alert_id = ?", alertID).
		Order("responded_at ASC").
		Find(&responses).Error
	return responses, err
}

func (r *pledgeRepository) FindByDonor(ctx context.Context, donorID uuid.UUID) ([]entity.AlertResponse, error) {
	var responses []entity.AlertResponse
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("responded_at DESC").
		Find(&responses).Error
	return responses, err
}

func (r *pledgeRepository) Exists(ctx context.Context, alertID, donorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.AlertResponse{}).
		Where("alert_id = ? AND donor_id = ?", alertID, donorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *pledgeRepository) FindCounterDrift(ctx context.Context) ([]CounterDrift, error) {
	var drift []CounterDrift
	err := r.db.WithContext(ctx).
		Table("alerts").
		Select("alerts.id AS alert_id, alerts.response_count AS stored, COUNT(alert_responses.id) AS actual").
		Joins("LEFT JOIN alert_responses ON alert_responses.alert_id = alerts.id").
		Group("alerts.id, alerts.response_count").
		Having("alerts.response_count <> COUNT(alert_responses.id)").
		Scan(&drift).Error
	return drift, err
}

// Recount sets the alert's counter from its pledge rows in a single statement.
func (r *pledgeRepository) Recount(ctx context.Context, alertID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Alert{}).
		Where("id = ?", alertID).
		Update("response_count", gorm.Expr("(SELECT COUNT(*) FROM alert_responses WHERE alert_responses.alert_id = ?)", alertID)).Error
}
