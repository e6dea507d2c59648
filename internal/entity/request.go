package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodRequest struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID          uuid.UUID     `gorm:"type:uuid;not null;index:idx_requests_doctor,priority:1" json:"doctor_id"`
	DoctorName        string        `gorm:"size:100;not null" json:"doctor_name"`
	BloodGroup        string        `gorm:"size:3;not null" json:"blood_group"`
	Rhesus            string        `gorm:"size:1;not null" json:"rhesus"`
	Quantity          int           `gorm:"not null;default:1" json:"quantity"`
	Location          string        `gorm:"size:255" json:"location"`
	Status            RequestStatus `gorm:"size:20;not null;index:idx_requests_status,priority:1" json:"status"`
	RequestedAt       time.Time     `gorm:"not null;index:idx_requests_doctor,priority:2;index:idx_requests_status,priority:2" json:"requested_at"`
	ValidatedAt       *time.Time    `json:"validated_at,omitempty"`
	ValidatedByBankID *uuid.UUID    `gorm:"type:uuid" json:"validated_by_bank_id,omitempty"`
}

func (r *BloodRequest) TableName() string {
	return "blood_requests"
}

func (r *BloodRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
