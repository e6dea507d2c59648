package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var pledgeNamespace = uuid.MustParse("6b0f3c52-3d4e-4f7a-9a51-1c2d7e8f9a10")

// PledgeID derives the response id from the (alert, donor) pair so that a
// second insert for the same pair collides on the primary key.
func PledgeID(alertID, donorID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(pledgeNamespace, []byte(alertID.String()+"|"+donorID.String()))
}

// AlertResponse is a donor pledge. Donor and hospital fields are copied at
// write time and never refreshed.
type AlertResponse struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AlertID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_alert_responses_pair,priority:1" json:"alert_id"`
	DonorID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_alert_responses_pair,priority:2;index" json:"donor_id"`
	DonorName    string         `gorm:"size:100" json:"donor_name"`
	PhoneNumber  string         `gorm:"size:30" json:"phone_number"`
	BloodGroup   string         `gorm:"size:3" json:"blood_group"`
	Rhesus       string         `gorm:"size:1" json:"rhesus"`
	HospitalName string         `gorm:"size:255" json:"hospital_name"`
	Status       ResponseStatus `gorm:"size:20;not null" json:"status"`
	RespondedAt  time.Time      `gorm:"not null;index" json:"responded_at"`
}

func (r *AlertResponse) TableName() string {
	return "alert_responses"
}

func (r *AlertResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = PledgeID(r.AlertID, r.DonorID)
	}
	return nil
}
