package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Alert struct {
	ID                       uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	BloodBankID              uuid.UUID    `gorm:"type:uuid;not null;index" json:"blood_bank_id"`
	BankName                 string       `gorm:"size:100;not null" json:"bank_name"`
	BankLocation             string       `gorm:"size:255" json:"bank_location"`
	BloodGroup               string       `gorm:"size:3;not null" json:"blood_group"`
	Rhesus                   string       `gorm:"size:1;not null" json:"rhesus"`
	HospitalName             string       `gorm:"size:255" json:"hospital_name"`
	DoctorID                 *uuid.UUID   `gorm:"type:uuid" json:"doctor_id,omitempty"`
	DoctorName               *string      `gorm:"size:100" json:"doctor_name,omitempty"`
	RequestID                *uuid.UUID   `gorm:"type:uuid;uniqueIndex" json:"request_id,omitempty"`
	InitiatedBy              InitiatedBy  `gorm:"size:10;not null" json:"initiated_by"`
	Message                  string       `gorm:"type:text" json:"message"`
	Status                   AlertStatus  `gorm:"size:20;not null;index:idx_alerts_status,priority:1" json:"status"`
	ResponseCount            int          `gorm:"not null;default:0" json:"response_count"`
	UrgencyLevel             UrgencyLevel `gorm:"size:10;not null" json:"urgency_level"`
	NotificationsSent        int          `gorm:"not null;default:0" json:"notifications_sent"`
	NotificationsFailedCount int          `gorm:"not null;default:0" json:"notifications_failed_count"`
	AlertDate                time.Time    `gorm:"not null;index:idx_alerts_status,priority:2" json:"alert_date"`
	CreatedAt                time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
