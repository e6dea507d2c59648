package dto

import (
	"time"

	"anoa.com/bloodlink/internal/entity"
	commonDto "anoa.com/bloodlink/pkg/dto"
	"anoa.com/bloodlink/pkg/timeago"
	"github.com/google/uuid"
)

type CreateAlertInput struct {
	BloodGroup   string `json:"blood_group" binding:"required,bloodgroup"`
	Rhesus       string `json:"rhesus" binding:"required,rhesus"`
	Location     string `json:"location" binding:"omitempty,max=255"`
	Message      string `json:"message" binding:"omitempty,max=1000"`
	UrgencyLevel string `json:"urgency_level" binding:"omitempty,oneof=high medium low"`
}

type AlertDetail struct {
	ID            uuid.UUID  `json:"id"`
	BloodBankID   uuid.UUID  `json:"blood_bank_id"`
	BankName      string     `json:"bank_name"`
	BankLocation  string     `json:"bank_location"`
	BloodGroup    string     `json:"blood_group"`
	Rhesus        string     `json:"rhesus"`
	BloodType     string     `json:"blood_type"`
	HospitalName  string     `json:"hospital_name"`
	DoctorID      *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName    *string    `json:"doctor_name,omitempty"`
	RequestID     *uuid.UUID `json:"request_id,omitempty"`
	InitiatedBy   string     `json:"initiated_by"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	ResponseCount int        `json:"response_count"`
	UrgencyLevel  string     `json:"urgency_level"`
	AlertDate     time.Time  `json:"alert_date"`
	TimePosted    string     `json:"time_posted"`
}

func NewAlertDetail(a entity.Alert, now time.Time) AlertDetail {
	return AlertDetail{
		ID:            a.ID,
		BloodBankID:   a.BloodBankID,
		BankName:      a.BankName,
		BankLocation:  a.BankLocation,
		BloodGroup:    a.BloodGroup,
		Rhesus:        a.Rhesus,
		BloodType:     commonDto.BloodType(a.BloodGroup, a.Rhesus),
		HospitalName:  a.HospitalName,
		DoctorID:      a.DoctorID,
		DoctorName:    a.DoctorName,
		RequestID:     a.RequestID,
		InitiatedBy:   string(a.InitiatedBy),
		Message:       a.Message,
		Status:        string(a.Status),
		ResponseCount: max(a.ResponseCount, 0),
		UrgencyLevel:  a.UrgencyLevel.Label(),
		AlertDate:     a.AlertDate,
		TimePosted:    timeago.Since(a.AlertDate, now),
	}
}
