package dto

import (
	"time"

	"anoa.com/bloodlink/internal/entity"
	commonDto "anoa.com/bloodlink/pkg/dto"
	"anoa.com/bloodlink/pkg/timeago"
	"github.com/google/uuid"
)

const (
	ResultAdded   = "added"
	ResultRemoved = "removed"
)

type ToggleResult struct {
	Result        string `json:"result"`
	Responded     bool   `json:"responded"`
	ResponseCount int    `json:"response_count"`
}

type RespondedResponse struct {
	Responded bool `json:"responded"`
}

type VolunteerResponse struct {
	ID          uuid.UUID `json:"id"`
	DonorID     uuid.UUID `json:"donor_id"`
	DonorName   string    `json:"donor_name"`
	PhoneNumber string    `json:"phone_number"`
	BloodGroup  string    `json:"blood_group"`
	Rhesus      string    `json:"rhesus"`
	BloodType   string    `json:"blood_type"`
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
	TimePosted  string    `json:"time_posted"`
}

func NewVolunteerResponse(r entity.AlertResponse, now time.Time) VolunteerResponse {
	return VolunteerResponse{
		ID:          r.ID,
		DonorID:     r.DonorID,
		DonorName:   r.DonorName,
		PhoneNumber: r.PhoneNumber,
		BloodGroup:  r.BloodGroup,
		Rhesus:      r.Rhesus,
		BloodType:   commonDto.BloodType(r.BloodGroup, r.Rhesus),
		Status:      string(r.Status),
		RespondedAt: r.RespondedAt,
		TimePosted:  timeago.Since(r.RespondedAt, now),
	}
}

type DonationHistoryItem struct {
	ID           uuid.UUID `json:"id"`
	AlertID      uuid.UUID `json:"alert_id"`
	HospitalName string    `json:"hospital_name"`
	BloodType    string    `json:"blood_type"`
	Status       string    `json:"status"`
	RespondedAt  time.Time `json:"responded_at"`
	TimePosted   string    `json:"time_posted"`
}

func NewDonationHistoryItem(r entity.AlertResponse, now time.Time) DonationHistoryItem {
	return DonationHistoryItem{
		ID:           r.ID,
		AlertID:      r.AlertID,
		HospitalName: r.HospitalName,
		BloodType:    commonDto.BloodType(r.BloodGroup, r.Rhesus),
		Status:       string(r.Status),
		RespondedAt:  r.RespondedAt,
		TimePosted:   timeago.Since(r.RespondedAt, now),
	}
}
