package dto

import (
	"time"

	"anoa.com/bloodlink/internal/entity"
	commonDto "anoa.com/bloodlink/pkg/dto"
	"anoa.com/bloodlink/pkg/timeago"
	"github.com/google/uuid"
)

type CreateRequestInput struct {
	BloodGroup string `json:"blood_group" binding:"required,bloodgroup"`
	Rhesus     string `json:"rhesus" binding:"required,rhesus"`
	Location   string `json:"location" binding:"omitempty,max=255"`
}

type RequestResponse struct {
	ID                uuid.UUID  `json:"id"`
	DoctorID          uuid.UUID  `json:"doctor_id"`
	DoctorName        string     `json:"doctor_name"`
	BloodGroup        string     `json:"blood_group"`
	Rhesus            string     `json:"rhesus"`
	BloodType         string     `json:"blood_type"`
	Quantity          int        `json:"quantity"`
	Location          string     `json:"location"`
	Status            string     `json:"status"`
	RequestedAt       time.Time  `json:"requested_at"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty"`
	ValidatedByBankID *uuid.UUID `json:"validated_by_bank_id,omitempty"`
	TimePosted        string     `json:"time_posted"`
}

func NewRequestResponse(r entity.BloodRequest, now time.Time) RequestResponse {
	return RequestResponse{
		ID:                r.ID,
		DoctorID:          r.DoctorID,
		DoctorName:        r.DoctorName,
		BloodGroup:        r.BloodGroup,
		Rhesus:            r.Rhesus,
		BloodType:         commonDto.BloodType(r.BloodGroup, r.Rhesus),
		Quantity:          r.Quantity,
		Location:          r.Location,
		Status:            string(r.Status),
		RequestedAt:       r.RequestedAt,
		ValidatedAt:       r.ValidatedAt,
		ValidatedByBankID: r.ValidatedByBankID,
		TimePosted:        timeago.Since(r.RequestedAt, now),
	}
}
