package dto

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileInput holds the editable profile fields. Nil or empty values
// are left unchanged.
type UpdateProfileInput struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Location *string `json:"location" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,min=6"`

	BloodGroup       *string `json:"blood_group" binding:"omitempty,bloodgroup"`
	Rhesus           *string `json:"rhesus" binding:"omitempty,rhesus"`
	Sex              *string `json:"sex" binding:"omitempty,oneof=male female"`
	BirthDate        *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	LastDonationDate *string `json:"last_donation_date" binding:"omitempty,datetime=2006-01-02"`
	IsAvailable      *bool   `json:"is_available"`

	Specialty *string `json:"specialty" binding:"omitempty,max=100"`
	Grade     *string `json:"grade" binding:"omitempty,max=50"`
}

type DonorDetails struct {
	BloodGroup     string     `json:"blood_group"`
	Rhesus         string     `json:"rhesus"`
	Sex            string     `json:"sex"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Age            int        `json:"age"`
	LastDonationAt *time.Time `json:"last_donation_at,omitempty"`
	IsAvailable    bool       `json:"is_available"`
}

type DoctorDetails struct {
	Specialty string `json:"specialty"`
	Grade     string `json:"grade"`
}

type BankDetails struct {
	BloodBagCount int `json:"blood_bag_count"`
}

// ProfileResponse carries exactly one of Donor, Doctor or Bank, matching Role.
type ProfileResponse struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      string         `json:"role"`
	Phone     string         `json:"phone"`
	Location  string         `json:"location"`
	CreatedAt time.Time      `json:"created_at"`
	Donor     *DonorDetails  `json:"donor,omitempty"`
	Doctor    *DoctorDetails `json:"doctor,omitempty"`
	Bank      *BankDetails   `json:"bank,omitempty"`
}
