package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleDonor  Role = "donor"
	RoleDoctor Role = "doctor"
	RoleBank   Role = "bank"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleDoctor, RoleBank:
		return true
	}
	return false
}

// User is the identity row. Role is fixed at registration and decides which
// one of the profile tables holds the role attributes.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Role         Role           `gorm:"size:20;not null;index" json:"role"`
	Phone        string         `gorm:"size:30" json:"phone"`
	Location     string         `gorm:"size:255" json:"location"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Donor        *DonorProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"donor,omitempty"`
	Doctor       *DoctorProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"doctor,omitempty"`
	Bank         *BankProfile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"bank,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

type DonorProfile struct {
	UserID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	BloodGroup     string     `gorm:"size:3" json:"blood_group"`
	Rhesus         string     `gorm:"size:1" json:"rhesus"`
	Sex            string     `gorm:"size:10" json:"sex"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	LastDonationAt *time.Time `json:"last_donation_at,omitempty"`
	IsAvailable    bool       `gorm:"not null;default:true" json:"is_available"`
}

// Age returns whole years elapsed since BirthDate, or 0 when unknown.
func (p *DonorProfile) Age(now time.Time) int {
	if p == nil || p.BirthDate == nil || p.BirthDate.After(now) {
		return 0
	}
	b := *p.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age
}

type DoctorProfile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialty string    `gorm:"size:100" json:"specialty"`
	Grade     string    `gorm:"size:50" json:"grade"`
}

type BankProfile struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BloodBagCount int       `gorm:"not null;default:0" json:"blood_bag_count"`
}

// ProfileCount reports how many role profiles are loaded on u.
func (u *User) ProfileCount() int {
	n := 0
	if u.Donor != nil {
		n++
	}
	if u.Doctor != nil {
		n++
	}
	if u.Bank != nil {
		n++
	}
	return n
}
