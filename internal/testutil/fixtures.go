package testutil

import (
	"testing"

	"anoa.com/bloodlink/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateDonor inserts a donor identity with its profile.
func CreateDonor(t testing.TB, db *gorm.DB, name, bloodGroup, rhesus string) *entity.User {
	t.Helper()
	return createUser(t, db, &entity.User{
		Name:  name,
		Role:  entity.RoleDonor,
		Phone: "+221770000000",
		Donor: &entity.DonorProfile{BloodGroup: bloodGroup, Rhesus: rhesus, IsAvailable: true},
	})
}

func CreateDoctor(t testing.TB, db *gorm.DB, name, location string) *entity.User {
	t.Helper()
	return createUser(t, db, &entity.User{
		Name:     name,
		Role:     entity.RoleDoctor,
		Location: location,
		Doctor:   &entity.DoctorProfile{Specialty: "General", Grade: "Doctor"},
	})
}

func CreateBank(t testing.TB, db *gorm.DB, name, location string) *entity.User {
	t.Helper()
	return createUser(t, db, &entity.User{
		Name:     name,
		Role:     entity.RoleBank,
		Location: location,
		Bank:     &entity.BankProfile{},
	})
}

// Principal returns the caller identity for u.
func Principal(u *entity.User) entity.Principal {
	return entity.Principal{UserID: u.ID, Role: u.Role}
}

func createUser(t testing.TB, db *gorm.DB, u *entity.User) *entity.User {
	t.Helper()
	u.Email = uuid.NewString() + "@test.local"
	u.PasswordHash = "x"

	require.NoError(t, db.Omit(clause.Associations).Create(u).Error)
	switch {
	case u.Donor != nil:
		u.Donor.UserID = u.ID
		require.NoError(t, db.Create(u.Donor).Error)
	case u.Doctor != nil:
		u.Doctor.UserID = u.ID
		require.NoError(t, db.Create(u.Doctor).Error)
	case u.Bank != nil:
		u.Bank.UserID = u.ID
		require.NoError(t, db.Create(u.Bank).Error)
	}
	return u
}
