package bootstrap

import (
	"anoa.com/bloodlink/internal/entity"
	"anoa.com/bloodlink/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.DonorProfile{},
		&entity.DoctorProfile{},
		&entity.BankProfile{},
		&entity.BloodRequest{},
		&entity.Alert{},
		&entity.AlertResponse{},
	)
}

// SeedBloodBank creates a demo blood bank account when none exists for email.
func SeedBloodBank(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("blood bank seed already exists, skipping", zap.String("email", email))
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		bank := entity.User{
			Email:        email,
			PasswordHash: string(hashedPasswordBytes),
			Name:         "Central Blood Bank",
			Role:         entity.RoleBank,
			Location:     "Unknown",
		}
		if err := tx.Create(&bank).Error; err != nil {
			return err
		}
		if err := tx.Create(&entity.BankProfile{UserID: bank.ID}).Error; err != nil {
			return err
		}

		logger.Info("seeded blood bank account", zap.String("email", email))
		return nil
	})
}
