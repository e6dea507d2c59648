package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/bloodlink/internal/entity"
	profileDto "anoa.com/bloodlink/internal/modules/profile/dto"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfile(ctx context.Context, principal entity.Principal) (*profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, principal entity.Principal, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo userRepo.UserRepository
	now  func() time.Time
}

func NewProfileService(repo userRepo.UserRepository) ProfileService {
	return &profileService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *profileService) GetProfile(ctx context.Context, principal entity.Principal) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, principal)
	if err != nil {
		return nil, err
	}
	return s.toResponse(user), nil
}

// UpdateProfile edits the caller's own profile. Snapshots already copied onto
// requests, alerts and pledges keep their old values.
func (s *profileService) UpdateProfile(ctx context.Context, principal entity.Principal, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, principal)
	if err != nil {
		return nil, err
	}

	setIfPresent(&user.Name, input.Name)
	setIfPresent(&user.Phone, input.Phone)
	setIfPresent(&user.Location, input.Location)

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 6 {
			return nil, fmt.Errorf("password must be at least 6 characters: %w", apperror.ErrInvalidInput)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	switch {
	case user.Donor != nil:
		donor := user.Donor
		setIfPresent(&donor.BloodGroup, input.BloodGroup)
		setIfPresent(&donor.Rhesus, input.Rhesus)
		setIfPresent(&donor.Sex, input.Sex)
		if donor.BirthDate, err = parseDateIfPresent(donor.BirthDate, input.BirthDate); err != nil {
			return nil, err
		}
		if donor.LastDonationAt, err = parseDateIfPresent(donor.LastDonationAt, input.LastDonationDate); err != nil {
			return nil, err
		}
		if input.IsAvailable != nil {
			donor.IsAvailable = *input.IsAvailable
		}
	case user.Doctor != nil:
		setIfPresent(&user.Doctor.Specialty, input.Specialty)
		setIfPresent(&user.Doctor.Grade, input.Grade)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.toResponse(user), nil
}

func (s *profileService) findUser(ctx context.Context, principal entity.Principal) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) toResponse(user *entity.User) *profileDto.ProfileResponse {
	res := &profileDto.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Phone:     user.Phone,
		Location:  user.Location,
		CreatedAt: user.CreatedAt,
	}

	switch {
	case user.Donor != nil:
		res.Donor = &profileDto.DonorDetails{
			BloodGroup:     user.Donor.BloodGroup,
			Rhesus:         user.Donor.Rhesus,
			Sex:            user.Donor.Sex,
			BirthDate:      user.Donor.BirthDate,
			Age:            user.Donor.Age(s.now()),
			LastDonationAt: user.Donor.LastDonationAt,
			IsAvailable:    user.Donor.IsAvailable,
		}
	case user.Doctor != nil:
		res.Doctor = &profileDto.DoctorDetails{
			Specialty: user.Doctor.Specialty,
			Grade:     user.Doctor.Grade,
		}
	case user.Bank != nil:
		res.Bank = &profileDto.BankDetails{BloodBagCount: user.Bank.BloodBagCount}
	}

	return res
}

func setIfPresent(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}

func parseDateIfPresent(current *time.Time, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return current, nil
	}
	t, err := time.Parse(time.DateOnly, *v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *v, apperror.ErrInvalidInput)
	}
	return &t, nil
}
