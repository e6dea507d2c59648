package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/bloodlink/internal/entity"
	"anoa.com/bloodlink/internal/modules/user/dto"
	"anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/internal/testutil"
	"anoa.com/bloodlink/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (AuthService, *gorm.DB) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewTokenRepository(nil),
		nil,
		Config{Secret: testSecret, TokenTTL: time.Hour, LoginMaxAttempts: 5, LoginLockout: time.Minute},
	)
	return svc, db
}

func donorInput(email string) dto.RegisterInput {
	return dto.RegisterInput{
		Name:            "Awa Diallo",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            "donor",
		Phone:           "+221700000000",
		Location:        "Dakar",
		BloodGroup:      "O",
		Rhesus:          "+",
		Sex:             "female",
		BirthDate:       "1994-02-11",
	}
}

func TestRegisterDonor(t *testing.T) {
	svc, db := newTestService(t)

	res, err := svc.Register(context.Background(), donorInput("Awa@Example.com "))
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, "awa@example.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)

	var donor entity.DonorProfile
	require.NoError(t, db.First(&donor, "user_id = ?", res.User.ID).Error)
	assert.Equal(t, "O", donor.BloodGroup)
	assert.True(t, donor.IsAvailable)
	require.NotNil(t, donor.BirthDate)
	assert.Equal(t, 1994, donor.BirthDate.Year())

	var doctors, banks int64
	db.Model(&entity.DoctorProfile{}).Where("user_id = ?", res.User.ID).Count(&doctors)
	db.Model(&entity.BankProfile{}).Where("user_id = ?", res.User.ID).Count(&banks)
	assert.Zero(t, doctors)
	assert.Zero(t, banks)
}

func TestRegisterDoctorDefaults(t *testing.T) {
	svc, db := newTestService(t)

	res, err := svc.Register(context.Background(), dto.RegisterInput{
		Name: "Dr Ndiaye", Email: "doc@example.com", Password: "secret1", ConfirmPassword: "secret1", Role: "doctor",
	})
	require.NoError(t, err)

	var doctor entity.DoctorProfile
	require.NoError(t, db.First(&doctor, "user_id = ?", res.User.ID).Error)
	assert.Equal(t, "General", doctor.Specialty)
	assert.Equal(t, "Doctor", doctor.Grade)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, donorInput("dup@example.com"))
	require.NoError(t, err)

	second := donorInput("DUP@example.com")
	second.Role = "bank"
	_, err = svc.Register(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var users, banks int64
	db.Model(&entity.User{}).Count(&users)
	db.Model(&entity.BankProfile{}).Count(&banks)
	assert.Equal(t, int64(1), users)
	assert.Zero(t, banks)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.RegisterInput)
	}{
		{"short password", func(in *dto.RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }},
		{"confirmation mismatch", func(in *dto.RegisterInput) { in.ConfirmPassword = "secret2" }},
		{"malformed email", func(in *dto.RegisterInput) { in.Email = "not-an-email" }},
		{"missing name", func(in *dto.RegisterInput) { in.Name = "  " }},
		{"unknown role", func(in *dto.RegisterInput) { in.Role = "admin" }},
		{"bad blood group", func(in *dto.RegisterInput) { in.BloodGroup = "Z" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := donorInput("v@example.com")
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, donorInput("login@example.com"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, dto.LoginInput{Email: "LOGIN@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims := &dto.Claims{}
	token, err := jwt.ParseWithClaims(res.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)
	assert.Equal(t, "donor", claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "login@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	assert.NoError(t, svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)))
}
