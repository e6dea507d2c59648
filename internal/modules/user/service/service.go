package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/bloodlink/internal/entity"
	"anoa.com/bloodlink/internal/modules/user/dto"
	"anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/pkg/apperror"
	"anoa.com/bloodlink/pkg/logger"
	"anoa.com/bloodlink/pkg/ratelimiter"
	"anoa.com/bloodlink/pkg/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultSpecialty = "General"
	defaultGrade     = "Doctor"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type Config struct {
	Secret           string
	TokenTTL         time.Duration
	LoginMaxAttempts int
	LoginLockout     time.Duration
}

type authService struct {
	repo        repository.UserRepository
	tokens      repository.TokenRepository
	redisClient *redis.Client
	cfg         Config
	now         func() time.Time
}

func NewAuthService(repo repository.UserRepository, tokens repository.TokenRepository, redisClient *redis.Client, cfg Config) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &authService{
		repo:        repo,
		tokens:      tokens,
		redisClient: redisClient,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if err := validator.ValidateStruct(&input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		Name:         input.Name,
		Role:         entity.Role(input.Role),
		Phone:        strings.TrimSpace(input.Phone),
		Location:     strings.TrimSpace(input.Location),
	}

	switch user.Role {
	case entity.RoleDonor:
		donor := &entity.DonorProfile{
			BloodGroup:  input.BloodGroup,
			Rhesus:      input.Rhesus,
			Sex:         input.Sex,
			IsAvailable: true,
		}
		if input.BirthDate != "" {
			birth, err := time.Parse(time.DateOnly, input.BirthDate)
			if err != nil {
				return nil, fmt.Errorf("birth_date: %w", apperror.ErrInvalidInput)
			}
			donor.BirthDate = &birth
		}
		user.Donor = donor
	case entity.RoleDoctor:
		user.Doctor = &entity.DoctorProfile{
			Specialty: valueOr(input.Specialty, defaultSpecialty),
			Grade:     valueOr(input.Grade, defaultGrade),
		}
	case entity.RoleBank:
		user.Bank = &entity.BankProfile{BloodBagCount: 0}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := normalizeEmail(input.Email)

	if s.cfg.LoginMaxAttempts > 0 {
		failures, err := ratelimiter.Failures(ctx, s.redisClient, email, ratelimiter.ScopeLogin)
		if err != nil {
			logger.Warn("login attempt lookup failed", zap.Error(err))
		} else if failures >= int64(s.cfg.LoginMaxAttempts) {
			return nil, fmt.Errorf("too many failed login attempts: %w", apperror.ErrRateLimitExceeded)
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.registerFailure(ctx, email)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.registerFailure(ctx, email)
		return nil, errInvalidCredentials
	}

	if err := ratelimiter.ResetFailures(ctx, s.redisClient, email, ratelimiter.ScopeLogin); err != nil {
		logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.tokens.Revoke(ctx, jti, expiresAt.Sub(s.now()))
}

func (s *authService) registerFailure(ctx context.Context, email string) {
	if s.cfg.LoginMaxAttempts <= 0 {
		return
	}
	if _, err := ratelimiter.RegisterFailure(ctx, s.redisClient, email, ratelimiter.ScopeLogin, s.cfg.LoginLockout); err != nil {
		logger.Warn("failed to register login attempt", zap.Error(err))
	}
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := dto.Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
