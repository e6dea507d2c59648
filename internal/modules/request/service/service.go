package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/bloodlink/internal/entity"
	requestDto "anoa.com/bloodlink/internal/modules/request/dto"
	requestRepo "anoa.com/bloodlink/internal/modules/request/repository"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/pkg/apperror"
	"anoa.com/bloodlink/pkg/logger"
	"anoa.com/bloodlink/pkg/metrics"
	"anoa.com/bloodlink/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RequestService interface {
	CreateRequest(ctx context.Context, principal entity.Principal, input requestDto.CreateRequestInput) (*requestDto.RequestResponse, error)
	DoctorRequests(ctx context.Context, doctorID uuid.UUID) ([]requestDto.RequestResponse, error)
	PendingRequestsForBank(ctx context.Context, principal entity.Principal) ([]requestDto.RequestResponse, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*requestDto.RequestResponse, error)
}

type requestService struct {
	repo        requestRepo.RequestRepository
	userRepo    userRepo.UserRepository
	redisClient *redis.Client
	cooldown    time.Duration
	now         func() time.Time
}

func NewRequestService(repo requestRepo.RequestRepository, userRepo userRepo.UserRepository, redisClient *redis.Client, cooldown time.Duration) RequestService {
	return &requestService{
		repo:        repo,
		userRepo:    userRepo,
		redisClient: redisClient,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// CreateRequest files a new pending request for the calling doctor. Blood
// group and rhesus are stored as given.
func (s *requestService) CreateRequest(ctx context.Context, principal entity.Principal, input requestDto.CreateRequestInput) (*requestDto.RequestResponse, error) {
	if !principal.Is(entity.RoleDoctor) {
		return nil, fmt.Errorf("only doctors can create blood requests: %w", apperror.ErrForbidden)
	}

	doctor, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("doctor profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	subject := principal.UserID.String()
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, subject, ratelimiter.ScopeCreateRequest, s.cooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, subject, ratelimiter.ScopeCreateRequest)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only create one request every %.0f seconds. Please wait %.0f seconds", s.cooldown.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, subject, ratelimiter.ScopeCreateRequest)
		}
	}()

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = doctor.Location
	}

	request := &entity.BloodRequest{
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		BloodGroup:  input.BloodGroup,
		Rhesus:      input.Rhesus,
		Quantity:    1,
		Location:    location,
		Status:      entity.RequestPending,
		RequestedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}
	creationFailed = false

	metrics.RecordEvent(metrics.EventRequestCreated)
	logger.Info("blood request created",
		zap.String("request_id", request.ID.String()),
		zap.String("doctor_id", doctor.ID.String()),
		zap.String("blood_type", request.BloodGroup+request.Rhesus),
	)

	res := requestDto.NewRequestResponse(*request, s.now())
	return &res, nil
}

func (s *requestService) DoctorRequests(ctx context.Context, doctorID uuid.UUID) ([]requestDto.RequestResponse, error) {
	requests, err := s.repo.FindByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.project(requests), nil
}

func (s *requestService) PendingRequestsForBank(ctx context.Context, principal entity.Principal) ([]requestDto.RequestResponse, error) {
	if !principal.Is(entity.RoleBank) {
		return nil, fmt.Errorf("only blood banks can review pending requests: %w", apperror.ErrForbidden)
	}

	requests, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	return s.project(requests), nil
}

func (s *requestService) GetRequest(ctx context.Context, id uuid.UUID) (*requestDto.RequestResponse, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("request not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	res := requestDto.NewRequestResponse(*request, s.now())
	return &res, nil
}

func (s *requestService) project(requests []entity.BloodRequest) []requestDto.RequestResponse {
	now := s.now()
	return lo.Map(requests, func(r entity.BloodRequest, _ int) requestDto.RequestResponse {
		return requestDto.NewRequestResponse(r, now)
	})
}
