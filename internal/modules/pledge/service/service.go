package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/bloodlink/internal/entity"
	alertRepo "anoa.com/bloodlink/internal/modules/alert/repository"
	pledgeDto "anoa.com/bloodlink/internal/modules/pledge/dto"
	pledgeRepo "anoa.com/bloodlink/internal/modules/pledge/repository"
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

type PledgeService interface {
	RespondToAlert(ctx context.Context, principal entity.Principal, alertID uuid.UUID) (*pledgeDto.ToggleResult, error)
	AlertVolunteers(ctx context.Context, principal entity.Principal, alertID uuid.UUID) ([]pledgeDto.VolunteerResponse, error)
	HasResponded(ctx context.Context, alertID, donorID uuid.UUID) (bool, error)
	DonationHistory(ctx context.Context, principal entity.Principal) ([]pledgeDto.DonationHistoryItem, error)
	ReconcileResponseCounts(ctx context.Context) (int64, error)
}

type pledgeService struct {
	repo        pledgeRepo.PledgeRepository
	alertRepo   alertRepo.AlertRepository
	userRepo    userRepo.UserRepository
	redisClient *redis.Client
	cooldown    time.Duration
	now         func() time.Time
}

func NewPledgeService(repo pledgeRepo.PledgeRepository, alertRepo alertRepo.AlertRepository, userRepo userRepo.UserRepository, redisClient *redis.Client, cooldown time.Duration) PledgeService {
	return &pledgeService{
		repo:        repo,
		alertRepo:   alertRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// RespondToAlert toggles the caller's pledge on the alert. Pledging a
// cancelled alert is refused; withdrawing from one is allowed.
func (s *pledgeService) RespondToAlert(ctx context.Context, principal entity.Principal, alertID uuid.UUID) (*pledgeDto.ToggleResult, error) {
	if !principal.Is(entity.RoleDonor) {
		return nil, fmt.Errorf("only donors can respond to alerts: %w", apperror.ErrForbidden)
	}

	donor, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("donor profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// The cooldown only guards new pledges so a withdrawal is never refused.
	pledged, err := s.repo.Exists(ctx, alert.ID, donor.ID)
	if err != nil {
		return nil, err
	}

	subject := donor.ID.String() + ":" + alert.ID.String()
	if !pledged {
		allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, subject, ratelimiter.ScopePledge, s.cooldown)
		if err != nil {
			return nil, fmt.Errorf("failed to check rate limit: %w", err)
		}
		if !allowed {
			ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, subject, ratelimiter.ScopePledge)
			return nil, &ratelimiter.RateLimitError{
				Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", ttl.Seconds()),
				RetryAfter: ttl,
			}
		}
	}

	snapshot := &entity.AlertResponse{
		AlertID:      alert.ID,
		DonorID:      donor.ID,
		DonorName:    donor.Name,
		PhoneNumber:  donor.Phone,
		HospitalName: alert.BankName,
		Status:       entity.ResponsePledged,
		RespondedAt:  s.now().UTC(),
	}
	if donor.Donor != nil {
		snapshot.BloodGroup = donor.Donor.BloodGroup
		snapshot.Rhesus = donor.Donor.Rhesus
	}

	added, count, err := s.repo.Toggle(ctx, snapshot)
	if err != nil {
		if !pledged {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, subject, ratelimiter.ScopePledge)
		}
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("alert not found: %w", apperror.ErrNotFound)
		case errors.Is(err, pledgeRepo.ErrAlertNotActive):
			return nil, fmt.Errorf("alert is no longer active: %w", apperror.ErrConflict)
		case errors.Is(err, pledgeRepo.ErrDuplicatePledge):
			return nil, fmt.Errorf("pledge already recorded: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	result := pledgeDto.ResultRemoved
	if added {
		result = pledgeDto.ResultAdded
		metrics.RecordEvent(metrics.EventPledgeAdded)
	} else {
		metrics.RecordEvent(metrics.EventPledgeRemoved)
	}

	logger.Info("alert response toggled",
		zap.String("alert_id", alert.ID.String()),
		zap.String("donor_id", donor.ID.String()),
		zap.String("result", result),
		zap.Int("response_count", count),
	)

	return &pledgeDto.ToggleResult{
		Result:        result,
		Responded:     added,
		ResponseCount: max(count, 0),
	}, nil
}

func (s *pledgeService) AlertVolunteers(ctx context.Context, principal entity.Principal, alertID uuid.UUID) ([]pledgeDto.VolunteerResponse, error) {
	if !principal.Is(entity.RoleBank) {
		return nil, fmt.Errorf("only blood banks can view volunteers: %w", apperror.ErrForbidden)
	}

	if _, err := s.alertRepo.FindByID(ctx, alertID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	responses, err := s.repo.FindByAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return lo.Map(responses, func(r entity.AlertResponse, _ int) pledgeDto.VolunteerResponse {
		return pledgeDto.NewVolunteerResponse(r, now)
	}), nil
}

func (s *pledgeService) HasResponded(ctx context.Context, alertID, donorID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, alertID, donorID)
}

// DonationHistory lists every pledge of the donor, newest first, whatever
// became of the alert.
func (s *pledgeService) DonationHistory(ctx context.Context, principal entity.Principal) ([]pledgeDto.DonationHistoryItem, error) {
	if !principal.Is(entity.RoleDonor) {
		return nil, fmt.Errorf("only donors have a donation history: %w", apperror.ErrForbidden)
	}

	responses, err := s.repo.FindByDonor(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return lo.Map(responses, func(r entity.AlertResponse, _ int) pledgeDto.DonationHistoryItem {
		return pledgeDto.NewDonationHistoryItem(r, now)
	}), nil
}

// ReconcileResponseCounts rewrites every drifted alert counter from its
// pledge rows and returns how many alerts were fixed.
func (s *pledgeService) ReconcileResponseCounts(ctx context.Context) (int64, error) {
	drift, err := s.repo.FindCounterDrift(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan response counters: %w", err)
	}

	var fixed int64
	for _, d := range drift {
		if err := s.repo.Recount(ctx, d.AlertID); err != nil {
			logger.Error("failed to recount alert responses", zap.String("alert_id", d.AlertID.String()), zap.Error(err))
			continue
		}
		logger.Warn("response counter drift fixed",
			zap.String("alert_id", d.AlertID.String()),
			zap.Int("stored", d.Stored),
			zap.Int("actual", d.Actual),
		)
		fixed++
	}

	metrics.RecordDriftFixed(fixed)
	return fixed, nil
}
