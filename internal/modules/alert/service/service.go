package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/bloodlink/internal/entity"
	alertDto "anoa.com/bloodlink/internal/modules/alert/dto"
	alertRepo "anoa.com/bloodlink/internal/modules/alert/repository"
	requestRepo "anoa.com/bloodlink/internal/modules/request/repository"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/pkg/apperror"
	"anoa.com/bloodlink/pkg/logger"
	"anoa.com/bloodlink/pkg/metrics"
	"anoa.com/bloodlink/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const unknownLocation = "Unknown"

type AlertService interface {
	ValidateRequest(ctx context.Context, principal entity.Principal, requestID uuid.UUID) (*alertDto.AlertDetail, error)
	CreateDirectAlert(ctx context.Context, principal entity.Principal, input alertDto.CreateAlertInput) (*alertDto.AlertDetail, error)
	CloseAlert(ctx context.Context, principal entity.Principal, alertID uuid.UUID) error
	ActiveAlerts(ctx context.Context) ([]alertDto.AlertDetail, error)
	GetAlert(ctx context.Context, id uuid.UUID) (*alertDto.AlertDetail, error)
}

type alertService struct {
	repo        alertRepo.AlertRepository
	requestRepo requestRepo.RequestRepository
	userRepo    userRepo.UserRepository
	now         func() time.Time
}

func NewAlertService(repo alertRepo.AlertRepository, requestRepo requestRepo.RequestRepository, userRepo userRepo.UserRepository) AlertService {
	return &alertService{
		repo:        repo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

func urgentMessage(bloodGroup, rhesus string) string {
	return fmt.Sprintf("URGENT NEED FOR BLOOD %s%s", bloodGroup, rhesus)
}

// ValidateRequest accepts a pending request and publishes its alert. Both
// writes commit together or not at all.
func (s *alertService) ValidateRequest(ctx context.Context, principal entity.Principal, requestID uuid.UUID) (*alertDto.AlertDetail, error) {
	bank, err := s.requireBank(ctx, principal)
	if err != nil {
		return nil, err
	}

	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("request not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !request.Status.CanTransitionTo(entity.RequestAccepted) {
		return nil, fmt.Errorf("request is already %s: %w", request.Status, apperror.ErrConflict)
	}

	now := s.now().UTC()
	doctorID, doctorName, reqID := request.DoctorID, request.DoctorName, request.ID
	alert := &entity.Alert{
		BloodBankID:  bank.ID,
		BankName:     bank.Name,
		BankLocation: locationOrUnknown(bank.Location),
		BloodGroup:   request.BloodGroup,
		Rhesus:       request.Rhesus,
		HospitalName: request.Location,
		DoctorID:     &doctorID,
		DoctorName:   &doctorName,
		RequestID:    &reqID,
		InitiatedBy:  entity.InitiatedByDoctor,
		Message:      urgentMessage(request.BloodGroup, request.Rhesus),
		Status:       entity.AlertActive,
		UrgencyLevel: entity.UrgencyHigh,
		AlertDate:    now,
	}

	if err := s.repo.CreateFromRequest(ctx, alert, request.ID, bank.ID, now); err != nil {
		if errors.Is(err, alertRepo.ErrRequestNotPending) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("request was already validated: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	metrics.RecordEvent(metrics.EventRequestValidated)
	metrics.RecordEvent(metrics.EventAlertCreated)
	logger.Info("request validated",
		zap.String("request_id", request.ID.String()),
		zap.String("alert_id", alert.ID.String()),
		zap.String("bank_id", bank.ID.String()),
	)

	res := alertDto.NewAlertDetail(*alert, s.now())
	return &res, nil
}

func (s *alertService) CreateDirectAlert(ctx context.Context, principal entity.Principal, input alertDto.CreateAlertInput) (*alertDto.AlertDetail, error) {
	bank, err := s.requireBank(ctx, principal)
	if err != nil {
		return nil, err
	}

	urgency := entity.UrgencyHigh
	if input.UrgencyLevel != "" {
		urgency = entity.UrgencyLevel(strings.ToLower(input.UrgencyLevel))
		if !urgency.Valid() {
			return nil, fmt.Errorf("urgency level %q: %w", input.UrgencyLevel, apperror.ErrInvalidInput)
		}
	}

	message := sanitize.Text(input.Message)
	if message == "" {
		message = urgentMessage(input.BloodGroup, input.Rhesus)
	}

	hospital := strings.TrimSpace(input.Location)
	if hospital == "" {
		hospital = bank.Location
	}

	alert := &entity.Alert{
		BloodBankID:  bank.ID,
		BankName:     bank.Name,
		BankLocation: locationOrUnknown(bank.Location),
		BloodGroup:   input.BloodGroup,
		Rhesus:       input.Rhesus,
		HospitalName: hospital,
		InitiatedBy:  entity.InitiatedByBank,
		Message:      message,
		Status:       entity.AlertActive,
		UrgencyLevel: urgency,
		AlertDate:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	metrics.RecordEvent(metrics.EventAlertCreated)
	logger.Info("direct alert created", zap.String("alert_id", alert.ID.String()), zap.String("bank_id", bank.ID.String()))

	res := alertDto.NewAlertDetail(*alert, s.now())
	return &res, nil
}

// CloseAlert cancels an active alert. Any bank may close any alert; pledges
// and the response counter are left as they are.
func (s *alertService) CloseAlert(ctx context.Context, principal entity.Principal, alertID uuid.UUID) error {
	if !principal.Is(entity.RoleBank) {
		return fmt.Errorf("only blood banks can close alerts: %w", apperror.ErrForbidden)
	}

	alert, err := s.findAlert(ctx, alertID)
	if err != nil {
		return err
	}
	if !alert.Status.CanTransitionTo(entity.AlertCancelled) {
		return fmt.Errorf("alert is already %s: %w", alert.Status, apperror.ErrConflict)
	}

	updated, err := s.repo.UpdateStatus(ctx, alert.ID, alert.Status, entity.AlertCancelled)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("alert was closed concurrently: %w", apperror.ErrConflict)
	}

	metrics.RecordEvent(metrics.EventAlertClosed)
	logger.Info("alert closed", zap.String("alert_id", alert.ID.String()), zap.String("bank_id", principal.UserID.String()))
	return nil
}

func (s *alertService) ActiveAlerts(ctx context.Context) ([]alertDto.AlertDetail, error) {
	alerts, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return lo.Map(alerts, func(a entity.Alert, _ int) alertDto.AlertDetail {
		return alertDto.NewAlertDetail(a, now)
	}), nil
}

func (s *alertService) GetAlert(ctx context.Context, id uuid.UUID) (*alertDto.AlertDetail, error) {
	alert, err := s.findAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	res := alertDto.NewAlertDetail(*alert, s.now())
	return &res, nil
}

func (s *alertService) findAlert(ctx context.Context, id uuid.UUID) (*entity.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return alert, nil
}

func (s *alertService) requireBank(ctx context.Context, principal entity.Principal) (*entity.User, error) {
	if !principal.Is(entity.RoleBank) {
		return nil, fmt.Errorf("only blood banks can issue alerts: %w", apperror.ErrForbidden)
	}

	bank, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("blood bank profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return bank, nil
}

func locationOrUnknown(location string) string {
	if strings.TrimSpace(location) == "" {
		return unknownLocation
	}
	return location
}
