package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"anoa.com/bloodlink/internal/entity"
	alertDto "anoa.com/bloodlink/internal/modules/alert/dto"
	alertRepo "anoa.com/bloodlink/internal/modules/alert/repository"
	requestRepo "anoa.com/bloodlink/internal/modules/request/repository"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/internal/testutil"
	"anoa.com/bloodlink/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*alertService, *gorm.DB) {
	db := testutil.NewTestDB(t)
	return newServiceOn(db), db
}

func newServiceOn(db *gorm.DB) *alertService {
	return NewAlertService(
		alertRepo.NewAlertRepository(db),
		requestRepo.NewRequestRepository(db),
		userRepo.NewUserRepository(db),
	).(*alertService)
}

func seedRequest(t *testing.T, db *gorm.DB, doctor *entity.User, group, rhesus string) *entity.BloodRequest {
	t.Helper()
	req := &entity.BloodRequest{
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		BloodGroup:  group,
		Rhesus:      rhesus,
		Quantity:    1,
		Location:    doctor.Location,
		Status:      entity.RequestPending,
		RequestedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func TestValidateRequestCreatesLinkedAlert(t *testing.T) {
	svc, db := newTestService(t)
	doctor := testutil.CreateDoctor(t, db, "Dr Ba", "Hopital Fann")
	bank := testutil.CreateBank(t, db, "CNTS", "Dakar")
	req := seedRequest(t, db, doctor, "O", "+")

	alert, err := svc.ValidateRequest(context.Background(), testutil.Principal(bank), req.ID)
	require.NoError(t, err)

	require.NotNil(t, alert.RequestID)
	assert.Equal(t, req.ID, *alert.RequestID)
	assert.Equal(t, doctor.ID, *alert.DoctorID)
	assert.Equal(t, "Dr Ba", *alert.DoctorName)
	assert.Equal(t, "Hopital Fann", alert.HospitalName)
	assert.Equal(t, "CNTS", alert.BankName)
	assert.Equal(t, "doctor", alert.InitiatedBy)
	assert.Equal(t, "active", alert.Status)
	assert.Equal(t, "HIGH", alert.UrgencyLevel)
	assert.Equal(t, "URGENT NEED FOR BLOOD O+", alert.Message)
	assert.Zero(t, alert.ResponseCount)

	var stored entity.BloodRequest
	require.NoError(t, db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, entity.RequestAccepted, stored.Status)
	require.NotNil(t, stored.ValidatedAt)
	require.NotNil(t, stored.ValidatedByBankID)
	assert.Equal(t, bank.ID, *stored.ValidatedByBankID)

	var alerts []entity.Alert
	require.NoError(t, db.Where("request_id = ?", req.ID).Find(&alerts).Error)
	assert.Len(t, alerts, 1)
	assert.Zero(t, alerts[0].NotificationsSent)
}

func TestValidateRequestTwiceConflicts(t *testing.T) {
	svc, db := newTestService(t)
	doctor := testutil.CreateDoctor(t, db, "Dr Ba", "Fann")
	bankA := testutil.CreateBank(t, db, "CNTS", "Dakar")
	bankB := testutil.CreateBank(t, db, "Bank Thies", "Thies")
	req := seedRequest(t, db, doctor, "A", "-")
	ctx := context.Background()

	_, err := svc.ValidateRequest(ctx, testutil.Principal(bankA), req.ID)
	require.NoError(t, err)

	_, err = svc.ValidateRequest(ctx, testutil.Principal(bankB), req.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var count int64
	db.Model(&entity.Alert{}).Where("request_id = ?", req.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestValidateRequestConcurrentBanksFirstWriterWins(t *testing.T) {
	const banks = 8
	db := testutil.NewConcurrentTestDB(t, banks)
	svc := newServiceOn(db)
	doctor := testutil.CreateDoctor(t, db, "Dr Ba", "Fann")
	req := seedRequest(t, db, doctor, "B", "+")

	callers := make([]*entity.User, banks)
	for i := range callers {
		callers[i] = testutil.CreateBank(t, db, fmt.Sprintf("Bank %d", i), "Dakar")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []uuid.UUID
		conflicts int
	)
	start := make(chan struct{})
	for _, bank := range callers {
		wg.Add(1)
		go func(bank *entity.User) {
			defer wg.Done()
			<-start
			_, err := svc.ValidateRequest(context.Background(), testutil.Principal(bank), req.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, bank.ID)
			case errors.Is(err, apperror.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(bank)
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, banks-1, conflicts)

	var stored entity.BloodRequest
	require.NoError(t, db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, entity.RequestAccepted, stored.Status)
	require.NotNil(t, stored.ValidatedByBankID)
	assert.Equal(t, winners[0], *stored.ValidatedByBankID)

	var alerts []entity.Alert
	require.NoError(t, db.Where("request_id = ?", req.ID).Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, winners[0], alerts[0].BloodBankID)
}

func TestValidateRequestRollsBackWhenAlertInsertFails(t *testing.T) {
	svc, db := newTestService(t)
	doctor := testutil.CreateDoctor(t, db, "Dr Ba", "Fann")
	bank := testutil.CreateBank(t, db, "CNTS", "Dakar")
	req := seedRequest(t, db, doctor, "AB", "+")

	// An alert already bound to the request makes the insert hit the unique
	// request_id index after the status update has gone through.
	reqID := req.ID
	existing := &entity.Alert{
		BloodBankID: bank.ID, BankName: bank.Name, BloodGroup: "AB", Rhesus: "+",
		RequestID: &reqID, InitiatedBy: entity.InitiatedByDoctor,
		Status: entity.AlertActive, UrgencyLevel: entity.UrgencyHigh, AlertDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(existing).Error)

	_, err := svc.ValidateRequest(context.Background(), testutil.Principal(bank), req.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var stored entity.BloodRequest
	require.NoError(t, db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, entity.RequestPending, stored.Status)
	assert.Nil(t, stored.ValidatedByBankID)
	assert.Nil(t, stored.ValidatedAt)

	var count int64
	require.NoError(t, db.Model(&entity.Alert{}).Where("request_id = ?", req.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestValidateRequestErrors(t *testing.T) {
	svc, db := newTestService(t)
	doctor := testutil.CreateDoctor(t, db, "Dr Ba", "Fann")
	bank := testutil.CreateBank(t, db, "CNTS", "Dakar")
	req := seedRequest(t, db, doctor, "O", "-")
	ctx := context.Background()

	_, err := svc.ValidateRequest(ctx, testutil.Principal(doctor), req.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.ValidateRequest(ctx, testutil.Principal(bank), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var stored entity.BloodRequest
	require.NoError(t, db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, entity.RequestPending, stored.Status)
}

func TestCreateDirectAlert(t *testing.T) {
	svc, db := newTestService(t)
	bank := testutil.CreateBank(t, db, "CNTS", "")
	ctx := context.Background()

	alert, err := svc.CreateDirectAlert(ctx, testutil.Principal(bank), alertDto.CreateAlertInput{
		BloodGroup: "AB", Rhesus: "-", Location: "Hopital Le Dantec",
	})
	require.NoError(t, err)
	assert.Nil(t, alert.RequestID)
	assert.Nil(t, alert.DoctorID)
	assert.Equal(t, "bank", alert.InitiatedBy)
	assert.Equal(t, "HIGH", alert.UrgencyLevel)
	assert.Equal(t, "Unknown", alert.BankLocation)
	assert.Equal(t, "Hopital Le Dantec", alert.HospitalName)
	assert.Equal(t, "URGENT NEED FOR BLOOD AB-", alert.Message)

	alert, err = svc.CreateDirectAlert(ctx, testutil.Principal(bank), alertDto.CreateAlertInput{
		BloodGroup: "O", Rhesus: "+", UrgencyLevel: "low",
		Message: `<script>steal()</script>Donors welcome <b>today</b>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "LOW", alert.UrgencyLevel)
	assert.Equal(t, "Donors welcome today", alert.Message)

	_, err = svc.CreateDirectAlert(ctx, testutil.Principal(bank), alertDto.CreateAlertInput{BloodGroup: "O", Rhesus: "+", UrgencyLevel: "extreme"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	donor := testutil.CreateDonor(t, db, "Awa", "O", "+")
	_, err = svc.CreateDirectAlert(ctx, testutil.Principal(donor), alertDto.CreateAlertInput{BloodGroup: "O", Rhesus: "+"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCloseAlertIsTerminal(t *testing.T) {
	svc, db := newTestService(t)
	bank := testutil.CreateBank(t, db, "CNTS", "Dakar")
	otherBank := testutil.CreateBank(t, db, "Bank Thies", "Thies")
	ctx := context.Background()

	alert, err := svc.CreateDirectAlert(ctx, testutil.Principal(bank), alertDto.CreateAlertInput{BloodGroup: "O", Rhesus: "+"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entity.Alert{}).Where("id = ?", alert.ID).Update("response_count", 3).Error)

	require.NoError(t, svc.CloseAlert(ctx, testutil.Principal(otherBank), alert.ID))

	err = svc.CloseAlert(ctx, testutil.Principal(bank), alert.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	got, err := svc.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, 3, got.ResponseCount)

	assert.ErrorIs(t, svc.CloseAlert(ctx, testutil.Principal(bank), uuid.New()), apperror.ErrNotFound)
}

func TestActiveAlertsOrderAndFilter(t *testing.T) {
	svc, db := newTestService(t)
	bank := testutil.CreateBank(t, db, "CNTS", "Dakar")
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, group := range []string{"A", "B", "O"} {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		a, err := svc.CreateDirectAlert(ctx, testutil.Principal(bank), alertDto.CreateAlertInput{BloodGroup: group, Rhesus: "+"})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	require.NoError(t, svc.CloseAlert(ctx, testutil.Principal(bank), ids[1]))

	svc.now = func() time.Time { return base.Add(5 * time.Hour) }
	list, err := svc.ActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[1].ID)
	assert.Equal(t, "3h", list[0].TimePosted)
	assert.Equal(t, "5h", list[1].TimePosted)
}

func TestGetAlertFloorsNegativeCount(t *testing.T) {
	svc, db := newTestService(t)
	bank := testutil.CreateBank(t, db, "CNTS", "Dakar")
	ctx := context.Background()

	a, err := svc.CreateDirectAlert(ctx, testutil.Principal(bank), alertDto.CreateAlertInput{BloodGroup: "A", Rhesus: "+"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entity.Alert{}).Where("id = ?", a.ID).Update("response_count", -2).Error)

	got, err := svc.GetAlert(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ResponseCount)
}
