package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"otms/config"
	mailerMocks "otms/infras/mailer/mocks"
	"otms/infras/otel/mocks"
	auditMocks "otms/internal/domains/audit/mocks"
	doctorMocks "otms/internal/domains/doctor/mocks"
	doctorModel "otms/internal/domains/doctor/model"
	patientMocks "otms/internal/domains/patient/mocks"
	patientModel "otms/internal/domains/patient/model"
	surgeryMocks "otms/internal/domains/surgery/mocks"
	"otms/internal/domains/surgery/model"
	"otms/internal/domains/surgery/model/dto"
	"otms/internal/domains/surgery/service"
	theatreMocks "otms/internal/domains/theatre/mocks"
	theatreModel "otms/internal/domains/theatre/model"
	"otms/internal/notification"
	"otms/internal/realtime"
	cacheMocks "otms/shared/cache/mocks"
	"otms/shared/constant"
	gDto "otms/shared/dto"
	"otms/shared/failure"
	gModel "otms/shared/model"
	"otms/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo     *surgeryMocks.MockSurgery
	patients *patientMocks.MockPatient
	doctors  *doctorMocks.MockDoctor
	theatres *theatreMocks.MockTheatre
	recorder *auditMocks.MockRecorder
	cache    *cacheMocks.MockRedisCache
	mailer   *mailerMocks.MockMailer
	hub      *realtime.Hub
	svc      service.Surgery
}

func newFixture(t *testing.T, ctrl *gomock.Controller) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Notification.QueueSize = 16
	cfg.Notification.MaxAttempts = 3

	f := &fixture{
		repo:     surgeryMocks.NewMockSurgery(ctrl),
		patients: patientMocks.NewMockPatient(ctrl),
		doctors:  doctorMocks.NewMockDoctor(ctrl),
		theatres: theatreMocks.NewMockTheatre(ctrl),
		recorder: auditMocks.NewMockRecorder(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		mailer:   mailerMocks.NewMockMailer(ctrl),
		hub:      realtime.NewHub(),
	}

	queue := notification.NewQueue(cfg, f.mailer)

	f.svc = service.New(f.repo, f.patients, f.doctors, f.theatres, f.recorder,
		queue, f.hub, cfg, f.cache, mocks.NewOtel())

	// Cache traffic and notification lookups run off the request path; the
	// tests here assert scheduling behavior, not cache plumbing.
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(patientModel.Patient{}, nil).AnyTimes()
	f.doctors.EXPECT().Get(gomock.Any(), gomock.Any()).Return(doctorModel.Doctor{}, nil).AnyTimes()
	f.theatres.EXPECT().Get(gomock.Any(), gomock.Any()).Return(theatreModel.Theatre{}, nil).AnyTimes()

	return f
}

func gDtoParams() gDto.QueryParams {
	return gDto.QueryParams{
		Page:    1,
		Limit:   10,
		SortBy:  constant.DefaultValueSortBy,
		SortDir: constant.DefaultValueSortDir,
	}
}

func identityContext(role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserName, "Scheduler")
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, "scheduler@example.com")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role)

	return ctx
}

func createRequest() dto.CreateSurgeryRequest {
	return dto.CreateSurgeryRequest{
		PatientID:   "patient-1",
		DoctorID:    "doctor-1",
		TheatreID:   "theatre-1",
		SurgeryDate: "2026-03-14",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}
}

func expectCollaboratorsExist(f *fixture) {
	f.patients.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.theatres.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
}

func TestSurgeryService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	expectCollaboratorsExist(f)

	f.repo.EXPECT().
		FindConflict(gomock.Any(), "theatre-1", "doctor-1", gomock.Any(), gomock.Any(), "").
		Return(model.Surgery{}, nil)

	f.repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, surgery model.Surgery) error {
			assert.Equal(t, model.StatusScheduled, surgery.Status)
			assert.Equal(t, model.PriorityNormal, surgery.Priority)
			assert.True(t, surgery.EndAt.After(surgery.StartAt))

			return nil
		})

	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	_, events := f.hub.Subscribe()

	res, err := f.svc.Create(identityContext(constant.RoleAdmin), createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.StatusScheduled, res.Status)
	assert.Equal(t, "09:00", res.StartTime)

	select {
	case event := <-events:
		assert.Equal(t, realtime.EventBookingUpdated, event.Event)
		assert.Equal(t, realtime.ActionCreate, event.Action)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast for the new booking")
	}
}

func TestSurgeryService_Create_InvalidWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	req := createRequest()
	req.StartTime = "10:00"
	req.EndTime = "09:00"

	_, err := f.svc.Create(identityContext(constant.RoleAdmin), req)
	require.Error(t, err)

	assert.Equal(t, 400, failure.GetCode(err))
	assert.Contains(t, err.Error(), "end time must be after start time")
}

func TestSurgeryService_Create_ZeroLengthWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	req := createRequest()
	req.StartTime = "09:00"
	req.EndTime = "09:00"

	_, err := f.svc.Create(identityContext(constant.RoleAdmin), req)
	require.Error(t, err)
	assert.Equal(t, 400, failure.GetCode(err))
}

func TestSurgeryService_Create_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	expectCollaboratorsExist(f)

	f.repo.EXPECT().
		FindConflict(gomock.Any(), "theatre-1", "doctor-1", gomock.Any(), gomock.Any(), "").
		Return(model.Surgery{ID: "existing-1", Status: model.StatusScheduled}, nil)

	// No Insert expectation: a conflicting request must never reach the write.
	_, err := f.svc.Create(identityContext(constant.RoleAdmin), createRequest())
	require.Error(t, err)

	assert.Equal(t, 409, failure.GetCode(err))

	details, ok := failure.GetDetails(err).(map[string]string)
	require.True(t, ok, "conflict details should carry the colliding booking id")
	assert.Equal(t, "existing-1", details["conflicting_booking_id"])
}

func TestSurgeryService_Create_EmergencyOverridesConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	expectCollaboratorsExist(f)

	f.repo.EXPECT().
		FindConflict(gomock.Any(), "theatre-1", "doctor-1", gomock.Any(), gomock.Any(), "").
		Return(model.Surgery{ID: "existing-1", Status: model.StatusScheduled}, nil)

	// The emergency is booked anyway; the existing surgery is left untouched,
	// so no Update call is expected.
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	req := createRequest()
	req.Priority = model.PriorityEmergency

	res, err := f.svc.Create(identityContext(constant.RoleAdmin), req)
	require.NoError(t, err)

	assert.Equal(t, model.StatusEmergency, res.Status)
	assert.Equal(t, model.PriorityEmergency, res.Priority)
}

func TestSurgeryService_Create_UnknownPatient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.patients.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := f.svc.Create(identityContext(constant.RoleAdmin), createRequest())
	require.Error(t, err)
	assert.Equal(t, 400, failure.GetCode(err))
}

func scheduledSurgery() model.Surgery {
	loc := timezone.GetLocation()

	return model.Surgery{
		ID:          "surgery-1",
		PatientID:   "patient-1",
		DoctorID:    "doctor-1",
		TheatreID:   "theatre-1",
		SurgeryDate: time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		StartAt:     time.Date(2026, 3, 14, 9, 0, 0, 0, loc),
		EndAt:       time.Date(2026, 3, 14, 10, 0, 0, 0, loc),
		Status:      model.StatusScheduled,
		Priority:    model.PriorityNormal,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "user-1",
			ModifiedBy: "user-1",
		},
	}
}

func TestSurgeryService_Update_RescheduleExcludesSelf(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduledSurgery(), nil)

	// The booking being moved must not collide with its own current slot.
	f.repo.EXPECT().
		FindConflict(gomock.Any(), "theatre-1", "doctor-1", gomock.Any(), gomock.Any(), "surgery-1").
		Return(model.Surgery{}, nil)

	f.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.Contains(t, fields, model.FieldStartAt)
			assert.Contains(t, fields, model.FieldEndAt)
			assert.Equal(t, model.StatusRescheduled, fields[model.FieldStatus])

			return nil
		})

	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	req := dto.UpdateSurgeryRequest{StartTime: "11:00", EndTime: "12:00"}

	res, err := f.svc.Update(identityContext(constant.RoleAdmin), req, "surgery-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusRescheduled, res.Status)
	assert.Equal(t, "11:00", res.StartTime)
	assert.Equal(t, "12:00", res.EndTime)
}

func TestSurgeryService_Update_RescheduleConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduledSurgery(), nil)

	f.repo.EXPECT().
		FindConflict(gomock.Any(), "theatre-1", "doctor-1", gomock.Any(), gomock.Any(), "surgery-1").
		Return(model.Surgery{ID: "other-1", Status: model.StatusScheduled}, nil)

	req := dto.UpdateSurgeryRequest{StartTime: "11:00", EndTime: "12:00"}

	_, err := f.svc.Update(identityContext(constant.RoleAdmin), req, "surgery-1")
	require.Error(t, err)
	assert.Equal(t, 409, failure.GetCode(err))
}

func TestSurgeryService_Update_TerminalStateRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	tests := []struct {
		name   string
		status string
		req    dto.UpdateSurgeryRequest
	}{
		{"completed cannot be rescheduled", model.StatusCompleted, dto.UpdateSurgeryRequest{StartTime: "11:00", EndTime: "12:00"}},
		{"completed cannot be cancelled", model.StatusCompleted, dto.UpdateSurgeryRequest{Status: model.StatusCancelled}},
		{"emergency cannot be rescheduled", model.StatusEmergency, dto.UpdateSurgeryRequest{SurgeryDate: "2026-03-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := scheduledSurgery()
			current.Status = tt.status

			f.repo.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(current, nil)

			_, err := f.svc.Update(identityContext(constant.RoleAdmin), tt.req, "surgery-1")
			require.Error(t, err)
			assert.Equal(t, 409, failure.GetCode(err))
		})
	}
}

func TestSurgeryService_Update_CancelWithWindowFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduledSurgery(), nil)

	// A cancellation releases the slot, so window fields riding along must
	// not trigger a conflict check. FindConflict has no expectation here on
	// purpose: calling it fails the test.
	f.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
			assert.NotContains(t, fields, model.FieldStartAt)
			assert.NotContains(t, fields, model.FieldEndAt)

			return nil
		})

	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	req := dto.UpdateSurgeryRequest{
		SurgeryDate: "2026-03-15",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Status:      model.StatusCancelled,
	}

	res, err := f.svc.Update(identityContext(constant.RoleAdmin), req, "surgery-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, res.Status)
}

func TestSurgeryService_Update_StatusOnlyCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduledSurgery(), nil)

	// No window change, so no conflict check is needed.
	f.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.Equal(t, model.StatusCompleted, fields[model.FieldStatus])
			assert.NotContains(t, fields, model.FieldStartAt)

			return nil
		})

	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	res, err := f.svc.Update(identityContext(constant.RoleAdmin), dto.UpdateSurgeryRequest{Status: model.StatusCompleted}, "surgery-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, res.Status)
}

func TestSurgeryService_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.Surgery{}, nil)

	_, err := f.svc.Update(identityContext(constant.RoleAdmin), dto.UpdateSurgeryRequest{Notes: "x"}, "missing")
	require.Error(t, err)
	assert.Equal(t, 404, failure.GetCode(err))
}

func TestSurgeryService_Update_EmptyRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	_, err := f.svc.Update(identityContext(constant.RoleAdmin), dto.UpdateSurgeryRequest{}, "surgery-1")
	require.Error(t, err)
	assert.Equal(t, 400, failure.GetCode(err))
}

func TestSurgeryService_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduledSurgery(), nil)

	f.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
			assert.Equal(t, true, fields[model.FieldIsDeleted])

			return nil
		})

	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	err := f.svc.Cancel(identityContext(constant.RoleAdmin), "surgery-1")
	require.NoError(t, err)
}

func TestSurgeryService_Cancel_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.Surgery{}, nil)

	err := f.svc.Cancel(identityContext(constant.RoleAdmin), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, failure.GetCode(err))
}

func TestSurgeryService_Cancel_AlreadyCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	current := scheduledSurgery()
	current.Status = model.StatusCompleted

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(current, nil)

	err := f.svc.Cancel(identityContext(constant.RoleAdmin), "surgery-1")
	require.Error(t, err)
	assert.Equal(t, 409, failure.GetCode(err))
}

func TestSurgeryService_GetAll_DoctorSeesOwnOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.doctors.EXPECT().
		GetByEmail(gomock.Any(), "scheduler@example.com").
		Return(doctorModel.Doctor{ID: "doctor-1", Name: "Dr. Salim", Email: "scheduler@example.com"}, nil)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Surgery{scheduledSurgery()}, nil)

	res, err := f.svc.GetAll(identityContext(constant.RoleDoctor), gDtoParams(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.TotalData)
	require.Len(t, res.Surgeries, 1)
	assert.Equal(t, "doctor-1", res.Surgeries[0].DoctorID)
}

func TestSurgeryService_GetAll_UnknownDoctorGetsEmptyList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.doctors.EXPECT().
		GetByEmail(gomock.Any(), "scheduler@example.com").
		Return(doctorModel.Doctor{}, nil)

	res, err := f.svc.GetAll(identityContext(constant.RoleDoctor), gDtoParams(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalData)
	assert.Empty(t, res.Surgeries)
}

func TestSurgeryService_GetAll_InvalidDateFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	_, err := f.svc.GetAll(identityContext(constant.RoleAdmin), gDtoParams(), "14-03-2026")
	require.Error(t, err)
	assert.Equal(t, 400, failure.GetCode(err))
}

func TestSurgeryService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduledSurgery(), nil)

	res, err := f.svc.Get(identityContext(constant.RoleAdmin), "surgery-1")
	require.NoError(t, err)
	assert.Equal(t, "surgery-1", res.ID)
}

func TestSurgeryService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.Surgery{}, nil)

	_, err := f.svc.Get(identityContext(constant.RoleAdmin), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, failure.GetCode(err))
}

func TestSurgeryService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().
		Stats(gomock.Any()).
		Return(model.Stats{Total: 5, Completed: 2, Cancelled: 1, Scheduled: 1, Emergency: 1}, nil)

	res, err := f.svc.Stats(identityContext(constant.RoleAdmin))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Completed)
	assert.Equal(t, 1, res.Emergency)
}
