package service_test

import (
	"context"
	"errors"
	"testing"

	"otms/config"
	"otms/infras/otel/mocks"
	surgeryMocks "otms/internal/domains/surgery/mocks"
	trackingMocks "otms/internal/domains/tracking/mocks"
	"otms/internal/domains/tracking/model"
	"otms/internal/domains/tracking/model/dto"
	"otms/internal/domains/tracking/service"
	cacheMocks "otms/shared/cache/mocks"
	"otms/shared/constant"
	"otms/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newService(ctrl *gomock.Controller) (service.Tracking, *trackingMocks.MockTracking, *surgeryMocks.MockSurgery, *cacheMocks.MockRedisCache) {
	repo := trackingMocks.NewMockTracking(ctrl)
	surgeries := surgeryMocks.NewMockSurgery(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(repo, surgeries, cfg, cache, mocks.NewOtel()), repo, surgeries, cache
}

func upsertRequest() dto.UpsertTrackingRequest {
	return dto.UpsertTrackingRequest{
		SurgeryID:       "surgery-1",
		ConsentObtained: true,
		SiteMarked:      true,
		PreOpNotes:      "fasting since midnight",
		RecoveryStatus:  model.RecoveryStable,
		NurseInCharge:   "Nurse A",
	}
}

func TestTrackingService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _, cache := newService(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	repo.EXPECT().
		GetBySurgeryID(gomock.Any(), "surgery-1").
		Return(model.Tracking{ID: "tracking-1", SurgeryID: "surgery-1", RecoveryStatus: model.RecoveryStable}, nil)

	res, err := svc.Get(context.Background(), "surgery-1")
	require.NoError(t, err)

	assert.Equal(t, "tracking-1", res.ID)
	assert.Equal(t, "surgery-1", res.SurgeryID)
	assert.Equal(t, model.RecoveryStable, res.RecoveryStatus)
}

func TestTrackingService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _, cache := newService(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	repo.EXPECT().
		GetBySurgeryID(gomock.Any(), "missing").
		Return(model.Tracking{}, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, failure.GetCode(err))
}

func TestTrackingService_Upsert_CreatesWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, surgeries, _ := newService(ctrl)

	surgeries.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	repo.EXPECT().
		GetBySurgeryID(gomock.Any(), "surgery-1").
		Return(model.Tracking{}, nil)

	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tracking model.Tracking) error {
			assert.NotEmpty(t, tracking.ID)
			assert.Equal(t, "surgery-1", tracking.SurgeryID)
			assert.True(t, tracking.ConsentObtained)
			assert.Equal(t, model.RecoveryStable, tracking.RecoveryStatus)
			assert.Equal(t, "user-1", tracking.CreatedBy)

			return nil
		})

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")

	res, err := svc.Upsert(ctx, upsertRequest())
	require.NoError(t, err)
	assert.Equal(t, "surgery-1", res.SurgeryID)
}

func TestTrackingService_Upsert_UpdatesWhenPresent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, surgeries, _ := newService(ctrl)

	existing := model.Tracking{ID: "tracking-1", SurgeryID: "surgery-1", RecoveryStatus: model.RecoveryStable}
	updated := existing
	updated.RecoveryStatus = model.RecoveryDischarged
	updated.PostOpNotes = "discharged without complications"

	surgeries.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

	gomock.InOrder(
		repo.EXPECT().GetBySurgeryID(gomock.Any(), "surgery-1").Return(existing, nil),
		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				assert.Equal(t, model.RecoveryDischarged, fields["recovery_status"])

				return nil
			}),
		repo.EXPECT().GetBySurgeryID(gomock.Any(), "surgery-1").Return(updated, nil),
	)

	req := upsertRequest()
	req.RecoveryStatus = model.RecoveryDischarged
	req.PostOpNotes = "discharged without complications"

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")

	res, err := svc.Upsert(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "tracking-1", res.ID)
	assert.Equal(t, model.RecoveryDischarged, res.RecoveryStatus)
}

func TestTrackingService_Upsert_UnknownSurgery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, surgeries, _ := newService(ctrl)

	surgeries.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := svc.Upsert(context.Background(), upsertRequest())
	require.Error(t, err)
	assert.Equal(t, 404, failure.GetCode(err))
}
