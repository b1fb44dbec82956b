package tracking

import (
	"net/http"
	"otms/infras/otel"
	"otms/internal/domains/tracking/model/dto"
	"otms/internal/domains/tracking/service"
	"otms/shared/constant"
	"otms/shared/validator"
	"otms/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Tracking
	otel    otel.Otel
}

func New(service service.Tracking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/surgery-tracking", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.UpsertTracking)
		routerGroup.Get("/{surgeryId}", handler.GetTracking)
	})
}

// UpsertTracking records or updates pre and post operative tracking.
// @Summary Upsert surgery tracking
// @Description Record or update the pre-op checklist and post-op recovery notes for a surgery.
// @Tags Tracking
// @Accept json
// @Produce json
// @Param request body dto.UpsertTrackingRequest true "Upsert Tracking Request"
// @Success 200 {object} response.Data[dto.TrackingResponse] "Tracking record"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/surgery-tracking [post]
// @Security BearerAuth
func (handler *Handler) UpsertTracking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpsertTracking")
	defer scope.End()

	req := dto.UpsertTrackingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	tracking, err := handler.service.Upsert(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upsert surgery tracking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Surgery tracking upserted successfully")

	response.WithJSON(w, http.StatusOK, tracking)
}

// GetTracking fetches the tracking record of a surgery.
// @Summary Get surgery tracking
// @Description Retrieve the tracking record attached to a surgery.
// @Tags Tracking
// @Produce json
// @Param surgeryId path string true "Surgery ID"
// @Success 200 {object} response.Data[dto.TrackingResponse] "Tracking record"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/surgery-tracking/{surgeryId} [get]
// @Security BearerAuth
func (handler *Handler) GetTracking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTracking")
	defer scope.End()

	surgeryID := chi.URLParam(r, constant.RequestParamSurgeryID)

	tracking, err := handler.service.Get(ctx, surgeryID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get surgery tracking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, tracking)
}
