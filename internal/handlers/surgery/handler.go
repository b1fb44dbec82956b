package surgery

import (
	"net/http"
	"otms/infras/otel"
	"otms/internal/domains/surgery/model/dto"
	"otms/internal/domains/surgery/service"
	"otms/internal/realtime"
	"otms/shared/constant"
	gDto "otms/shared/dto"
	"otms/shared/validator"
	"otms/transport/http/response"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Browser origins are already constrained by the CORS middleware.
		return true
	},
}

type Handler struct {
	service service.Surgery
	hub     *realtime.Hub
	otel    otel.Otel
}

func New(service service.Surgery, hub *realtime.Hub, otel otel.Otel) Handler {
	return Handler{
		service: service,
		hub:     hub,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/surgeries", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSurgery)
		routerGroup.Get("/", handler.GetSurgeries)
		routerGroup.Get("/stats", handler.GetStats)
		routerGroup.Get("/events", handler.Events)
		routerGroup.Get("/{id}", handler.GetSurgeryByID)
		routerGroup.Put("/{id}", handler.UpdateSurgery)
		routerGroup.Delete("/{id}", handler.CancelSurgery)
	})
}

// CreateSurgery books a new surgery.
// @Summary Book a surgery
// @Description Book a surgery slot for a patient in a theatre with a doctor.
// @Tags Surgery
// @Accept json
// @Produce json
// @Param request body dto.CreateSurgeryRequest true "Create Surgery Request"
// @Success 201 {object} response.Data[dto.SurgeryResponse] "Surgery booked successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Theatre or doctor already booked in the window"
// @Failure 500 {object} response.Error
// @Router /v1/surgeries [post]
// @Security BearerAuth
func (handler *Handler) CreateSurgery(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSurgery")
	defer scope.End()

	req := dto.CreateSurgeryRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create surgery")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Surgery booked successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetSurgeries lists surgeries.
// @Summary List surgeries
// @Description List surgeries with pagination, optionally narrowed to one day. Doctors only see their own surgeries.
// @Tags Surgery
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param date query string false "Filter by day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetSurgeriesResponse] "List of surgeries"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/surgeries [get]
// @Security BearerAuth
func (handler *Handler) GetSurgeries(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSurgeries")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	date := r.URL.Query().Get(constant.RequestParamDate)

	surgeries, err := handler.service.GetAll(ctx, queryParams, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get surgeries")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Surgeries retrieved successfully")

	response.WithJSON(w, http.StatusOK, surgeries)
}

// GetStats aggregates booking counts per status.
// @Summary Surgery statistics
// @Description Aggregate booking counts per status for the dashboard.
// @Tags Surgery
// @Produce json
// @Success 200 {object} response.Data[dto.StatsResponse] "Aggregate counts"
// @Failure 500 {object} response.Error
// @Router /v1/surgeries/stats [get]
// @Security BearerAuth
func (handler *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStats")
	defer scope.End()

	stats, err := handler.service.Stats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get surgery stats")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, stats)
}

// GetSurgeryByID fetches one surgery.
// @Summary Get a surgery by ID
// @Description Retrieve a surgery by its unique identifier.
// @Tags Surgery
// @Produce json
// @Param id path string true "Surgery ID"
// @Success 200 {object} response.Data[dto.SurgeryResponse] "Surgery details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/surgeries/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetSurgeryByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSurgeryByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	surgery, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get surgery by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, surgery)
}

// UpdateSurgery reschedules a surgery or changes its status.
// @Summary Update a surgery
// @Description Reschedule a surgery or move it through its status lifecycle.
// @Tags Surgery
// @Accept json
// @Produce json
// @Param id path string true "Surgery ID"
// @Param request body dto.UpdateSurgeryRequest true "Update Surgery Request"
// @Success 200 {object} response.Data[dto.SurgeryResponse] "Updated surgery"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Conflicting booking or invalid status transition"
// @Failure 500 {object} response.Error
// @Router /v1/surgeries/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateSurgery(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSurgery")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateSurgeryRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	surgery, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update surgery")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Surgery updated successfully")

	response.WithJSON(w, http.StatusOK, surgery)
}

// CancelSurgery soft-cancels a surgery.
// @Summary Cancel a surgery
// @Description Cancel a surgery. The record is kept for audit, the slot is released.
// @Tags Surgery
// @Produce json
// @Param id path string true "Surgery ID"
// @Success 200 {object} response.Message "Surgery cancelled successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/surgeries/{id} [delete]
// @Security BearerAuth
func (handler *Handler) CancelSurgery(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelSurgery")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Cancel(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel surgery")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Surgery cancelled successfully")

	response.WithMessage(w, http.StatusOK, "Surgery cancelled successfully")
}

// Events streams booking updates over a websocket.
// @Summary Booking event stream
// @Description Upgrade to a websocket and receive a booking_updated event whenever a surgery is created or changed.
// @Tags Surgery
// @Success 101 "Switching Protocols"
// @Router /v1/surgeries/events [get]
// @Security BearerAuth
func (handler *Handler) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")

		return
	}

	id, events := handler.hub.Subscribe()

	go handler.writePump(conn, id, events)

	// Drain the connection so close frames and pongs are processed; clients
	// are not expected to send anything else.
	go func() {
		defer handler.hub.Unsubscribe(id)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (handler *Handler) writePump(conn *websocket.Conn, id string, events <-chan realtime.Event) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))

				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteJSON(event); err != nil {
				log.Warn().Err(err).Str("observer", id).Msg("failed to write event to websocket")
				handler.hub.Unsubscribe(id)

				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				handler.hub.Unsubscribe(id)

				return
			}
		}
	}
}
