package service

import (
	"context"
	"fmt"
	"otms/config"
	"otms/infras/otel"
	auditModel "otms/internal/domains/audit/model"
	auditService "otms/internal/domains/audit/service"
	doctorModel "otms/internal/domains/doctor/model"
	doctorRepo "otms/internal/domains/doctor/repository"
	patientModel "otms/internal/domains/patient/model"
	patientRepo "otms/internal/domains/patient/repository"
	"otms/internal/domains/surgery/model"
	"otms/internal/domains/surgery/model/dto"
	"otms/internal/domains/surgery/repository"
	theatreModel "otms/internal/domains/theatre/model"
	theatreRepo "otms/internal/domains/theatre/repository"
	"otms/internal/notification"
	"otms/internal/realtime"
	"otms/shared"
	"otms/shared/cache"
	"otms/shared/constant"
	gDto "otms/shared/dto"
	"otms/shared/failure"
	"otms/shared/timezone"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetSurgery    = "surgery:get"
	cacheGetAllSurgery = "surgery:gets"
	cacheStatsSurgery  = "surgery:stats"
)

func theatreKey(id string) string { return "theatre:" + id }
func doctorKey(id string) string  { return "doctor:" + id }
func bookingKey(id string) string { return "booking:" + id }

type Surgery interface {
	Create(ctx context.Context, req dto.CreateSurgeryRequest) (dto.SurgeryResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, date string) (dto.GetSurgeriesResponse, error)
	Get(ctx context.Context, id string) (dto.SurgeryResponse, error)
	Update(ctx context.Context, req dto.UpdateSurgeryRequest, id string) (dto.SurgeryResponse, error)
	Cancel(ctx context.Context, id string) error
	Stats(ctx context.Context) (dto.StatsResponse, error)
}

type serviceImpl struct {
	repo        repository.Surgery
	patientRepo patientRepo.Patient
	doctorRepo  doctorRepo.Doctor
	theatreRepo theatreRepo.Theatre
	recorder    auditService.Recorder
	queue       *notification.Queue
	hub         *realtime.Hub
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	locks       *keyedMutex
}

func New(
	repo repository.Surgery,
	patients patientRepo.Patient,
	doctors doctorRepo.Doctor,
	theatres theatreRepo.Theatre,
	recorder auditService.Recorder,
	queue *notification.Queue,
	hub *realtime.Hub,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Surgery {
	return &serviceImpl{
		repo:        repo,
		patientRepo: patients,
		doctorRepo:  doctors,
		theatreRepo: theatres,
		recorder:    recorder,
		queue:       queue,
		hub:         hub,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		locks:       newKeyedMutex(),
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSurgeryRequest) (res dto.SurgeryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".surgery.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	surgery, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse surgery request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) //nolint:wrapcheck
	}

	if !surgery.EndAt.After(surgery.StartAt) {
		return res, failure.InvalidWindow() //nolint:wrapcheck
	}

	if err = s.checkCollaborators(ctx, surgery); err != nil {
		return res, err
	}

	// Hold both resource keys across the conflict check and the insert so a
	// concurrent request for the same theatre or doctor cannot slip in
	// between the check and the write.
	unlock := s.locks.Lock(theatreKey(surgery.TheatreID), doctorKey(surgery.DoctorID))
	defer unlock()

	conflict, err := s.repo.FindConflict(ctx, surgery.TheatreID, surgery.DoctorID, surgery.StartAt, surgery.EndAt, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to check for scheduling conflict")

		return res, fmt.Errorf("failed to check for scheduling conflict: %w", err)
	}

	if conflict.ID != constant.Empty {
		if surgery.Priority != model.PriorityEmergency {
			return res, failure.SchedulingConflict(conflict.ID) //nolint:wrapcheck
		}

		log.Warn().
			Str("conflicting_booking", conflict.ID).
			Str("theatre_id", surgery.TheatreID).
			Str("doctor_id", surgery.DoctorID).
			Msg("emergency surgery booked over an existing schedule")
	}

	if err = s.repo.Insert(ctx, surgery); err != nil {
		log.Error().Err(err).Msg("failed to create surgery")

		return res, fmt.Errorf("failed to create surgery: %w", err)
	}

	res.FromModel(surgery)

	s.broadcast(realtime.ActionCreate, surgery)
	s.recorder.Record(ctx, auditModel.ActionCreate, auditService.Target{
		Entity: model.EntityName,
		ID:     surgery.ID,
	}, auditModel.Details{
		"theatre_id": surgery.TheatreID,
		"doctor_id":  surgery.DoctorID,
		"start_at":   surgery.StartAt,
		"end_at":     surgery.EndAt,
		"priority":   surgery.Priority,
	})

	go func() {
		c := context.WithoutCancel(ctx)

		s.notify(c, notification.KindScheduled, surgery)
		s.invalidate(c, "")
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, date string) (res dto.GetSurgeriesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".surgery.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldIsDeleted,
				Value:    false,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	if date != constant.Empty {
		day, parseErr := timezone.Parse(constant.DateOnlyFormat, date)
		if parseErr != nil {
			return res, failure.BadRequestFromString("invalid date filter, expected YYYY-MM-DD") //nolint:wrapcheck
		}

		filter.Filters = append(filter.Filters,
			gDto.Filter{
				ArgName:  "start_from",
				Field:    model.FieldStartAt,
				Value:    day,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "start_until",
				Field:    model.FieldStartAt,
				Value:    day.AddDate(0, 0, 1),
				Operator: gDto.FilterOperatorLess,
				Table:    model.TableName,
			},
		)
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role == constant.RoleDoctor {
		email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)

		doctor, lookupErr := s.doctorRepo.GetByEmail(ctx, email)
		if lookupErr != nil {
			log.Error().Err(lookupErr).Msg("failed to resolve doctor for list filter")

			return res, fmt.Errorf("failed to resolve doctor: %w", lookupErr)
		}

		if doctor.ID == constant.Empty {
			res.FromModels(nil, 0, params.Limit)

			return res, nil
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldDoctorID,
			Value:    doctor.ID,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSurgery, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for surgeries")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count surgeries")

		return res, fmt.Errorf("failed to count surgeries: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get surgeries")

		return res, fmt.Errorf("failed to get surgeries: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save surgeries to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SurgeryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".surgery.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetSurgery, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for surgery")

		return res, nil
	}

	surgery, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get surgery")

		return res, fmt.Errorf("failed to get surgery: %w", err)
	}

	if surgery.ID == constant.Empty {
		return res, failure.NotFound("surgery not found") //nolint:wrapcheck
	}

	res.FromModel(surgery)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save surgery to cache")
		}
	}()

	return res, nil
}

//nolint:funlen,cyclop
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateSurgeryRequest, id string) (res dto.SurgeryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".surgery.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") //nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	// The booking key serializes concurrent updates of the same surgery so
	// the state read below cannot go stale under us. Booking keys are always
	// taken before resource keys, which rules out lock cycles.
	unlockBooking := s.locks.Lock(bookingKey(id))
	defer unlockBooking()

	current, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get surgery")

		return res, fmt.Errorf("failed to get surgery: %w", err)
	}

	if current.ID == constant.Empty || current.IsDeleted {
		return res, failure.NotFound("surgery not found") //nolint:wrapcheck
	}

	targetStatus := current.Status
	if req.Status != constant.Empty {
		targetStatus = req.Status
	} else if req.HasWindowChange() {
		targetStatus = model.StatusRescheduled
	}

	// A cancellation releases the slot no matter what window fields ride
	// along, so there is nothing to re-check against the calendar.
	windowChange := req.HasWindowChange() && targetStatus != model.StatusCancelled

	if targetStatus != current.Status || windowChange {
		if !model.CanTransition(current.Status, targetStatus) {
			return res, failure.Conflict(fmt.Sprintf("cannot move surgery from %s to %s", current.Status, targetStatus)) //nolint:wrapcheck
		}
	}

	updated := current
	updated.Status = targetStatus

	if req.DoctorID != constant.Empty {
		updated.DoctorID = req.DoctorID
	}

	if req.TheatreID != constant.Empty {
		updated.TheatreID = req.TheatreID
	}

	fields := shared.TransformFields(req, user)

	if targetStatus != current.Status {
		fields[model.FieldStatus] = targetStatus
	}

	if len(req.Nurses) > 0 {
		updated.Nurses = pq.StringArray(req.Nurses)
		fields[model.FieldNurses] = updated.Nurses
	}

	if windowChange {
		if err = s.applyWindowChange(ctx, req, current, &updated, fields); err != nil {
			return res, err
		}

		unlockResources := s.locks.Lock(theatreKey(updated.TheatreID), doctorKey(updated.DoctorID))
		defer unlockResources()

		conflict, findErr := s.repo.FindConflict(ctx, updated.TheatreID, updated.DoctorID, updated.StartAt, updated.EndAt, id)
		if findErr != nil {
			log.Error().Err(findErr).Msg("failed to check for scheduling conflict")

			return res, fmt.Errorf("failed to check for scheduling conflict: %w", findErr)
		}

		if conflict.ID != constant.Empty {
			return res, failure.SchedulingConflict(conflict.ID) //nolint:wrapcheck
		}
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update surgery")

		return res, fmt.Errorf("failed to update surgery: %w", err)
	}

	if req.AnesthesiaType != constant.Empty {
		updated.AnesthesiaType = req.AnesthesiaType
	}

	if req.Anesthesiologist != constant.Empty {
		updated.Anesthesiologist = req.Anesthesiologist
	}

	if req.Notes != constant.Empty {
		updated.Notes = req.Notes
	}

	updated.ModifiedAt = timezone.Now()
	updated.ModifiedBy = user

	res.FromModel(updated)

	s.broadcast(realtime.ActionUpdate, updated)

	auditAction := auditModel.ActionUpdate
	if windowChange {
		auditAction = auditModel.ActionReschedule
	}

	s.recorder.Record(ctx, auditAction, auditService.Target{
		Entity: model.EntityName,
		ID:     id,
	}, auditModel.Details{
		"status":     updated.Status,
		"theatre_id": updated.TheatreID,
		"doctor_id":  updated.DoctorID,
		"start_at":   updated.StartAt,
		"end_at":     updated.EndAt,
	})

	go func() {
		c := context.WithoutCancel(ctx)

		if windowChange {
			s.notify(c, notification.KindRescheduled, updated)
		}

		s.invalidate(c, id)
	}()

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".surgery.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	unlock := s.locks.Lock(bookingKey(id))
	defer unlock()

	current, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get surgery")

		return fmt.Errorf("failed to get surgery: %w", err)
	}

	if current.ID == constant.Empty || current.IsDeleted {
		return failure.NotFound("surgery not found") //nolint:wrapcheck
	}

	if !model.CanTransition(current.Status, model.StatusCancelled) {
		return failure.Conflict(fmt.Sprintf("cannot cancel a %s surgery", current.Status)) //nolint:wrapcheck
	}

	fields := map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		model.FieldIsDeleted:     true,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to cancel surgery")

		return fmt.Errorf("failed to cancel surgery: %w", err)
	}

	cancelled := current
	cancelled.Status = model.StatusCancelled
	cancelled.IsDeleted = true

	s.broadcast(realtime.ActionUpdate, cancelled)
	s.recorder.Record(ctx, auditModel.ActionCancel, auditService.Target{
		Entity: model.EntityName,
		ID:     id,
	}, auditModel.Details{
		"previous_status": current.Status,
	})

	go func() {
		c := context.WithoutCancel(ctx)

		s.notify(c, notification.KindCancelled, cancelled)
		s.invalidate(c, id)
	}()

	return nil
}

func (s *serviceImpl) Stats(ctx context.Context) (res dto.StatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".surgery.Stats")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = s.cache.Get(ctx, cacheStatsSurgery, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheStatsSurgery).Msg("cache hit for surgery stats")

		return res, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to aggregate surgery stats")

		return res, fmt.Errorf("failed to aggregate surgery stats: %w", err)
	}

	res.FromModel(stats)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheStatsSurgery, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save surgery stats to cache")
		}
	}()

	return res, nil
}

// checkCollaborators verifies the referenced patient, doctor and theatre all
// exist before a slot is claimed.
func (s *serviceImpl) checkCollaborators(ctx context.Context, surgery model.Surgery) error {
	patientExists, err := s.patientRepo.Exist(ctx, shared.FilterByID(surgery.PatientID, patientModel.FieldID, patientModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if patient exists")

		return fmt.Errorf("failed to check if patient exists: %w", err)
	}

	if !patientExists {
		return failure.BadRequestFromString("patient does not exist") //nolint:wrapcheck
	}

	doctorExists, err := s.doctorRepo.Exist(ctx, shared.FilterByID(surgery.DoctorID, doctorModel.FieldID, doctorModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if doctor exists")

		return fmt.Errorf("failed to check if doctor exists: %w", err)
	}

	if !doctorExists {
		return failure.BadRequestFromString("doctor does not exist") //nolint:wrapcheck
	}

	theatreExists, err := s.theatreRepo.Exist(ctx, shared.FilterByID(surgery.TheatreID, theatreModel.FieldID, theatreModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if theatre exists")

		return fmt.Errorf("failed to check if theatre exists: %w", err)
	}

	if !theatreExists {
		return failure.BadRequestFromString("theatre does not exist") //nolint:wrapcheck
	}

	return nil
}

// applyWindowChange resolves the requested date and times against the current
// booking, validates the window and writes the derived columns into fields
// and updated.
func (s *serviceImpl) applyWindowChange(ctx context.Context, req dto.UpdateSurgeryRequest, current model.Surgery, updated *model.Surgery, fields map[string]any) error {
	if req.DoctorID != constant.Empty && req.DoctorID != current.DoctorID {
		exists, err := s.doctorRepo.Exist(ctx, shared.FilterByID(req.DoctorID, doctorModel.FieldID, doctorModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to check if doctor exists: %w", err)
		}

		if !exists {
			return failure.BadRequestFromString("doctor does not exist") //nolint:wrapcheck
		}
	}

	if req.TheatreID != constant.Empty && req.TheatreID != current.TheatreID {
		exists, err := s.theatreRepo.Exist(ctx, shared.FilterByID(req.TheatreID, theatreModel.FieldID, theatreModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to check if theatre exists: %w", err)
		}

		if !exists {
			return failure.BadRequestFromString("theatre does not exist") //nolint:wrapcheck
		}
	}

	date := timezone.Format(current.SurgeryDate, constant.DateOnlyFormat)
	if req.SurgeryDate != constant.Empty {
		date = req.SurgeryDate
	}

	start := timezone.Format(current.StartAt, constant.TimeOnlyFormat)
	if req.StartTime != constant.Empty {
		start = req.StartTime
	}

	end := timezone.Format(current.EndAt, constant.TimeOnlyFormat)
	if req.EndTime != constant.Empty {
		end = req.EndTime
	}

	layout := constant.DateOnlyFormat + " " + constant.TimeOnlyFormat

	surgeryDate, err := timezone.Parse(constant.DateOnlyFormat, date)
	if err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) //nolint:wrapcheck
	}

	startAt, err := timezone.Parse(layout, date+" "+start)
	if err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid time format: %v", err)) //nolint:wrapcheck
	}

	endAt, err := timezone.Parse(layout, date+" "+end)
	if err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid time format: %v", err)) //nolint:wrapcheck
	}

	if !endAt.After(startAt) {
		return failure.InvalidWindow() //nolint:wrapcheck
	}

	updated.SurgeryDate = surgeryDate
	updated.StartAt = startAt
	updated.EndAt = endAt

	fields[model.FieldSurgeryDate] = surgeryDate
	fields[model.FieldStartAt] = startAt
	fields[model.FieldEndAt] = endAt

	return nil
}

// notify resolves the display names for the email and hands the job to the
// queue. Best effort: any lookup failure is logged and the booking stands.
func (s *serviceImpl) notify(ctx context.Context, kind string, surgery model.Surgery) {
	patient, err := s.patientRepo.Get(ctx, shared.FilterByID(surgery.PatientID, patientModel.FieldID, patientModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("patient_id", surgery.PatientID).Msg("failed to resolve patient for notification")

		return
	}

	doctor, err := s.doctorRepo.Get(ctx, shared.FilterByID(surgery.DoctorID, doctorModel.FieldID, doctorModel.TableName))
	if err != nil {
		log.Warn().Err(err).Str("doctor_id", surgery.DoctorID).Msg("failed to resolve doctor name for notification")
	}

	theatre, err := s.theatreRepo.Get(ctx, shared.FilterByID(surgery.TheatreID, theatreModel.FieldID, theatreModel.TableName))
	if err != nil {
		log.Warn().Err(err).Str("theatre_id", surgery.TheatreID).Msg("failed to resolve theatre name for notification")
	}

	s.queue.Enqueue(patient.Email, kind, notification.Details{
		PatientName: patient.Name,
		DoctorName:  doctor.Name,
		TheatreName: theatre.Name,
		Date:        timezone.Format(surgery.SurgeryDate, constant.DateOnlyFormat),
		StartTime:   timezone.Format(surgery.StartAt, constant.TimeOnlyFormat),
		EndTime:     timezone.Format(surgery.EndAt, constant.TimeOnlyFormat),
	})
}

func (s *serviceImpl) broadcast(action string, surgery model.Surgery) {
	var payload dto.SurgeryResponse

	payload.FromModel(surgery)

	s.hub.Broadcast(realtime.Event{
		Event:   realtime.EventBookingUpdated,
		Action:  action,
		Surgery: payload,
	})
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if id != constant.Empty {
		if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetSurgery, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete surgery from cache")
		}
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllSurgery)
	shared.InvalidateCaches(ctx, s.cache, cacheStatsSurgery)
}
