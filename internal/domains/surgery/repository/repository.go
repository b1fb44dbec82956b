package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"otms/infras/otel"
	"otms/infras/postgres"
	"otms/internal/domains/surgery/model"
	"otms/shared/constant"
	gDto "otms/shared/dto"
	"otms/shared/logger"
	gRepo "otms/shared/repository"
	"strings"
	"time"
)

type Surgery interface {
	Insert(ctx context.Context, model model.Surgery) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Surgery, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Surgery, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	FindConflict(ctx context.Context, theatreID, doctorID string, startAt, endAt time.Time, excludeID string) (model.Surgery, error)
	Stats(ctx context.Context) (model.Stats, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Surgery]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Surgery {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Surgery](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// FindConflict returns the first live booking that overlaps the half-open
// window [startAt, endAt) on the same theatre or the same doctor. excludeID
// keeps a reschedule from colliding with its own current slot. Returns the
// zero value when the window is free.
func (repo *repositoryImpl) FindConflict(ctx context.Context, theatreID, doctorID string, startAt, endAt time.Time, excludeID string) (model.Surgery, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".surgery.FindConflict")
	defer scope.End()

	var surgery model.Surgery

	live := model.LiveStatuses()
	statusArgs := make([]string, len(live))
	args := map[string]any{
		"theatre_id": theatreID,
		"doctor_id":  doctorID,
		"start_at":   startAt,
		"end_at":     endAt,
	}

	for i, status := range live {
		name := fmt.Sprintf("status_%d", i)
		statusArgs[i] = ":" + name
		args[name] = status
	}

	exclusion := ""
	if excludeID != "" {
		exclusion = "AND id != :exclude_id"
		args["exclude_id"] = excludeID
	}

	query := fmt.Sprintf(`SELECT * FROM %s
		WHERE is_deleted = FALSE
		AND status IN (%s)
		AND (theatre_id = :theatre_id OR doctor_id = :doctor_id)
		AND start_at < :end_at AND :start_at < end_at
		%s
		ORDER BY start_at ASC
		LIMIT 1`, model.TableName, strings.Join(statusArgs, ", "), exclusion)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return surgery, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &surgery, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Surgery{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return surgery, fmt.Errorf("failed to find conflicting booking (%s): %w", model.EntityName, err)
	}

	return surgery, nil
}

// Emergency is counted by priority rather than status so that an emergency
// booking still appears in its status bucket. Rescheduled surgeries are left
// out of the scheduled bucket on purpose.
var statsQuery = fmt.Sprintf(`SELECT
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status = :status_completed) AS completed,
	COUNT(*) FILTER (WHERE status = :status_cancelled) AS cancelled,
	COUNT(*) FILTER (WHERE status = :status_scheduled) AS scheduled,
	COUNT(*) FILTER (WHERE priority = :priority_emergency) AS emergency
	FROM %s`, model.TableName)

// Stats aggregates booking counts per status in a single scan. Cancelled
// surgeries are soft-deleted, so the query deliberately includes deleted rows.
func (repo *repositoryImpl) Stats(ctx context.Context) (model.Stats, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".surgery.Stats")
	defer scope.End()

	var stats model.Stats

	query := statsQuery
	args := map[string]any{
		"status_completed":   model.StatusCompleted,
		"status_cancelled":   model.StatusCancelled,
		"status_scheduled":   model.StatusScheduled,
		"priority_emergency": model.PriorityEmergency,
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return stats, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &stats, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return stats, fmt.Errorf("failed to aggregate surgery stats: %w", err)
	}

	return stats, nil
}
