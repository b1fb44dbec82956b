package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"otms/infras/otel"
	"otms/internal/domains/audit/model"
	"otms/internal/domains/audit/model/dto"
	"otms/internal/domains/audit/repository"
	"otms/shared/constant"
	gDto "otms/shared/dto"
	"otms/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Target identifies the record an audited action touched.
type Target struct {
	Entity string
	ID     string
	Name   string
}

// Recorder writes an audit trail entry for a scheduling action and reads the
// trail back. Recording is best effort: a failed write is logged and never
// fails the action itself.
type Recorder interface {
	Record(ctx context.Context, action string, target Target, details model.Details)
	GetAll(ctx context.Context, params gDto.QueryParams) (dto.GetAuditLogsResponse, error)
}

type recorderImpl struct {
	repo repository.Audit
	otel otel.Otel
}

func New(repo repository.Audit, otel otel.Otel) Recorder {
	return &recorderImpl{
		repo: repo,
		otel: otel,
	}
}

func (r *recorderImpl) Record(ctx context.Context, action string, target Target, details model.Details) {
	actorID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	actorName, _ := ctx.Value(constant.ContextKeyUserName).(string)
	actorRole, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	entry := model.AuditLog{
		ID:           uuid.NewString(),
		Action:       action,
		ActorID:      actorID,
		ActorName:    actorName,
		ActorRole:    actorRole,
		TargetEntity: target.Entity,
		TargetID:     target.ID,
		TargetName:   target.Name,
		Details:      details,
		CreatedAt:    timezone.Now(),
	}

	go func() {
		c := context.WithoutCancel(ctx)

		c, scope := r.otel.NewScope(c, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".audit.Record")
		defer scope.End()

		if err := r.repo.Insert(c, entry); err != nil {
			log.Error().Err(err).
				Str("action", action).
				Str("target_id", target.ID).
				Msg("failed to record audit entry")
		}
	}()
}

func (r *recorderImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res dto.GetAuditLogsResponse, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".audit.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	// The trail reads newest first unless the caller asks otherwise.
	if params.SortBy == constant.Empty || params.SortBy == constant.DefaultValueSortBy {
		params.SortBy = model.FieldCreatedAt
		params.SortDir = gDto.SortDirDesc
	}

	filter := gDto.FilterGroup{}

	total, err := r.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count audit entries")

		return res, fmt.Errorf("failed to count audit entries: %w", err)
	}

	entries, err := r.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get audit entries")

		return res, fmt.Errorf("failed to get audit entries: %w", err)
	}

	res.FromModels(entries, total, params.Limit)

	return res, nil
}
