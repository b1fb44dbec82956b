package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otms/infras/otel"
	"otms/infras/postgres"
	"otms/internal/domains/tracking/model"
	"otms/shared"
	gDto "otms/shared/dto"
	gRepo "otms/shared/repository"
)

type Tracking interface {
	Insert(ctx context.Context, model model.Tracking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Tracking, error)
	GetBySurgeryID(ctx context.Context, surgeryID string) (model.Tracking, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Tracking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Tracking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Tracking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) GetBySurgeryID(ctx context.Context, surgeryID string) (model.Tracking, error) {
	return repo.Get(ctx, shared.FilterByID(surgeryID, model.FieldSurgeryID, model.TableName)) //nolint:wrapcheck
}
