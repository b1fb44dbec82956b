package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otms/infras/otel"
	"otms/infras/postgres"
	"otms/internal/domains/patient/model"
	gDto "otms/shared/dto"
	gRepo "otms/shared/repository"
)

// Patient is a read-only lookup. Patient records are managed by the
// registration system, the scheduler only resolves names and emails.
type Patient interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Patient, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Patient]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Patient {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Patient](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
