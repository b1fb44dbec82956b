package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otms/infras/otel"
	"otms/infras/postgres"
	"otms/internal/domains/doctor/model"
	"otms/shared"
	gDto "otms/shared/dto"
	gRepo "otms/shared/repository"
)

// Doctor is a read-only lookup. GetByEmail resolves the doctor behind an
// authenticated user so list views can be narrowed to their own surgeries.
type Doctor interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Doctor, error)
	GetByEmail(ctx context.Context, email string) (model.Doctor, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Doctor]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Doctor {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Doctor](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) GetByEmail(ctx context.Context, email string) (model.Doctor, error) {
	return repo.Get(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName)) //nolint:wrapcheck
}
