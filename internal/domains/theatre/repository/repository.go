package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otms/infras/otel"
	"otms/infras/postgres"
	"otms/internal/domains/theatre/model"
	gDto "otms/shared/dto"
	gRepo "otms/shared/repository"
)

// Theatre is a read-only lookup over the operating theatre roster.
type Theatre interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Theatre, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Theatre]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Theatre {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Theatre](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
