package model

import (
	"otms/shared/model"
)

const (
	TableName  = "patients"
	EntityName = "patient"

	FieldID    = "id"
	FieldName  = "name"
	FieldEmail = "email"
)

type Patient struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	model.Metadata
}
