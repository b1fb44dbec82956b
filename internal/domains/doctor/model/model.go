package model

import (
	"otms/shared/model"
)

const (
	TableName  = "doctors"
	EntityName = "doctor"

	FieldID        = "id"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldSpecialty = "specialty"
)

type Doctor struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Specialty string `db:"specialty"`
	model.Metadata
}
