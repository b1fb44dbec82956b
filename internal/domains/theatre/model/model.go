package model

import (
	"otms/shared/model"
)

const (
	TableName  = "theatres"
	EntityName = "theatre"

	FieldID   = "id"
	FieldName = "name"
)

type Theatre struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	model.Metadata
}
