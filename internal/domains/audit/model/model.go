package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	TableName  = "audit_logs"
	EntityName = "audit_log"

	FieldID        = "id"
	FieldCreatedAt = "created_at"

	ActionCreate     = "CREATE_SURGERY"
	ActionUpdate     = "UPDATE_SURGERY"
	ActionReschedule = "RESCHEDULE_SURGERY"
	ActionCancel     = "CANCEL_SURGERY"
)

// Details is a free-form JSONB payload describing what changed.
type Details map[string]any

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}

	return json.Marshal(d) //nolint:wrapcheck
}

func (d *Details) Scan(src any) error {
	if src == nil {
		*d = nil

		return nil
	}

	raw, ok := src.([]byte)
	if !ok {
		return errors.New("audit details: expected []byte from driver")
	}

	return json.Unmarshal(raw, d) //nolint:wrapcheck
}

type AuditLog struct {
	ID           string    `db:"id"`
	Action       string    `db:"action"`
	ActorID      string    `db:"actor_id"`
	ActorName    string    `db:"actor_name"`
	ActorRole    string    `db:"actor_role"`
	TargetEntity string    `db:"target_entity"`
	TargetID     string    `db:"target_id"`
	TargetName   string    `db:"target_name"`
	Details      Details   `db:"details"`
	CreatedAt    time.Time `db:"created_at"`
}
