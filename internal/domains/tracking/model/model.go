package model

import (
	"otms/shared/model"
)

const (
	TableName  = "surgery_trackings"
	EntityName = "surgery_tracking"

	FieldID        = "id"
	FieldSurgeryID = "surgery_id"
)

const (
	RecoveryStable     = "Stable"
	RecoveryCritical   = "Critical"
	RecoveryRecovering = "Recovering"
	RecoveryDischarged = "Discharged"
)

// Tracking is the peri-operative record for a surgery: the pre-op checklist,
// what happened in theatre and how recovery is going. One row per surgery.
type Tracking struct {
	ID                string `db:"id"`
	SurgeryID         string `db:"surgery_id"`
	ConsentObtained   bool   `db:"consent_obtained"`
	AnesthesiaChecked bool   `db:"anesthesia_checked"`
	FastingConfirmed  bool   `db:"fasting_confirmed"`
	SiteMarked        bool   `db:"site_marked"`
	PreOpNotes        string `db:"pre_op_notes"`
	PostOpNotes       string `db:"post_op_notes"`
	Complications     string `db:"complications"`
	RecoveryStatus    string `db:"recovery_status"`
	NurseInCharge     string `db:"nurse_in_charge"`
	model.Metadata
}
