package dto

import (
	"otms/internal/domains/tracking/model"
	gDto "otms/shared/dto"
	gModel "otms/shared/model"
	"otms/shared/timezone"

	"github.com/google/uuid"
)

type UpsertTrackingRequest struct {
	SurgeryID         string `json:"surgery_id"         validate:"required"`
	ConsentObtained   bool   `json:"consent_obtained"`
	AnesthesiaChecked bool   `json:"anesthesia_checked"`
	FastingConfirmed  bool   `json:"fasting_confirmed"`
	SiteMarked        bool   `json:"site_marked"`
	PreOpNotes        string `json:"pre_op_notes"       validate:"omitempty"`
	PostOpNotes       string `json:"post_op_notes"      validate:"omitempty"`
	Complications     string `json:"complications"      validate:"omitempty"`
	RecoveryStatus    string `json:"recovery_status"    validate:"omitempty,oneof=Stable Critical Recovering Discharged"`
	NurseInCharge     string `json:"nurse_in_charge"    validate:"omitempty,max=100"`
}

func (u *UpsertTrackingRequest) ToModel(user string) model.Tracking {
	recovery := u.RecoveryStatus
	if recovery == "" {
		recovery = model.RecoveryStable
	}

	return model.Tracking{
		ID:                uuid.NewString(),
		SurgeryID:         u.SurgeryID,
		ConsentObtained:   u.ConsentObtained,
		AnesthesiaChecked: u.AnesthesiaChecked,
		FastingConfirmed:  u.FastingConfirmed,
		SiteMarked:        u.SiteMarked,
		PreOpNotes:        u.PreOpNotes,
		PostOpNotes:       u.PostOpNotes,
		Complications:     u.Complications,
		RecoveryStatus:    recovery,
		NurseInCharge:     u.NurseInCharge,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// ToFields maps the request onto update columns for an existing record.
func (u *UpsertTrackingRequest) ToFields(user string) map[string]any {
	fields := map[string]any{
		"consent_obtained":   u.ConsentObtained,
		"anesthesia_checked": u.AnesthesiaChecked,
		"fasting_confirmed":  u.FastingConfirmed,
		"site_marked":        u.SiteMarked,
		"pre_op_notes":       u.PreOpNotes,
		"post_op_notes":      u.PostOpNotes,
		"complications":      u.Complications,
		"nurse_in_charge":    u.NurseInCharge,
		"modified_at":        timezone.Now(),
		"modified_by":        user,
	}

	if u.RecoveryStatus != "" {
		fields["recovery_status"] = u.RecoveryStatus
	}

	return fields
}

type TrackingResponse struct {
	ID                string `json:"id"`
	SurgeryID         string `json:"surgery_id"`
	ConsentObtained   bool   `json:"consent_obtained"`
	AnesthesiaChecked bool   `json:"anesthesia_checked"`
	FastingConfirmed  bool   `json:"fasting_confirmed"`
	SiteMarked        bool   `json:"site_marked"`
	PreOpNotes        string `json:"pre_op_notes,omitempty"`
	PostOpNotes       string `json:"post_op_notes,omitempty"`
	Complications     string `json:"complications,omitempty"`
	RecoveryStatus    string `json:"recovery_status"`
	NurseInCharge     string `json:"nurse_in_charge,omitempty"`
	gDto.Metadata
}

func (r *TrackingResponse) FromModel(model model.Tracking) {
	r.ID = model.ID
	r.SurgeryID = model.SurgeryID
	r.ConsentObtained = model.ConsentObtained
	r.AnesthesiaChecked = model.AnesthesiaChecked
	r.FastingConfirmed = model.FastingConfirmed
	r.SiteMarked = model.SiteMarked
	r.PreOpNotes = model.PreOpNotes
	r.PostOpNotes = model.PostOpNotes
	r.Complications = model.Complications
	r.RecoveryStatus = model.RecoveryStatus
	r.NurseInCharge = model.NurseInCharge
	r.Metadata.FromModel(model.Metadata)
}
