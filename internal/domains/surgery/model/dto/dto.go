package dto

import (
	"otms/internal/domains/surgery/model"
	"otms/shared"
	"otms/shared/constant"
	gDto "otms/shared/dto"
	gModel "otms/shared/model"
	"otms/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateSurgeryRequest struct {
	PatientID        string   `json:"patient_id"       validate:"required"`
	DoctorID         string   `json:"doctor_id"        validate:"required"`
	TheatreID        string   `json:"theatre_id"       validate:"required"`
	SurgeryDate      string   `json:"surgery_date"     validate:"required,date_ymd"`
	StartTime        string   `json:"start_time"       validate:"required,time_hhmm"`
	EndTime          string   `json:"end_time"         validate:"required,time_hhmm"`
	Priority         string   `json:"priority"         validate:"omitempty,oneof=Normal Emergency"`
	AnesthesiaType   string   `json:"anesthesia_type"  validate:"omitempty,max=100"`
	Anesthesiologist string   `json:"anesthesiologist" validate:"omitempty,max=100"`
	Nurses           []string `json:"nurses"           validate:"omitempty,dive,max=100"`
	Notes            string   `json:"notes"            validate:"omitempty"`
}

func (c *CreateSurgeryRequest) ToModel(user string) (model.Surgery, error) {
	surgeryDate, err := timezone.Parse(constant.DateOnlyFormat, c.SurgeryDate)
	if err != nil {
		return model.Surgery{}, err
	}

	startAt, err := timezone.Parse(constant.DateOnlyFormat+" "+constant.TimeOnlyFormat, c.SurgeryDate+" "+c.StartTime)
	if err != nil {
		return model.Surgery{}, err
	}

	endAt, err := timezone.Parse(constant.DateOnlyFormat+" "+constant.TimeOnlyFormat, c.SurgeryDate+" "+c.EndTime)
	if err != nil {
		return model.Surgery{}, err
	}

	priority := model.PriorityNormal
	status := model.StatusScheduled

	if c.Priority == model.PriorityEmergency {
		priority = model.PriorityEmergency
		status = model.StatusEmergency
	}

	return model.Surgery{
		ID:               uuid.NewString(),
		PatientID:        c.PatientID,
		DoctorID:         c.DoctorID,
		TheatreID:        c.TheatreID,
		SurgeryDate:      surgeryDate,
		StartAt:          startAt,
		EndAt:            endAt,
		Status:           status,
		Priority:         priority,
		AnesthesiaType:   c.AnesthesiaType,
		Anesthesiologist: c.Anesthesiologist,
		Nurses:           pq.StringArray(c.Nurses),
		Notes:            c.Notes,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateSurgeryRequest struct {
	DoctorID         string   `db:"doctor_id"        json:"doctor_id"        validate:"omitempty"`
	TheatreID        string   `db:"theatre_id"       json:"theatre_id"       validate:"omitempty"`
	SurgeryDate      string   `json:"surgery_date"     validate:"omitempty,date_ymd"`
	StartTime        string   `json:"start_time"       validate:"omitempty,time_hhmm"`
	EndTime          string   `json:"end_time"         validate:"omitempty,time_hhmm"`
	Status           string   `json:"status"           validate:"omitempty,oneof=Scheduled Rescheduled Emergency Completed Cancelled"`
	AnesthesiaType   string   `db:"anesthesia_type"  json:"anesthesia_type"  validate:"omitempty,max=100"`
	Anesthesiologist string   `db:"anesthesiologist" json:"anesthesiologist" validate:"omitempty,max=100"`
	Nurses           []string `json:"nurses"           validate:"omitempty,dive,max=100"`
	Notes            string   `db:"notes"            json:"notes"            validate:"omitempty"`
}

// HasWindowChange reports whether the request moves the surgery in time or
// across resources, which requires a fresh conflict check.
func (u *UpdateSurgeryRequest) HasWindowChange() bool {
	return u.SurgeryDate != "" || u.StartTime != "" || u.EndTime != "" ||
		u.DoctorID != "" || u.TheatreID != ""
}

func (u *UpdateSurgeryRequest) IsEmpty() bool {
	return !u.HasWindowChange() && u.Status == "" && u.AnesthesiaType == "" &&
		u.Anesthesiologist == "" && len(u.Nurses) == 0 && u.Notes == ""
}

type SurgeryResponse struct {
	ID               string   `json:"id"`
	PatientID        string   `json:"patient_id"`
	DoctorID         string   `json:"doctor_id"`
	TheatreID        string   `json:"theatre_id"`
	SurgeryDate      string   `json:"surgery_date"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	Status           string   `json:"status"`
	Priority         string   `json:"priority"`
	AnesthesiaType   string   `json:"anesthesia_type,omitempty"`
	Anesthesiologist string   `json:"anesthesiologist,omitempty"`
	Nurses           []string `json:"nurses,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *SurgeryResponse) FromModel(model model.Surgery) {
	r.ID = model.ID
	r.PatientID = model.PatientID
	r.DoctorID = model.DoctorID
	r.TheatreID = model.TheatreID
	r.SurgeryDate = timezone.Format(model.SurgeryDate, constant.DateOnlyFormat)
	r.StartTime = timezone.Format(model.StartAt, constant.TimeOnlyFormat)
	r.EndTime = timezone.Format(model.EndAt, constant.TimeOnlyFormat)
	r.Status = model.Status
	r.Priority = model.Priority
	r.AnesthesiaType = model.AnesthesiaType
	r.Anesthesiologist = model.Anesthesiologist
	r.Nurses = model.Nurses
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetSurgeriesResponse struct {
	Surgeries []SurgeryResponse `json:"surgeries"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetSurgeriesResponse) FromModels(models []model.Surgery, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Surgeries = make([]SurgeryResponse, len(models))
	for i, mod := range models {
		r.Surgeries[i].FromModel(mod)
	}
}

type StatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Scheduled int `json:"scheduled"`
	Emergency int `json:"emergency"`
}

func (r *StatsResponse) FromModel(stats model.Stats) {
	r.Total = stats.Total
	r.Completed = stats.Completed
	r.Cancelled = stats.Cancelled
	r.Scheduled = stats.Scheduled
	r.Emergency = stats.Emergency
}
