package dto

import (
	"otms/internal/domains/audit/model"
	"otms/shared"
	"otms/shared/constant"
	"otms/shared/timezone"
)

type AuditLogResponse struct {
	ID           string        `json:"id"`
	Action       string        `json:"action"`
	ActorID      string        `json:"actor_id"`
	ActorName    string        `json:"actor_name"`
	ActorRole    string        `json:"actor_role"`
	TargetEntity string        `json:"target_entity"`
	TargetID     string        `json:"target_id"`
	TargetName   string        `json:"target_name"`
	Details      model.Details `json:"details"`
	CreatedAt    string        `json:"created_at"`
}

func (r *AuditLogResponse) FromModel(entry model.AuditLog) {
	r.ID = entry.ID
	r.Action = entry.Action
	r.ActorID = entry.ActorID
	r.ActorName = entry.ActorName
	r.ActorRole = entry.ActorRole
	r.TargetEntity = entry.TargetEntity
	r.TargetID = entry.TargetID
	r.TargetName = entry.TargetName
	r.Details = entry.Details
	r.CreatedAt = timezone.Format(entry.CreatedAt, constant.DateFormat)
}

type GetAuditLogsResponse struct {
	AuditLogs []AuditLogResponse `json:"audit_logs"`
	TotalData int                `json:"total_data"`
	TotalPage int                `json:"total_page"`
}

func (r *GetAuditLogsResponse) FromModels(models []model.AuditLog, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.AuditLogs = make([]AuditLogResponse, len(models))
	for i, mod := range models {
		r.AuditLogs[i].FromModel(mod)
	}
}
