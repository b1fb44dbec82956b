package validator_test

import (
	"otms/shared/validator"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type scheduleRequest struct {
	Date      string `json:"date"       validate:"required,date_ymd"`
	StartTime string `json:"start_time" validate:"required,time_hhmm"`
	Priority  string `json:"priority"   validate:"omitempty,oneof=Normal Emergency"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid payload",
			body: `{"date":"2024-01-10","start_time":"09:00","priority":"Normal"}`,
		},
		{
			name:    "malformed json",
			body:    `{"date":`,
			wantErr: "failed to decode request body",
		},
		{
			name:    "unknown field rejected",
			body:    `{"date":"2024-01-10","start_time":"09:00","theatre":"T1"}`,
			wantErr: "failed to decode request body",
		},
		{
			name:    "invalid date format",
			body:    `{"date":"10-01-2024","start_time":"09:00"}`,
			wantErr: "Date must be a date in YYYY-MM-DD format",
		},
		{
			name:    "invalid time format",
			body:    `{"date":"2024-01-10","start_time":"9am"}`,
			wantErr: "StartTime must be a time in HH:MM format",
		},
		{
			name:    "invalid priority",
			body:    `{"date":"2024-01-10","start_time":"09:00","priority":"Urgent"}`,
			wantErr: "Priority must be one of Normal Emergency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scheduleRequest{}
			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("13:30", "time_hhmm"))
	assert.Error(t, validator.ValidateVar("25:00", "time_hhmm"))
	assert.NoError(t, validator.ValidateVar("2024-02-29", "date_ymd"))
	assert.Error(t, validator.ValidateVar("2024-13-01", "date_ymd"))
}
