package model_test

import (
	"testing"
	"time"

	"otms/internal/domains/surgery/model"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		s1, e1   time.Time
		s2, e2   time.Time
		expected bool
	}{
		{
			name: "identical windows overlap",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(9, 0), e2: at(10, 0),
			expected: true,
		},
		{
			name: "partial overlap at tail",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(9, 30), e2: at(10, 30),
			expected: true,
		},
		{
			name: "one window contains the other",
			s1:   at(9, 0), e1: at(12, 0),
			s2: at(10, 0), e2: at(11, 0),
			expected: true,
		},
		{
			name: "touching endpoints do not overlap",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(10, 0), e2: at(11, 0),
			expected: false,
		},
		{
			name: "touching endpoints reversed order",
			s1:   at(10, 0), e1: at(11, 0),
			s2: at(9, 0), e2: at(10, 0),
			expected: false,
		},
		{
			name: "disjoint windows",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(13, 0), e2: at(14, 0),
			expected: false,
		},
		{
			name: "one minute overlap",
			s1:   at(9, 0), e1: at(10, 1),
			s2: at(10, 0), e2: at(11, 0),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))

			// The predicate is symmetric in its two windows.
			assert.Equal(t, tt.expected, model.Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected bool
	}{
		{"scheduled to rescheduled", model.StatusScheduled, model.StatusRescheduled, true},
		{"scheduled to completed", model.StatusScheduled, model.StatusCompleted, true},
		{"scheduled to cancelled", model.StatusScheduled, model.StatusCancelled, true},
		{"rescheduled again", model.StatusRescheduled, model.StatusRescheduled, true},
		{"rescheduled to completed", model.StatusRescheduled, model.StatusCompleted, true},
		{"emergency to completed", model.StatusEmergency, model.StatusCompleted, true},
		{"emergency to cancelled", model.StatusEmergency, model.StatusCancelled, true},
		{"emergency cannot be rescheduled", model.StatusEmergency, model.StatusRescheduled, false},
		{"completed is terminal", model.StatusCompleted, model.StatusScheduled, false},
		{"completed cannot be cancelled", model.StatusCompleted, model.StatusCancelled, false},
		{"cancelled is terminal", model.StatusCancelled, model.StatusRescheduled, false},
		{"cancelled cannot be completed", model.StatusCancelled, model.StatusCompleted, false},
		{"unknown source status", "Pending", model.StatusCompleted, false},
		{"scheduled cannot go back to scheduled", model.StatusScheduled, model.StatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	statuses := []string{
		model.StatusScheduled,
		model.StatusRescheduled,
		model.StatusEmergency,
		model.StatusCompleted,
		model.StatusCancelled,
	}

	for _, terminal := range []string{model.StatusCompleted, model.StatusCancelled} {
		assert.True(t, model.IsTerminal(terminal))

		for _, to := range statuses {
			assert.False(t, model.CanTransition(terminal, to),
				"no transition out of %s should be allowed, got %s -> %s", terminal, terminal, to)
		}
	}
}

func TestLiveStatuses(t *testing.T) {
	live := model.LiveStatuses()

	assert.ElementsMatch(t, []string{model.StatusScheduled, model.StatusRescheduled, model.StatusEmergency}, live)

	for _, status := range live {
		assert.False(t, model.IsTerminal(status))
	}
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, model.IsValidStatus(model.StatusScheduled))
	assert.True(t, model.IsValidStatus(model.StatusEmergency))
	assert.False(t, model.IsValidStatus("Pending"))
	assert.False(t, model.IsValidStatus(""))
}
