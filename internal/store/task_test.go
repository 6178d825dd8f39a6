package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTaskFilterMatches(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	member := uuid.New()
	task := &domain.Task{
		Status:     domain.TaskStatusInProgress,
		DueDate:    now.Add(-time.Hour),
		AssignedTo: []uuid.UUID{member},
	}

	tests := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"empty filter", TaskFilter{}, true},
		{"status match", TaskFilter{Status: domain.TaskStatusInProgress}, true},
		{"status mismatch", TaskFilter{Status: domain.TaskStatusPending}, false},
		{"excluded status", TaskFilter{ExcludeStatus: domain.TaskStatusInProgress}, false},
		{"other excluded status", TaskFilter{ExcludeStatus: domain.TaskStatusCompleted}, true},
		{"assignee match", TaskFilter{AssignedTo: member}, true},
		{"assignee mismatch", TaskFilter{AssignedTo: uuid.New()}, false},
		{"due before now", TaskFilter{DueBefore: now}, true},
		{"due before is strict", TaskFilter{DueBefore: now.Add(-time.Hour)}, false},
		{
			name:   "overdue scoped",
			filter: TaskFilter{AssignedTo: member, DueBefore: now, ExcludeStatus: domain.TaskStatusCompleted},
			want:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Matches(task))
		})
	}
}

func TestCountsToMap(t *testing.T) {
	t.Parallel()

	m := CountsToMap([]GroupCount{{Key: "Low", Count: 2}, {Key: "High", Count: 1}})
	assert.Equal(t, map[string]int{"Low": 2, "High": 1}, m)
	assert.Empty(t, CountsToMap(nil))
}
