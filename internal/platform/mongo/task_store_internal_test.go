package mongo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testutils"
)

func TestTaskFilterDocument(t *testing.T) {
	t.Parallel()

	member := uuid.New()
	cutoff := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter store.TaskFilter
		want   bson.M
	}{
		{"empty", store.TaskFilter{}, bson.M{}},
		{
			"status and assignee",
			store.TaskFilter{Status: domain.TaskStatusInProgress, AssignedTo: member},
			bson.M{"status": bson.M{"$eq": "In Progress"}, "assigned_to": member.String()},
		},
		{
			"overdue",
			store.TaskFilter{ExcludeStatus: domain.TaskStatusCompleted, DueBefore: cutoff},
			bson.M{"status": bson.M{"$ne": "Completed"}, "due_date": bson.M{"$lt": cutoff}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, taskFilterDocument(tc.filter))
		})
	}
}

func TestTaskDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	task := testutils.MustCreateTaskForTest(t,
		testutils.WithTaskAssignees(uuid.New(), uuid.New()),
		testutils.WithTaskChecklist(testutils.Items(1, 3)...),
		testutils.WithTaskProgress(33),
		testutils.WithTaskStatus(domain.TaskStatusInProgress))

	raw, err := bson.Marshal(newTaskDocument(task))
	require.NoError(t, err)

	var doc taskDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got, err := doc.toDomain()
	require.NoError(t, err)

	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.AssignedTo, got.AssignedTo)
	assert.Equal(t, task.Checklist, got.Checklist)
	assert.Equal(t, task.Status, got.Status)
	assert.True(t, task.DueDate.Equal(got.DueDate))
	assert.Equal(t, []string{}, got.Attachments)
}

func TestTaskDocumentRejectsCorruptIDs(t *testing.T) {
	t.Parallel()

	_, err := taskDocument{ID: "not-a-uuid"}.toDomain()
	assert.Error(t, err)

	_, err = taskDocument{ID: uuid.NewString(), CreatedBy: uuid.NewString(), AssignedTo: []string{"x"}}.toDomain()
	assert.Error(t, err)
}

func TestDecodeTaskWrapsCorruptDocuments(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"get", "find", "delete"} {
		_, err := decodeTask(op, taskDocument{ID: "not-a-uuid"})
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "task", storeErr.Entity)
		assert.Equal(t, op, storeErr.Operation)
		assert.Equal(t, "corrupt task document", storeErr.Message)
		assert.False(t, store.IsNotFoundError(err))
	}
}
