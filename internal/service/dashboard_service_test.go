package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testutils"
)

func newDashboardFixture(t *testing.T) (DashboardService, *memory.TaskStore) {
	t.Helper()
	tasks := memory.NewTaskStore(nil)
	svc, err := NewDashboardService(tasks, nil, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc, tasks
}

func TestGetDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, tasks := newDashboardFixture(t)

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	member := domain.Actor{ID: uuid.New(), Role: domain.RoleMember}

	seed := func(opts ...testutils.TaskOption) *domain.Task {
		task := testutils.MustCreateTaskForTest(t, opts...)
		require.NoError(t, tasks.Create(ctx, task))
		return task
	}

	var created []*domain.Task
	for i := 0; i < 4; i++ {
		created = append(created, seed(
			testutils.WithTaskAssignees(member.ID),
			testutils.WithTaskPriority(domain.PriorityHigh),
			testutils.WithTaskDueDate(fixedNow.Add(-time.Hour)),
			testutils.WithTaskCreatedAt(fixedNow.Add(time.Duration(-10+i)*time.Minute))))
	}
	// Past due but completed: not overdue.
	created = append(created, seed(
		testutils.WithTaskStatus(domain.TaskStatusCompleted),
		testutils.WithTaskProgress(100),
		testutils.WithTaskDueDate(fixedNow.Add(-48*time.Hour)),
		testutils.WithTaskCreatedAt(fixedNow.Add(-5*time.Minute))))
	created = append(created, seed(
		testutils.WithTaskStatus(domain.TaskStatusInProgress),
		testutils.WithTaskPriority(domain.PriorityLow),
		testutils.WithTaskDueDate(fixedNow.Add(time.Hour)),
		testutils.WithTaskCreatedAt(fixedNow.Add(-time.Minute))))
	// Due exactly now is not overdue.
	created = append(created, seed(
		testutils.WithTaskDueDate(fixedNow),
		testutils.WithTaskCreatedAt(fixedNow.Add(-20*time.Minute))))

	t.Run("global view for admin", func(t *testing.T) {
		dash, err := svc.GetDashboard(ctx, admin)
		require.NoError(t, err)

		assert.Equal(t, Statistics{
			TotalTasks:      7,
			PendingTasks:    5,
			InProgressTasks: 1,
			CompletedTasks:  1,
			OverdueTasks:    4,
		}, dash.Statistics)
		assert.Equal(t, map[string]int{
			"Pending": 5, "InProgress": 1, "Completed": 1, DistributionAllKey: 7,
		}, dash.Charts.TaskDistribution)
		assert.Equal(t, map[string]int{
			"Low": 1, "Medium": 2, "High": 4,
		}, dash.Charts.TaskPriorityLevels)

		require.Len(t, dash.RecentTasks, RecentTaskLimit)
		want := []uuid.UUID{created[5].ID, created[4].ID, created[3].ID, created[2].ID, created[1].ID}
		for i, rt := range dash.RecentTasks {
			assert.Equal(t, want[i], rt.ID)
		}
	})

	t.Run("member view is scoped to assignments", func(t *testing.T) {
		dash, err := svc.GetMemberDashboard(ctx, member)
		require.NoError(t, err)

		assert.Equal(t, Statistics{TotalTasks: 4, PendingTasks: 4, OverdueTasks: 4}, dash.Statistics)
		assert.Equal(t, map[string]int{
			"Pending": 4, "InProgress": 0, "Completed": 0, DistributionAllKey: 4,
		}, dash.Charts.TaskDistribution)
		assert.Equal(t, map[string]int{"Low": 0, "Medium": 0, "High": 4}, dash.Charts.TaskPriorityLevels)
		assert.Len(t, dash.RecentTasks, 4)
	})

	t.Run("roles are enforced", func(t *testing.T) {
		_, err := svc.GetDashboard(ctx, member)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = svc.GetMemberDashboard(ctx, admin)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDashboardEmpty(t *testing.T) {
	t.Parallel()
	svc, _ := newDashboardFixture(t)

	dash, err := svc.GetMemberDashboard(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleMember})
	require.NoError(t, err)

	assert.Equal(t, Statistics{}, dash.Statistics)
	assert.Equal(t, map[string]int{
		"Pending": 0, "InProgress": 0, "Completed": 0, DistributionAllKey: 0,
	}, dash.Charts.TaskDistribution)
	assert.Equal(t, map[string]int{"Low": 0, "Medium": 0, "High": 0}, dash.Charts.TaskPriorityLevels)
	assert.NotNil(t, dash.RecentTasks)
	assert.Empty(t, dash.RecentTasks)
}

func TestDashboardQueryFailure(t *testing.T) {
	t.Parallel()

	tasks := new(MockTaskStore)
	svc, err := NewDashboardService(tasks, nil, func() time.Time { return fixedNow })
	require.NoError(t, err)

	queryErr := store.NewStoreError("task", "count_by", "aggregation failed", errors.New("cursor closed"))
	tasks.On("Count", mock.Anything, mock.Anything).Return(3, nil).Maybe()
	tasks.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Task{}, nil).Maybe()
	tasks.On("CountBy", mock.Anything, store.GroupByStatus, mock.Anything).Return([]store.GroupCount{}, nil).Maybe()
	tasks.On("CountBy", mock.Anything, store.GroupByPriority, mock.Anything).Return(nil, queryErr)

	dash, err := svc.GetDashboard(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin})
	assert.Nil(t, dash)
	require.Error(t, err)

	var serviceErr *ServiceError
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, "dashboard", serviceErr.Service)
	assert.ErrorIs(t, err, queryErr)
}

func TestNewDashboardServiceRequiresStore(t *testing.T) {
	t.Parallel()
	_, err := NewDashboardService(nil, nil, nil)
	assert.Error(t, err)
}
