package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// RecentTaskLimit is the number of newest tasks shown on a dashboard.
const RecentTaskLimit = 5

// DistributionAllKey is the status-distribution entry holding the total.
const DistributionAllKey = "All"

// DashboardService computes read-only task statistics.
type DashboardService interface {
	// GetDashboard returns statistics over every task. Admin only.
	GetDashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error)

	// GetMemberDashboard returns statistics over the tasks assigned to the
	// actor. Admins are refused.
	GetMemberDashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error)
}

// Dashboard is the aggregate view of a task collection.
type Dashboard struct {
	Statistics  Statistics
	Charts      Charts
	RecentTasks []RecentTask
}

// Statistics are the headline counts.
type Statistics struct {
	TotalTasks      int
	PendingTasks    int
	InProgressTasks int
	CompletedTasks  int
	OverdueTasks    int
}

// Charts holds distributions with every enum key present.
type Charts struct {
	// TaskDistribution is keyed by status with spaces removed, plus "All".
	TaskDistribution map[string]int
	// TaskPriorityLevels is keyed by priority.
	TaskPriorityLevels map[string]int
}

// RecentTask is the dashboard projection of a task.
type RecentTask struct {
	ID        uuid.UUID
	Title     string
	Status    domain.TaskStatus
	Priority  domain.Priority
	DueDate   time.Time
	CreatedAt time.Time
}

type dashboardServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
	now    func() time.Time
}

var _ DashboardService = (*dashboardServiceImpl)(nil)

// NewDashboardService creates a DashboardService. clock defaults to time.Now.
func NewDashboardService(tasks store.TaskStore, logger *slog.Logger, clock func() time.Time) (DashboardService, error) {
	if tasks == nil {
		return nil, &ServiceError{Service: "dashboard", Op: "create_service", Err: errors.New("task store cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &dashboardServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "dashboard_service")),
		now:    clock,
	}, nil
}

// GetDashboard implements DashboardService.
func (s *dashboardServiceImpl) GetDashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.aggregate(ctx, "global", store.TaskFilter{})
}

// GetMemberDashboard implements DashboardService.
func (s *dashboardServiceImpl) GetMemberDashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	if actor.Role != domain.RoleMember || actor.ID == uuid.Nil {
		return nil, domain.ErrForbidden
	}
	return s.aggregate(ctx, "member", store.TaskFilter{AssignedTo: actor.ID})
}

// aggregate runs every dashboard query concurrently over scope. The first
// failure cancels the rest and no partial dashboard is returned.
func (s *dashboardServiceImpl) aggregate(ctx context.Context, op string, scope store.TaskFilter) (*Dashboard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var (
		stats      Statistics
		byStatus   []store.GroupCount
		byPriority []store.GroupCount
		recent     []*domain.Task
	)

	count := func(filter store.TaskFilter, dst *int) func(context.Context) error {
		return func(ctx context.Context) error {
			n, err := s.tasks.Count(ctx, filter)
			*dst = n
			return err
		}
	}
	withStatus := func(status domain.TaskStatus) store.TaskFilter {
		f := scope
		f.Status = status
		return f
	}
	overdue := scope
	overdue.DueBefore = now
	overdue.ExcludeStatus = domain.TaskStatusCompleted

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(count(scope, &stats.TotalTasks))
	p.Go(count(withStatus(domain.TaskStatusPending), &stats.PendingTasks))
	p.Go(count(withStatus(domain.TaskStatusInProgress), &stats.InProgressTasks))
	p.Go(count(withStatus(domain.TaskStatusCompleted), &stats.CompletedTasks))
	p.Go(count(overdue, &stats.OverdueTasks))
	p.Go(func(ctx context.Context) error {
		var err error
		byStatus, err = s.tasks.CountBy(ctx, store.GroupByStatus, scope)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		byPriority, err = s.tasks.CountBy(ctx, store.GroupByPriority, scope)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		recent, err = s.tasks.Find(ctx, scope, store.FindOptions{Limit: RecentTaskLimit})
		return err
	})

	if err := p.Wait(); err != nil {
		log.Error("failed to aggregate dashboard",
			slog.String("scope", op),
			slog.String("error", err.Error()))
		return nil, NewServiceError("dashboard", op, err)
	}

	return &Dashboard{
		Statistics: stats,
		Charts: Charts{
			TaskDistribution:   statusDistribution(byStatus, stats.TotalTasks),
			TaskPriorityLevels: priorityDistribution(byPriority),
		},
		RecentTasks: recentTasks(recent),
	}, nil
}

// statusDistribution fills every status key, defaulting to zero, and adds All.
func statusDistribution(counts []store.GroupCount, total int) map[string]int {
	raw := store.CountsToMap(counts)
	dist := make(map[string]int, len(domain.TaskStatuses)+1)
	for _, status := range domain.TaskStatuses {
		dist[status.Key()] = raw[string(status)]
	}
	dist[DistributionAllKey] = total
	return dist
}

// priorityDistribution fills every priority key, defaulting to zero.
func priorityDistribution(counts []store.GroupCount) map[string]int {
	raw := store.CountsToMap(counts)
	dist := make(map[string]int, len(domain.Priorities))
	for _, p := range domain.Priorities {
		dist[string(p)] = raw[string(p)]
	}
	return dist
}

func recentTasks(tasks []*domain.Task) []RecentTask {
	out := make([]RecentTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, RecentTask{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			DueDate:   t.DueDate,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}
