package testutils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStoreFactory returns an empty task store for one subtest.
type TaskStoreFactory func(t *testing.T) store.TaskStore

// UserStoreFactory returns an empty user store for one subtest.
type UserStoreFactory func(t *testing.T) store.UserStore

// RunTaskStoreSuite exercises the store.TaskStore contract against every
// backend. Each subtest gets a fresh store from newStore.
func RunTaskStoreSuite(t *testing.T, newStore TaskStoreFactory) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		task := MustCreateTaskForTest(t,
			WithTaskChecklist(domain.ChecklistItem{Text: "a", Completed: true}, domain.ChecklistItem{Text: "b"}),
			WithTaskProgress(50),
			WithTaskStatus(domain.TaskStatusInProgress))
		task.Attachments = []string{"https://files.example.com/brief.pdf"}
		require.NoError(t, s.Create(ctx, task))

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, task.AssignedTo, got.AssignedTo)
		assert.Equal(t, task.Checklist, got.Checklist)
		assert.Equal(t, task.Attachments, got.Attachments)
		assert.Equal(t, 50, got.Progress)
		assert.Equal(t, domain.TaskStatusInProgress, got.Status)
		assert.True(t, task.DueDate.Equal(got.DueDate))
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("create invalid", func(t *testing.T) {
		s := newStore(t)
		task := MustCreateTaskForTest(t)
		task.AssignedTo = nil
		err := s.Create(ctx, task)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("find filters and orders newest first", func(t *testing.T) {
		s := newStore(t)
		member := uuid.New()
		oldest := MustCreateTaskForTest(t, WithTaskAssignees(member), WithTaskCreatedAt(base.Add(-3*time.Hour)))
		middle := MustCreateTaskForTest(t, WithTaskAssignees(uuid.New()), WithTaskCreatedAt(base.Add(-2*time.Hour)),
			WithTaskStatus(domain.TaskStatusCompleted), WithTaskProgress(100))
		newest := MustCreateTaskForTest(t, WithTaskAssignees(uuid.New(), member), WithTaskCreatedAt(base.Add(-time.Hour)))
		for _, task := range []*domain.Task{middle, newest, oldest} {
			require.NoError(t, s.Create(ctx, task))
		}

		all, err := s.Find(ctx, store.TaskFilter{}, store.FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldest.ID}, taskIDs(all))

		mine, err := s.Find(ctx, store.TaskFilter{AssignedTo: member}, store.FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{newest.ID, oldest.ID}, taskIDs(mine))

		completed, err := s.Find(ctx, store.TaskFilter{Status: domain.TaskStatusCompleted}, store.FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{middle.ID}, taskIDs(completed))

		limited, err := s.Find(ctx, store.TaskFilter{}, store.FindOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{newest.ID, middle.ID}, taskIDs(limited))
	})

	t.Run("count and count by", func(t *testing.T) {
		s := newStore(t)
		member := uuid.New()
		past := base.Add(-24 * time.Hour)
		tasks := []*domain.Task{
			MustCreateTaskForTest(t, WithTaskAssignees(member), WithTaskPriority(domain.PriorityHigh), WithTaskDueDate(past)),
			MustCreateTaskForTest(t, WithTaskAssignees(member), WithTaskPriority(domain.PriorityHigh),
				WithTaskStatus(domain.TaskStatusCompleted), WithTaskProgress(100), WithTaskDueDate(past)),
			MustCreateTaskForTest(t, WithTaskPriority(domain.PriorityLow), WithTaskStatus(domain.TaskStatusInProgress),
				WithTaskProgress(40)),
		}
		for _, task := range tasks {
			require.NoError(t, s.Create(ctx, task))
		}

		n, err := s.Count(ctx, store.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = s.Count(ctx, store.TaskFilter{AssignedTo: member})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.Count(ctx, store.TaskFilter{DueBefore: base, ExcludeStatus: domain.TaskStatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		byStatus, err := s.CountBy(ctx, store.GroupByStatus, store.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Pending": 1, "Completed": 1, "In Progress": 1}, store.CountsToMap(byStatus))

		byPriority, err := s.CountBy(ctx, store.GroupByPriority, store.TaskFilter{AssignedTo: member})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"High": 2}, store.CountsToMap(byPriority))
	})

	t.Run("update applies mutation", func(t *testing.T) {
		s := newStore(t)
		task := MustCreateTaskForTest(t, WithTaskChecklist(Items(0, 2)...))
		require.NoError(t, s.Create(ctx, task))

		updated, err := s.Update(ctx, task.ID, func(tk *domain.Task) error {
			tk.Checklist[0].Completed = true
			tk.Progress = 50
			tk.Status = domain.TaskStatusInProgress
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 50, updated.Progress)

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Checklist[0].Completed)
		assert.Equal(t, domain.TaskStatusInProgress, got.Status)
	})

	t.Run("update aborted by mutate error", func(t *testing.T) {
		s := newStore(t)
		task := MustCreateTaskForTest(t)
		require.NoError(t, s.Create(ctx, task))

		denied := errors.New("denied")
		_, err := s.Update(ctx, task.ID, func(tk *domain.Task) error {
			tk.Title = "should not persist"
			return denied
		})
		assert.ErrorIs(t, err, denied)

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Title, got.Title)
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, uuid.New(), func(*domain.Task) error { return nil })
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("delete returns snapshot", func(t *testing.T) {
		s := newStore(t)
		task := MustCreateTaskForTest(t)
		require.NoError(t, s.Create(ctx, task))

		deleted, err := s.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)
		assert.Equal(t, task.Title, deleted.Title)

		_, err = s.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		_, err = s.Delete(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

// RunTaskStoreAtomicitySuite checks that concurrent Update calls on one task
// never lose writes. Only backends with a locking read-modify-write run it.
func RunTaskStoreAtomicitySuite(t *testing.T, newStore TaskStoreFactory) {
	ctx := context.Background()
	s := newStore(t)

	const workers = 16
	task := MustCreateTaskForTest(t, WithTaskChecklist(Items(0, workers)...))
	require.NoError(t, s.Create(ctx, task))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, task.ID, func(tk *domain.Task) error {
				tk.Checklist[i].Completed = true
				tk.Progress = tk.CompletedCount() * 100 / len(tk.Checklist)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, got.CompletedCount())
	assert.Equal(t, 100, got.Progress)
}

// RunUserStoreSuite exercises the store.UserStore contract.
func RunUserStoreSuite(t *testing.T, newStore UserStoreFactory) {
	ctx := context.Background()

	t.Run("create and lookup", func(t *testing.T) {
		s := newStore(t)
		user := MustCreateUserForTest(t, domain.RoleMember)
		user.Email = "Mixed.Case@Example.com"
		require.NoError(t, s.Create(ctx, user))

		byID, err := s.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "mixed.case@example.com", byID.Email)
		assert.Equal(t, TestPasswordHash, byID.HashedPassword)
		assert.Empty(t, byID.Password)

		byEmail, err := s.GetByEmail(ctx, "MIXED.case@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = s.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newStore(t)
		first := MustCreateUserForTest(t, domain.RoleMember)
		require.NoError(t, s.Create(ctx, first))

		second := MustCreateUserForTest(t, domain.RoleAdmin)
		second.Email = first.Email
		assert.ErrorIs(t, s.Create(ctx, second), store.ErrEmailExists)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		s := newStore(t)
		a := MustCreateUserForTest(t, domain.RoleMember)
		b := MustCreateUserForTest(t, domain.RoleMember)
		require.NoError(t, s.Create(ctx, a))
		require.NoError(t, s.Create(ctx, b))

		users, err := s.FindByIDs(ctx, []uuid.UUID{a.ID, uuid.New(), b.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, userIDs(users))

		users, err = s.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("list by role", func(t *testing.T) {
		s := newStore(t)
		admin := MustCreateUserForTest(t, domain.RoleAdmin)
		m1 := MustCreateUserForTest(t, domain.RoleMember)
		m2 := MustCreateUserForTest(t, domain.RoleMember)
		m2.CreatedAt = m1.CreatedAt.Add(time.Second)
		for _, u := range []*domain.User{admin, m2, m1} {
			require.NoError(t, s.Create(ctx, u))
		}

		members, err := s.List(ctx, domain.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{m1.ID, m2.ID}, userIDs(members))
	})

	t.Run("update", func(t *testing.T) {
		s := newStore(t)
		user := MustCreateUserForTest(t, domain.RoleMember)
		other := MustCreateUserForTest(t, domain.RoleMember)
		require.NoError(t, s.Create(ctx, user))
		require.NoError(t, s.Create(ctx, other))

		user.Name = "Renamed"
		user.Email = "renamed@example.com"
		user.ProfileImageURL = "https://img.example.com/r.png"
		require.NoError(t, s.Update(ctx, user))

		got, err := s.GetByEmail(ctx, "renamed@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "https://img.example.com/r.png", got.ProfileImageURL)

		user.Email = other.Email
		assert.ErrorIs(t, s.Update(ctx, user), store.ErrEmailExists)

		missing := MustCreateUserForTest(t, domain.RoleMember)
		assert.ErrorIs(t, s.Update(ctx, missing), store.ErrUserNotFound)
	})
}

func taskIDs(tasks []*domain.Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func userIDs(users []*domain.User) []uuid.UUID {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
