package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

var allOps = []Operation{
	OpCreate, OpReadAny, OpReadOwn, OpUpdateFull, OpDelete, OpUpdateStatus, OpUpdateChecklist,
}

func TestCanAccessTaskAdmin(t *testing.T) {
	t.Parallel()

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	task := &domain.Task{AssignedTo: []uuid.UUID{uuid.New()}}

	for _, op := range allOps {
		assert.True(t, CanAccessTask(admin, task, op), op.String())
	}
}

func TestCanAccessTaskMember(t *testing.T) {
	t.Parallel()

	member := domain.Actor{ID: uuid.New(), Role: domain.RoleMember}
	assigned := &domain.Task{AssignedTo: []uuid.UUID{uuid.New(), member.ID}}
	other := &domain.Task{AssignedTo: []uuid.UUID{uuid.New()}}

	testCases := []struct {
		op          Operation
		onAssigned  bool
		onUnrelated bool
	}{
		{OpCreate, false, false},
		{OpReadAny, false, false},
		{OpReadOwn, true, false},
		{OpUpdateFull, false, false},
		{OpDelete, false, false},
		{OpUpdateStatus, true, false},
		{OpUpdateChecklist, true, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.op.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.onAssigned, CanAccessTask(member, assigned, tc.op))
			assert.Equal(t, tc.onUnrelated, CanAccessTask(member, other, tc.op))
		})
	}
}

func TestCanAccessTaskNilTask(t *testing.T) {
	t.Parallel()

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	member := domain.Actor{ID: uuid.New(), Role: domain.RoleMember}

	assert.True(t, CanAccessTask(admin, nil, OpCreate))
	assert.True(t, CanAccessTask(admin, nil, OpDelete))
	assert.False(t, CanAccessTask(admin, nil, OpUpdateStatus))
	assert.False(t, CanAccessTask(member, nil, OpReadOwn))
	assert.False(t, CanAccessTask(member, nil, OpCreate))
}

func TestCanAccessTaskDeniesUnknown(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	task := &domain.Task{AssignedTo: []uuid.UUID{id}}

	stranger := domain.Actor{ID: id, Role: "guest"}
	for _, op := range allOps {
		assert.False(t, CanAccessTask(stranger, task, op), op.String())
	}

	admin := domain.Actor{ID: id, Role: domain.RoleAdmin}
	assert.False(t, CanAccessTask(admin, task, Operation(99)))
	assert.Equal(t, "unknown", Operation(99).String())
}

func TestListScope(t *testing.T) {
	t.Parallel()

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	id, scoped := ListScope(admin)
	assert.False(t, scoped)
	assert.Equal(t, uuid.Nil, id)

	member := domain.Actor{ID: uuid.New(), Role: domain.RoleMember}
	id, scoped = ListScope(member)
	assert.True(t, scoped)
	assert.Equal(t, member.ID, id)
}
