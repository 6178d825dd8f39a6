package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testutils"
)

var userColumnNames = []string{
	"id", "name", "email", "hashed_password", "profile_image_url", "role", "created_at", "updated_at",
}

func newMockUserStore(t *testing.T) (*postgres.PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewPostgresUserStore(db, nil), mock
}

func userRows(users ...*domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows(userColumnNames)
	for _, u := range users {
		rows.AddRow(u.ID.String(), u.Name, u.Email, u.HashedPassword, u.ProfileImageURL,
			string(u.Role), u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestPostgresUserStoreCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("normalizes email", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockUserStore(t)
		user := testutils.MustCreateUserForTest(t, domain.RoleMember)
		user.Email = "  Mixed@Example.COM "

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID.String(), user.Name, "mixed@example.com", user.HashedPassword, "",
				"member", user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("taken email", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockUserStore(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(newPgError("23505"))

		err := s.Create(ctx, testutils.MustCreateUserForTest(t, domain.RoleMember))
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestPostgresUserStoreLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mock := newMockUserStore(t)

	a := testutils.MustCreateUserForTest(t, domain.RoleMember)
	b := testutils.MustCreateUserForTest(t, domain.RoleAdmin)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs(a.Email).
		WillReturnRows(userRows(a))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id IN ($1, $2)")).
		WithArgs(a.ID.String(), b.ID.String()).
		WillReturnRows(userRows(a, b))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE role = $1 ORDER BY created_at, id")).
		WithArgs("member").
		WillReturnRows(userRows(a))

	got, err := s.GetByEmail(ctx, "  "+a.Email)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, domain.RoleMember, got.Role)

	_, err = s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	found, err := s.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	members, err := s.List(ctx, domain.RoleMember)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, a.ID, members[0].ID)

	empty, err := s.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mock := newMockUserStore(t)
	user := testutils.MustCreateUserForTest(t, domain.RoleMember)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE users").WillReturnError(newPgError("23505"))

	require.NoError(t, s.Update(ctx, user))
	assert.ErrorIs(t, s.Update(ctx, user), store.ErrUserNotFound)
	assert.ErrorIs(t, s.Update(ctx, user), store.ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
