package projects

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+projects\s*\(name,\s*user_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at\s*$`
	byIDQ   = `(?s)^SELECT\s+id,\s*name,\s*user_id,\s*created_at\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s*$`
	listQ   = `(?s)^SELECT\s+id,\s*name,\s*user_id,\s*created_at\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id\s*$`
	deleteQ = `^DELETE FROM projects WHERE id = \$1$`
)

var projectCols = []string{"id", "name", "user_id", "created_at"}

func TestCreate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertQ).WithArgs("Site", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p1", now))
	mock.ExpectQuery(insertQ).WithArgs("Site", "u1").
		WillReturnError(errors.New("db down"))

	p, err := repo.Create(context.Background(), &models.Project{Name: "Site", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.True(t, p.CreatedAt.Equal(now))

	_, err = repo.Create(context.Background(), &models.Project{Name: "Site", UserID: "u1"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(byIDQ).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow("p1", "Site", "u1", time.Now()))
	mock.ExpectQuery(byIDQ).WithArgs("p2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(byIDQ).WithArgs("p3").WillReturnError(errors.New("boom"))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, &models.Project{ID: "p1", Name: "Site", UserID: "u1", CreatedAt: p.CreatedAt}, p)

	_, err = repo.GetByID(context.Background(), "p2")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = repo.GetByID(context.Background(), "p3")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}

func TestListByUser(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(listQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "First", "u1", now).
			AddRow("p2", "Second", "u1", now.Add(time.Second)))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnRows(sqlmock.NewRows(projectCols))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByUser_Errors(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnError(errors.New("boom"))
	mock.ExpectQuery(listQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "First", "u1", time.Now()).
			RowError(0, errors.New("row broke")))

	_, err := repo.ListByUser(context.Background(), "u1")
	assert.Regexp(t, `failed to select projects: boom`, err.Error())

	_, err = repo.ListByUser(context.Background(), "u1")
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs("p1").WillReturnError(errors.New("boom"))
	mock.ExpectExec(deleteQ).WithArgs("p1").WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))

	n, err := repo.Delete(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = repo.Delete(context.Background(), "p1")
	assert.Regexp(t, `db error: boom`, err.Error())

	_, err = repo.Delete(context.Background(), "p1")
	assert.Regexp(t, `rows affected error`, err.Error())
}
