package segments

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/dbx"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+segments\s*\(project_id,\s*position,\s*source_text,\s*translation_text\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`
	listQ   = `(?s)^SELECT\s+id,\s*project_id,\s*position,\s*source_text,\s*translation_text\s+FROM\s+segments\s+WHERE\s+project_id\s*=\s*\$1\s+ORDER\s+BY\s+position\s*$`
	byIDQ   = `(?s)^SELECT\s+id,\s*project_id,\s*position,\s*source_text,\s*translation_text\s+FROM\s+segments\s+WHERE\s+id\s*=\s*\$1\s*$`
	updateQ = `^UPDATE segments SET translation_text = \$1 WHERE id = \$2$`
	deleteQ = `^DELETE FROM segments WHERE project_id = \$1$`
)

var segmentCols = []string{"id", "project_id", "position", "source_text", "translation_text"}

func TestCreateBatch_AssignsPositionsAndIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(insertQ).WithArgs("p1", 0, "Hello.", "Merhaba.").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1"))
	mock.ExpectQuery(insertQ).WithArgs("p1", 1, "Bye!", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s2"))

	segs := []*models.Segment{{Source: "Hello.", Translation: "Merhaba."}, {Source: "Bye!"}}
	require.NoError(t, repo.CreateBatch(context.Background(), "p1", segs))

	assert.Equal(t, &models.Segment{ID: "s1", ProjectID: "p1", Position: 0, Source: "Hello.", Translation: "Merhaba."}, segs[0])
	assert.Equal(t, &models.Segment{ID: "s2", ProjectID: "p1", Position: 1, Source: "Bye!"}, segs[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_RollsBackInsideTx(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(insertQ).WithArgs("p1", 0, "a", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1"))
	mock.ExpectQuery(insertQ).WithArgs("p1", 1, "b", "").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := dbx.WithTx(context.Background(), db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewPostgresRepository(tx).CreateBatch(ctx, "p1", []*models.Segment{{Source: "a"}, {Source: "b"}, {Source: "c"}})
	})

	require.Error(t, err)
	assert.Regexp(t, `db error: segment 1: disk full`, err.Error())
	require.NoError(t, mock.ExpectationsWereMet(), "third insert must not run and the tx must roll back")
}

func TestListByProject(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(listQ).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(segmentCols).
			AddRow("s1", "p1", 0, "a", "").
			AddRow("s2", "p1", 1, "b", "B"))
	mock.ExpectQuery(listQ).WithArgs("gone").WillReturnRows(sqlmock.NewRows(segmentCols))
	mock.ExpectQuery(listQ).WithArgs("p1").WillReturnError(errors.New("boom"))

	got, err := repo.ListByProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, []string{got[0].Source, got[1].Source})
	assert.Equal(t, "B", got[1].Translation)

	got, err = repo.ListByProject(context.Background(), "gone")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = repo.ListByProject(context.Background(), "p1")
	assert.Regexp(t, `failed to select segments: boom`, err.Error())
}

func TestGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(byIDQ).WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(segmentCols).AddRow("s1", "p1", 3, "a", "A"))
	mock.ExpectQuery(byIDQ).WithArgs("s2").WillReturnError(sql.ErrNoRows)

	s, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, &models.Segment{ID: "s1", ProjectID: "p1", Position: 3, Source: "a", Translation: "A"}, s)

	_, err = repo.GetByID(context.Background(), "s2")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestUpdateTranslation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(updateQ).WithArgs("X", "s1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateQ).WithArgs("X", "s1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateQ).WithArgs("X", "nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(updateQ).WithArgs("X", "s1").WillReturnError(errors.New("boom"))
	mock.ExpectExec(updateQ).WithArgs("X", "s1").WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.UpdateTranslation(context.Background(), "s1", "X"))
	require.NoError(t, repo.UpdateTranslation(context.Background(), "s1", "X"), "same value again is fine")
	assert.True(t, errors.Is(repo.UpdateTranslation(context.Background(), "nope", "X"), common.ErrorNotFound))
	assert.Regexp(t, `db error: boom`, repo.UpdateTranslation(context.Background(), "s1", "X").Error())
	assert.Regexp(t, `unexpected rows affected: 2`, repo.UpdateTranslation(context.Background(), "s1", "X").Error())
}

func TestDeleteByProject(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(deleteQ).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(deleteQ).WithArgs("p1").WillReturnError(errors.New("boom"))

	n, err := repo.DeleteByProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = repo.DeleteByProject(context.Background(), "p1")
	require.Error(t, err)
}
