package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetables").
		WithArgs(sqlmock.AnyArg(), "dept-1", models.TimetableStatusDraft, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{DepartmentID: "dept-1", VariantNumber: 1}
	require.NoError(t, repo.Create(context.Background(), nil, timetable))
	assert.NotEmpty(t, timetable.ID)
	assert.Equal(t, models.TimetableStatusDraft, timetable.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteDraftsByDepartment(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE department_id = $1 AND status = $2")).
		WithArgs("dept-1", models.TimetableStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteDraftsByDepartment(context.Background(), nil, "dept-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryPublish(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1 WHERE department_id = $2 AND status = $3 AND id <> $4")).
		WithArgs(models.TimetableStatusDraft, "dept-1", models.TimetableStatusPublished, "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1 WHERE id = $2")).
		WithArgs(models.TimetableStatusPublished, "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Publish(context.Background(), nil, "dept-1", "t2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectExec("INSERT INTO timetable_slots").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_slots").WillReturnResult(sqlmock.NewResult(1, 1))

	slots := []models.TimetableSlot{
		{TimetableID: "tt1", Day: 0, StartTime: "07:30", EndTime: "08:30", RoomID: "r1", TeacherID: "t1", SubjectID: "s1", BatchID: "b1"},
		{TimetableID: "tt1", Day: 0, StartTime: "08:30", EndTime: "09:30", RoomID: "r1", TeacherID: "t1", SubjectID: "s1", BatchID: "b1"},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), nil, slots))
	assert.NoError(t, mock.ExpectationsWereMet())
}
