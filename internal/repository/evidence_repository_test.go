package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhub/evidence-api/internal/models"
)

func newEvidenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEvidenceRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	mock.ExpectExec("INSERT INTO evidence").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.EvidenceRecord{
		BatchID: "B100",
		Type:    models.AssessmentTheory,
		Photos:  pq.StringArray{"https://cdn.example/p1.jpg", "https://cdn.example/p2.jpg"},
		Lat:     16.544123,
		Lng:     81.521,
		Town:    "Bhimavaram",
		Region:  "Andhra Pradesh",
	}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryListByBatch(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "batch_id", "type", "username", "photos", "lat", "lng", "town", "region", "created_at"}).
		AddRow("rec-1", "B100", "Theory", "Fitter", pq.StringArray{"p1", "p2"}, 16.5, 81.5, "Bhimavaram", "Andhra Pradesh", now).
		AddRow("rec-2", "B100", "Viva", "Fitter", pq.StringArray{"p3"}, 16.5, 81.5, "Bhimavaram", "Andhra Pradesh", now.Add(time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE batch_id = $1 ORDER BY created_at ASC")).
		WithArgs("B100").
		WillReturnRows(rows)

	records, err := repo.ListByBatch(context.Background(), "B100")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.AssessmentTheory, records[0].Type)
	assert.Equal(t, pq.StringArray{"p1", "p2"}, records[0].Photos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryListByBatchAndType(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "batch_id", "type", "username", "photos", "lat", "lng", "town", "region", "created_at"}).
		AddRow("rec-1", "B100", "Attendance", "Fitter", pq.StringArray{"att"}, 16.5, 81.5, "", "", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE batch_id = $1 AND type = $2 ORDER BY created_at ASC")).
		WithArgs("B100", models.AssessmentAttendance).
		WillReturnRows(rows)

	records, err := repo.ListByBatchAndType(context.Background(), "B100", models.AssessmentAttendance)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryDeleteByBatch(t *testing.T) {
	db, mock, cleanup := newEvidenceMock(t)
	defer cleanup()
	repo := NewEvidenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM evidence WHERE batch_id = $1")).
		WithArgs("B100").
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.DeleteByBatch(context.Background(), "B100"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
