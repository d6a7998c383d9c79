package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhub/evidence-api/internal/models"
)

func newBatchMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func batchRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "council_id", "batch_id", "job_role", "skill_hub", "sr", "day", "month", "created_at", "updated_at"}).
		AddRow("id-1", "council-1", "B100", "Fitter", "NAC-Bhimavaram", 1, "12", "March", now, now)
}

func TestBatchRepositoryFindByCredentials(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE job_role = $1 AND batch_id = $2")).
		WithArgs("Fitter", "B100").
		WillReturnRows(batchRows(time.Now()))

	batch, err := repo.FindByCredentials(context.Background(), "Fitter", "B100")
	require.NoError(t, err)
	assert.Equal(t, "B100", batch.BatchID)
	assert.Equal(t, "Fitter", batch.JobRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryFindByCredentialsNoMatch(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE job_role = $1 AND batch_id = $2")).
		WithArgs("Fitter", "wrong").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCredentials(context.Background(), "Fitter", "wrong")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE council_id = $1 AND (LOWER(batch_id) LIKE $2 OR LOWER(job_role) LIKE $2)")).
		WithArgs("council-1", "%fit%").
		WillReturnRows(batchRows(time.Now()))

	batches, err := repo.List(context.Background(), models.BatchFilter{CouncilID: "council-1", Search: "Fit"})
	require.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("INSERT INTO batches").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	batch := &models.Batch{CouncilID: "council-1", BatchID: "B100", JobRole: "Fitter"}
	require.NoError(t, repo.Create(context.Background(), batch))
	assert.NotEmpty(t, batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
