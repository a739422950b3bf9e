package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"homgar-monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockHistoryDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *HistoryRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewHistoryRepository(db, logger)

	return db, mock, repo
}

func TestAppend_Success(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WithArgs(int64(42), now, 25.5, false, 34.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx, &models.HistoryRecord{
		DeviceID:           42,
		RecordedAt:         now,
		TemperatureCelsius: 25.5,
		AlertTriggered:     false,
		ThresholdCelsius:   34,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_WithMessage(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	message := "alert fired: 35.0°C >= 34.0°C"

	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WithArgs(int64(42), now, 35.0, true, 34.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx, &models.HistoryRecord{
		DeviceID:           42,
		RecordedAt:         now,
		TemperatureCelsius: 35.0,
		AlertTriggered:     true,
		ThresholdCelsius:   34,
		Message:            &message,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_NilRecord(t *testing.T) {
	db, _, repo := setupMockHistoryDB(t)
	defer db.Close()

	err := repo.Append(context.Background(), nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "record is required")
}

func TestAppend_DatabaseError(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnError(sql.ErrConnDone)

	err := repo.Append(ctx, &models.HistoryRecord{
		DeviceID:   42,
		RecordedAt: time.Now(),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to append sensor reading")

	require.NoError(t, mock.ExpectationsWereMet())
}
