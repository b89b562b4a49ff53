package sync_test

import (
	"context"
	"fmt"
	"testing"

	"archive-sync/feature/character/models"
	charsync "archive-sync/feature/character/sync"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	// Per-record writes are already isolated; the default wrapping
	// transaction would only add Begin/Commit noise to the expectations.
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func makeRecords(n int) []models.SyncRecord {
	records := make([]models.SyncRecord, n)
	for i := range records {
		id := int64(10000 + i)
		records[i] = models.SyncRecord{
			ID:   id,
			Name: fmt.Sprintf("Student %d", id),
			Columns: map[string]any{
				"id":   id,
				"name": fmt.Sprintf("Student %d", id),
			},
		}
	}
	return records
}

func TestUpsertAllSucceed(t *testing.T) {
	db, mock := setupMockDB(t)
	engine := charsync.NewEngine(db, zap.NewNop(), "characters", 50)

	records := makeRecords(120)
	for range records {
		mock.ExpectExec(`INSERT INTO "characters" .* ON CONFLICT \("id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	summary := engine.Upsert(context.Background(), records)
	assert.Equal(t, 120, summary.Attempted)
	assert.Equal(t, 120, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Failures)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFailedBatchIsolated(t *testing.T) {
	db, mock := setupMockDB(t)
	engine := charsync.NewEngine(db, zap.NewNop(), "characters", 50)

	records := makeRecords(120)
	for i := range records {
		expect := mock.ExpectExec(`INSERT INTO "characters"`)
		// Every write of the second batch is rejected.
		if i >= 50 && i < 100 {
			expect.WillReturnError(fmt.Errorf("value too long for column"))
		} else {
			expect.WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}

	summary := engine.Upsert(context.Background(), records)
	assert.Equal(t, 120, summary.Attempted)
	assert.Equal(t, 70, summary.Succeeded)
	assert.Equal(t, 50, summary.Failed)
	assert.Len(t, summary.Failures, 50)

	// Each failure carries its record's id and cause.
	assert.Equal(t, int64(10050), summary.Failures[0].ID)
	assert.Equal(t, int64(10099), summary.Failures[49].ID)
	assert.Contains(t, summary.Failures[0].Cause, "value too long")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCancelledContext(t *testing.T) {
	db, mock := setupMockDB(t)
	engine := charsync.NewEngine(db, zap.NewNop(), "characters", 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := engine.Upsert(ctx, makeRecords(120))
	assert.Equal(t, 0, summary.Attempted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewEngineDefaults(t *testing.T) {
	db, _ := setupMockDB(t)

	engine := charsync.NewEngine(db, zap.NewNop(), "", 0)
	assert.NotNil(t, engine)

	// An empty input still yields a summary.
	summary := engine.Upsert(context.Background(), nil)
	assert.Equal(t, 0, summary.Attempted)
	assert.Equal(t, 0, summary.Failed)
}
