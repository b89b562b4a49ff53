// Package sync performs idempotent batch upserts of FK-resolved character
// records against the target store.
//
// Records are grouped into fixed-size batches processed sequentially in input
// order. Failures are isolated per record: a rejected write is reported with
// its id and cause and its siblings proceed, and a failed batch never aborts
// the batches after it. Re-running with unchanged input changes nothing in
// the store beyond the revision timestamp.
package sync

import (
	"context"
	"time"

	"archive-sync/feature/character/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultBatchSize bounds request size when the configuration does not.
const DefaultBatchSize = 50

// RecordFailure reports one rejected record write.
type RecordFailure struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Cause string `json:"cause"`
}

// Summary is the outcome of one sync run. It is always produced, even when
// every write failed.
type Summary struct {
	Attempted int             `json:"attempted"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Failures  []RecordFailure `json:"failures,omitempty"`
}

// Engine upserts resolved records into the target table.
type Engine struct {
	db        *gorm.DB
	log       *zap.Logger
	table     string
	batchSize int
}

// NewEngine creates a sync engine. A non-positive batch size falls back to
// DefaultBatchSize.
func NewEngine(db *gorm.DB, log *zap.Logger, table string, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if table == "" {
		table = "characters"
	}
	return &Engine{db: db, log: log, table: table, batchSize: batchSize}
}

// Upsert writes all records keyed by id, inserting new rows and overwriting
// matching ones. Processing stops early only on context cancellation;
// already-committed batches are never rolled back.
func (e *Engine) Upsert(ctx context.Context, records []models.SyncRecord) Summary {
	var summary Summary

	total := len(records)
	for start := 0; start < total; start += e.batchSize {
		if ctx.Err() != nil {
			e.log.Warn("sync cancelled, keeping committed batches",
				zap.Int("remaining", total-start))
			break
		}

		end := start + e.batchSize
		if end > total {
			end = total
		}
		batch := records[start:end]
		batchNum := start/e.batchSize + 1

		failed := 0
		for _, rec := range batch {
			summary.Attempted++
			if err := e.upsertOne(ctx, rec); err != nil {
				summary.Failed++
				failed++
				summary.Failures = append(summary.Failures, RecordFailure{
					ID:    rec.ID,
					Name:  rec.Name,
					Cause: err.Error(),
				})
				e.log.Warn("record upsert failed",
					zap.Int64("id", rec.ID),
					zap.String("name", rec.Name),
					zap.Error(err))
				continue
			}
			summary.Succeeded++
		}

		e.log.Info("synced batch",
			zap.Int("batch", batchNum),
			zap.Int("size", len(batch)),
			zap.Int("failed", failed))
	}

	return summary
}

// upsertOne writes a single record with ON CONFLICT (id) DO UPDATE.
// Only the columns present on the record are assigned, so an FK omitted by
// additive-only resolution never overwrites a stored value.
func (e *Engine) upsertOne(ctx context.Context, rec models.SyncRecord) error {
	now := time.Now().UTC()

	payload := make(map[string]any, len(rec.Columns)+2)
	for k, v := range rec.Columns {
		payload[k] = v
	}
	payload["created_at"] = now
	payload["updated_at"] = now

	assigns := make(map[string]any, len(rec.Columns))
	for k, v := range rec.Columns {
		if k == "id" {
			continue
		}
		assigns[k] = v
	}
	assigns["updated_at"] = now

	return e.db.WithContext(ctx).
		Table(e.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(assigns),
		}).
		Create(payload).Error
}
