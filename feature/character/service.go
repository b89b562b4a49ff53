package character

import (
	"context"
	"errors"
	"sync"

	"archive-sync/core/database"
	"archive-sync/feature/character/artifact"
	"archive-sync/feature/character/merge"
	"archive-sync/feature/character/models"
	"archive-sync/feature/character/resolve"
	"archive-sync/feature/character/source"
	charsync "archive-sync/feature/character/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunState tracks the pipeline's progress through its stages.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateFetching  RunState = "fetching"
	StateMapping   RunState = "mapping"
	StateMerging   RunState = "merging"
	StateResolving RunState = "resolving"
	StateSyncing   RunState = "syncing"
	StateReported  RunState = "reported"
	StateAborted   RunState = "aborted"
)

// ErrNoData is the single fatal precondition: no source produced any usable
// record, so the run performs no writes at all. Every other failure degrades
// to partial success.
var ErrNoData = errors.New("no source produced any usable record")

// FetchOutcome reports one source's fetch result.
type FetchOutcome struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// RunReport is the end-of-run summary. It is produced even under total sync
// failure; only ErrNoData aborts without one worth reading.
type RunReport struct {
	State        RunState            `json:"state"`
	Fetches      []FetchOutcome      `json:"fetches"`
	Merged       int                 `json:"merged"`
	LookupMisses []models.LookupMiss `json:"lookup_misses,omitempty"`
	Summary      charsync.Summary    `json:"summary"`
	DryRun       bool                `json:"dry_run,omitempty"`
}

// RunOptions controls optional run behavior.
type RunOptions struct {
	// DryRun fetches, merges, resolves and writes artifacts but performs no
	// store writes.
	DryRun bool
	// EnsureSchema migrates the characters and reference tables before
	// syncing.
	EnsureSchema bool
	// SkipArtifacts suppresses the local data tree and manifest.
	SkipArtifacts bool
}

// Service runs the character pipeline: fetch all sources concurrently, merge
// by priority, resolve reference labels, upsert in batches, report.
type Service struct {
	cfg     Config
	log     *zap.Logger
	db      *gorm.DB
	sources []source.Source
}

// NewService creates the pipeline service. db may be nil for fetch-only
// runs; resolve and sync stages are skipped without a store connection.
func NewService(cfg Config, log *zap.Logger, db *gorm.DB, sources ...source.Source) *Service {
	return &Service{cfg: cfg, log: log, db: db, sources: sources}
}

// Run executes one pipeline pass and returns its report. The returned error
// is non-nil only for ErrNoData or an infrastructure failure before any
// write; store-level write failures land in the report instead.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	report := &RunReport{State: StateIdle, DryRun: opts.DryRun}

	// Fetch all sources concurrently; merge needs the complete source set,
	// so we join before moving on.
	report.State = StateFetching
	bySource := s.fetchAll(ctx, report)

	report.State = StateMapping
	total := 0
	for _, records := range bySource {
		total += len(records)
	}
	if total == 0 {
		report.State = StateAborted
		s.log.Error("aborting run: all sources failed or empty")
		return report, ErrNoData
	}

	report.State = StateMerging
	merged := merge.Merge(merge.Group(bySource), s.priority())
	report.Merged = len(merged)
	s.log.Info("merged canonical records", zap.Int("characters", len(merged)))

	if !opts.SkipArtifacts {
		if err := s.writeArtifacts(merged); err != nil {
			// Artifacts are a hand-off convenience; the sync still proceeds.
			s.log.Warn("failed to write artifacts", zap.Error(err))
		}
	}

	if s.db == nil {
		report.State = StateReported
		s.log.Info("no store connection, skipping resolve and sync")
		return report, nil
	}

	if opts.EnsureSchema {
		if err := s.db.WithContext(ctx).AutoMigrate(models.SchemaModels()...); err != nil {
			return report, err
		}
		s.log.Info("ensured target schema")
	}

	report.State = StateResolving
	resolver := resolve.New(s.db, s.log)
	records, misses, err := resolver.ResolveAll(ctx, merged)
	if err != nil {
		return report, err
	}
	report.LookupMisses = misses
	for _, miss := range misses {
		s.log.Debug("reference lookup miss",
			zap.Int("character", miss.CharacterID),
			zap.String("table", miss.Table),
			zap.String("value", miss.Value))
	}
	if len(misses) > 0 {
		s.log.Warn("unresolved reference labels", zap.Int("count", len(misses)))
	}

	s.stripLaggingColumns(records)

	if opts.DryRun {
		report.State = StateReported
		s.log.Info("dry-run complete, no writes performed",
			zap.Int("would_sync", len(records)))
		return report, nil
	}

	report.State = StateSyncing
	engine := charsync.NewEngine(s.db, s.log, s.cfg.Table, s.cfg.BatchSize)
	report.Summary = engine.Upsert(ctx, records)

	report.State = StateReported
	s.log.Info("sync run complete",
		zap.Int("attempted", report.Summary.Attempted),
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed))
	return report, nil
}

func (s *Service) priority() []string {
	names := s.cfg.SourceList()
	if len(names) > 0 {
		return names
	}
	names = make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return names
}

// fetchAll runs every source concurrently and records per-source outcomes.
// A failed source is logged and skipped; only the caller decides whether the
// surviving set is enough.
func (s *Service) fetchAll(ctx context.Context, report *RunReport) map[string][]models.Character {
	type fetchResult struct {
		name    string
		records []models.Character
		err     error
	}

	results := make([]fetchResult, len(s.sources))

	var wg sync.WaitGroup
	wg.Add(len(s.sources))
	for i, src := range s.sources {
		go func(i int, src source.Source) {
			defer wg.Done()
			records, err := src.FetchAll(ctx)
			results[i] = fetchResult{name: src.Name(), records: records, err: err}
		}(i, src)
	}
	wg.Wait()

	bySource := make(map[string][]models.Character, len(s.sources))
	for _, res := range results {
		outcome := FetchOutcome{Source: res.name, Records: len(res.records)}
		if res.err != nil {
			outcome.Error = res.err.Error()
			s.log.Warn("source fetch failed, continuing with remaining sources",
				zap.String("source", res.name),
				zap.Error(res.err))
		} else {
			bySource[res.name] = res.records
			s.log.Info("fetched source",
				zap.String("source", res.name),
				zap.Int("records", len(res.records)))
		}
		report.Fetches = append(report.Fetches, outcome)
	}
	return bySource
}

func (s *Service) writeArtifacts(merged []models.Character) error {
	writer := artifact.NewWriter(s.cfg.OutputDir, s.cfg.CDNBaseURL, s.cfg.ManifestVersion, s.log)
	if _, err := writer.WriteDataTree(merged); err != nil {
		return err
	}
	_, err := writer.WriteManifest()
	return err
}

// stripLaggingColumns removes payload columns the live schema does not have
// yet, so a store whose schema lags the source data degrades to a partial
// write instead of rejecting every record.
func (s *Service) stripLaggingColumns(records []models.SyncRecord) {
	if len(records) == 0 {
		return
	}

	// FK columns vary per record, so take the union across the working set.
	seen := make(map[string]struct{})
	var wanted []string
	for _, rec := range records {
		for col := range rec.Columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			wanted = append(wanted, col)
		}
	}

	missing, err := database.MissingColumns(s.db, s.cfg.Table, wanted)
	if err != nil {
		// Sync will surface the per-record consequences; this names the cause.
		s.log.Warn("could not inspect target schema",
			zap.String("table", s.cfg.Table), zap.Error(err))
		return
	}
	if len(missing) == 0 {
		return
	}

	s.log.Warn("target schema lags payload, dropping columns",
		zap.Strings("columns", missing))
	for _, rec := range records {
		for _, col := range missing {
			delete(rec.Columns, col)
		}
	}
}
