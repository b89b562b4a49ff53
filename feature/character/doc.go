// Package character implements the character sync pipeline: fetching raw
// documents from the upstream data sources, merging them into canonical
// records, resolving categorical labels against the reference tables, and
// upserting the result into the target store in bounded batches.
//
// # Pipeline
//
// One run moves through Fetching, Mapping, Merging, Resolving, Syncing and
// Reported. The only fatal condition is zero usable records from every
// source (ErrNoData); anything else degrades to partial success carried in
// the RunReport.
//
// # Subpackages
//
//   - models: canonical record shape, gorm rows, sync payload types
//   - source: per-source fetchers and field mappers
//   - merge: source-priority reconciliation
//   - resolve: additive-only FK resolution
//   - sync: batched idempotent upserts
//   - artifact: data tree and CDN manifest hand-off documents
//
// The package itself hosts the orchestrating Service, the pipeline Config
// and the HTTP feature exposing generated artifacts.
package character
