package character

import "strings"

// Config holds configuration for the character sync pipeline.
type Config struct {
	// Sources is the comma-separated list of sources to include, in priority
	// order. The first source is the primary for merge conflict resolution.
	Sources string `mapstructure:"sources" default:"schaledb,torikushii"`
	// BatchSize is the number of records per upsert batch.
	BatchSize int `mapstructure:"batch_size" default:"50"`
	// Table is the target table for character upserts.
	Table string `mapstructure:"table" default:"characters"`
	// OutputDir is the local directory for the data tree and manifest.
	OutputDir string `mapstructure:"output_dir" default:"data"`
	// CDNBaseURL is the base URL for derived image links.
	CDNBaseURL string `mapstructure:"cdn_base_url" default:"https://cdn.jsdelivr.net/gh/dungdinhmanh/blue-archive-data@main"`
	// ManifestVersion is the version stamped into cdn_manifest.json.
	ManifestVersion string `mapstructure:"manifest_version" default:"1.0.0"`
	// SchaleDBURL is the endpoint for the SchaleDB students dump.
	SchaleDBURL string `mapstructure:"schaledb_url" default:"https://raw.githubusercontent.com/SchaleDB/SchaleDB/main/data/en/students.json"`
	// TorikushiiURL is the endpoint for the torikushii character dump.
	TorikushiiURL string `mapstructure:"torikushii_url" default:"https://raw.githubusercontent.com/torikushiii/BlueArchiveData/master/global/characters.json"`
	// PublishPrefix is the object key prefix for published artifacts.
	PublishPrefix string `mapstructure:"publish_prefix" default:""`
}

// SourceList splits the configured source string into ordered source names.
func (c Config) SourceList() []string {
	parts := strings.Split(c.Sources, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}
