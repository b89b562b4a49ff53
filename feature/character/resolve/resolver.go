// Package resolve converts the free-text categorical labels on reconciled
// records into foreign-key ids by lookup against the reference tables.
//
// Resolution is additive-only: a label that is empty is never looked up and
// its FK column is omitted from the sync payload entirely, and a lookup miss
// likewise omits the column. A record sync must never erase a previously
// stored foreign key just because this run's sources lacked the label.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"archive-sync/feature/character/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fkLookup describes one categorical field: the reference table it resolves
// against, the FK column it produces, and how to read the label off a record.
type fkLookup struct {
	column string
	table  string
	label  func(models.Character) string
}

// lookupKeyField is the key column shared by all reference tables.
const lookupKeyField = "name"

func fkLookups() []fkLookup {
	return []fkLookup{
		{"school_id", "schools", func(c models.Character) string { return c.SchoolName }},
		{"club_id", "clubs", func(c models.Character) string { return c.ClubName }},
		{"rarity_id", "rarities", rarityLabel},
		{"squad_type_id", "squad_types", func(c models.Character) string { return c.SquadType }},
		{"position_id", "positions", func(c models.Character) string { return c.Position }},
		{"weapon_type_id", "weapon_types", func(c models.Character) string { return c.WeaponType }},
		{"armor_type_id", "armor_types", func(c models.Character) string { return c.ArmorType }},
		{"bullet_type_id", "bullet_types", func(c models.Character) string { return c.BulletType }},
		{"tactic_role_id", "tactic_roles", func(c models.Character) string { return c.TacticRole }},
	}
}

// rarityLabel formats star counts the way the rarities table names them.
func rarityLabel(c models.Character) string {
	if c.RarityStars <= 0 {
		return ""
	}
	return fmt.Sprintf("%d★", c.RarityStars)
}

type memoEntry struct {
	id int64
	ok bool
}

// Resolver resolves categorical labels against the reference tables, with a
// per-run memo of (table, value) results so a label shared by many records
// costs one round-trip. The memo makes resolution results identical to
// per-record lookups, just cheaper.
type Resolver struct {
	db   *gorm.DB
	log  *zap.Logger
	memo map[string]memoEntry
}

// New creates a resolver bound to the target store connection.
func New(db *gorm.DB, log *zap.Logger) *Resolver {
	return &Resolver{
		db:   db,
		log:  log,
		memo: make(map[string]memoEntry),
	}
}

// ResolveAll resolves every record and returns sync-ready records plus the
// lookup misses encountered. Misses are diagnostics; the affected records
// stay eligible for sync.
func (r *Resolver) ResolveAll(ctx context.Context, chars []models.Character) ([]models.SyncRecord, []models.LookupMiss, error) {
	records := make([]models.SyncRecord, 0, len(chars))
	var misses []models.LookupMiss

	for _, c := range chars {
		rec, recMisses, err := r.Resolve(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
		misses = append(misses, recMisses...)
	}

	return records, misses, nil
}

// Resolve builds the upsert column map for one character. FK columns are set
// only when their label resolved; everything else carries the full canonical
// payload.
func (r *Resolver) Resolve(ctx context.Context, c models.Character) (models.SyncRecord, []models.LookupMiss, error) {
	cols, err := baseColumns(c)
	if err != nil {
		return models.SyncRecord{}, nil, err
	}

	var misses []models.LookupMiss
	for _, fk := range fkLookups() {
		value := fk.label(c)
		if value == "" {
			// Absent label: no lookup, no column. The store keeps whatever
			// FK a previous run resolved.
			continue
		}

		id, ok, err := r.lookup(ctx, fk.table, value)
		if err != nil {
			return models.SyncRecord{}, nil, err
		}
		if !ok {
			misses = append(misses, models.LookupMiss{
				CharacterID: c.ID,
				Field:       fk.column,
				Table:       fk.table,
				Value:       value,
			})
			continue
		}
		cols[fk.column] = id
	}

	return models.SyncRecord{
		ID:      int64(c.ID),
		Name:    c.Name,
		Columns: cols,
	}, misses, nil
}

func (r *Resolver) lookup(ctx context.Context, table, value string) (int64, bool, error) {
	key := table + "\x00" + value
	if entry, hit := r.memo[key]; hit {
		return entry.id, entry.ok, nil
	}

	var row struct{ ID int64 }
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id").
		Where(lookupKeyField+" = ?", value).
		Take(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.memo[key] = memoEntry{ok: false}
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s %q: %w", table, value, err)
	}

	r.memo[key] = memoEntry{id: row.ID, ok: true}
	return row.ID, true, nil
}

// baseColumns builds the non-FK portion of the upsert payload. Nested groups
// marshal to JSONB values.
func baseColumns(c models.Character) (map[string]any, error) {
	cols := map[string]any{
		"id":              int64(c.ID),
		"name":            c.Name,
		"dev_name":        c.DevName,
		"character_voice": c.CharacterVoice,
		"illustrator":     c.Illustrator,
		"designer":        c.Designer,
		"collection_bg":   c.CollectionBG,
		"school_year":     c.SchoolYear,
		"is_limited":      c.IsLimited,
		"source":          c.Source,
	}

	groups := map[string]any{
		"profile":   c.Profile,
		"stats":     c.Stats,
		"terrain":   c.Terrain,
		"weapon":    c.Weapon,
		"skills":    c.Skills,
		"equipment": c.Equipment,
		"images":    c.Images,
	}
	for col, group := range groups {
		data, err := json.Marshal(group)
		if err != nil {
			return nil, fmt.Errorf("marshal %s for character %d: %w", col, c.ID, err)
		}
		cols[col] = datatypes.JSON(data)
	}

	return cols, nil
}
