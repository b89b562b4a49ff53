package models

import (
	"time"

	"gorm.io/datatypes"
)

// CharacterRow is the gorm model for the characters table. Nested semantic
// groups persist as JSONB; categorical labels persist only as resolved
// foreign keys, never as free text.
type CharacterRow struct {
	ID             int64  `gorm:"column:id;primaryKey"`
	Name           string `gorm:"column:name;not null"`
	DevName        string `gorm:"column:dev_name"`
	CharacterVoice string `gorm:"column:character_voice"`
	Illustrator    string `gorm:"column:illustrator"`
	Designer       string `gorm:"column:designer"`
	CollectionBG   string `gorm:"column:collection_bg"`
	SchoolYear     string `gorm:"column:school_year"`
	IsLimited      bool   `gorm:"column:is_limited"`
	Source         string `gorm:"column:source"`

	Profile   datatypes.JSON `gorm:"column:profile"`
	Stats     datatypes.JSON `gorm:"column:stats"`
	Terrain   datatypes.JSON `gorm:"column:terrain"`
	Weapon    datatypes.JSON `gorm:"column:weapon"`
	Skills    datatypes.JSON `gorm:"column:skills"`
	Equipment datatypes.JSON `gorm:"column:equipment"`
	Images    datatypes.JSON `gorm:"column:images"`

	// Foreign keys are pointers: an unresolved reference stays NULL in the
	// store and is never written at all by an additive-only sync.
	SchoolID     *int64 `gorm:"column:school_id"`
	ClubID       *int64 `gorm:"column:club_id"`
	RarityID     *int64 `gorm:"column:rarity_id"`
	SquadTypeID  *int64 `gorm:"column:squad_type_id"`
	PositionID   *int64 `gorm:"column:position_id"`
	WeaponTypeID *int64 `gorm:"column:weapon_type_id"`
	ArmorTypeID  *int64 `gorm:"column:armor_type_id"`
	BulletTypeID *int64 `gorm:"column:bullet_type_id"`
	TacticRoleID *int64 `gorm:"column:tactic_role_id"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the gorm table name.
func (CharacterRow) TableName() string { return "characters" }

// Reference table rows. Each normalizes one categorical label space.

type School struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (School) TableName() string { return "schools" }

type Club struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Club) TableName() string { return "clubs" }

type Rarity struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Rarity) TableName() string { return "rarities" }

type SquadType struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (SquadType) TableName() string { return "squad_types" }

type Position struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Position) TableName() string { return "positions" }

type WeaponType struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (WeaponType) TableName() string { return "weapon_types" }

type ArmorType struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (ArmorType) TableName() string { return "armor_types" }

type BulletType struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (BulletType) TableName() string { return "bullet_types" }

type TacticRole struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (TacticRole) TableName() string { return "tactic_roles" }

// SchemaModels lists every model the ensure-schema step migrates, reference
// tables first so the characters table can point at them.
func SchemaModels() []any {
	return []any{
		&School{}, &Club{}, &Rarity{}, &SquadType{}, &Position{},
		&WeaponType{}, &ArmorType{}, &BulletType{}, &TacticRole{},
		&CharacterRow{},
	}
}

// SyncRecord is one FK-resolved record ready for upsert. Columns holds only
// the keys this run can assert; omitted keys are left untouched in the store.
type SyncRecord struct {
	ID      int64
	Name    string
	Columns map[string]any
}

// LookupMiss records a categorical label that had no reference row.
// Misses are diagnostics, not failures; the record still syncs without the FK.
type LookupMiss struct {
	CharacterID int    `json:"character_id"`
	Field       string `json:"field"`
	Table       string `json:"table"`
	Value       string `json:"value"`
}
