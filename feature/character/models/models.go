package models

import (
	"encoding/json"
	"fmt"
)

// Character is the canonical, source-independent record for one game
// character. Sources map their raw documents into this shape before any
// merging or persistence happens, so downstream code never branches on
// raw-document key presence.
type Character struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	DevName        string `json:"dev_name,omitempty"`
	CharacterVoice string `json:"character_voice,omitempty"`
	Illustrator    string `json:"illustrator,omitempty"`
	Designer       string `json:"designer,omitempty"`
	CollectionBG   string `json:"collection_bg,omitempty"`
	SchoolYear     string `json:"school_year,omitempty"`
	IsLimited      bool   `json:"is_limited"`

	// Source is the provenance tag of the source that populated the base of
	// this record. It never participates in identity.
	Source string `json:"source,omitempty"`

	// Categorical labels pending FK resolution.
	SchoolName  string `json:"school_name,omitempty"`
	ClubName    string `json:"club_name,omitempty"`
	RarityStars int    `json:"rarity_stars,omitempty"`
	SquadType   string `json:"squad_type,omitempty"`
	Position    string `json:"position,omitempty"`
	WeaponType  string `json:"weapon_type,omitempty"`
	ArmorType   string `json:"armor_type,omitempty"`
	BulletType  string `json:"bullet_type,omitempty"`
	TacticRole  string `json:"tactic_role,omitempty"`

	Profile   Profile           `json:"profile"`
	Stats     Stats             `json:"stats"`
	Terrain   Terrain           `json:"terrain"`
	Weapon    Weapon            `json:"weapon"`
	Skills    []Skill           `json:"skills"`
	Equipment []string          `json:"equipment"`
	Images    map[string]string `json:"images"`
}

// Profile holds out-of-combat character details.
type Profile struct {
	Age         string `json:"age,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	Height      string `json:"height,omitempty"`
	Hobby       string `json:"hobby,omitempty"`
	Designer    string `json:"designer,omitempty"`
	Illustrator string `json:"illustrator,omitempty"`
	CV          string `json:"cv,omitempty"`
	SSRQuote    string `json:"ssr_quote,omitempty"`
}

// Stats holds numeric combat attributes. Tiered attributes carry the base
// tier (level 1) and, where the source provides it, the max tier (level 100).
type Stats struct {
	AttackPower1    int `json:"attack_power_1,omitempty"`
	AttackPower100  int `json:"attack_power_100,omitempty"`
	MaxHP1          int `json:"max_hp_1,omitempty"`
	MaxHP100        int `json:"max_hp_100,omitempty"`
	DefensePower1   int `json:"def_power_1,omitempty"`
	DefensePower100 int `json:"def_power_100,omitempty"`
	HealPower1      int `json:"heal_power_1,omitempty"`
	HealPower100    int `json:"heal_power_100,omitempty"`
	StabilityPoint  int `json:"stability_point,omitempty"`
	DodgePoint      int `json:"dodge_point,omitempty"`
	AccuracyPoint   int `json:"accuracy_point,omitempty"`
	CriticalPoint   int `json:"critical_point,omitempty"`
	CriticalDamage  int `json:"critical_damage,omitempty"`
	Range           int `json:"range,omitempty"`
	AmmoCount       int `json:"ammo_count,omitempty"`
	AmmoCost        int `json:"ammo_cost,omitempty"`
}

// Terrain holds the three battle adaptation grades.
type Terrain struct {
	Street  string `json:"street,omitempty"`
	Outdoor string `json:"outdoor,omitempty"`
	Indoor  string `json:"indoor,omitempty"`
}

// Weapon holds the character's unique weapon.
type Weapon struct {
	Name            string `json:"name,omitempty"`
	Desc            string `json:"desc,omitempty"`
	Image           string `json:"image,omitempty"`
	AttackPower1    int    `json:"attack_power_1,omitempty"`
	MaxHP1          int    `json:"max_hp_1,omitempty"`
	HealPower1      int    `json:"heal_power_1,omitempty"`
	PassiveSkill    string `json:"passive_skill,omitempty"`
	StatLevelUpType string `json:"stat_level_up_type,omitempty"`
}

// Skill is one entry in the character's ordered skill list.
// Optional effect parameters are kept as raw JSON; their shape varies by
// skill type and the pipeline never interprets them.
type Skill struct {
	SkillType  string          `json:"skill_type,omitempty"`
	Name       string          `json:"name,omitempty"`
	Desc       string          `json:"desc,omitempty"`
	Icon       string          `json:"icon,omitempty"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Cost       json.RawMessage `json:"cost,omitempty"`
	Duration   json.RawMessage `json:"duration,omitempty"`
	Range      json.RawMessage `json:"range,omitempty"`
	Radius     json.RawMessage `json:"radius,omitempty"`
	Effects    json.RawMessage `json:"effects,omitempty"`
}

// Valid reports whether the record carries the minimum identity to enter the
// merge stage. Records without an id or a display name are skipped, not
// errored: unreleased characters routinely appear id-only in the dumps.
func (c Character) Valid() bool {
	return c.ID > 0 && c.Name != ""
}

// Image category names used in the derived CDN URL map.
const (
	ImageIcon       = "icon"
	ImagePortrait   = "portrait"
	ImageCollection = "collection"
)

// ImageCategories lists the image categories in manifest order.
func ImageCategories() []string {
	return []string{ImageIcon, ImagePortrait, ImageCollection}
}

// DeriveImages returns the deterministic CDN URL map for a character id.
// The URLs are purely derived; nothing is fetched during reconciliation.
func DeriveImages(baseURL string, id int) map[string]string {
	return map[string]string{
		ImageIcon:       fmt.Sprintf("%s/images/characters/icons/%d.webp", baseURL, id),
		ImagePortrait:   fmt.Sprintf("%s/images/characters/portraits/%d.webp", baseURL, id),
		ImageCollection: fmt.Sprintf("%s/images/characters/collection/%d.webp", baseURL, id),
	}
}
