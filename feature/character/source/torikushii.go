package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"archive-sync/core/utils"
	"archive-sync/feature/character/models"
)

// Torikushii fetches the character dump from the torikushii data repository.
// The document is an object keyed by character id with nested Profile, Stat,
// Terrain, Skills and Weapon groups; tiered stats are arrays indexed by level.
type Torikushii struct {
	client  *http.Client
	url     string
	cdnBase string
}

// NewTorikushii creates the torikushii source.
func NewTorikushii(url, cdnBase string) *Torikushii {
	return &Torikushii{
		client:  newHTTPClient(),
		url:     url,
		cdnBase: cdnBase,
	}
}

// SourceTorikushii is the provenance tag for records mapped from torikushii.
const SourceTorikushii = "torikushii"

func (t *Torikushii) Name() string { return SourceTorikushii }

type toriCharacter struct {
	Name       string `json:"Name"`
	DevName    string `json:"DevName"`
	School     string `json:"School"`
	Club       string `json:"Club"`
	StarGrade  int    `json:"StarGrade"`
	SquadType  string `json:"SquadType"`
	Position   string `json:"Position"`
	WeaponType string `json:"WeaponType"`
	ArmorType  string `json:"ArmorType"`
	BulletType string `json:"BulletType"`
	TacticRole string `json:"TacticRole"`
	IsLimited  any    `json:"IsLimited"`

	Terrain map[string]any   `json:"Terrain"`
	Profile map[string]any   `json:"Profile"`
	Stat    map[string][]any `json:"Stat"`

	Skills    []toriSkill `json:"Skills"`
	Weapon    toriWeapon  `json:"Weapon"`
	Equipment []string    `json:"Equipment"`
}

type toriSkill struct {
	SkillType  string          `json:"SkillType"`
	Name       string          `json:"Name"`
	Desc       string          `json:"Desc"`
	Icon       string          `json:"Icon"`
	Parameters json.RawMessage `json:"Parameters"`
	Cost       json.RawMessage `json:"Cost"`
	Effects    json.RawMessage `json:"Effects"`
}

// Weapon stat fields decode as any: most dumps carry scalars, some carry
// tiered arrays like the top-level Stat block.
type toriWeapon struct {
	Name            string `json:"Name"`
	Desc            string `json:"Desc"`
	Image           string `json:"Img"`
	AttackPower1    any    `json:"AttackPower1"`
	MaxHP1          any    `json:"MaxHP1"`
	HealPower1      any    `json:"HealPower1"`
	PassiveSkill    string `json:"PassiveSkill"`
	StatLevelUpType string `json:"StatLevelUpType"`
}

// FetchAll downloads the dump and maps every usable character into a
// canonical record, ordered by id for deterministic output.
func (t *Torikushii) FetchAll(ctx context.Context) ([]models.Character, error) {
	body, err := fetchJSON(ctx, t.client, t.url)
	if err != nil {
		return nil, err
	}

	var raw map[string]toriCharacter
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse torikushii characters: %w", err)
	}

	ids := make([]int, 0, len(raw))
	byID := make(map[int]toriCharacter, len(raw))
	for key, tc := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
		byID[id] = tc
	}
	sort.Ints(ids)

	chars := make([]models.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := t.mapCharacter(id, byID[id]); ok {
			chars = append(chars, c)
		}
	}
	return chars, nil
}

func (t *Torikushii) mapCharacter(id int, tc toriCharacter) (models.Character, bool) {
	// Unreleased characters appear without a name; drop them before merge.
	if tc.Name == "" {
		return models.Character{}, false
	}

	c := models.Character{
		ID:        id,
		Name:      tc.Name,
		DevName:   tc.DevName,
		IsLimited: utils.ToBool(tc.IsLimited),
		Source:    SourceTorikushii,

		SchoolName:  tc.School,
		ClubName:    tc.Club,
		RarityStars: tc.StarGrade,
		SquadType:   tc.SquadType,
		Position:    tc.Position,
		WeaponType:  tc.WeaponType,
		ArmorType:   tc.ArmorType,
		BulletType:  tc.BulletType,
		TacticRole:  tc.TacticRole,

		Profile: models.Profile{
			Age:         utils.ToString(tc.Profile["Age"]),
			Birthday:    utils.ToString(tc.Profile["Birthday"]),
			Height:      utils.ToString(tc.Profile["Height"]),
			Hobby:       utils.ToString(tc.Profile["Hobby"]),
			Designer:    utils.ToString(tc.Profile["Designer"]),
			Illustrator: utils.ToString(tc.Profile["Illustrator"]),
			CV:          utils.ToString(tc.Profile["CV"]),
		},
		Stats: models.Stats{
			AttackPower1:   t.statBase(tc.Stat, "AttackPower"),
			MaxHP1:         t.statBase(tc.Stat, "MaxHP"),
			DefensePower1:  t.statBase(tc.Stat, "DefensePower"),
			HealPower1:     t.statBase(tc.Stat, "HealPower"),
			StabilityPoint: t.statBase(tc.Stat, "StabilityPoint"),
			DodgePoint:     t.statBase(tc.Stat, "DodgePoint"),
			AccuracyPoint:  t.statBase(tc.Stat, "AccuracyPoint"),
			CriticalPoint:  t.statBase(tc.Stat, "CriticalPoint"),
			Range:          t.statBase(tc.Stat, "Range"),
			AmmoCount:      t.statBase(tc.Stat, "AmmoCount"),
			AmmoCost:       t.statBase(tc.Stat, "AmmoCost"),
		},
		Terrain: models.Terrain{
			Street:  utils.ToString(tc.Terrain["Street"]),
			Outdoor: utils.ToString(tc.Terrain["Outdoor"]),
			Indoor:  utils.ToString(tc.Terrain["Indoor"]),
		},
		Weapon: models.Weapon{
			Name:            tc.Weapon.Name,
			Desc:            tc.Weapon.Desc,
			Image:           tc.Weapon.Image,
			AttackPower1:    weaponStat(tc.Weapon.AttackPower1),
			MaxHP1:          weaponStat(tc.Weapon.MaxHP1),
			HealPower1:      weaponStat(tc.Weapon.HealPower1),
			PassiveSkill:    tc.Weapon.PassiveSkill,
			StatLevelUpType: tc.Weapon.StatLevelUpType,
		},
		Equipment: tc.Equipment,
		Images:    models.DeriveImages(t.cdnBase, id),
	}

	for _, sk := range tc.Skills {
		if sk.Name == "" && sk.SkillType == "" {
			continue
		}
		c.Skills = append(c.Skills, models.Skill{
			SkillType:  sk.SkillType,
			Name:       sk.Name,
			Desc:       sk.Desc,
			Icon:       sk.Icon,
			Parameters: sk.Parameters,
			Cost:       sk.Cost,
			Effects:    sk.Effects,
		})
	}

	return c, true
}

// weaponStat reads a weapon stat that arrives either as a scalar or as a
// tiered array whose base tier sits at index 0.
func weaponStat(v any) int {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return 0
		}
		return utils.ToInt(arr[0])
	}
	return utils.ToInt(v)
}

// statBase returns the base-tier (index 0) value of a tiered stat array.
func (t *Torikushii) statBase(stat map[string][]any, key string) int {
	arr, ok := stat[key]
	if !ok || len(arr) == 0 {
		return 0
	}
	return utils.ToInt(arr[0])
}
