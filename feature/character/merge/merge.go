// Package merge reconciles per-source canonical records into one record per
// character id.
//
// The policy is presence-based, not value-based: the primary source (first in
// priority order) supplies the base record, and each empty field falls back
// to the first non-empty value from lower-priority sources. When two sources
// carry different non-empty values for the same field, the primary wins
// unconditionally. That is a deliberate simplicity choice, not a data-quality
// judgment: arbitrating conflicting values would need per-field heuristics
// that none of the upstream dumps justify.
//
// Merge is pure and deterministic for a fixed priority order; running it
// twice on the same input yields identical output.
package merge

import (
	"sort"

	"archive-sync/feature/character/models"
)

// Merge reconciles records grouped by id and source name into a single slice
// of characters ordered by id. Sources that contributed no record for an id
// simply drop out of that id's fallback chain.
func Merge(byID map[int]map[string]models.Character, priority []string) []models.Character {
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]models.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := mergeOne(byID[id], priority); ok {
			out = append(out, c)
		}
	}
	return out
}

// Group indexes per-source record slices by character id, keeping only valid
// records. The outer map key is the id, the inner key the source name.
func Group(bySource map[string][]models.Character) map[int]map[string]models.Character {
	byID := make(map[int]map[string]models.Character)
	for name, records := range bySource {
		for _, c := range records {
			if !c.Valid() {
				continue
			}
			if byID[c.ID] == nil {
				byID[c.ID] = make(map[string]models.Character)
			}
			byID[c.ID][name] = c
		}
	}
	return byID
}

func mergeOne(perSource map[string]models.Character, priority []string) (models.Character, bool) {
	var base models.Character
	found := false

	for _, name := range priority {
		c, ok := perSource[name]
		if !ok {
			continue
		}
		if !found {
			base = c
			found = true
			continue
		}
		base = fill(base, c)
	}

	return base, found
}

// fill returns base with every empty field replaced by other's value.
// Non-empty fields in base are never touched.
func fill(base, other models.Character) models.Character {
	base.Name = fillString(base.Name, other.Name)
	base.DevName = fillString(base.DevName, other.DevName)
	base.CharacterVoice = fillString(base.CharacterVoice, other.CharacterVoice)
	base.Illustrator = fillString(base.Illustrator, other.Illustrator)
	base.Designer = fillString(base.Designer, other.Designer)
	base.CollectionBG = fillString(base.CollectionBG, other.CollectionBG)
	base.SchoolYear = fillString(base.SchoolYear, other.SchoolYear)
	if !base.IsLimited {
		base.IsLimited = other.IsLimited
	}

	base.SchoolName = fillString(base.SchoolName, other.SchoolName)
	base.ClubName = fillString(base.ClubName, other.ClubName)
	if base.RarityStars == 0 {
		base.RarityStars = other.RarityStars
	}
	base.SquadType = fillString(base.SquadType, other.SquadType)
	base.Position = fillString(base.Position, other.Position)
	base.WeaponType = fillString(base.WeaponType, other.WeaponType)
	base.ArmorType = fillString(base.ArmorType, other.ArmorType)
	base.BulletType = fillString(base.BulletType, other.BulletType)
	base.TacticRole = fillString(base.TacticRole, other.TacticRole)

	base.Profile = fillProfile(base.Profile, other.Profile)
	base.Stats = fillStats(base.Stats, other.Stats)
	base.Terrain = fillTerrain(base.Terrain, other.Terrain)
	base.Weapon = fillWeapon(base.Weapon, other.Weapon)

	if len(base.Skills) == 0 {
		base.Skills = other.Skills
	}
	if len(base.Equipment) == 0 {
		base.Equipment = other.Equipment
	}
	if len(base.Images) == 0 {
		base.Images = other.Images
	}

	return base
}

func fillString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func fillInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func fillProfile(a, b models.Profile) models.Profile {
	a.Age = fillString(a.Age, b.Age)
	a.Birthday = fillString(a.Birthday, b.Birthday)
	a.Height = fillString(a.Height, b.Height)
	a.Hobby = fillString(a.Hobby, b.Hobby)
	a.Designer = fillString(a.Designer, b.Designer)
	a.Illustrator = fillString(a.Illustrator, b.Illustrator)
	a.CV = fillString(a.CV, b.CV)
	a.SSRQuote = fillString(a.SSRQuote, b.SSRQuote)
	return a
}

func fillStats(a, b models.Stats) models.Stats {
	a.AttackPower1 = fillInt(a.AttackPower1, b.AttackPower1)
	a.AttackPower100 = fillInt(a.AttackPower100, b.AttackPower100)
	a.MaxHP1 = fillInt(a.MaxHP1, b.MaxHP1)
	a.MaxHP100 = fillInt(a.MaxHP100, b.MaxHP100)
	a.DefensePower1 = fillInt(a.DefensePower1, b.DefensePower1)
	a.DefensePower100 = fillInt(a.DefensePower100, b.DefensePower100)
	a.HealPower1 = fillInt(a.HealPower1, b.HealPower1)
	a.HealPower100 = fillInt(a.HealPower100, b.HealPower100)
	a.StabilityPoint = fillInt(a.StabilityPoint, b.StabilityPoint)
	a.DodgePoint = fillInt(a.DodgePoint, b.DodgePoint)
	a.AccuracyPoint = fillInt(a.AccuracyPoint, b.AccuracyPoint)
	a.CriticalPoint = fillInt(a.CriticalPoint, b.CriticalPoint)
	a.CriticalDamage = fillInt(a.CriticalDamage, b.CriticalDamage)
	a.Range = fillInt(a.Range, b.Range)
	a.AmmoCount = fillInt(a.AmmoCount, b.AmmoCount)
	a.AmmoCost = fillInt(a.AmmoCost, b.AmmoCost)
	return a
}

func fillTerrain(a, b models.Terrain) models.Terrain {
	a.Street = fillString(a.Street, b.Street)
	a.Outdoor = fillString(a.Outdoor, b.Outdoor)
	a.Indoor = fillString(a.Indoor, b.Indoor)
	return a
}

func fillWeapon(a, b models.Weapon) models.Weapon {
	a.Name = fillString(a.Name, b.Name)
	a.Desc = fillString(a.Desc, b.Desc)
	a.Image = fillString(a.Image, b.Image)
	a.AttackPower1 = fillInt(a.AttackPower1, b.AttackPower1)
	a.MaxHP1 = fillInt(a.MaxHP1, b.MaxHP1)
	a.HealPower1 = fillInt(a.HealPower1, b.HealPower1)
	a.PassiveSkill = fillString(a.PassiveSkill, b.PassiveSkill)
	a.StatLevelUpType = fillString(a.StatLevelUpType, b.StatLevelUpType)
	return a
}
