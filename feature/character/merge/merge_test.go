package merge_test

import (
	"testing"

	"archive-sync/feature/character/merge"
	"archive-sync/feature/character/models"
	"archive-sync/feature/character/source"

	"github.com/stretchr/testify/assert"
)

func TestGroup(t *testing.T) {
	bySource := map[string][]models.Character{
		source.SourceSchaleDB: {
			{ID: 10000, Name: "Aru"},
			{ID: 10015}, // unnamed, dropped
			{Name: "No ID"},
		},
		source.SourceTorikushii: {
			{ID: 10000, Name: "Aru", ClubName: "Kohshinjo68"},
		},
	}

	byID := merge.Group(bySource)
	assert.Len(t, byID, 1)
	assert.Len(t, byID[10000], 2)
	assert.Equal(t, "Kohshinjo68", byID[10000][source.SourceTorikushii].ClubName)
}

func TestMergeFillsMissingFields(t *testing.T) {
	byID := map[int]map[string]models.Character{
		10000: {
			source.SourceSchaleDB: {
				ID:         10000,
				Name:       "Aru",
				SchoolName: "Gehenna",
				Stats:      models.Stats{AttackPower1: 300},
				Source:     source.SourceSchaleDB,
			},
			source.SourceTorikushii: {
				ID:       10000,
				Name:     "Aru",
				ClubName: "Kohshinjo68",
				Profile:  models.Profile{Age: "16"},
				Stats:    models.Stats{AttackPower1: 9999, MaxHP1: 2200},
				Source:   source.SourceTorikushii,
			},
		},
	}

	out := merge.Merge(byID, []string{source.SourceSchaleDB, source.SourceTorikushii})
	assert.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, 10000, c.ID)
	assert.Equal(t, "Aru", c.Name)
	// Supplied only by the secondary source.
	assert.Equal(t, "Kohshinjo68", c.ClubName)
	assert.Equal(t, "16", c.Profile.Age)
	assert.Equal(t, 2200, c.Stats.MaxHP1)
	// Conflicting values: the primary always wins.
	assert.Equal(t, 300, c.Stats.AttackPower1)
	assert.Equal(t, source.SourceSchaleDB, c.Source)
}

func TestMergePrimaryAbsent(t *testing.T) {
	byID := map[int]map[string]models.Character{
		26000: {
			source.SourceTorikushii: {ID: 26000, Name: "Yuuka", SquadType: "Main"},
		},
	}

	out := merge.Merge(byID, []string{source.SourceSchaleDB, source.SourceTorikushii})
	assert.Len(t, out, 1)
	assert.Equal(t, "Yuuka", out[0].Name)
	assert.Equal(t, "Main", out[0].SquadType)
}

func TestMergeOrderedAndDeterministic(t *testing.T) {
	byID := map[int]map[string]models.Character{
		20000: {source.SourceSchaleDB: {ID: 20000, Name: "Hina"}},
		10000: {source.SourceSchaleDB: {ID: 10000, Name: "Aru"}},
		16000: {source.SourceSchaleDB: {ID: 16000, Name: "Hasumi"}},
	}
	priority := []string{source.SourceSchaleDB, source.SourceTorikushii}

	first := merge.Merge(byID, priority)
	assert.Equal(t, []int{first[0].ID, first[1].ID, first[2].ID}, []int{10000, 16000, 20000})

	// Same input, same output.
	second := merge.Merge(byID, priority)
	assert.Equal(t, first, second)
}

func TestMergeSkipsSourcesOutsidePriority(t *testing.T) {
	byID := map[int]map[string]models.Character{
		10000: {"unknown": {ID: 10000, Name: "Aru"}},
	}

	out := merge.Merge(byID, []string{source.SourceSchaleDB})
	assert.Empty(t, out)
}
