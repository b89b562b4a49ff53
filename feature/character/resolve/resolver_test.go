package resolve_test

import (
	"context"
	"testing"

	"archive-sync/feature/character/models"
	"archive-sync/feature/character/resolve"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func expectLookup(mock sqlmock.Sqlmock, table, value string, id int64) {
	mock.ExpectQuery(`SELECT id FROM "` + table + `" WHERE name = \$1`).
		WithArgs(value, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

func expectMiss(mock sqlmock.Sqlmock, table, value string) {
	mock.ExpectQuery(`SELECT id FROM "` + table + `" WHERE name = \$1`).
		WithArgs(value, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

func TestResolve(t *testing.T) {
	db, mock := setupMockDB(t)
	r := resolve.New(db, zap.NewNop())

	c := models.Character{
		ID:          10000,
		Name:        "Aru",
		SchoolName:  "Gehenna",
		ClubName:    "Kohshinjo68",
		RarityStars: 3,
		SquadType:   "Main",
		Position:    "Back",
		WeaponType:  "SR",
		ArmorType:   "Light",
		BulletType:  "Explosive",
		TacticRole:  "DamageDealer",
	}

	expectLookup(mock, "schools", "Gehenna", 3)
	expectLookup(mock, "clubs", "Kohshinjo68", 14)
	expectLookup(mock, "rarities", "3★", 3)
	expectLookup(mock, "squad_types", "Main", 1)
	expectLookup(mock, "positions", "Back", 2)
	expectLookup(mock, "weapon_types", "SR", 7)
	expectLookup(mock, "armor_types", "Light", 1)
	expectLookup(mock, "bullet_types", "Explosive", 2)
	expectLookup(mock, "tactic_roles", "DamageDealer", 1)

	rec, misses, err := r.Resolve(context.Background(), c)
	assert.NoError(t, err)
	assert.Empty(t, misses)
	assert.Equal(t, int64(10000), rec.ID)
	assert.Equal(t, "Aru", rec.Name)

	assert.Equal(t, int64(3), rec.Columns["school_id"])
	assert.Equal(t, int64(14), rec.Columns["club_id"])
	assert.Equal(t, int64(3), rec.Columns["rarity_id"])
	assert.Equal(t, int64(1), rec.Columns["tactic_role_id"])
	assert.Equal(t, "Aru", rec.Columns["name"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveMissOmitsColumn(t *testing.T) {
	db, mock := setupMockDB(t)
	r := resolve.New(db, zap.NewNop())

	c := models.Character{ID: 10000, Name: "Aru", SchoolName: "Atlantis"}

	expectMiss(mock, "schools", "Atlantis")

	rec, misses, err := r.Resolve(context.Background(), c)
	assert.NoError(t, err)

	// The record stays sync-ready; only the FK column is withheld.
	_, present := rec.Columns["school_id"]
	assert.False(t, present)

	assert.Len(t, misses, 1)
	assert.Equal(t, models.LookupMiss{
		CharacterID: 10000,
		Field:       "school_id",
		Table:       "schools",
		Value:       "Atlantis",
	}, misses[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveEmptyLabelSkipsLookup(t *testing.T) {
	db, mock := setupMockDB(t)
	r := resolve.New(db, zap.NewNop())

	// No labels at all: no queries may happen.
	rec, misses, err := r.Resolve(context.Background(), models.Character{ID: 10000, Name: "Aru"})
	assert.NoError(t, err)
	assert.Empty(t, misses)

	for _, col := range []string{"school_id", "club_id", "rarity_id"} {
		_, present := rec.Columns[col]
		assert.False(t, present, col)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAllMemoizesLookups(t *testing.T) {
	db, mock := setupMockDB(t)
	r := resolve.New(db, zap.NewNop())

	chars := []models.Character{
		{ID: 10000, Name: "Aru", SchoolName: "Gehenna"},
		{ID: 10015, Name: "Mutsuki", SchoolName: "Gehenna"},
		{ID: 10016, Name: "Kayoko", SchoolName: "Gehenna", ClubName: "Nowhere"},
	}

	// One round-trip per distinct (table, value), hits and misses alike.
	expectLookup(mock, "schools", "Gehenna", 3)
	expectMiss(mock, "clubs", "Nowhere")

	records, misses, err := r.ResolveAll(context.Background(), chars)
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Len(t, misses, 1)

	for _, rec := range records {
		assert.Equal(t, int64(3), rec.Columns["school_id"])
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRarityLabel(t *testing.T) {
	db, mock := setupMockDB(t)
	r := resolve.New(db, zap.NewNop())

	expectLookup(mock, "rarities", "2★", 2)

	rec, misses, err := r.Resolve(context.Background(), models.Character{ID: 13000, Name: "Serina", RarityStars: 2})
	assert.NoError(t, err)
	assert.Empty(t, misses)
	assert.Equal(t, int64(2), rec.Columns["rarity_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
