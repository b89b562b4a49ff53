package database

import (
	"fmt"

	"gorm.io/gorm"
)

// MissingColumns returns the subset of wanted columns that do not exist on the
// given table. The target store's schema may lag behind the source data, so
// callers use this to drop columns from an upsert payload instead of failing
// the whole write.
func MissingColumns(db *gorm.DB, table string, wanted []string) ([]string, error) {
	migrator := db.Migrator()

	if !migrator.HasTable(table) {
		return nil, fmt.Errorf("table %s does not exist", table)
	}

	types, err := migrator.ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect columns for table %s: %w", table, err)
	}

	existing := make(map[string]struct{}, len(types))
	for _, ct := range types {
		existing[ct.Name()] = struct{}{}
	}

	var missing []string
	for _, col := range wanted {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing, nil
}
