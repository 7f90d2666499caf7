package catalog

import "gorm.io/gorm"

// Init creates or updates the catalog tables. Catalog entities are
// local-only and rebuilt from the bundled dataset, so AutoMigrate is the
// whole story here; there is no versioned migration plan for them.
func Init(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&City{}, &Park{})
}
