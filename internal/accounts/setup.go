package accounts

import "gorm.io/gorm"

// Init creates or updates the synced-entity tables. Structural changes land
// here via AutoMigrate; data transforms between released versions are the
// migrate package's stages.
func Init(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&User{}, &Visit{})
}
