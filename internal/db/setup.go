package db

import "gorm.io/gorm"

// InitSchema creates the settings table. Domain packages migrate their own
// models in their Init functions.
func InitSchema(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Setting{})
}
