package database

import (
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"gorm.io/gorm"
)

// AutoMaintainRange lists the owned records, the cleanup job purges them in this order.
var AutoMaintainRange = []any{
	&models.Post{},
	&models.Tag{},
	&models.Category{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			append([]any{&models.Account{}}, AutoMaintainRange...),
			&models.LogEntry{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
