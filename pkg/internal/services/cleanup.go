package services

import (
	"time"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultCleanupRetention = 7 * 24 * time.Hour

// DoAutoDatabaseCleanup purges soft deleted records past retention.
// Log entries are kept forever unless cleanup.log_retention is set.
func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-defaultCleanupRetention)
	if retention := viper.GetDuration("cleanup.retention"); retention > 0 {
		deadline = time.Now().Add(-retention)
	}

	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64

	// Join rows of purged posts go first, the foreign keys point at them
	var expired []uint
	if err := database.C.Unscoped().Model(&models.Post{}).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", deadline).
		Pluck("id", &expired).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when collecting expired posts...")
		return
	}
	if len(expired) > 0 {
		if err := database.C.Exec("DELETE FROM post_tags WHERE post_id IN ?", expired).Error; err != nil {
			log.Error().Err(err).Msg("An error occurred when cleaning up post tags...")
			return
		}
	}

	for _, model := range database.AutoMaintainRange {
		tx := database.C.Unscoped().Delete(model, "deleted_at IS NOT NULL AND deleted_at < ?", deadline)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running auto cleanup...")
			return
		}
		count += tx.RowsAffected
	}

	if retention := viper.GetDuration("cleanup.log_retention"); retention > 0 {
		tx := database.C.Delete(&models.LogEntry{}, "action_time < ?", time.Now().Add(-retention))
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when cleaning up log entries...")
			return
		}
		count += tx.RowsAffected
	}

	log.Info().Int64("count", count).Msg("Clean up entire database accomplished.")
}
