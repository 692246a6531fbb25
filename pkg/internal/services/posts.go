package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func FilterPostWithOwner(tx *gorm.DB, uid uint) *gorm.DB {
	return tx.Where("posts.owner_id = ?", uid)
}

func FilterPostWithCategory(tx *gorm.DB, id uint) *gorm.DB {
	return tx.Where("posts.category_id = ?", id)
}

// SavePost persists the post and makes its tag set exactly tagIDs.
// Passing nil tagIDs leaves the existing tags untouched.
func SavePost(tx *gorm.DB, item *models.Post, tagIDs []uint) error {
	start := time.Now()

	if viper.GetBool("posts.detect_language") {
		item.Language = DetectLanguage(item.Content)
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}

		var tags []models.Tag
		if len(tagIDs) > 0 {
			if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
				return err
			}
			if len(tags) != len(lo.Uniq(tagIDs)) {
				return fmt.Errorf("some tags were not found")
			}
		}
		item.Tags = tags

		if len(tags) == 0 {
			return tx.Model(item).Association("Tags").Clear()
		}
		return tx.Model(item).Association("Tags").Replace(tags)
	})
	if err != nil {
		return err
	}

	log.Debug().Uint("id", item.ID).Dur("elapsed", time.Since(start)).Msg("The post is saved.")
	return nil
}

func DeletePost(tx *gorm.DB, item models.Post) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&item).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}
