package services

import (
	"context"
	"fmt"
	"time"

	localCache "git.solsynth.dev/hypernet/typeidea/pkg/internal/cache"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryChoice struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func getCategoryChoicesCacheKey(ownerID uint) string {
	return fmt.Sprintf("category-choices#%d", ownerID)
}

func queryCategoryChoices(tx *gorm.DB) ([]CategoryChoice, error) {
	var choices []CategoryChoice
	err := tx.Model(&models.Category{}).
		Select("id", "name").
		Order("name ASC").
		Find(&choices).Error
	return choices, err
}

// ListCategoryChoices returns the categories a post may be filed under.
// When an owner is given only their categories are returned, those lists are cached per owner.
func ListCategoryChoices(ownerID *uint) ([]CategoryChoice, error) {
	if ownerID == nil {
		return queryCategoryChoices(database.C)
	}

	if localCache.S == nil {
		return queryCategoryChoices(database.C.Where("owner_id = ?", *ownerID))
	}

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	key := getCategoryChoicesCacheKey(*ownerID)
	if val, err := marshal.Get(ctx, key, new([]CategoryChoice)); err == nil {
		if choices, ok := val.(*[]CategoryChoice); ok {
			return *choices, nil
		}
	}

	choices, err := queryCategoryChoices(database.C.Where("owner_id = ?", *ownerID))
	if err != nil {
		return choices, err
	}

	if err := marshal.Set(
		ctx,
		key,
		choices,
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{"category-choices", fmt.Sprintf("user#%d", *ownerID)}),
	); err != nil {
		log.Warn().Err(err).Msg("An error occurred when caching category choices...")
	}
	localCache.Sync()

	return choices, nil
}

func InvalidateCategoryChoices(ownerIDs ...uint) {
	if localCache.S == nil {
		return
	}

	cacheManager := cache.New[any](localCache.S)
	ctx := context.Background()
	for _, id := range ownerIDs {
		if err := cacheManager.Delete(ctx, getCategoryChoicesCacheKey(id)); err != nil {
			log.Debug().Err(err).Uint("uid", id).Msg("Category choices were not cached...")
		}
	}
}

type categoryPostCount struct {
	CategoryID uint
	Count      int64
}

// CountCategoryPosts counts the posts filed under each of the categories in one grouped query.
// Categories without posts are absent from the result.
func CountCategoryPosts(ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []categoryPostCount
	if err := database.C.Model(&models.Post{}).
		Select("category_id, COUNT(*) AS count").
		Where("category_id IN ?", ids).
		Group("category_id").
		Find(&rows).Error; err != nil {
		return out, fmt.Errorf("unable to count category posts: %v", err)
	}

	for _, row := range rows {
		out[row.CategoryID] = row.Count
	}
	return out, nil
}

// SaveCategory persists the category. Ownership transfers invalidate the cached choices of both owners.
func SaveCategory(tx *gorm.DB, category *models.Category) error {
	var previousOwner uint
	if category.ID > 0 {
		var prev models.Category
		if err := tx.Select("owner_id").Where("id = ?", category.ID).First(&prev).Error; err == nil {
			previousOwner = prev.OwnerID
		}
	}

	if err := tx.Omit(clause.Associations).Save(category).Error; err != nil {
		return err
	}

	InvalidateCategoryChoices(category.OwnerID)
	if previousOwner > 0 && previousOwner != category.OwnerID {
		InvalidateCategoryChoices(previousOwner)
	}
	return nil
}

// DeleteCategory removes the category together with the posts filed under it.
func DeleteCategory(tx *gorm.DB, category models.Category) error {
	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return err
	}

	InvalidateCategoryChoices(category.OwnerID)
	return nil
}

type TagChoice struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func ListTagChoices(ownerID *uint) ([]TagChoice, error) {
	tx := database.C.Model(&models.Tag{})
	if ownerID != nil {
		tx = tx.Where("owner_id = ?", *ownerID)
	}

	var choices []TagChoice
	err := tx.Select("id", "name").Order("name ASC").Find(&choices).Error
	return choices, err
}

func SaveTag(tx *gorm.DB, tag *models.Tag) error {
	return tx.Omit(clause.Associations).Save(tag).Error
}

// DeleteTag detaches the tag from every post before removing it.
func DeleteTag(tx *gorm.DB, tag models.Tag) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tag).Association("Posts").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}
