package admin

import (
	"fmt"
	"strconv"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// categoryFilter narrows posts down to one category.
// On the owner scoped site it only offers the categories of the requester.
type categoryFilter struct {
	scoped scope
}

func (v categoryFilter) Title() string {
	return lo.Ternary(bool(v.scoped), "分类过滤器", "分类")
}

func (v categoryFilter) Param() string {
	return lo.Ternary(bool(v.scoped), "owner_category", "category__id__exact")
}

func (v categoryFilter) Choices(r *sites.Request) ([]sites.Choice, error) {
	choices, err := services.ListCategoryChoices(v.scoped.owner(r))
	if err != nil {
		return nil, err
	}
	return lo.Map(choices, func(item services.CategoryChoice, _ int) sites.Choice {
		return sites.Choice{Value: formatID(item.ID), Label: item.Name}
	}), nil
}

func (v categoryFilter) Apply(r *sites.Request, tx *gorm.DB, value string) (*gorm.DB, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return tx, fmt.Errorf("invalid category id: %v", value)
	}
	return services.FilterPostWithCategory(tx, uint(id)), nil
}
