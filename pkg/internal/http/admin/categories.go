package admin

import (
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func newPostInline(scoped scope) *sites.InlineAdmin[models.Category, models.Post] {
	return &sites.InlineAdmin[models.Category, models.Post]{
		Prefix:            "post_set",
		VerboseName:       "文章",
		VerboseNamePlural: "文章",
		Fields: []sites.Field[models.Post]{
			textField("title", "标题", sites.TextInput, true, func(obj *models.Post) *string { return &obj.Title }),
			textField("description", "摘要", sites.Textarea, false, func(obj *models.Post) *string { return &obj.Description }),
		},
		Extra:     1,
		CanDelete: true,
		Children: func(r *sites.Request, parent *models.Category, tx *gorm.DB) *gorm.DB {
			tx = services.FilterPostWithCategory(tx, parent.ID)
			if scoped {
				tx = services.FilterPostWithOwner(tx, r.User.ID)
			}
			return tx
		},
		New: func(r *sites.Request, parent *models.Category) models.Post {
			return models.Post{Status: models.StatusNormal}
		},
		SetParent: func(parent *models.Category, obj *models.Post) {
			obj.CategoryID = parent.ID
			obj.Category = models.Category{}
		},
		SaveModel: func(r *sites.Request, tx *gorm.DB, parent *models.Category, obj *models.Post, change bool) error {
			obj.SetOwner(r.User.ID)
			return services.SavePost(tx, obj, nil)
		},
		DeleteModel: func(r *sites.Request, tx *gorm.DB, parent *models.Category, obj *models.Post) error {
			return services.DeletePost(tx, *obj)
		},
	}
}

func newCategoryAdmin(scoped scope) *sites.ModelAdmin[models.Category] {
	return &sites.ModelAdmin[models.Category]{
		AppLabel:          "blog",
		ModelName:         "category",
		VerboseName:       "分类",
		VerboseNamePlural: "分类",

		ListDisplay: []sites.Column[models.Category]{
			{Name: "name", Label: "名称", Value: func(r *sites.Request, obj *models.Category) any { return obj.Name }},
			{Name: "status", Label: "状态", Value: func(r *sites.Request, obj *models.Category) any {
				return statusLabel(recordStatusChoices, obj.Status)
			}},
			{Name: "is_nav", Label: "是否为导航", Value: func(r *sites.Request, obj *models.Category) any { return obj.IsNav }},
			{Name: "owner", Label: "作者", Value: func(r *sites.Request, obj *models.Category) any { return obj.Owner }},
			{Name: "created_time", Label: "创建时间", Value: func(r *sites.Request, obj *models.Category) any { return obj.CreatedAt }},
			{Name: "post_count", Label: "文章数量", Value: func(r *sites.Request, obj *models.Category) any {
				return obj.PostCount
			}},
		},
		Preloads: []string{"Owner"},
		Annotate: func(r *sites.Request, items []models.Category) error {
			counts, err := services.CountCategoryPosts(lo.Map(items, func(item models.Category, _ int) uint { return item.ID }))
			if err != nil {
				return err
			}
			for i := range items {
				items[i].PostCount = counts[items[i].ID]
			}
			return nil
		},

		Fields: []sites.FieldRow{{"name"}, {"status"}, {"is_nav"}},
		Form: []sites.Field[models.Category]{
			textField("name", "名称", sites.TextInput, true, func(obj *models.Category) *string { return &obj.Name }),
			statusField(recordStatusChoices, func(obj *models.Category) *models.RecordStatus { return &obj.Status }),
			boolField("is_nav", "是否为导航", func(obj *models.Category) *bool { return &obj.IsNav }),
		},
		Inlines: []sites.Inline[models.Category]{newPostInline(scoped)},

		GetQueryset: scoped.queryset("categories.owner_id"),
		Defaults: func(r *sites.Request, obj *models.Category) {
			obj.Status = models.StatusNormal
		},
		SaveModel: func(r *sites.Request, tx *gorm.DB, obj *models.Category, change bool) error {
			obj.SetOwner(r.User.ID)
			return services.SaveCategory(tx, obj)
		},
		DeleteModel: func(r *sites.Request, tx *gorm.DB, obj *models.Category) error {
			return services.DeleteCategory(tx, *obj)
		},
	}
}
