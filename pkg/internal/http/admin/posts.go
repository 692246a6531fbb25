package admin

import (
	"slices"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func categoryField(scoped scope) sites.Field[models.Post] {
	return sites.Field[models.Post]{
		Name:     "category_id",
		Label:    "分类",
		Widget:   sites.Select,
		Required: true,
		Choices: func(r *sites.Request) ([]sites.Choice, error) {
			return categoryFilter{scoped: scoped}.Choices(r)
		},
		Value: func(obj *models.Post) []string {
			if obj.CategoryID == 0 {
				return nil
			}
			return []string{formatID(obj.CategoryID)}
		},
		Set: func(obj *models.Post, values []string) error {
			ids, err := parseIDs(values)
			if err != nil {
				return err
			}
			obj.CategoryID = lo.FirstOr(ids, 0)
			obj.Category = models.Category{}
			return nil
		},
	}
}

func tagsField(scoped scope) sites.Field[models.Post] {
	return sites.Field[models.Post]{
		Name:   "tags",
		Label:  "标签",
		Widget: sites.SelectMultiple,
		Choices: func(r *sites.Request) ([]sites.Choice, error) {
			choices, err := services.ListTagChoices(scoped.owner(r))
			if err != nil {
				return nil, err
			}
			return lo.Map(choices, func(item services.TagChoice, _ int) sites.Choice {
				return sites.Choice{Value: formatID(item.ID), Label: item.Name}
			}), nil
		},
		Value: func(obj *models.Post) []string {
			ids := lo.Map(obj.Tags, func(item models.Tag, _ int) uint { return item.ID })
			slices.Sort(ids)
			return lo.Map(ids, func(item uint, _ int) string { return formatID(item) })
		},
		Set: func(obj *models.Post, values []string) error {
			ids, err := parseIDs(values)
			if err != nil {
				return err
			}
			obj.Tags = lo.Map(lo.Uniq(ids), func(item uint, _ int) models.Tag {
				return models.Tag{BaseModel: models.BaseModel{ID: item}}
			})
			return nil
		},
	}
}

func newPostAdmin(scoped scope) *sites.ModelAdmin[models.Post] {
	admin := &sites.ModelAdmin[models.Post]{
		AppLabel:          "blog",
		ModelName:         "post",
		VerboseName:       "文章",
		VerboseNamePlural: "文章",

		ListFilter:   []sites.Filter{categoryFilter{scoped: scoped}},
		SearchFields: []string{"posts.title", "categories.name"},
		SearchJoins:  []string{"LEFT JOIN categories ON categories.id = posts.category_id"},
		Preloads:     []string{"Category", "Tags", "Owner"},

		Fields: []sites.FieldRow{
			{"category_id", "title"},
			{"description"},
			{"status"},
			{"content"},
			{"tags"},
		},
		Form: []sites.Field[models.Post]{
			categoryField(scoped),
			textField("title", "标题", sites.TextInput, true, func(obj *models.Post) *string { return &obj.Title }),
			textField("description", "摘要", sites.Textarea, false, func(obj *models.Post) *string { return &obj.Description }),
			statusField(postStatusChoices, func(obj *models.Post) *models.RecordStatus { return &obj.Status }),
			func() sites.Field[models.Post] {
				field := textField("content", "正文", sites.Textarea, true, func(obj *models.Post) *string { return &obj.Content })
				field.HelpText = "正文必须为MarkDown格式"
				return field
			}(),
			tagsField(scoped),
		},

		ActionsOnTop:    true,
		ActionsOnBottom: false,
		SaveOnTop:       true,

		GetQueryset: scoped.queryset("posts.owner_id"),
		Defaults: func(r *sites.Request, obj *models.Post) {
			obj.Status = models.StatusNormal
		},
		SaveModel: func(r *sites.Request, tx *gorm.DB, obj *models.Post, change bool) error {
			obj.SetOwner(r.User.ID)
			tagIDs := lo.Map(obj.Tags, func(item models.Tag, _ int) uint { return item.ID })
			return services.SavePost(tx, obj, tagIDs)
		},
		DeleteModel: func(r *sites.Request, tx *gorm.DB, obj *models.Post) error {
			return services.DeletePost(tx, *obj)
		},
	}

	admin.ListDisplay = []sites.Column[models.Post]{
		{Name: "title", Label: "标题", Value: func(r *sites.Request, obj *models.Post) any { return obj.Title }},
		{Name: "category", Label: "分类", Value: func(r *sites.Request, obj *models.Post) any { return obj.Category }},
		{Name: "status", Label: "状态", Value: func(r *sites.Request, obj *models.Post) any {
			return statusLabel(postStatusChoices, obj.Status)
		}},
		{Name: "created_time", Label: "创建时间", Value: func(r *sites.Request, obj *models.Post) any { return obj.CreatedAt }},
		{Name: "owner", Label: "作者", Value: func(r *sites.Request, obj *models.Post) any { return obj.Owner }},
		{Name: "operator", Label: "操作", Value: func(r *sites.Request, obj *models.Post) any {
			return operatorLink(admin, obj)
		}},
	}

	return admin
}

// operatorLink points at the change form of the post on the site the admin is mounted on.
func operatorLink(admin *sites.ModelAdmin[models.Post], obj *models.Post) any {
	url, err := admin.ChangeURL(obj)
	if err != nil {
		return nil
	}
	return sites.FormatHTML(`<a href="%s">编辑</a>`, url)
}
