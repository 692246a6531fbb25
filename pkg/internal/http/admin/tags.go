package admin

import (
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
	"gorm.io/gorm"
)

func newTagAdmin(scoped scope) *sites.ModelAdmin[models.Tag] {
	return &sites.ModelAdmin[models.Tag]{
		AppLabel:          "blog",
		ModelName:         "tag",
		VerboseName:       "标签",
		VerboseNamePlural: "标签",

		ListDisplay: []sites.Column[models.Tag]{
			{Name: "name", Label: "名称", Value: func(r *sites.Request, obj *models.Tag) any { return obj.Name }},
			{Name: "status", Label: "状态", Value: func(r *sites.Request, obj *models.Tag) any {
				return statusLabel(recordStatusChoices, obj.Status)
			}},
			{Name: "owner", Label: "作者", Value: func(r *sites.Request, obj *models.Tag) any { return obj.Owner }},
			{Name: "created_time", Label: "创建时间", Value: func(r *sites.Request, obj *models.Tag) any { return obj.CreatedAt }},
		},
		Preloads: []string{"Owner"},

		Fields: []sites.FieldRow{{"name"}, {"status"}},
		Form: []sites.Field[models.Tag]{
			textField("name", "名称", sites.TextInput, true, func(obj *models.Tag) *string { return &obj.Name }),
			statusField(recordStatusChoices, func(obj *models.Tag) *models.RecordStatus { return &obj.Status }),
		},

		GetQueryset: scoped.queryset("tags.owner_id"),
		Defaults: func(r *sites.Request, obj *models.Tag) {
			obj.Status = models.StatusNormal
		},
		SaveModel: func(r *sites.Request, tx *gorm.DB, obj *models.Tag, change bool) error {
			obj.SetOwner(r.User.ID)
			return services.SaveTag(tx, obj)
		},
		DeleteModel: func(r *sites.Request, tx *gorm.DB, obj *models.Tag) error {
			return services.DeleteTag(tx, *obj)
		},
	}
}
