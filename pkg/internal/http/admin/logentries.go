package admin

import (
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
)

func newLogEntryAdmin(scoped scope) *sites.ModelAdmin[models.LogEntry] {
	return &sites.ModelAdmin[models.LogEntry]{
		AppLabel:          "admin",
		ModelName:         "logentry",
		VerboseName:       "log entry",
		VerboseNamePlural: "log entries",

		ListDisplay: []sites.Column[models.LogEntry]{
			{Name: "object_repr", Label: "object repr", Value: func(r *sites.Request, obj *models.LogEntry) any { return obj.ObjectRepr }},
			{Name: "object_id", Label: "object id", Value: func(r *sites.Request, obj *models.LogEntry) any { return obj.ObjectID }},
			{Name: "action_flag", Label: "action flag", Value: func(r *sites.Request, obj *models.LogEntry) any { return obj.ActionLabel() }},
			{Name: "user", Label: "user", Value: func(r *sites.Request, obj *models.LogEntry) any { return obj.User }},
			{Name: "change_message", Label: "change message", Value: func(r *sites.Request, obj *models.LogEntry) any { return obj.ChangeSummary() }},
		},
		SearchFields: []string{"object_repr"},
		Ordering:     []string{"action_time DESC", "id DESC"},
		Preloads:     []string{"User"},
		ReadOnly:     true,

		GetQueryset: scoped.queryset("user_id"),
	}
}
