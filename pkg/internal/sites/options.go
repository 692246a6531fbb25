package sites

import (
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Model is anything a site can list and edit.
type Model interface {
	GetID() uint
	String() string
}

type Widget string

const (
	TextInput      Widget = "text"
	Textarea       Widget = "textarea"
	Checkbox       Widget = "checkbox"
	Select         Widget = "select"
	SelectMultiple Widget = "select_multiple"
)

type Choice struct {
	Value string
	Label string
}

// Column is one entry of a change list.
// Value may return template.HTML to skip escaping, see FormatHTML.
type Column[T Model] struct {
	Name  string
	Label string
	Value func(r *Request, obj *T) any
}

// Field binds one form input to the model.
// Set receives the submitted values with the empty ones dropped.
type Field[T Model] struct {
	Name     string
	Label    string
	Widget   Widget
	Required bool
	HelpText string
	Choices  func(r *Request) ([]Choice, error)
	Value    func(obj *T) []string
	Set      func(obj *T, values []string) error
}

// FieldRow is a line of the change form, several fields may share it.
type FieldRow []string

// Filter narrows the change list from a query parameter.
type Filter interface {
	Title() string
	Param() string
	Choices(r *Request) ([]Choice, error)
	Apply(r *Request, tx *gorm.DB, value string) (*gorm.DB, error)
}

// ModelAdmin describes how a model is exposed on a site.
type ModelAdmin[T Model] struct {
	AppLabel          string
	ModelName         string
	VerboseName       string
	VerboseNamePlural string

	ListDisplay []Column[T]
	// ListDisplayLinks names the columns linking to the change form, the first column when empty.
	ListDisplayLinks []string
	ListFilter       []Filter
	SearchFields     []string
	SearchJoins      []string
	Ordering         []string
	Preloads         []string
	ListPerPage      int

	Fields  []FieldRow
	Form    []Field[T]
	Inlines []Inline[T]

	// With neither set the action bar goes on top.
	ActionsOnTop    bool
	ActionsOnBottom bool
	SaveOnTop       bool
	ReadOnly        bool

	GetQueryset func(r *Request, tx *gorm.DB) *gorm.DB
	// Annotate runs once per change list page, before the columns are rendered.
	Annotate func(r *Request, items []T) error
	// SaveModel and DeleteModel run inside the transaction of the request.
	SaveModel   func(r *Request, tx *gorm.DB, obj *T, change bool) error
	DeleteModel func(r *Request, tx *gorm.DB, obj *T) error
	Defaults    func(r *Request, obj *T)

	site *Site
}

type modelMeta struct {
	AppLabel          string
	ModelName         string
	VerboseName       string
	VerboseNamePlural string
	ReadOnly          bool
}

func (v modelMeta) urlName(view string) string {
	return v.AppLabel + "_" + v.ModelName + "_" + view
}

func (v modelMeta) contentType() string {
	return v.AppLabel + "." + v.ModelName
}

type registration interface {
	meta() modelMeta
	changelist(r *Request) error
	action(r *Request) error
	add(r *Request) error
	change(r *Request, id uint) error
	delete(r *Request, id uint) error
}

func (v *ModelAdmin[T]) key() string {
	return v.AppLabel + "_" + v.ModelName
}

func (v *ModelAdmin[T]) meta() modelMeta {
	return modelMeta{
		AppLabel:          v.AppLabel,
		ModelName:         v.ModelName,
		VerboseName:       v.VerboseName,
		VerboseNamePlural: v.VerboseNamePlural,
		ReadOnly:          v.ReadOnly,
	}
}

func (v *ModelAdmin[T]) setDefaults() {
	if len(v.VerboseName) == 0 {
		v.VerboseName = v.ModelName
	}
	if len(v.VerboseNamePlural) == 0 {
		v.VerboseNamePlural = v.VerboseName + "s"
	}
	if v.ListPerPage <= 0 {
		v.ListPerPage = 100
	}
	if !v.ActionsOnTop && !v.ActionsOnBottom {
		v.ActionsOnTop = true
	}
}

// ChangeURL is the change form address of obj on the admin's site.
func (v *ModelAdmin[T]) ChangeURL(obj *T) (string, error) {
	return v.site.Reverse(v.meta().urlName("change"), (*obj).GetID())
}

func (v *ModelAdmin[T]) queryset(r *Request) *gorm.DB {
	var zero T
	tx := database.C.Model(&zero)
	if v.GetQueryset != nil {
		tx = v.GetQueryset(r, tx)
	}
	return tx
}

func (v *ModelAdmin[T]) saveModel(r *Request, tx *gorm.DB, obj *T, change bool) error {
	if v.SaveModel != nil {
		return v.SaveModel(r, tx, obj, change)
	}
	return tx.Omit(clause.Associations).Save(obj).Error
}

func (v *ModelAdmin[T]) deleteModel(r *Request, tx *gorm.DB, obj *T) error {
	if v.DeleteModel != nil {
		return v.DeleteModel(r, tx, obj)
	}
	return tx.Delete(obj).Error
}

func idColumn() clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: "id"}
}
