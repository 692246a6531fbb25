package sites

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxInlineForms = 1000

	msgManagementForm = "ManagementForm data is missing or has been tampered with."
	msgUnknownChild   = "Select a valid choice. That choice is not one of the available choices."
)

type inlineFormView struct {
	Prefix  string
	ID      uint
	Fields  []*boundField
	Errors  []string
	Deleted bool

	fields map[string]*boundField
}

func (v *inlineFormView) valid() bool {
	if len(v.Errors) > 0 {
		return false
	}
	return !lo.SomeBy(v.Fields, func(item *boundField) bool { return len(item.Errors) > 0 })
}

type formsetView struct {
	Prefix            string
	VerboseName       string
	VerboseNamePlural string
	Headers           []string
	CanDelete         bool
	Forms             []*inlineFormView
	TotalForms        int
	InitialForms      int
	Errors            []string
}

func (v *formsetView) valid() bool {
	if len(v.Errors) > 0 {
		return false
	}
	return lo.EveryBy(v.Forms, func(item *inlineFormView) bool { return item.valid() })
}

// inlineCommit writes a bound formset once the parent object is saved, within the same transaction.
type inlineCommit[P Model] func(r *Request, tx *gorm.DB, parent *P) ([]models.ChangeMessage, error)

// Inline is a set of related objects edited on the change form of their parent.
type Inline[P Model] interface {
	formset(r *Request, parent *P) (*formsetView, error)
	bind(r *Request, parent *P) (*formsetView, inlineCommit[P], error)
}

// InlineAdmin edits the children C of a parent P in a tabular formset.
// Children must scope the query to the children of the parent,
// submitted ids outside of it are rejected.
type InlineAdmin[P Model, C Model] struct {
	Prefix            string
	VerboseName       string
	VerboseNamePlural string

	Fields    []Field[C]
	Extra     int
	CanDelete bool

	Children    func(r *Request, parent *P, tx *gorm.DB) *gorm.DB
	New         func(r *Request, parent *P) C
	SetParent   func(parent *P, obj *C)
	SaveModel   func(r *Request, tx *gorm.DB, parent *P, obj *C, change bool) error
	DeleteModel func(r *Request, tx *gorm.DB, parent *P, obj *C) error
}

func (v *InlineAdmin[P, C]) formPrefix(i int) string {
	return fmt.Sprintf("%s-%d", v.Prefix, i)
}

func (v *InlineAdmin[P, C]) newChild(r *Request, parent *P) *C {
	obj := new(C)
	if v.New != nil {
		*obj = v.New(r, parent)
	}
	return obj
}

func (v *InlineAdmin[P, C]) view() *formsetView {
	return &formsetView{
		Prefix:            v.Prefix,
		VerboseName:       v.VerboseName,
		VerboseNamePlural: lo.Ternary(len(v.VerboseNamePlural) > 0, v.VerboseNamePlural, v.VerboseName+"s"),
		Headers:           lo.Map(v.Fields, func(item Field[C], _ int) string { return item.Label }),
		CanDelete:         v.CanDelete,
	}
}

func (v *InlineAdmin[P, C]) children(r *Request, parent *P) *gorm.DB {
	var zero C
	return v.Children(r, parent, database.C.Model(&zero))
}

func (v *InlineAdmin[P, C]) existing(r *Request, parent *P) ([]C, error) {
	if (*parent).GetID() == 0 {
		return nil, nil
	}

	var out []C
	err := v.children(r, parent).
		Order(clause.OrderByColumn{Column: idColumn()}).
		Find(&out).Error
	return out, err
}

func (v *InlineAdmin[P, C]) lookup(r *Request, parent *P, id uint) (*C, error) {
	if (*parent).GetID() == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	obj := new(C)
	err := v.children(r, parent).
		Where(clause.Eq{Column: idColumn(), Value: id}).
		First(obj).Error
	return obj, err
}

func (v *InlineAdmin[P, C]) unboundForm(r *Request, prefix string, obj *C) (*inlineFormView, error) {
	form := &inlineFormView{Prefix: prefix, ID: (*obj).GetID(), fields: make(map[string]*boundField)}
	for _, field := range v.Fields {
		bound, err := newBoundField(r, field, prefix+"-"+field.Name, obj, false)
		if err != nil {
			return nil, err
		}
		form.Fields = append(form.Fields, bound)
		form.fields[field.Name] = bound
	}
	return form, nil
}

func (v *InlineAdmin[P, C]) formset(r *Request, parent *P) (*formsetView, error) {
	out := v.view()

	items, err := v.existing(r, parent)
	if err != nil {
		return nil, err
	}
	for i := range items {
		form, err := v.unboundForm(r, v.formPrefix(i), &items[i])
		if err != nil {
			return nil, err
		}
		out.Forms = append(out.Forms, form)
	}
	for i := 0; i < v.Extra; i++ {
		form, err := v.unboundForm(r, v.formPrefix(len(items)+i), v.newChild(r, parent))
		if err != nil {
			return nil, err
		}
		out.Forms = append(out.Forms, form)
	}

	out.InitialForms = len(items)
	out.TotalForms = len(out.Forms)
	return out, nil
}

// untouched reports whether an extra form was submitted with its initial values.
func (v *InlineAdmin[P, C]) untouched(r *Request, prefix string, initial *C) bool {
	for _, field := range v.Fields {
		submitted := normalizeValues(field.Widget, r.postValues(prefix+"-"+field.Name))
		submitted = lo.Filter(submitted, func(item string, _ int) bool { return len(item) > 0 })
		var expected []string
		if field.Value != nil {
			expected = lo.Filter(field.Value(initial), func(item string, _ int) bool { return len(item) > 0 })
		}
		if !slices.Equal(submitted, expected) {
			return false
		}
	}
	return true
}

type inlinePending[C Model] struct {
	obj     *C
	change  bool
	deleted bool
	changed []string
}

func (v *InlineAdmin[P, C]) bind(r *Request, parent *P) (*formsetView, inlineCommit[P], error) {
	out := v.view()

	total, err := strconv.Atoi(r.postValue(v.Prefix + "-TOTAL_FORMS"))
	if err != nil || total < 0 || total > maxInlineForms {
		out.Errors = append(out.Errors, msgManagementForm)
		return out, nil, nil
	}
	out.TotalForms = total

	var pending []inlinePending[C]
	for i := 0; i < total; i++ {
		prefix := v.formPrefix(i)
		form := &inlineFormView{Prefix: prefix, fields: make(map[string]*boundField)}

		var obj *C
		change := false
		if raw := r.postValue(prefix + "-id"); len(raw) > 0 {
			id, perr := strconv.ParseUint(raw, 10, 64)
			if perr == nil {
				obj, err = v.lookup(r, parent, uint(id))
			}
			if perr != nil || errors.Is(err, gorm.ErrRecordNotFound) {
				form.Errors = append(form.Errors, msgUnknownChild)
				out.Forms = append(out.Forms, form)
				continue
			} else if err != nil {
				return nil, nil, err
			}
			form.ID = uint(id)
			change = true
			out.InitialForms++
		} else {
			obj = v.newChild(r, parent)
			if v.untouched(r, prefix, obj) {
				unbound, err := v.unboundForm(r, prefix, obj)
				if err != nil {
					return nil, nil, err
				}
				out.Forms = append(out.Forms, unbound)
				continue
			}
		}

		before := snapshot(v.Fields, obj)
		for _, field := range v.Fields {
			bound, err := newBoundField(r, field, prefix+"-"+field.Name, obj, true)
			if err != nil {
				return nil, nil, err
			}
			form.Fields = append(form.Fields, bound)
			form.fields[field.Name] = bound
		}
		out.Forms = append(out.Forms, form)

		if v.CanDelete && change && len(normalizeValues(Checkbox, r.postValues(prefix+"-DELETE"))) > 0 {
			form.Deleted = true
			for _, field := range form.Fields {
				field.Errors = nil
			}
			pending = append(pending, inlinePending[C]{obj: obj, change: true, deleted: true})
			continue
		}

		if form.valid() {
			check := &formView{fields: form.fields}
			check.attachErrors(exts.ValidateStruct(obj), true)
			form.Errors = append(form.Errors, check.Errors...)
		}

		changed := changedLabels(v.Fields, before, obj)
		if change && len(changed) == 0 {
			continue
		}
		pending = append(pending, inlinePending[C]{obj: obj, change: change, changed: changed})
	}

	commit := func(r *Request, tx *gorm.DB, parent *P) ([]models.ChangeMessage, error) {
		var messages []models.ChangeMessage
		for _, item := range pending {
			if item.deleted {
				if err := v.deleteModel(r, tx, parent, item.obj); err != nil {
					return messages, err
				}
				messages = append(messages, models.ChangeMessage{Deleted: &models.ChangeDetail{
					Name:   v.VerboseName,
					Object: (*item.obj).String(),
				}})
				continue
			}

			if v.SetParent != nil {
				v.SetParent(parent, item.obj)
			}
			if err := v.saveModel(r, tx, parent, item.obj, item.change); err != nil {
				return messages, err
			}
			detail := &models.ChangeDetail{Name: v.VerboseName, Object: (*item.obj).String()}
			if item.change {
				detail.Fields = item.changed
				messages = append(messages, models.ChangeMessage{Changed: detail})
			} else {
				messages = append(messages, models.ChangeMessage{Added: detail})
			}
		}
		return messages, nil
	}

	return out, commit, nil
}

func (v *InlineAdmin[P, C]) saveModel(r *Request, tx *gorm.DB, parent *P, obj *C, change bool) error {
	if v.SaveModel != nil {
		return v.SaveModel(r, tx, parent, obj, change)
	}
	return tx.Omit(clause.Associations).Save(obj).Error
}

func (v *InlineAdmin[P, C]) deleteModel(r *Request, tx *gorm.DB, parent *P, obj *C) error {
	if v.DeleteModel != nil {
		return v.DeleteModel(r, tx, parent, obj)
	}
	return tx.Delete(obj).Error
}
