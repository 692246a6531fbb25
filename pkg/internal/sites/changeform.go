package sites

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgRequired      = "This field is required."
	msgInvalidChoice = "Select a valid choice. %s is not one of the available choices."
)

type boundChoice struct {
	Value    string
	Label    string
	Selected bool
}

type boundField struct {
	Name     string
	Key      string
	Label    string
	Widget   Widget
	Required bool
	HelpText string
	Values   []string
	Choices  []boundChoice
	Errors   []string
}

func (v *boundField) Value() string {
	return lo.FirstOr(v.Values, "")
}

func (v *boundField) Checked() bool {
	return len(v.Values) > 0
}

type formView struct {
	Rows   [][]*boundField
	Errors []string
	fields map[string]*boundField
}

func (v *formView) valid() bool {
	if len(v.Errors) > 0 {
		return false
	}
	for _, field := range v.fields {
		if len(field.Errors) > 0 {
			return false
		}
	}
	return true
}

// attachErrors places validation failures next to their fields.
// Failures of fields outside the form are reported on the form itself unless dropOrphans is set.
func (v *formView) attachErrors(err error, dropOrphans bool) {
	for key, messages := range exts.FieldErrors(err) {
		if field, ok := v.fields[key]; ok {
			if len(field.Errors) == 0 {
				field.Errors = messages
			}
		} else if !dropOrphans {
			for _, msg := range messages {
				if len(key) > 0 {
					msg = key + ": " + msg
				}
				v.Errors = append(v.Errors, msg)
			}
		}
	}
}

func normalizeValues(widget Widget, values []string) []string {
	switch widget {
	case Checkbox:
		if len(values) > 0 && len(values[0]) > 0 && values[0] != "off" && values[0] != "false" {
			return []string{"on"}
		}
		return nil
	case TextInput:
		return lo.Map(values, func(item string, _ int) string { return strings.TrimSpace(item) })
	default:
		return values
	}
}

func boundChoices(choices []Choice, selected []string) []boundChoice {
	return lo.Map(choices, func(item Choice, _ int) boundChoice {
		return boundChoice{
			Value:    item.Value,
			Label:    item.Label,
			Selected: lo.Contains(selected, item.Value),
		}
	})
}

// newBoundField prepares a field for display, when bind is set the
// submitted values are checked and written to obj.
func newBoundField[T Model](r *Request, field Field[T], name string, obj *T, bind bool) (*boundField, error) {
	out := &boundField{
		Name:     name,
		Key:      field.Name,
		Label:    field.Label,
		Widget:   field.Widget,
		Required: field.Required,
		HelpText: field.HelpText,
	}

	var choices []Choice
	if field.Choices != nil {
		var err error
		if choices, err = field.Choices(r); err != nil {
			return out, err
		}
	}

	if !bind {
		if field.Value != nil {
			out.Values = field.Value(obj)
		}
		out.Choices = boundChoices(choices, out.Values)
		return out, nil
	}

	out.Values = normalizeValues(field.Widget, r.postValues(name))
	out.Choices = boundChoices(choices, out.Values)

	submitted := lo.Filter(out.Values, func(item string, _ int) bool { return len(item) > 0 })
	if field.Required && len(submitted) == 0 && field.Widget != Checkbox {
		out.Errors = append(out.Errors, msgRequired)
		return out, nil
	}
	if field.Choices != nil {
		for _, value := range submitted {
			if !lo.ContainsBy(choices, func(item Choice) bool { return item.Value == value }) {
				out.Errors = append(out.Errors, fmt.Sprintf(msgInvalidChoice, value))
				return out, nil
			}
		}
	}
	if field.Set != nil {
		if err := field.Set(obj, submitted); err != nil {
			out.Errors = append(out.Errors, err.Error())
		}
	}

	return out, nil
}

func fieldByName[T Model](fields []Field[T], name string) (Field[T], bool) {
	return lo.Find(fields, func(item Field[T]) bool { return item.Name == name })
}

// snapshot captures the displayed values of the fields to tell what a submission changed.
func snapshot[T Model](fields []Field[T], obj *T) map[string][]string {
	out := make(map[string][]string, len(fields))
	for _, field := range fields {
		if field.Value != nil {
			out[field.Name] = field.Value(obj)
		}
	}
	return out
}

func changedLabels[T Model](fields []Field[T], before map[string][]string, obj *T) []string {
	var out []string
	for _, field := range fields {
		if field.Value == nil {
			continue
		}
		if !slices.Equal(before[field.Name], field.Value(obj)) {
			out = append(out, field.Label)
		}
	}
	return out
}

func (v *ModelAdmin[T]) layout() []FieldRow {
	if len(v.Fields) > 0 {
		return v.Fields
	}
	return lo.Map(v.Form, func(item Field[T], _ int) FieldRow { return FieldRow{item.Name} })
}

func (v *ModelAdmin[T]) formFields() []Field[T] {
	var out []Field[T]
	for _, row := range v.layout() {
		for _, name := range row {
			if field, ok := fieldByName(v.Form, name); ok {
				out = append(out, field)
			}
		}
	}
	return out
}

func (v *ModelAdmin[T]) buildForm(r *Request, obj *T, bind bool) (*formView, error) {
	form := &formView{fields: make(map[string]*boundField)}
	for _, row := range v.layout() {
		var line []*boundField
		for _, name := range row {
			field, ok := fieldByName(v.Form, name)
			if !ok {
				return nil, fmt.Errorf("unknown field %s in %s form", name, v.key())
			}
			bound, err := newBoundField(r, field, field.Name, obj, bind)
			if err != nil {
				return nil, err
			}
			form.fields[field.Name] = bound
			line = append(line, bound)
		}
		form.Rows = append(form.Rows, line)
	}
	return form, nil
}

func (v *ModelAdmin[T]) getObject(r *Request, id uint) (*T, error) {
	tx := v.queryset(r)
	for _, preload := range v.Preloads {
		tx = tx.Preload(preload)
	}

	obj := new(T)
	if err := tx.Where(clause.Eq{Column: idColumn(), Value: id}).First(obj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s with id %d does not exist", v.VerboseName, id))
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return obj, nil
}

func (v *ModelAdmin[T]) logAction(r *Request, tx *gorm.DB, obj *T, flag models.LogAction, messages ...models.ChangeMessage) error {
	return services.LogAction(tx, r.User, v.meta().contentType(), (*obj).GetID(), (*obj).String(), flag, messages...)
}

func (v *ModelAdmin[T]) add(r *Request) error {
	if v.ReadOnly {
		return fiber.NewError(fiber.StatusForbidden, "this model is read only")
	}

	obj := new(T)
	if v.Defaults != nil {
		v.Defaults(r, obj)
	}
	return v.changeform(r, obj, false)
}

func (v *ModelAdmin[T]) change(r *Request, id uint) error {
	if v.ReadOnly {
		return fiber.NewError(fiber.StatusForbidden, "this model is read only")
	}

	obj, err := v.getObject(r, id)
	if err != nil {
		return err
	}
	return v.changeform(r, obj, true)
}

func (v *ModelAdmin[T]) changeform(r *Request, obj *T, change bool) error {
	meta := v.meta()

	if r.Method() != fiber.MethodPost {
		form, err := v.buildForm(r, obj, false)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		formsets := make([]*formsetView, len(v.Inlines))
		for i, inline := range v.Inlines {
			if formsets[i], err = inline.formset(r, obj); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return v.renderChangeForm(r, obj, change, form, formsets)
	}

	fields := v.formFields()
	before := snapshot(fields, obj)

	form, err := v.buildForm(r, obj, true)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if form.valid() {
		form.attachErrors(exts.ValidateStruct(obj), false)
	}

	valid := form.valid()
	formsets := make([]*formsetView, len(v.Inlines))
	commits := make([]inlineCommit[T], len(v.Inlines))
	for i, inline := range v.Inlines {
		if formsets[i], commits[i], err = inline.bind(r, obj); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		valid = valid && formsets[i].valid()
	}

	if !valid {
		return v.renderChangeForm(r, obj, change, form, formsets)
	}

	// Inline rows and the log entry share the transaction of the object
	var saveErr error
	err = database.C.Transaction(func(tx *gorm.DB) error {
		if saveErr = v.saveModel(r, tx, obj, change); saveErr != nil {
			return saveErr
		}

		var messages []models.ChangeMessage
		if change {
			if changed := changedLabels(fields, before, obj); len(changed) > 0 {
				messages = append(messages, models.ChangeMessage{Changed: &models.ChangeDetail{Fields: changed}})
			}
		} else {
			messages = append(messages, models.ChangeMessage{Added: &models.ChangeDetail{}})
		}
		for _, commit := range commits {
			inlineMessages, err := commit(r, tx, obj)
			if err != nil {
				return fmt.Errorf("unable to save inline objects: %v", err)
			}
			messages = append(messages, inlineMessages...)
		}

		return v.logAction(r, tx, obj, lo.Ternary(change, models.LogActionChange, models.LogActionAddition), messages...)
	})
	if saveErr != nil {
		log.Error().Err(saveErr).Str("type", meta.contentType()).Msg("An error occurred when saving object from admin...")
		form.Errors = append(form.Errors, saveErr.Error())
		return v.renderChangeForm(r, obj, change, form, formsets)
	} else if err != nil {
		log.Error().Err(err).Str("type", meta.contentType()).Msg("An error occurred when saving object from admin...")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	id := (*obj).GetID()
	switch {
	case len(r.postValue("_continue")) > 0:
		return r.Redirect(v.site.MustReverse(meta.urlName("change"), id), fiber.StatusFound)
	case len(r.postValue("_addanother")) > 0:
		return r.Redirect(v.site.MustReverse(meta.urlName("add")), fiber.StatusFound)
	default:
		return r.Redirect(v.site.MustReverse(meta.urlName("changelist")), fiber.StatusFound)
	}
}

func (v *ModelAdmin[T]) renderChangeForm(r *Request, obj *T, change bool, form *formView, formsets []*formsetView) error {
	meta := v.meta()

	title := "Add " + meta.VerboseName
	action := v.site.MustReverse(meta.urlName("add"))
	var deleteURL, original string
	if change {
		id := (*obj).GetID()
		title = "Change " + meta.VerboseName
		action = v.site.MustReverse(meta.urlName("change"), id)
		deleteURL = v.site.MustReverse(meta.urlName("delete"), id)
		original = (*obj).String()
	}

	if r.Method() == fiber.MethodPost {
		r.Status(fiber.StatusOK)
	}

	return r.render("change_form", r.page(title, fiber.Map{
		"Meta":          meta,
		"Form":          form,
		"Formsets":      formsets,
		"Action":        action,
		"Change":        change,
		"Original":      original,
		"DeleteURL":     deleteURL,
		"ChangelistURL": v.site.MustReverse(meta.urlName("changelist")),
		"SaveOnTop":     v.SaveOnTop,
		"HasErrors":     !form.valid() || lo.SomeBy(formsets, func(item *formsetView) bool { return !item.valid() }),
	}))
}

func (v *ModelAdmin[T]) delete(r *Request, id uint) error {
	if v.ReadOnly {
		return fiber.NewError(fiber.StatusForbidden, "this model is read only")
	}

	meta := v.meta()
	obj, err := v.getObject(r, id)
	if err != nil {
		return err
	}

	if r.Method() != fiber.MethodPost {
		return r.render("delete_confirmation", r.page("Are you sure?", fiber.Map{
			"Meta":      meta,
			"Object":    (*obj).String(),
			"Action":    v.site.MustReverse(meta.urlName("delete"), id),
			"CancelURL": v.site.MustReverse(meta.urlName("change"), id),
		}))
	}

	if err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := v.deleteModel(r, tx, obj); err != nil {
			return err
		}
		return v.logAction(r, tx, obj, models.LogActionDeletion)
	}); err != nil {
		log.Error().Err(err).Str("type", meta.contentType()).Msg("An error occurred when deleting object from admin...")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return r.Redirect(v.site.MustReverse(meta.urlName("changelist")), fiber.StatusFound)
}
