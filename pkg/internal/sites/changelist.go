package sites

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	searchParam = "q"
	pageParam   = "p"

	actionDeleteSelected = "delete_selected"
)

type listCell struct {
	Value any
	Link  string
}

type listRow struct {
	ID    uint
	Cells []listCell
}

type filterChoiceView struct {
	Label    string
	URL      string
	Selected bool
}

type filterView struct {
	Title   string
	Choices []filterChoiceView
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

// queryURL rebuilds the change list query with key replaced, it always drops the page.
func queryURL(params map[string]string, key, value string) string {
	values := url.Values{}
	for k, v := range params {
		if k == pageParam || k == key {
			continue
		}
		values.Set(k, v)
	}
	if len(value) > 0 {
		values.Set(key, value)
	}
	if len(values) == 0 {
		return "?"
	}
	return "?" + values.Encode()
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// search requires every term of q to match at least one of the search fields.
func (v *ModelAdmin[T]) search(tx *gorm.DB, q string) *gorm.DB {
	terms := strings.Fields(q)
	if len(terms) == 0 || len(v.SearchFields) == 0 {
		return tx
	}

	for _, join := range v.SearchJoins {
		tx = tx.Joins(join)
	}
	for _, term := range terms {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		conditions := make([]string, len(v.SearchFields))
		args := make([]any, len(v.SearchFields))
		for i, field := range v.SearchFields {
			conditions[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, field)
			args[i] = pattern
		}
		tx = tx.Where("("+strings.Join(conditions, " OR ")+")", args...)
	}
	return tx
}

func (v *ModelAdmin[T]) order(tx *gorm.DB) *gorm.DB {
	if len(v.Ordering) == 0 {
		return tx.Order(clause.OrderByColumn{Column: idColumn(), Desc: true})
	}
	for _, item := range v.Ordering {
		tx = tx.Order(item)
	}
	return tx
}

func (v *ModelAdmin[T]) links() []string {
	if len(v.ListDisplayLinks) > 0 {
		return v.ListDisplayLinks
	}
	if len(v.ListDisplay) > 0 {
		return []string{v.ListDisplay[0].Name}
	}
	return nil
}

func (v *ModelAdmin[T]) changelist(r *Request) error {
	params := r.Queries()
	tx := v.queryset(r)

	var err error
	var filters []filterView
	for _, filter := range v.ListFilter {
		value := params[filter.Param()]
		if len(value) > 0 {
			if tx, err = filter.Apply(r, tx, value); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		choices, err := filter.Choices(r)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		view := filterView{Title: filter.Title()}
		view.Choices = append(view.Choices, filterChoiceView{
			Label:    "All",
			URL:      queryURL(params, filter.Param(), ""),
			Selected: len(value) == 0,
		})
		for _, choice := range choices {
			view.Choices = append(view.Choices, filterChoiceView{
				Label:    choice.Label,
				URL:      queryURL(params, filter.Param(), choice.Value),
				Selected: value == choice.Value,
			})
		}
		filters = append(filters, view)
	}

	q := strings.TrimSpace(params[searchParam])
	tx = v.search(tx, q)

	query := tx.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pages := int((total + int64(v.ListPerPage) - 1) / int64(v.ListPerPage))
	page, _ := strconv.Atoi(params[pageParam])
	if page < 0 || (page > 0 && page >= pages) {
		return fiber.NewError(fiber.StatusNotFound, "invalid page")
	}

	find := v.order(query)
	for _, preload := range v.Preloads {
		find = find.Preload(preload)
	}

	var items []T
	if err := find.Limit(v.ListPerPage).Offset(page * v.ListPerPage).Find(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if v.Annotate != nil {
		if err := v.Annotate(r, items); err != nil {
			log.Error().Err(err).Str("type", v.meta().contentType()).Msg("An error occurred when annotating change list...")
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	links := v.links()
	rows := make([]listRow, len(items))
	for i := range items {
		obj := &items[i]
		id := (*obj).GetID()

		var changeURL string
		if !v.ReadOnly {
			changeURL = v.site.MustReverse(v.meta().urlName("change"), id)
		}

		cells := make([]listCell, len(v.ListDisplay))
		for j, column := range v.ListDisplay {
			cells[j] = listCell{Value: display(column.Value(r, obj))}
			if len(changeURL) > 0 && lo.Contains(links, column.Name) {
				cells[j].Link = changeURL
			}
		}
		rows[i] = listRow{ID: id, Cells: cells}
	}

	var pageLinks []pageLink
	if pages > 1 {
		for i := 0; i < pages; i++ {
			pageLinks = append(pageLinks, pageLink{
				Number:  i + 1,
				URL:     queryURL(params, pageParam, lo.Ternary(i > 0, strconv.Itoa(i), "")),
				Current: i == page,
			})
		}
	}

	meta := v.meta()
	return r.render("change_list", r.page("Select "+meta.VerboseName+" to change", fiber.Map{
		"Meta":            meta,
		"Headers":         lo.Map(v.ListDisplay, func(item Column[T], _ int) string { return item.Label }),
		"Rows":            rows,
		"Total":           total,
		"Filters":         filters,
		"Query":           q,
		"Searchable":      len(v.SearchFields) > 0,
		"Pages":           pageLinks,
		"AddURL":          lo.Ternary(meta.ReadOnly, "", v.site.MustReverse(meta.urlName("add"))),
		"ActionURL":       v.site.MustReverse(meta.urlName("changelist")),
		"Actions":         !meta.ReadOnly && len(rows) > 0,
		"ActionsOnTop":    v.ActionsOnTop,
		"ActionsOnBottom": v.ActionsOnBottom,
	}))
}

// action runs a bulk action submitted from the change list.
func (v *ModelAdmin[T]) action(r *Request) error {
	if v.ReadOnly {
		return fiber.NewError(fiber.StatusForbidden, "this model is read only")
	}

	meta := v.meta()
	changelistURL := v.site.MustReverse(meta.urlName("changelist"))

	if r.postValue("action") != actionDeleteSelected {
		return r.Redirect(changelistURL, fiber.StatusFound)
	}

	var ids []any
	for _, raw := range r.postValues("_selected_action") {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	if len(ids) == 0 {
		return r.Redirect(changelistURL, fiber.StatusFound)
	}

	var items []T
	if err := v.queryset(r).
		Where(clause.IN{Column: idColumn(), Values: ids}).
		Find(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if len(items) == 0 {
		return r.Redirect(changelistURL, fiber.StatusFound)
	}

	if r.postValue("post") != "yes" {
		return r.render("delete_selected_confirmation", r.page("Are you sure?", fiber.Map{
			"Meta":      meta,
			"Objects":   lo.Map(items, func(item T, _ int) string { return item.String() }),
			"IDs":       lo.Map(items, func(item T, _ int) uint { return item.GetID() }),
			"ActionURL": changelistURL,
			"CancelURL": changelistURL,
		}))
	}

	if err := database.C.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			obj := &items[i]
			if err := v.deleteModel(r, tx, obj); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if err := v.logAction(r, tx, obj, models.LogActionDeletion); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		log.Error().Err(err).Str("type", meta.contentType()).Msg("An error occurred when deleting objects in batch from admin...")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	log.Info().
		Uint("uid", r.User.ID).
		Str("type", meta.contentType()).
		Int("count", len(items)).
		Msg("Deleted objects in batch from admin.")
	return r.Redirect(changelistURL, fiber.StatusFound)
}
