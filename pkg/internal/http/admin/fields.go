package admin

import (
	"fmt"
	"slices"
	"strconv"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
	"github.com/samber/lo"
)

var recordStatusChoices = []sites.Choice{
	{Value: strconv.Itoa(int(models.StatusNormal)), Label: "正常"},
	{Value: strconv.Itoa(int(models.StatusDeleted)), Label: "删除"},
}

var postStatusChoices = append(slices.Clone(recordStatusChoices), sites.Choice{
	Value: strconv.Itoa(int(models.StatusDraft)), Label: "草稿",
})

func statusLabel(choices []sites.Choice, status models.RecordStatus) string {
	value := strconv.Itoa(int(status))
	if choice, ok := lo.Find(choices, func(item sites.Choice) bool { return item.Value == value }); ok {
		return choice.Label
	}
	return value
}

func textField[T sites.Model](name, label string, widget sites.Widget, required bool, ptr func(obj *T) *string) sites.Field[T] {
	return sites.Field[T]{
		Name:     name,
		Label:    label,
		Widget:   widget,
		Required: required,
		Value: func(obj *T) []string {
			return []string{*ptr(obj)}
		},
		Set: func(obj *T, values []string) error {
			*ptr(obj) = lo.FirstOr(values, "")
			return nil
		},
	}
}

func boolField[T sites.Model](name, label string, ptr func(obj *T) *bool) sites.Field[T] {
	return sites.Field[T]{
		Name:   name,
		Label:  label,
		Widget: sites.Checkbox,
		Value: func(obj *T) []string {
			return lo.Ternary(*ptr(obj), []string{"on"}, nil)
		},
		Set: func(obj *T, values []string) error {
			*ptr(obj) = len(values) > 0
			return nil
		},
	}
}

func statusField[T sites.Model](choices []sites.Choice, ptr func(obj *T) *models.RecordStatus) sites.Field[T] {
	return sites.Field[T]{
		Name:     "status",
		Label:    "状态",
		Widget:   sites.Select,
		Required: true,
		Choices: func(r *sites.Request) ([]sites.Choice, error) {
			return choices, nil
		},
		Value: func(obj *T) []string {
			return []string{strconv.Itoa(int(*ptr(obj)))}
		},
		Set: func(obj *T, values []string) error {
			status, err := strconv.ParseInt(lo.FirstOr(values, ""), 10, 8)
			if err != nil {
				return fmt.Errorf("enter a whole number")
			}
			*ptr(obj) = models.RecordStatus(status)
			return nil
		},
	}
}

func parseIDs(values []string) ([]uint, error) {
	out := make([]uint, 0, len(values))
	for _, value := range values {
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s is not a valid id", value)
		}
		out = append(out, uint(id))
	}
	return out, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
