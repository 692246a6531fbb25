package sites

import (
	"fmt"
	"html/template"
	"time"
)

const emptyValueDisplay = "-"

// FormatHTML works like fmt.Sprintf but escapes every argument that is not already template.HTML.
func FormatHTML(format string, args ...any) template.HTML {
	escaped := make([]any, len(args))
	for i, arg := range args {
		switch val := arg.(type) {
		case template.HTML:
			escaped[i] = string(val)
		case string:
			escaped[i] = template.HTMLEscapeString(val)
		case fmt.Stringer:
			escaped[i] = template.HTMLEscapeString(val.String())
		default:
			escaped[i] = template.HTMLEscapeString(fmt.Sprint(val))
		}
	}
	return template.HTML(fmt.Sprintf(format, escaped...))
}

func booleanIcon(val bool) template.HTML {
	if val {
		return `<span class="bool yes" title="True">&#10004;</span>`
	}
	return `<span class="bool no" title="False">&#10008;</span>`
}

// display turns a column value into what the change list prints.
func display(value any) any {
	switch val := value.(type) {
	case nil:
		return emptyValueDisplay
	case template.HTML:
		return val
	case bool:
		return booleanIcon(val)
	case time.Time:
		if val.IsZero() {
			return emptyValueDisplay
		}
		return val.Format("2006-01-02 15:04")
	case *time.Time:
		if val == nil {
			return emptyValueDisplay
		}
		return display(*val)
	case string:
		if len(val) == 0 {
			return emptyValueDisplay
		}
		return val
	case fmt.Stringer:
		return display(val.String())
	default:
		return fmt.Sprint(val)
	}
}
