package sites

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed views/*.gohtml
var viewFS embed.FS

var viewFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// viewSet holds one template per page, each parsed together with the base layout.
type viewSet map[string]*template.Template

var views = mustParseViews(
	"login",
	"logged_out",
	"index",
	"change_list",
	"change_form",
	"delete_confirmation",
	"delete_selected_confirmation",
)

func mustParseViews(names ...string) viewSet {
	out := make(viewSet, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New("base.gohtml").Funcs(viewFuncs).ParseFS(
			viewFS,
			"views/base.gohtml",
			"views/"+name+".gohtml",
		))
	}
	return out
}

func (v viewSet) ExecuteTemplate(w io.Writer, name string, data any) error {
	tmpl, ok := v[name]
	if !ok {
		return fmt.Errorf("view %s does not exist", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
