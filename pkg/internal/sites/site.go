package sites

import (
	"errors"
	"fmt"
	"strings"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrNoReverseMatch    = errors.New("no reverse match")
	ErrAlreadyRegistered = errors.New("model already registered")
)

// Permission decides whether an authenticated account may use a site.
type Permission func(account models.Account) bool

func IsActiveStaff(account models.Account) bool {
	return account.IsActive && account.IsStaff
}

func IsActiveSuperuser(account models.Account) bool {
	return account.IsActive && account.IsSuperuser
}

// Site is one mount point of the admin, every registered model gets its
// change list, add, change and delete views under the site prefix.
type Site struct {
	Name   string
	Prefix string
	Header string
	Title  string

	permission    Permission
	registrations []registration
	lookup        map[string]registration
}

func NewSite(name, prefix string, permission Permission) *Site {
	prefix = "/" + strings.Trim(prefix, "/")
	if permission == nil {
		permission = IsActiveStaff
	}

	return &Site{
		Name:       name,
		Prefix:     prefix,
		Header:     "Typeidea administration",
		Title:      "Typeidea site admin",
		permission: permission,
		lookup:     make(map[string]registration),
	}
}

// Register binds a model admin to the site.
func Register[T Model](site *Site, admin *ModelAdmin[T]) error {
	key := admin.key()
	if _, exists := site.lookup[key]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}

	admin.site = site
	admin.setDefaults()
	site.registrations = append(site.registrations, admin)
	site.lookup[key] = admin
	return nil
}

func MustRegister[T Model](site *Site, admin *ModelAdmin[T]) {
	if err := Register(site, admin); err != nil {
		panic(err)
	}
}

// Reverse resolves a named route of the site, the names are
// index, login, logout and <app>_<model>_<changelist|add|change|delete>.
func (v *Site) Reverse(name string, args ...any) (string, error) {
	switch name {
	case "index":
		return v.Prefix + "/", nil
	case "login":
		return v.Prefix + "/login/", nil
	case "logout":
		return v.Prefix + "/logout/", nil
	}

	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrNoReverseMatch, name)
	}
	reg, ok := v.lookup[name[:idx]]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoReverseMatch, name)
	}

	base := fmt.Sprintf("%s/%s/%s/", v.Prefix, reg.meta().AppLabel, reg.meta().ModelName)
	switch view := name[idx+1:]; view {
	case "changelist":
		if len(args) == 0 {
			return base, nil
		}
	case "add":
		if len(args) == 0 {
			return base + "add/", nil
		}
	case "change", "delete":
		if len(args) == 1 {
			return fmt.Sprintf("%s%v/%s/", base, args[0], view), nil
		}
	}

	return "", fmt.Errorf("%w: %s with %d arguments", ErrNoReverseMatch, name, len(args))
}

func (v *Site) MustReverse(name string, args ...any) string {
	url, err := v.Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return url
}

// Mount installs the site routes on the router.
func (v *Site) Mount(router fiber.Router) {
	site := router.Group(v.Prefix)
	{
		site.Get("/login", v.loginPage)
		site.Post("/login", v.login)
		site.All("/logout", v.view(v.logout))
		site.Get("/", v.view(v.index))

		site.Get("/:app/:model", v.view(v.dispatch(func(r *Request, reg registration) error {
			return reg.changelist(r)
		})))
		site.Post("/:app/:model", v.view(v.dispatch(func(r *Request, reg registration) error {
			return reg.action(r)
		})))
		site.All("/:app/:model/add", v.view(v.dispatch(func(r *Request, reg registration) error {
			return reg.add(r)
		})))
		site.All("/:app/:model/:id/change", v.view(v.dispatch(func(r *Request, reg registration) error {
			id, err := r.objectID()
			if err != nil {
				return err
			}
			return reg.change(r, id)
		})))
		site.All("/:app/:model/:id/delete", v.view(v.dispatch(func(r *Request, reg registration) error {
			id, err := r.objectID()
			if err != nil {
				return err
			}
			return reg.delete(r, id)
		})))
	}
}

func (v *Site) dispatch(fn func(r *Request, reg registration) error) func(r *Request) error {
	return func(r *Request) error {
		reg, ok := v.lookup[r.Params("app")+"_"+r.Params("model")]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "model is not registered on this site")
		}
		return fn(r, reg)
	}
}

type indexEntry struct {
	Name          string
	ChangelistURL string
	AddURL        string
}

type indexApp struct {
	Label  string
	Models []indexEntry
}

func (v *Site) index(r *Request) error {
	var apps []indexApp
	positions := make(map[string]int)
	for _, reg := range v.registrations {
		meta := reg.meta()
		entry := indexEntry{
			Name:          meta.VerboseNamePlural,
			ChangelistURL: v.MustReverse(meta.urlName("changelist")),
		}
		if !meta.ReadOnly {
			entry.AddURL = v.MustReverse(meta.urlName("add"))
		}

		pos, ok := positions[meta.AppLabel]
		if !ok {
			pos = len(apps)
			positions[meta.AppLabel] = pos
			apps = append(apps, indexApp{Label: meta.AppLabel})
		}
		apps[pos].Models = append(apps[pos].Models, entry)
	}

	return r.render("index", r.page("Site administration", fiber.Map{
		"Apps": apps,
	}))
}
