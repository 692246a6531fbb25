package admin

import (
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/sites"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultSiteName = "admin"
	CustomSiteName  = "cus_admin"
)

// scope tells whether a registration only exposes the records of the requester.
type scope bool

const (
	unscoped    scope = false
	ownerScoped scope = true
)

func (v scope) queryset(column string) func(r *sites.Request, tx *gorm.DB) *gorm.DB {
	if !v {
		return nil
	}
	return func(r *sites.Request, tx *gorm.DB) *gorm.DB {
		return tx.Where(column+" = ?", r.User.ID)
	}
}

func (v scope) owner(r *sites.Request) *uint {
	if !v {
		return nil
	}
	id := r.User.ID
	return &id
}

// NewSites builds the default site for superusers and the owner scoped custom site.
func NewSites() (*sites.Site, *sites.Site) {
	site := sites.NewSite(DefaultSiteName, "/super_admin", sites.IsActiveSuperuser)
	registerBlog(site, unscoped)

	custom := sites.NewSite(CustomSiteName, "/admin", sites.IsActiveStaff)
	custom.Header = "Typeidea"
	custom.Title = "Typeidea management"
	registerBlog(custom, ownerScoped)

	return site, custom
}

func registerBlog(site *sites.Site, scoped scope) {
	sites.MustRegister(site, newCategoryAdmin(scoped))
	sites.MustRegister(site, newTagAdmin(scoped))
	sites.MustRegister(site, newPostAdmin(scoped))
	sites.MustRegister(site, newLogEntryAdmin(scoped))
}

func MapControllers(app *fiber.App) {
	site, custom := NewSites()
	site.Mount(app)
	custom.Mount(app)
}
