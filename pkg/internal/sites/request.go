package sites

import (
	"bytes"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// CSRFContextKey is where the csrf middleware leaves the token for the forms.
const CSRFContextKey = "csrf_token"

// Request is an authenticated request to one of the site views.
type Request struct {
	*fiber.Ctx

	User models.Account
	Site *Site
}

func (r *Request) objectID() (uint, error) {
	id, err := strconv.ParseUint(r.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "object not found")
	}
	return uint(id), nil
}

// postValues reads every value submitted for a form field.
func (r *Request) postValues(name string) []string {
	var out []string
	for _, raw := range r.Request().PostArgs().PeekMulti(name) {
		out = append(out, string(raw))
	}
	if len(out) == 0 {
		if form, err := r.MultipartForm(); err == nil {
			out = form.Value[name]
		}
	}
	return out
}

func (r *Request) postValue(name string) string {
	if values := r.postValues(name); len(values) > 0 {
		return values[0]
	}
	return ""
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}

func (r *Request) page(title string, data fiber.Map) fiber.Map {
	out := fiber.Map{
		"Title":     title,
		"Site":      r.Site,
		"User":      r.User,
		"IndexURL":  r.Site.MustReverse("index"),
		"LogoutURL": r.Site.MustReverse("logout"),
		"CSRFToken": csrfToken(r.Ctx),
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (r *Request) render(name string, data fiber.Map) error {
	return renderPage(r.Ctx, name, data)
}

func renderPage(c *fiber.Ctx, name string, data fiber.Map) error {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("An error occurred when rendering admin page...")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// view wraps a site view with the session check, anonymous and
// unauthorized requests are sent to the login page.
func (v *Site) view(fn func(r *Request) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, err := services.GetSessionAccount(c.Cookies(services.SessionCookieName()))
		if err != nil || !v.permission(account) {
			return c.Redirect(v.loginURL(c.OriginalURL()), fiber.StatusFound)
		}

		return fn(&Request{Ctx: c, User: account, Site: v})
	}
}

func (v *Site) loginURL(next string) string {
	return v.MustReverse("login") + "?" + url.Values{"next": {next}}.Encode()
}

// safeNext only lets the login redirect stay inside the site.
func (v *Site) safeNext(next string) string {
	if strings.HasPrefix(next, v.Prefix+"/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return v.MustReverse("index")
}

func (v *Site) loginPage(c *fiber.Ctx) error {
	next := v.safeNext(c.Query("next"))
	if account, err := services.GetSessionAccount(c.Cookies(services.SessionCookieName())); err == nil && v.permission(account) {
		return c.Redirect(next, fiber.StatusFound)
	}

	return v.renderLogin(c, next, "", "")
}

func (v *Site) renderLogin(c *fiber.Ctx, next, username, message string) error {
	return renderPage(c, "login", fiber.Map{
		"Title":     "Log in",
		"Site":      v,
		"Action":    v.MustReverse("login"),
		"Next":      next,
		"Username":  username,
		"Error":     message,
		"CSRFToken": csrfToken(c),
	})
}

func (v *Site) login(c *fiber.Ctx) error {
	var data struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
		Next     string `json:"next" form:"next"`
	}

	const failed = "Please enter the correct username and password for a staff account. Note that both fields may be case-sensitive."

	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	next := v.safeNext(data.Next)
	if err := exts.ValidateStruct(&data); err != nil {
		return v.renderLogin(c, next, data.Username, failed)
	}

	account, err := services.Authenticate(data.Username, data.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("An error occurred when authenticating account...")
		}
		return v.renderLogin(c, next, data.Username, failed)
	} else if !v.permission(account) {
		return v.renderLogin(c, next, data.Username, failed)
	}

	token, err := services.NewSessionToken(account)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName(),
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(services.SessionTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Uint("uid", account.ID).Str("site", v.Name).Msg("An account logged in.")
	return c.Redirect(next, fiber.StatusFound)
}

func (v *Site) logout(r *Request) error {
	r.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return r.render("logged_out", r.page("Logged out", fiber.Map{
		"LoginURL": r.Site.MustReverse("login"),
	}))
}
