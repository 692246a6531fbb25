package sites

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTagAdmin() *ModelAdmin[models.Tag] {
	return &ModelAdmin[models.Tag]{
		AppLabel:    "blog",
		ModelName:   "tag",
		VerboseName: "tag",
		ListDisplay: []Column[models.Tag]{
			{Name: "name", Label: "Name", Value: func(r *Request, obj *models.Tag) any { return obj.Name }},
			{Name: "status", Label: "Status", Value: func(r *Request, obj *models.Tag) any { return obj.Status }},
		},
		SearchFields: []string{"name"},
		ListPerPage:  2,
		Ordering:     []string{"name ASC"},
		Form: []Field[models.Tag]{
			{
				Name:     "name",
				Label:    "Name",
				Widget:   TextInput,
				Required: true,
				Value:    func(obj *models.Tag) []string { return []string{obj.Name} },
				Set: func(obj *models.Tag, values []string) error {
					obj.Name = lo.FirstOr(values, "")
					return nil
				},
			},
		},
		GetQueryset: func(r *Request, tx *gorm.DB) *gorm.DB {
			return tx.Where("owner_id = ?", r.User.ID)
		},
		SaveModel: func(r *Request, tx *gorm.DB, obj *models.Tag, change bool) error {
			obj.SetOwner(r.User.ID)
			obj.Status = models.StatusNormal
			return services.SaveTag(tx, obj)
		},
	}
}

type engineFixture struct {
	db    *gorm.DB
	app   *fiber.App
	site  *Site
	user  *models.Account
	other *models.Account
}

func setupEngine(t *testing.T) *engineFixture {
	db := testutils.SetupTestDB(t)

	site := NewSite("admin", "/super_admin", IsActiveStaff)
	MustRegister(site, newTagAdmin())

	app := fiber.New()
	site.Mount(app)

	return &engineFixture{
		db:    db,
		app:   app,
		site:  site,
		user:  testutils.CreateTestAccount(db),
		other: testutils.CreateTestAccount(db),
	}
}

func (v *engineFixture) do(t *testing.T, account *models.Account, method, target string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if account != nil {
		token, err := services.NewSessionToken(*account)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: services.SessionCookieName(), Value: token})
	}

	resp, err := v.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	fx := setupEngine(t)

	resp, _ := fx.do(t, nil, fiber.MethodGet, "/super_admin/blog/tag/", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/super_admin/login/?next=%2Fsuper_admin%2Fblog%2Ftag%2F", resp.Header.Get(fiber.HeaderLocation))

	resp, body := fx.do(t, nil, fiber.MethodGet, "/super_admin/login/?next=/super_admin/blog/tag/", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="next" value="/super_admin/blog/tag/"`)
}

func TestLoginFlow(t *testing.T) {
	fx := setupEngine(t)

	resp, body := fx.do(t, nil, fiber.MethodPost, "/super_admin/login/", url.Values{
		"username": {fx.user.Name},
		"password": {"wrong"},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter the correct username and password")

	resp, _ = fx.do(t, nil, fiber.MethodPost, "/super_admin/login/", url.Values{
		"username": {fx.user.Name},
		"password": {testutils.TestPassword},
		"next":     {"/super_admin/blog/tag/"},
	})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/super_admin/blog/tag/", resp.Header.Get(fiber.HeaderLocation))

	cookie, ok := lo.Find(resp.Cookies(), func(item *http.Cookie) bool { return item.Name == services.SessionCookieName() })
	require.True(t, ok)
	id, err := services.ReadSessionToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, fx.user.ID, id)

	notStaff := testutils.CreateTestAccount(fx.db, testutils.WithoutStaff())
	resp, body = fx.do(t, nil, fiber.MethodPost, "/super_admin/login/", url.Values{
		"username": {notStaff.Name},
		"password": {testutils.TestPassword},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter the correct username and password")
}

func TestIndexAndLogout(t *testing.T) {
	fx := setupEngine(t)

	resp, body := fx.do(t, fx.user, fiber.MethodGet, "/super_admin/", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/super_admin/blog/tag/"`)
	assert.Contains(t, body, `href="/super_admin/blog/tag/add/"`)

	resp, body = fx.do(t, fx.user, fiber.MethodPost, "/super_admin/logout/", url.Values{})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Log in again")
	cookie, ok := lo.Find(resp.Cookies(), func(item *http.Cookie) bool { return item.Name == services.SessionCookieName() })
	require.True(t, ok)
	assert.Empty(t, cookie.Value)
}

func TestChangeListSearchAndPages(t *testing.T) {
	fx := setupEngine(t)
	for _, name := range []string{"go", "golang", "rust", "100%"} {
		testutils.CreateTestTag(fx.db, fx.user.ID, name)
	}
	testutils.CreateTestTag(fx.db, fx.other.ID, "gopher")

	resp, body := fx.do(t, fx.user, fiber.MethodGet, "/super_admin/blog/tag/?q=GO", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ">go<")
	assert.Contains(t, body, ">golang<")
	assert.NotContains(t, body, "rust")
	assert.NotContains(t, body, "gopher")

	_, body = fx.do(t, fx.user, fiber.MethodGet, "/super_admin/blog/tag/?q="+url.QueryEscape("100%"), nil)
	assert.Contains(t, body, "100%")
	assert.NotContains(t, body, ">golang<")

	_, body = fx.do(t, fx.user, fiber.MethodGet, "/super_admin/blog/tag/?p=1", nil)
	assert.Contains(t, body, ">rust<")
	assert.NotContains(t, body, ">go<")

	resp, _ = fx.do(t, fx.user, fiber.MethodGet, "/super_admin/blog/tag/?p=5", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAddChangeAndDelete(t *testing.T) {
	fx := setupEngine(t)

	resp, body := fx.do(t, fx.user, fiber.MethodPost, "/super_admin/blog/tag/add/", url.Values{"name": {""}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")

	resp, body = fx.do(t, fx.user, fiber.MethodPost, "/super_admin/blog/tag/add/", url.Values{"name": {"much-too-long-name"}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ensure this value has at most 10 characters.")

	resp, _ = fx.do(t, fx.user, fiber.MethodPost, "/super_admin/blog/tag/add/", url.Values{
		"name":      {"golang"},
		"_continue": {"1"},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	var tag models.Tag
	require.NoError(t, database.C.Where("name = ?", "golang").First(&tag).Error)
	assert.Equal(t, fx.user.ID, tag.OwnerID)
	assert.Equal(t, fx.site.MustReverse("blog_tag_change", tag.ID), resp.Header.Get(fiber.HeaderLocation))

	changeURL := fx.site.MustReverse("blog_tag_change", tag.ID)
	resp, body = fx.do(t, fx.user, fiber.MethodGet, changeURL, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="golang"`)

	resp, _ = fx.do(t, fx.user, fiber.MethodPost, changeURL, url.Values{"name": {"go"}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/super_admin/blog/tag/", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = fx.do(t, fx.other, fiber.MethodGet, changeURL, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	deleteURL := fx.site.MustReverse("blog_tag_delete", tag.ID)
	resp, body = fx.do(t, fx.user, fiber.MethodGet, deleteURL, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Are you sure")

	resp, _ = fx.do(t, fx.user, fiber.MethodPost, deleteURL, url.Values{"post": {"yes"}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Error(t, database.C.First(&models.Tag{}, tag.ID).Error)

	var entries []models.LogEntry
	require.NoError(t, database.C.Order("id ASC").Find(&entries).Error)
	require.Len(t, entries, 3)
	assert.Equal(t, []models.LogAction{
		models.LogActionAddition,
		models.LogActionChange,
		models.LogActionDeletion,
	}, lo.Map(entries, func(item models.LogEntry, _ int) models.LogAction { return item.ActionFlag }))
	assert.Equal(t, "Changed Name.", entries[1].ChangeSummary())
	assert.Equal(t, "blog.tag", entries[0].ContentType)
}

func TestDeleteSelectedAction(t *testing.T) {
	fx := setupEngine(t)
	mine := testutils.CreateTestTag(fx.db, fx.user.ID, "go")
	theirs := testutils.CreateTestTag(fx.db, fx.other.ID, "rust")

	form := url.Values{
		"action":           {"delete_selected"},
		"_selected_action": {strconv.FormatUint(uint64(mine.ID), 10), strconv.FormatUint(uint64(theirs.ID), 10)},
	}
	resp, body := fx.do(t, fx.user, fiber.MethodPost, "/super_admin/blog/tag/", form)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "tag: go")
	assert.NotContains(t, body, "rust")

	form.Set("post", "yes")
	resp, _ = fx.do(t, fx.user, fiber.MethodPost, "/super_admin/blog/tag/", form)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	assert.Error(t, database.C.First(&models.Tag{}, mine.ID).Error)
	assert.NoError(t, database.C.First(&models.Tag{}, theirs.ID).Error)
}
