package sites

import (
	"html/template"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatHTML(t *testing.T) {
	assert.Equal(t,
		template.HTML(`<a href="/admin/blog/post/1/change/">编辑</a>`),
		FormatHTML(`<a href="%s">编辑</a>`, "/admin/blog/post/1/change/"),
	)
	assert.Equal(t,
		template.HTML(`<b>&lt;script&gt;</b> <i>kept</i>`),
		FormatHTML(`<b>%s</b> %s`, "<script>", template.HTML("<i>kept</i>")),
	)
	assert.Equal(t,
		template.HTML(`<span>42 Tom &amp; Jerry</span>`),
		FormatHTML(`<span>%v %s</span>`, 42, models.Account{Name: "Tom & Jerry"}),
	)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, emptyValueDisplay, display(nil))
	assert.Equal(t, emptyValueDisplay, display(""))
	assert.Equal(t, emptyValueDisplay, display(time.Time{}))
	assert.Equal(t, emptyValueDisplay, display((*time.Time)(nil)))
	assert.Equal(t, emptyValueDisplay, display(models.Account{}))
	assert.Equal(t, "alice", display(models.Account{Name: "alice"}))
	assert.Equal(t, "12", display(int64(12)))
	assert.Equal(t, booleanIcon(true), display(true))

	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01 08:30", display(at))
	assert.Equal(t, "2024-05-01 08:30", display(&at))
}
