package services

import (
	"strings"
	"testing"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAction(t *testing.T) {
	db := testutils.SetupTestDB(t)
	user := testutils.CreateTestAccount(db)

	require.NoError(t, LogAction(database.C, *user, "blog.post", 7, strings.Repeat("文", 250), models.LogActionChange,
		models.ChangeMessage{Changed: &models.ChangeDetail{Fields: []string{"标题"}}},
	))
	require.NoError(t, LogAction(database.C, *user, "blog.post", 7, "Generics", models.LogActionDeletion,
		models.ChangeMessage{Added: &models.ChangeDetail{}},
	))

	var entries []models.LogEntry
	require.NoError(t, database.C.Order("id ASC").Find(&entries).Error)
	require.Len(t, entries, 2)

	assert.Equal(t, "7", entries[0].ObjectID)
	assert.Equal(t, "blog.post", entries[0].ContentType)
	assert.Len(t, []rune(entries[0].ObjectRepr), 200)
	assert.Equal(t, "Changed 标题.", entries[0].ChangeSummary())
	assert.False(t, entries[0].ActionTime.IsZero())

	assert.Equal(t, models.LogActionDeletion, entries[1].ActionFlag)
	assert.Empty(t, entries[1].ChangeSummary())
}
