package services

import (
	"testing"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/testutils"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCategoryChoicesScopedAndCached(t *testing.T) {
	db := testutils.SetupTestDB(t)
	testutils.SetupTestCache(t)

	alice := testutils.CreateTestAccount(db)
	bob := testutils.CreateTestAccount(db)
	testutils.CreateTestCategory(db, alice.ID, "Go")
	testutils.CreateTestCategory(db, bob.ID, "Rust")

	all, err := ListCategoryChoices(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := ListCategoryChoices(lo.ToPtr(alice.ID))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Go", mine[0].Name)

	// Rows written behind the service are not seen until the cache is invalidated
	testutils.CreateTestCategory(db, alice.ID, "Python")
	cached, err := ListCategoryChoices(lo.ToPtr(alice.ID))
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	InvalidateCategoryChoices(alice.ID)
	fresh, err := ListCategoryChoices(lo.ToPtr(alice.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Python"}, lo.Map(fresh, func(item CategoryChoice, _ int) string { return item.Name }))
}

func TestSaveCategoryInvalidatesChoices(t *testing.T) {
	db := testutils.SetupTestDB(t)
	testutils.SetupTestCache(t)

	alice := testutils.CreateTestAccount(db)
	bob := testutils.CreateTestAccount(db)

	_, err := ListCategoryChoices(lo.ToPtr(alice.ID))
	require.NoError(t, err)

	category := &models.Category{Name: "Go", Status: models.StatusNormal, OwnerID: alice.ID}
	require.NoError(t, SaveCategory(database.C, category))

	choices, err := ListCategoryChoices(lo.ToPtr(alice.ID))
	require.NoError(t, err)
	assert.Len(t, choices, 1)

	_, err = ListCategoryChoices(lo.ToPtr(bob.ID))
	require.NoError(t, err)

	category.OwnerID = bob.ID
	require.NoError(t, SaveCategory(database.C, category))

	choices, err = ListCategoryChoices(lo.ToPtr(alice.ID))
	require.NoError(t, err)
	assert.Empty(t, choices)
	choices, err = ListCategoryChoices(lo.ToPtr(bob.ID))
	require.NoError(t, err)
	assert.Len(t, choices, 1)
}

func TestDeleteCategoryCascadesToPosts(t *testing.T) {
	db := testutils.SetupTestDB(t)
	owner := testutils.CreateTestAccount(db)
	category := testutils.CreateTestCategory(db, owner.ID, "Go")
	other := testutils.CreateTestCategory(db, owner.ID, "Rust")
	testutils.CreateTestPost(db, owner.ID, category.ID, "Generics")
	testutils.CreateTestPost(db, owner.ID, category.ID, "Channels")
	testutils.CreateTestPost(db, owner.ID, other.ID, "Borrowing")

	counts, err := CountCategoryPosts([]uint{category.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{category.ID: 2, other.ID: 1}, counts)

	require.NoError(t, DeleteCategory(database.C, *category))

	var remaining int64
	require.NoError(t, database.C.Model(&models.Post{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
	counts, err = CountCategoryPosts([]uint{category.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{other.ID: 1}, counts)

	err = database.C.First(&models.Category{}, category.ID).Error
	assert.Error(t, err)
}

func TestDeleteTagDetachesPosts(t *testing.T) {
	db := testutils.SetupTestDB(t)
	owner := testutils.CreateTestAccount(db)
	category := testutils.CreateTestCategory(db, owner.ID, "Go")
	tag := testutils.CreateTestTag(db, owner.ID, "tips")
	post := testutils.CreateTestPost(db, owner.ID, category.ID, "Generics")
	require.NoError(t, SavePost(database.C, post, []uint{tag.ID}))

	require.NoError(t, DeleteTag(database.C, *tag))

	var links int64
	require.NoError(t, database.C.Table("post_tags").Where("post_id = ?", post.ID).Count(&links).Error)
	assert.Zero(t, links)

	choices, err := ListTagChoices(lo.ToPtr(owner.ID))
	require.NoError(t, err)
	assert.Empty(t, choices)
}
