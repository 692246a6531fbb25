package services

import (
	"testing"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/testutils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	testutils.SetupTestDB(t)

	account, err := CreateAccount("alice", "alice@example.com", "s3cret", false, true)
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.True(t, account.IsActive)
	assert.True(t, account.IsStaff, "superusers are staff")
	assert.NotEqual(t, "s3cret", account.Password)

	_, err = CreateAccount("alice", "", "other", true, false)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	db := testutils.SetupTestDB(t)
	account := testutils.CreateTestAccount(db, testutils.WithName("bob"))
	testutils.CreateTestAccount(db, testutils.WithName("carol"), testutils.WithInactive())

	t.Run("valid credentials", func(t *testing.T) {
		got, err := Authenticate("bob", testutils.TestPassword)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)

		var stored models.Account
		require.NoError(t, database.C.First(&stored, account.ID).Error)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := Authenticate("bob", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := Authenticate("nobody", testutils.TestPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, err := Authenticate("carol", testutils.TestPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSessionToken(t *testing.T) {
	db := testutils.SetupTestDB(t)
	account := testutils.CreateTestAccount(db)

	token, err := NewSessionToken(*account)
	require.NoError(t, err)

	id, err := ReadSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, id)

	got, err := GetSessionAccount(token)
	require.NoError(t, err)
	assert.Equal(t, account.Name, got.Name)

	_, err = ReadSessionToken("")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = ReadSessionToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	viper.Set("security.secret", "another-secret")
	_, err = ReadSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	viper.Set("security.secret", testutils.TestSecret)

	require.NoError(t, database.C.Model(account).Update("is_active", false).Error)
	_, err = GetSessionAccount(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionSettings(t *testing.T) {
	viper.Set("security.cookie_name", "")
	assert.Equal(t, "typeidea_session", SessionCookieName())

	viper.Set("security.session_ttl", "1h")
	t.Cleanup(func() { viper.Set("security.session_ttl", "") })
	assert.Equal(t, "1h0m0s", SessionTTL().String())
}
