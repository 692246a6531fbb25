package testutils

import (
	"fmt"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TestPassword = "correct-horse-battery"

// CreateTestAccount creates an active staff account with TestPassword.
func CreateTestAccount(db *gorm.DB, opts ...AccountOption) *models.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("Failed to hash test password: %v", err))
	}

	account := &models.Account{
		Name:     fmt.Sprintf("user_%s", uuid.NewString()[:8]),
		Password: string(hash),
		IsActive: true,
		IsStaff:  true,
	}
	for _, opt := range opts {
		opt(account)
	}

	if err := db.Create(account).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test account: %v", err))
	}
	return account
}

type AccountOption func(*models.Account)

func WithName(name string) AccountOption {
	return func(a *models.Account) {
		a.Name = name
	}
}

func WithSuperuser() AccountOption {
	return func(a *models.Account) {
		a.IsStaff = true
		a.IsSuperuser = true
	}
}

func WithoutStaff() AccountOption {
	return func(a *models.Account) {
		a.IsStaff = false
	}
}

func WithInactive() AccountOption {
	return func(a *models.Account) {
		a.IsActive = false
	}
}

func CreateTestCategory(db *gorm.DB, ownerID uint, name string) *models.Category {
	category := &models.Category{Name: name, Status: models.StatusNormal, OwnerID: ownerID}
	if err := db.Create(category).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test category: %v", err))
	}
	return category
}

func CreateTestTag(db *gorm.DB, ownerID uint, name string) *models.Tag {
	tag := &models.Tag{Name: name, Status: models.StatusNormal, OwnerID: ownerID}
	if err := db.Create(tag).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test tag: %v", err))
	}
	return tag
}

func CreateTestPost(db *gorm.DB, ownerID, categoryID uint, title string) *models.Post {
	post := &models.Post{
		Title:      title,
		Status:     models.StatusNormal,
		Content:    "# " + title,
		CategoryID: categoryID,
		OwnerID:    ownerID,
	}
	if err := db.Create(post).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test post: %v", err))
	}
	return post
}
