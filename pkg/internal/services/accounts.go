package services

import (
	"errors"
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

func GetAccountWithID(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		return account, fmt.Errorf("unable to get account by id: %v", err)
	}
	return account, nil
}

func CreateAccount(name, email, password string, isStaff, isSuperuser bool) (models.Account, error) {
	var count int64
	if err := database.C.Model(&models.Account{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return models.Account{}, fmt.Errorf("unable to count existing account: %v", err)
	} else if count > 0 {
		return models.Account{}, fmt.Errorf("account %s already exists", name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("unable to hash password: %v", err)
	}

	account := models.Account{
		Name:        name,
		Nick:        name,
		Email:       email,
		Password:    string(hash),
		IsActive:    true,
		IsStaff:     isStaff || isSuperuser,
		IsSuperuser: isSuperuser,
	}
	if err := database.C.Create(&account).Error; err != nil {
		return account, err
	}

	return account, nil
}

// Authenticate checks the credentials and stamps the login time.
// Inactive accounts are refused the same way as a wrong password.
func Authenticate(name, password string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrInvalidCredentials
		}
		return account, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return account, ErrInvalidCredentials
	}
	if !account.IsActive {
		return account, ErrInvalidCredentials
	}

	account.LastLoginAt = lo.ToPtr(time.Now())
	if err := database.C.Model(&account).Update("last_login_at", account.LastLoginAt).Error; err != nil {
		log.Warn().Err(err).Uint("uid", account.ID).Msg("An error occurred when updating last login time...")
	}

	return account, nil
}
