package services

import (
	"strconv"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxObjectReprLength = 200

// LogAction appends an entry to the admin log.
func LogAction(tx *gorm.DB, user models.Account, contentType string, objectID uint, repr string, flag models.LogAction, messages ...models.ChangeMessage) error {
	if runes := []rune(repr); len(runes) > maxObjectReprLength {
		repr = string(runes[:maxObjectReprLength])
	}

	entry := models.LogEntry{
		UserID:      user.ID,
		ContentType: contentType,
		ObjectID:    strconv.Itoa(int(objectID)),
		ObjectRepr:  repr,
		ActionFlag:  flag,
	}
	if flag != models.LogActionDeletion {
		entry.ChangeMessage = models.EncodeChangeMessage(messages)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	log.Debug().
		Uint("uid", user.ID).
		Str("type", contentType).
		Uint("object", objectID).
		Uint8("flag", flag).
		Msg("Logged an admin action.")
	return nil
}
