package models

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (v BaseModel) GetID() uint {
	return v.ID
}

// RecordStatus is shared by every owned record, posts add a draft state on top.
type RecordStatus = int8

const (
	StatusDeleted = RecordStatus(iota)
	StatusNormal
	StatusDraft
)
