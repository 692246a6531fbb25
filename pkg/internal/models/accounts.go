package models

import "time"

type Account struct {
	BaseModel

	Name        string     `json:"name" gorm:"uniqueIndex;size:150" validate:"required,max=150"`
	Nick        string     `json:"nick"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Password    string     `json:"-"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (v Account) String() string {
	return v.Name
}
