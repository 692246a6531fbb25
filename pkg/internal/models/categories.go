package models

type Tag struct {
	BaseModel

	Name    string       `json:"name" gorm:"size:10" validate:"required,max=10"`
	Status  RecordStatus `json:"status" validate:"oneof=0 1"`
	OwnerID uint         `json:"owner_id"`
	Owner   Account      `json:"owner" validate:"-"`
	Posts   []Post       `json:"posts" gorm:"many2many:post_tags"`
}

func (v Tag) String() string {
	return v.Name
}

func (v *Tag) SetOwner(id uint) {
	v.OwnerID = id
	v.Owner = Account{}
}

type Category struct {
	BaseModel

	Name    string       `json:"name" gorm:"size:50" validate:"required,max=50"`
	Status  RecordStatus `json:"status" validate:"oneof=0 1"`
	IsNav   bool         `json:"is_nav"`
	OwnerID uint         `json:"owner_id"`
	Owner   Account      `json:"owner" validate:"-"`
	Posts   []Post       `json:"posts"`

	PostCount int64 `json:"post_count" gorm:"-"`
}

func (v Category) String() string {
	return v.Name
}

func (v *Category) SetOwner(id uint) {
	v.OwnerID = id
	v.Owner = Account{}
}
