package models

type Post struct {
	BaseModel

	Title       string       `json:"title" gorm:"size:255" validate:"required,max=255"`
	Description string       `json:"description" gorm:"size:1024" validate:"max=1024"`
	Status      RecordStatus `json:"status" validate:"oneof=0 1 2"`
	Content     string       `json:"content"`
	Language    string       `json:"language"`
	CategoryID  uint         `json:"category_id" validate:"required"`
	Category    Category     `json:"category" validate:"-"`
	Tags        []Tag        `json:"tags" gorm:"many2many:post_tags"`
	OwnerID     uint         `json:"owner_id"`
	Owner       Account      `json:"owner" validate:"-"`
}

func (v Post) String() string {
	return v.Title
}

func (v *Post) SetOwner(id uint) {
	v.OwnerID = id
	v.Owner = Account{}
}
