package comment

import "time"

const MaxContentLength = 255

// Author is the slice of the users table embedded in comment reads.
type Author struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
}

func (Author) TableName() string { return "users" }

// ProductRef is the slice of the products table embedded in comment reads.
type ProductRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (ProductRef) TableName() string { return "products" }

type Comment struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Content   string      `gorm:"column:contenido;size:255;not null" json:"contenido"`
	Rating    int         `gorm:"column:calificacion;not null" json:"calificacion"`
	PostedAt  time.Time   `gorm:"column:fecha;not null;index" json:"fecha"`
	UserID    uint        `gorm:"column:usuario_id;not null;index" json:"usuario_id"`
	ProductID uint        `gorm:"column:producto_id;not null;index" json:"producto_id"`
	Author    *Author     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"usuario,omitempty"`
	Product   *ProductRef `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"producto,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Comment) TableName() string { return "comentario" }

// Filter narrows a listing; nil fields do not filter.
type Filter struct {
	ProductID *uint
	UserID    *uint
}

type Changes struct {
	Content   *string
	Rating    *int
	PostedAt  *time.Time
	UserID    *uint
	ProductID *uint
}

func (c Changes) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Content != nil {
		cols["contenido"] = *c.Content
	}
	if c.Rating != nil {
		cols["calificacion"] = *c.Rating
	}
	if c.PostedAt != nil {
		cols["fecha"] = *c.PostedAt
	}
	if c.UserID != nil {
		cols["usuario_id"] = *c.UserID
	}
	if c.ProductID != nil {
		cols["producto_id"] = *c.ProductID
	}
	return cols
}

// ValidRating reports whether r is within 1..5.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}
