package product

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Image       string    `gorm:"size:500" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Changes lists the fields of a partial update; nil means "leave as is".
type Changes struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	Image       *string
}

func (c Changes) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Name != nil {
		cols["name"] = *c.Name
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.Price != nil {
		cols["price"] = *c.Price
	}
	if c.Stock != nil {
		cols["stock"] = *c.Stock
	}
	if c.Image != nil {
		cols["image"] = *c.Image
	}
	return cols
}
