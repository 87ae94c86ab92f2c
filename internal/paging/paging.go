// Package paging holds the fixed-size pagination shared by every list endpoint.
package paging

import (
	"math"

	"gorm.io/gorm"
)

const PerPage = 10

// MaxPage is the largest page whose offset still fits in an int.
const MaxPage = math.MaxInt/PerPage + 1

type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Normalize clamps page numbers into 1..MaxPage.
func Normalize(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

func offset(page int) int {
	return (Normalize(page) - 1) * PerPage
}

// Scope limits a query to the given 1-based page.
func Scope(page int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset(page)).Limit(PerPage)
	}
}

func NewMeta(page int, total int64) Meta {
	last := int((total + PerPage - 1) / PerPage)
	if last < 1 {
		last = 1
	}
	return Meta{
		CurrentPage: Normalize(page),
		PerPage:     PerPage,
		Total:       total,
		LastPage:    last,
	}
}
