package models

import (
	"strings"
	"time"
)

const UncategorizedLabel = "Uncategorized"

// Food is a menu item in the catalog.
type Food struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category  string    `gorm:"type:varchar(50);index" json:"category"`
	Available bool      `gorm:"not null" json:"available"`
	Image     string    `gorm:"type:mediumtext" json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Food) TableName() string {
	return "foods"
}

// DisplayCategory returns the category with its first letter upper-cased and
// the rest lower-cased, or UncategorizedLabel when blank.
func (f Food) DisplayCategory() string {
	return NormalizeCategory(f.Category)
}

func NormalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return UncategorizedLabel
	}
	lower := strings.ToLower(c)
	r := []rune(lower)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
