package catalog

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem represents a sellable item on the menu. The ordering flow reads
// name and price from here at transaction-creation time; everything else is
// back-office bookkeeping.
type MenuItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	Price     int64     `json:"price" gorm:"not null"` // In centavos
	Category  string    `json:"category" gorm:"index"`
	ImageURL  string    `json:"image_url,omitempty"`
	Available bool      `json:"available" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (MenuItem) TableName() string {
	return "menu_items"
}
