package models

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. The fortune workflow only ever reads these;
// rows are seeded administratively.
type Product struct {
	BaseUUIDModel
	Name        string          `gorm:"type:text;not null"     json:"name"`
	Description string          `gorm:"type:text"              json:"description"`
	ImageURL    string          `gorm:"column:image_url;type:text" json:"imageUrl"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)"     json:"price"`
	StoreURL    string          `gorm:"column:store_url;type:text" json:"storeUrl"`
}
