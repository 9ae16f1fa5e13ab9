package model

import (
	"github.com/shopspring/decimal"
)

// InventoryItem is the canonical stock record for a sellable product.
// Stock must stay equal to the sum of the item's open lot quantities;
// it is only mutated through the ledger and the order engine.
type InventoryItem struct {
	BaseModel
	SKU          string `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name         string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category     string `gorm:"type:varchar(100)" json:"category"`
	Stock        int    `gorm:"default:0" json:"stock"`
	ReorderPoint int    `gorm:"default:0" json:"reorder_point"`

	Price decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	// OriginalCost is the fallback unit cost used when no lot data exists
	// (items restocked before lot tracking, or oversold quantities).
	// Updated on every restock to the latest landed unit cost.
	OriginalCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"original_cost"`

	DiscountPrice   *decimal.Decimal `gorm:"type:decimal(20,4)" json:"discount_price,omitempty"`
	DiscountPercent *decimal.Decimal `gorm:"type:decimal(20,4)" json:"discount_percent,omitempty"`
	ImageURL        string           `gorm:"type:text" json:"image_url,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`

	Lots []CostLot `gorm:"foreignKey:ItemID" json:"lots,omitempty"`
}

func (InventoryItem) TableName() string {
	return "inventory"
}

// IsLowStock reports whether on-hand stock fell below the reorder point.
func (i *InventoryItem) IsLowStock() bool {
	return i.Stock < i.ReorderPoint
}
