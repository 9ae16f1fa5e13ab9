package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostLot is one cost layer of an item's stock: a quantity purchased
// (or returned) at a specific unit cost. Lots are consumed oldest-first
// by (created_at, id); an exhausted lot stays at quantity 0 rather than
// being deleted, and quantity never goes negative.
type CostLot struct {
	BaseModel
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item     *InventoryItem  `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Quantity int             `gorm:"not null;default:0" json:"quantity"`
	UnitCost decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"unit_cost"`
}

func (CostLot) TableName() string {
	return "inventory_batches"
}
