package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostEntry is a labelled extra cost on a restock (freight, customs, ...).
type CostEntry struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// RestockLog is the write-once audit record of a restock event.
// UnitCost is the landed cost in the base currency; ForeignCost and
// ExchangeRate record the supplier-side purchase.
type RestockLog struct {
	BaseModel
	ItemID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item     *InventoryItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	ItemName string         `gorm:"type:varchar(255)" json:"item_name"`

	Quantity     int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_cost"`
	ForeignCost  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"foreign_cost"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"exchange_rate"`

	ExtraCosts []CostEntry `gorm:"serializer:json" json:"extra_costs,omitempty"`

	RestockDate time.Time `gorm:"type:date;not null" json:"restock_date"`
}

func (RestockLog) TableName() string {
	return "restock_history"
}

// RestockTemplate is a reusable extra-cost breakdown for restocks.
type RestockTemplate struct {
	BaseModel
	Name  string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Costs []CostEntry `gorm:"serializer:json" json:"costs"`
}

func (RestockTemplate) TableName() string {
	return "restock_templates"
}
