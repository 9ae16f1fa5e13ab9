package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
)

// forwardSteps encodes the happy path PENDING -> SHIPPED -> DELIVERED -> PAID.
var forwardSteps = map[OrderStatus]OrderStatus{
	StatusPending:   StatusShipped,
	StatusShipped:   StatusDelivered,
	StatusDelivered: StatusPaid,
}

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal step:
// one step forward along the happy path, or CANCELLED from any
// non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return forwardSteps[s] == next
}

// OrderLine is one sold position inside an order. UnitCost is the FIFO
// cost basis frozen at placement; it is never recomputed afterwards so
// historical profit stays stable even when later lot costs change.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// Order is keyed by its human-readable id (ORD-<n>) and owns its line
// items (embedded) and comments (foreign-keyed).
type Order struct {
	ID        string    `gorm:"type:varchar(20);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name" validate:"required"`
	CustomerPhone   string `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerAddress string `gorm:"type:text" json:"customer_address"`
	District        string `gorm:"type:varchar(100)" json:"district,omitempty"`
	CustomerLink    string `gorm:"type:text" json:"customer_link,omitempty"`

	Items []OrderLine `gorm:"serializer:json" json:"items"`

	// Amount and Profit are computed once at creation and never recomputed.
	Amount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Profit decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"profit"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RepID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"rep_id"`
	Rep    *User       `gorm:"foreignKey:RepID" json:"rep,omitempty"`

	CancelledReason  string     `gorm:"type:text" json:"cancelled_reason,omitempty"`
	PaymentMethod    string     `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	DeliveryDriver   string     `gorm:"type:varchar(100)" json:"delivery_driver,omitempty"`
	ProcessedBy      string     `gorm:"type:varchar(255)" json:"processed_by,omitempty"`
	LastStatusUpdate *time.Time `json:"last_status_update,omitempty"`

	Comments []OrderComment `gorm:"foreignKey:OrderID" json:"comments,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

var orderIDPattern = regexp.MustCompile(`^ORD-(\d+)$`)

// NextOrderID allocates the next sequential id from the most recently
// created order id. An empty or non-matching last id restarts at ORD-1.
func NextOrderID(lastID string) string {
	next := 1
	if m := orderIDPattern.FindStringSubmatch(lastID); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("ORD-%d", next)
}
