package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, SALES_MANAGER, SALES_REP
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin        = "ADMIN"
	RoleSalesManager = "SALES_MANAGER"
	RoleSalesRep     = "SALES_REP"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleSalesManager,
		Name:        "Sales Manager",
		Description: "Order, inventory and restock management; no user administration",
	},
	{
		Code:        RoleSalesRep,
		Name:        "Sales Representative",
		Description: "Point of sale and own-order tracking",
	},
}
