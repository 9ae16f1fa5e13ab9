package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Order"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Inventory management
	{Code: "inventory:view", Name: "View Inventory"},
	{Code: "inventory:create", Name: "Create Inventory Item"},
	{Code: "inventory:update", Name: "Update Inventory Item"},
	{Code: "inventory:export", Name: "Export Inventory"},
	// Order management
	{Code: "order:view", Name: "View Order"},
	{Code: "order:create", Name: "Create Order"},
	{Code: "order:update_status", Name: "Update Order Status"},
	{Code: "order:comment", Name: "Comment on Order"},
	// Restocking
	{Code: "restock:view", Name: "View Restock History"},
	{Code: "restock:create", Name: "Create Restock"},
	{Code: "restock:template", Name: "Manage Restock Templates"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}

// SalesRepPrivileges are the codes granted to the SALES_REP role.
var SalesRepPrivileges = []string{
	"inventory:view",
	"order:view",
	"order:create",
	"order:comment",
	"dashboard:view",
}
