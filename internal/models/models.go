package models

import (
	"gorm.io/gorm"
)

// Role is one of the two fixed application roles.
type Role string

const (
	RoleManager     Role = "manager"
	RoleStoreKeeper Role = "store_keeper"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleStoreKeeper
}

// AuthUser is an authenticated identity. It never carries the credential;
// password hashes live in whichever store holds the account.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Product is a catalog item.
type Product struct {
	gorm.Model
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// DashboardStats summarizes the catalog for the dashboard view.
type DashboardStats struct {
	TotalProducts   int64   `json:"totalProducts"`
	TotalValue      float64 `json:"totalValue"`
	LowStockItems   int64   `json:"lowStockItems"`
	TotalCategories int64   `json:"totalCategories"`
}
