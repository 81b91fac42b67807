package catalog

import "sloozify/internal/models"

// Store is the fetch-style read/write interface over the product catalog.
// The HTTP layer only sees this interface, which keeps tests on mock
// implementations and leaves room for other storage backends.
type Store interface {
	ListProducts() ([]models.Product, error)
	GetProduct(id uint) (*models.Product, error)
	CreateProduct(p *models.Product) error
	UpdateProduct(p *models.Product) error

	// Stats aggregates the catalog for the dashboard.
	Stats() (*models.DashboardStats, error)

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
