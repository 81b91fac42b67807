// Package catalog persists the product inventory.
package catalog

import (
	"errors"
	"fmt"
	"log"

	apperrors "sloozify/internal/errors"
	"sloozify/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// lowStockThreshold marks products that need restocking on the dashboard.
const lowStockThreshold = 100

// SQLiteStore backs the catalog with a local SQLite file.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the catalog database and migrates the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SeedData populates the catalog with the demo commodities if it is empty.
func (s *SQLiteStore) SeedData() {
	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	if count > 0 {
		return
	}

	log.Println("Seeding demo catalog...")
	products := []models.Product{
		{Name: "Wheat", Category: "Grains", Price: 250, Quantity: 150, Description: "High quality wheat for industrial use"},
		{Name: "Rice", Category: "Grains", Price: 350, Quantity: 200, Description: "Premium basmati rice"},
		{Name: "Crude Oil", Category: "Energy", Price: 85, Quantity: 5000, Description: "Crude oil barrel"},
		{Name: "Gold Bars", Category: "Metals", Price: 65000, Quantity: 50, Description: "Pure gold bars 999"},
		{Name: "Coffee Beans", Category: "Agricultural", Price: 450, Quantity: 300, Description: "Arabica coffee beans from Colombia"},
		{Name: "Cotton", Category: "Textiles", Price: 1200, Quantity: 100, Description: "Raw cotton fiber"},
	}
	for i := range products {
		if err := s.db.Create(&products[i]).Error; err != nil {
			log.Printf("Seeding %q failed: %v", products[i].Name, err)
		}
	}
}

func (s *SQLiteStore) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *SQLiteStore) GetProduct(id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) CreateProduct(p *models.Product) error {
	return s.db.Create(p).Error
}

func (s *SQLiteStore) UpdateProduct(p *models.Product) error {
	result := s.db.Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price,
		"quantity":    p.Quantity,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Stats aggregates totals for the dashboard view.
func (s *SQLiteStore) Stats() (*models.DashboardStats, error) {
	var stats models.DashboardStats

	if err := s.db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Product{}).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&stats.TotalValue).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Product{}).
		Where("quantity < ?", lowStockThreshold).
		Count(&stats.LowStockItems).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Product{}).
		Distinct("category").
		Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
