package catalog

import (
	"errors"
	"os"
	"testing"

	apperrors "sloozify/internal/errors"
	"sloozify/internal/models"
)

// setupTestStore creates a temp-file SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	// Use a temp file so CGO sqlite works (some drivers don't support :memory: + multiple conns)
	f, err := os.CreateTemp("", "sloozify-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp db: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	store, err := NewSQLiteStore(f.Name())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeedData_PopulatesOnce(t *testing.T) {
	store := setupTestStore(t)

	store.SeedData()
	products, err := store.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("seeded %d products, want 6", len(products))
	}

	// Seeding again must not duplicate.
	store.SeedData()
	products, err = store.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts after reseed: %v", err)
	}
	if len(products) != 6 {
		t.Errorf("after reseed got %d products, want 6", len(products))
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	store := setupTestStore(t)

	p := &models.Product{Name: "Copper Wire", Category: "Metals", Price: 320, Quantity: 80}
	if err := store.CreateProduct(p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("CreateProduct did not assign an ID")
	}

	got, err := store.GetProduct(p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "Copper Wire" || got.Quantity != 80 {
		t.Errorf("GetProduct = %+v, want name=Copper Wire quantity=80", got)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetProduct(9999)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetProduct(9999) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProduct(t *testing.T) {
	store := setupTestStore(t)

	p := &models.Product{Name: "Rice", Category: "Grains", Price: 350, Quantity: 200}
	if err := store.CreateProduct(p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	p.Quantity = 50
	p.Price = 400
	if err := store.UpdateProduct(p); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	got, err := store.GetProduct(p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Quantity != 50 || got.Price != 400 {
		t.Errorf("after update got quantity=%d price=%v, want 50/400", got.Quantity, got.Price)
	}

	missing := &models.Product{Name: "Ghost"}
	missing.ID = 9999
	if err := store.UpdateProduct(missing); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("UpdateProduct(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	store := setupTestStore(t)
	store.SeedData()

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.TotalProducts != 6 {
		t.Errorf("TotalProducts = %d, want 6", stats.TotalProducts)
	}
	// Gold Bars (50) and Cotton (100 is not below the threshold) -> only one low-stock item.
	if stats.LowStockItems != 1 {
		t.Errorf("LowStockItems = %d, want 1", stats.LowStockItems)
	}
	// Two Grains products share a category.
	if stats.TotalCategories != 5 {
		t.Errorf("TotalCategories = %d, want 5", stats.TotalCategories)
	}
	if stats.TotalValue <= 0 {
		t.Errorf("TotalValue = %v, want > 0", stats.TotalValue)
	}
}
