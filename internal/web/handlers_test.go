package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sloozify/internal/auth"
	"sloozify/internal/catalog"
	"sloozify/internal/database"
	apperrors "sloozify/internal/errors"
	"sloozify/internal/models"

	"github.com/gin-gonic/gin"
)

// fakeStore is an in-memory catalog.Store for handler tests.
type fakeStore struct {
	products []models.Product
	nextID   uint
}

var _ catalog.Store = (*fakeStore)(nil)

func (f *fakeStore) ListProducts() ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeStore) GetProduct(id uint) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeStore) CreateProduct(p *models.Product) error {
	f.nextID++
	p.ID = f.nextID
	f.products = append(f.products, *p)
	return nil
}

func (f *fakeStore) UpdateProduct(p *models.Product) error {
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = *p
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeStore) Stats() (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalProducts: int64(len(f.products))}, nil
}

func (f *fakeStore) Close() error { return nil }

// newTestRouter builds a full handler over an offline auth service (the
// in-memory table answers everything) and a fake catalog.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("SESSION_HASH_KEY", "")
	t.Setenv("SESSION_BLOCK_KEY", "")

	codec, err := auth.NewTokenCodec(auth.TokenCodecConfig{AllowInsecureKeys: true})
	if err != nil {
		t.Fatalf("token codec: %v", err)
	}
	svc := auth.NewService(database.New(database.Config{}))
	h := NewHandler(svc, codec, &fakeStore{})
	return h.Router()
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLogin_DemoManager(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "manager@sloozify.com",
		"password": "manager123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var u models.AuthUser
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if u.Role != models.RoleManager || u.Email != "manager@sloozify.com" {
		t.Errorf("login returned %+v", u)
	}
	if strings.Contains(w.Body.String(), "manager123") {
		t.Error("response leaks the password")
	}
	sessionCookie(t, w)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "manager@sloozify.com",
		"password": "nope",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", w.Code)
	}
}

func TestSignup_Validation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{
			name: "missing fields",
			body: map[string]string{"email": "x@sloozify.com"},
			want: http.StatusBadRequest,
		},
		{
			name: "invalid role",
			body: map[string]string{"email": "x@sloozify.com", "password": "pw", "name": "X", "role": "admin"},
			want: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: map[string]string{"email": "manager@sloozify.com", "password": "pw", "name": "X", "role": "manager"},
			want: http.StatusBadRequest,
		},
		{
			name: "valid",
			body: map[string]string{"email": "fresh@sloozify.com", "password": "pw", "name": "Fresh", "role": "store_keeper"},
			want: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/signup", tt.body)
			if w.Code != tt.want {
				t.Errorf("signup status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSignup_ThenLogin(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "signup@sloozify.com", "password": "pw12345", "name": "Sign Up", "role": "manager",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "pw12345") {
		t.Error("signup response leaks the password")
	}

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email": "signup@sloozify.com", "password": "pw12345",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login after signup status = %d", w.Code)
	}
}

func TestMe_WithAndWithoutSession(t *testing.T) {
	r := newTestRouter(t)

	login := postJSON(t, r, "/api/auth/login", map[string]string{
		"email": "keeper@sloozify.com", "password": "keeper123",
	})
	cookie := sessionCookie(t, login)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("me with session status = %d", w.Code)
	}

	var u models.AuthUser
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("unmarshal me response: %v", err)
	}
	if u.Role != models.RoleStoreKeeper {
		t.Errorf("me returned %+v", u)
	}

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me without session status = %d, want 401", w.Code)
	}
}

func TestProducts_RequireSession(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("products without session status = %d, want 401", w.Code)
	}
}

func TestProducts_CRUD(t *testing.T) {
	r := newTestRouter(t)

	login := postJSON(t, r, "/api/auth/login", map[string]string{
		"email": "manager@sloozify.com", "password": "manager123",
	})
	cookie := sessionCookie(t, login)

	// Create
	w := postJSON(t, r, "/api/products", map[string]any{
		"name": "Wheat", "category": "Grains", "price": 250, "quantity": 150,
	}, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product status = %d, body = %s", w.Code, w.Body.String())
	}

	// List
	req := httptest.NewRequest("GET", "/api/products", nil)
	req.AddCookie(cookie)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("list products status = %d", w2.Code)
	}
	var products []models.Product
	if err := json.Unmarshal(w2.Body.Bytes(), &products); err != nil {
		t.Fatalf("unmarshal products: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Wheat" {
		t.Errorf("products = %+v", products)
	}

	// Missing product
	req = httptest.NewRequest("GET", "/api/products/999", nil)
	req.AddCookie(cookie)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req)
	if w3.Code != http.StatusNotFound {
		t.Errorf("get missing product status = %d, want 404", w3.Code)
	}

	// Stats
	req = httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	req.AddCookie(cookie)
	w4 := httptest.NewRecorder()
	r.ServeHTTP(w4, req)
	if w4.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w4.Code)
	}
	var stats models.DashboardStats
	if err := json.Unmarshal(w4.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d, want 1", stats.TotalProducts)
	}
}
