// Package web exposes the JSON API consumed by the dashboard frontend.
package web

import (
	"errors"
	"net/http"
	"strconv"

	"sloozify/internal/auth"
	"sloozify/internal/catalog"
	apperrors "sloozify/internal/errors"
	"sloozify/internal/models"
	"sloozify/internal/sentry"

	"github.com/gin-gonic/gin"
)

// Handler wires the auth service, token codec, and catalog store into gin
// routes.
type Handler struct {
	auth    *auth.Service
	codec   *auth.TokenCodec
	catalog catalog.Store
}

func NewHandler(authSvc *auth.Service, codec *auth.TokenCodec, store catalog.Store) *Handler {
	return &Handler{
		auth:    authSvc,
		codec:   codec,
		catalog: store,
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sentry.Middleware())

	api := r.Group("/api")
	{
		api.POST("/auth/signup", h.signup)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)
		api.GET("/auth/me", h.me)

		protected := api.Group("", h.requireSession)
		{
			protected.GET("/products", h.listProducts)
			protected.POST("/products", h.createProduct)
			protected.GET("/products/:id", h.getProduct)
			protected.PUT("/products/:id", h.updateProduct)
			protected.GET("/dashboard/stats", h.dashboardStats)
		}
	}

	return r
}

// requireSession aborts with 401 unless the request carries a valid
// session cookie. The decoded identity is stored on the context.
func (h *Handler) requireSession(c *gin.Context) {
	user := h.codec.GetSession(c.Request)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Set("user", user)
	c.Next()
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields required"})
		return
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateAccount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already exists"})
			return
		}
		sentry.CaptureErrorWithContext(c, err, "signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	if err := h.codec.SetSession(c.Writer, user); err != nil {
		sentry.CaptureErrorWithContext(c, err, "encode session after signup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session encoding failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.codec.SetSession(c.Writer, user); err != nil {
		sentry.CaptureErrorWithContext(c, err, "encode session after login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session encoding failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) logout(c *gin.Context) {
	h.codec.ClearSession(c.Writer)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	user := h.codec.GetSession(c.Request)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts()
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if err := h.catalog.CreateProduct(p); err != nil {
		sentry.CaptureErrorWithContext(c, err, "create product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		sentry.CaptureErrorWithContext(c, err, "get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	p.ID = id

	if err := h.catalog.UpdateProduct(p); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		sentry.CaptureErrorWithContext(c, err, "update product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.catalog.Stats()
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return uint(id), true
}
