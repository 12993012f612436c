package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func TestListProducts(t *testing.T) {
	db := setupProductTestDB(t)
	config.SetDB(db)

	db.Create(&models.Product{
		Name: "Business Cards", Slug: "business-cards",
		Category: models.CategoryBusinessCards, BasePrice: decimal.NewFromInt(1),
		PricingMethod: models.PricingMethodFlat, Active: true,
	})
	db.Create(&models.Product{
		Name: "A4 Prints", Slug: "a4-prints",
		Category: models.CategoryDocuments, BasePrice: decimal.NewFromInt(2),
		PricingMethod: models.PricingMethodFlat, Active: true,
	})
	db.Create(&models.Product{
		Name: "Retired Banners", Slug: "retired-banners",
		Category: models.CategoryPostersBanners, BasePrice: decimal.NewFromInt(100),
		PricingMethod: models.PricingMethodFlat, Active: false,
	})

	router := setupTestRouter()
	router.GET("/products", ListProducts)

	// Inactive products are never listed
	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["data"].([]interface{}), 2)

	// Category filter narrows the list
	req, _ = http.NewRequest(http.MethodGet, "/products?category=documents", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	products := response["data"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "a4-prints", products[0].(map[string]interface{})["slug"])
}

func TestGetProduct(t *testing.T) {
	db := setupProductTestDB(t)
	config.SetDB(db)

	db.Create(&models.Product{
		Name: "Business Cards", Slug: "business-cards",
		Category: models.CategoryBusinessCards, BasePrice: decimal.NewFromInt(1),
		PricingMethod: models.PricingMethodFlat, Active: true,
	})
	db.Create(&models.Product{
		Name: "Hidden", Slug: "hidden",
		Category: models.CategoryCustom, BasePrice: decimal.NewFromInt(1),
		PricingMethod: models.PricingMethodFlat, Active: false,
	})

	router := setupTestRouter()
	router.GET("/products/:slug", GetProduct)

	tests := []struct {
		name           string
		slug           string
		expectedStatus int
	}{
		{"Active product found", "business-cards", http.StatusOK},
		{"Inactive product hidden", "hidden", http.StatusNotFound},
		{"Unknown slug", "nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/products/"+tt.slug, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPreviewPrice(t *testing.T) {
	db := setupProductTestDB(t)
	config.SetDB(db)

	createBusinessCardProduct(t, db)

	router := setupTestRouter()
	router.POST("/products/:slug/price", PreviewPrice)

	tests := []struct {
		name           string
		slug           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedTotal  string
	}{
		{
			name: "Tier price with option delta",
			slug: "business-cards",
			requestBody: map[string]interface{}{
				"quantity": 500,
				"options":  map[string]interface{}{"finish": map[string]interface{}{"value": "glossy"}},
			},
			expectedStatus: http.StatusOK,
			// 500 * 0.5 = 250, +10% glossy
			expectedTotal: "275",
		},
		{
			name:           "Below first tier uses base price",
			slug:           "business-cards",
			requestBody:    map[string]interface{}{"quantity": 50},
			expectedStatus: http.StatusOK,
			expectedTotal:  "50",
		},
		{
			name:           "Zero quantity rejected",
			slug:           "business-cards",
			requestBody:    map[string]interface{}{"quantity": 0},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown product",
			slug:           "missing",
			requestBody:    map[string]interface{}{"quantity": 100},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/products/"+tt.slug+"/price", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			if tt.expectedTotal != "" {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				data := response["data"].(map[string]interface{})
				assertDecimal(t, tt.expectedTotal, data["total_price"])
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	db := setupProductTestDB(t)
	config.SetDB(db)

	admin := models.User{Auth0ID: "auth0|padmin", Name: "P Admin", Email: "padmin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	router := setupTestRouter()
	router.POST("/products", mockCurrentUser(&admin), CreateProduct)

	post := func(payload map[string]interface{}) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Create tier-priced product",
			requestBody: map[string]interface{}{
				"name":           "Letterheads",
				"slug":           "letterheads",
				"category":       "stationery",
				"base_price":     "3",
				"pricing_method": "tier",
				"pricing_tiers": []map[string]interface{}{
					{"min_qty": 100, "unit_price": "2.5"},
					{"min_qty": 500, "unit_price": "2"},
				},
				"active": true,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Reject unsorted tiers",
			requestBody: map[string]interface{}{
				"name":           "Bad Tiers",
				"slug":           "bad-tiers",
				"category":       "stationery",
				"base_price":     "3",
				"pricing_method": "tier",
				"pricing_tiers": []map[string]interface{}{
					{"min_qty": 500, "unit_price": "2"},
					{"min_qty": 100, "unit_price": "2.5"},
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Reject unknown category",
			requestBody: map[string]interface{}{
				"name":           "Weird",
				"slug":           "weird",
				"category":       "gadgets",
				"base_price":     "3",
				"pricing_method": "flat",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Reject missing slug",
			requestBody: map[string]interface{}{
				"name":           "No Slug",
				"category":       "stationery",
				"base_price":     "3",
				"pricing_method": "flat",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Reject duplicate slug",
			requestBody: map[string]interface{}{
				"name":           "Letterheads Again",
				"slug":           "letterheads",
				"category":       "stationery",
				"base_price":     "3",
				"pricing_method": "flat",
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "PRODUCT_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			if tt.expectedError != "" {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	db := setupProductTestDB(t)
	config.SetDB(db)

	admin := models.User{Auth0ID: "auth0|uadmin", Name: "U Admin", Email: "uadmin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	product := models.Product{
		Name: "Business Cards", Slug: "business-cards",
		Category: models.CategoryBusinessCards, BasePrice: decimal.NewFromInt(1),
		PricingMethod: models.PricingMethodFlat, Active: true,
	}
	db.Create(&product)

	router := setupTestRouter()
	router.PUT("/products/:id", mockCurrentUser(&admin), UpdateProduct)

	body, _ := json.Marshal(map[string]interface{}{
		"name":           "Premium Business Cards",
		"slug":           "something-else",
		"category":       "business-cards",
		"base_price":     "1.5",
		"pricing_method": "flat",
		"active":         false,
	})
	req, _ := http.NewRequest(http.MethodPut, "/products/1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	var reloaded models.Product
	db.First(&reloaded, product.ID)
	assert.Equal(t, "Premium Business Cards", reloaded.Name)
	assert.Equal(t, "business-cards", reloaded.Slug, "slug must survive updates")
	assert.True(t, reloaded.BasePrice.Equal(decimal.RequireFromString("1.5")))
	assert.False(t, reloaded.Active)
}
