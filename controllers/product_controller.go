package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/services"
)

// PricePreviewRequest represents the request body for a price calculation
type PricePreviewRequest struct {
	Quantity int                               `json:"quantity" binding:"required,gt=0"`
	Options  map[string]OptionSelectionRequest `json:"options"`
}

// ListProducts handles GET /api/v1/products - lists active catalog entries,
// optionally filtered by category
func ListProducts(c *gin.Context) {
	db := config.GetDB()
	query := db.Where("active = ?", true).Order("category, name")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct handles GET /api/v1/products/:slug
func GetProduct(c *gin.Context) {
	db := config.GetDB()
	var product models.Product
	if err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// PreviewPrice handles POST /api/v1/products/:slug/price - computes the price
// of one configured line item without creating anything. The storefront calls
// this as the customer changes quantity or options.
func PreviewPrice(c *gin.Context) {
	db := config.GetDB()
	var product models.Product
	if err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	var req PricePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	selections := make(map[string]services.Selection, len(req.Options))
	for name, sel := range req.Options {
		selections[name] = services.Selection{Value: sel.Value, Width: sel.Width, Height: sel.Height}
	}

	price, err := services.PriceLineItem(&product, req.Quantity, selections)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"unit_price":  price.UnitPrice,
			"total_price": price.TotalPrice,
			"quantity":    req.Quantity,
		},
	})
}

// CreateProduct handles POST /api/v1/admin/products (admins only)
func CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if product.Name == "" || product.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name and slug are required",
			},
		})
		return
	}

	if err := product.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	if err := db.Create(&product).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_EXISTS",
				"message": "A product with this slug already exists",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct handles PUT /api/v1/admin/products/:id (admins only)
func UpdateProduct(c *gin.Context) {
	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	var updated models.Product
	if err := c.ShouldBindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	updated.ID = product.ID
	updated.Slug = product.Slug // slugs are permanent, storefront links depend on them
	if updated.Name == "" {
		updated.Name = product.Name
	}

	if err := updated.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	if err := db.Model(&product).Updates(map[string]interface{}{
		"name":           updated.Name,
		"category":       updated.Category,
		"description":    updated.Description,
		"base_price":     updated.BasePrice,
		"pricing_method": updated.PricingMethod,
		"pricing_tiers":  updated.PricingTiers,
		"area_pricing":   updated.AreaPricing,
		"options":        updated.Options,
		"active":         updated.Active,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}
