package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/services"
)

// PreviewPromotionRequest represents the public dry-run request: a promo code
// plus the cart it would apply to
type PreviewPromotionRequest struct {
	Code  string            `json:"code" binding:"required"`
	Items []LineItemRequest `json:"items" binding:"required,min=1"`
}

// PreviewPromotion handles POST /api/v1/promotions/preview - evaluates a promo
// code against a cart without reserving usage or creating anything. The same
// evaluation runs again at order placement, so a favourable preview is not a
// reservation.
func PreviewPromotion(c *gin.Context) {
	var req PreviewPromotionRequest
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

	db := config.GetDB()
	var promo models.Promotion
	if err := db.Where("code = ?", req.Code).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROMO_NOT_FOUND",
				"message": "Promotion code not found",
			},
		})
		return
	}

	items, categories, productIDs, err := priceRequestItems(db, req.Items)
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

	subtotal := decimalSum(items)
	result := services.EvaluatePromotion(&promo, subtotal, categories, productIDs, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"applicable":      result.Applicable,
			"discount_amount": result.DiscountAmount,
			"reason":          result.Reason,
			"subtotal":        subtotal,
		},
	})
}

// ListPromotions handles GET /api/v1/admin/promotions (admins only)
func ListPromotions(c *gin.Context) {
	db := config.GetDB()
	var promotions []models.Promotion
	if err := db.Order("created_at DESC").Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list promotions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    promotions,
	})
}

// CreatePromotion handles POST /api/v1/admin/promotions (admins only)
func CreatePromotion(c *gin.Context) {
	var promo models.Promotion
	if err := c.ShouldBindJSON(&promo); err != nil {
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

	if promo.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Code is required",
			},
		})
		return
	}
	promo.UsedCount = 0

	if err := promo.Validate(); err != nil {
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
	if err := db.Create(&promo).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROMO_EXISTS",
				"message": "A promotion with this code already exists",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    promo,
	})
}

// UpdatePromotion handles PATCH /api/v1/admin/promotions/:id - toggles or
// amends a promotion. UsedCount is never writable through the API.
func UpdatePromotion(c *gin.Context) {
	db := config.GetDB()
	var promo models.Promotion
	if err := db.First(&promo, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROMO_NOT_FOUND",
				"message": "Promotion not found",
			},
		})
		return
	}

	var updated models.Promotion
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

	updated.ID = promo.ID
	updated.Code = promo.Code
	updated.UsedCount = promo.UsedCount

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

	if err := db.Model(&promo).Updates(map[string]interface{}{
		"description":           updated.Description,
		"discount":              updated.Discount,
		"discount_type":         updated.DiscountType,
		"min_order_amount":      updated.MinOrderAmount,
		"max_discount_amount":   updated.MaxDiscountAmount,
		"start_date":            updated.StartDate,
		"end_date":              updated.EndDate,
		"applicable_categories": updated.ApplicableCategories,
		"applicable_products":   updated.ApplicableProducts,
		"usage_limit":           updated.UsageLimit,
		"active":                updated.Active,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update promotion",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// decimalSum totals the line item prices of a priced cart.
func decimalSum(items models.LineItems) (sum decimal.Decimal) {
	for _, item := range items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}
