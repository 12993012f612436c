package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/middleware"
	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/services"
)

// OptionSelectionRequest is one customer choice for a named product option
type OptionSelectionRequest struct {
	Value  string          `json:"value"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
}

// LineItemRequest is one product configuration in a cart or quote submission
type LineItemRequest struct {
	ProductID uint                              `json:"product_id" binding:"required"`
	Quantity  int                               `json:"quantity" binding:"required,gt=0"`
	Options   map[string]OptionSelectionRequest `json:"options"`
}

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	Items         []LineItemRequest `json:"items" binding:"required,min=1"`
	PromoCode     string            `json:"promo_code"`
	Delivery      models.Delivery   `json:"delivery" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=razorpay cod"`
}

// UpdateOrderStatusRequest represents the request body for a status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdatePaymentStatusRequest carries the payment gateway callback result
type UpdatePaymentStatusRequest struct {
	Status           string `json:"status" binding:"required,oneof=completed failed refunded"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
}

// priceRequestItems validates and prices each requested line item against the
// current catalog, returning the item snapshots plus the category/product sets
// the promotion evaluator scopes on.
func priceRequestItems(db *gorm.DB, items []LineItemRequest) (models.LineItems, []string, []uint, error) {
	priced := make(models.LineItems, 0, len(items))
	var categories []string
	var productIDs []uint

	for _, req := range items {
		var product models.Product
		if err := db.First(&product, req.ProductID).Error; err != nil {
			return nil, nil, nil, &services.ValidationError{Field: "items", Message: "product not found"}
		}

		selections := make(map[string]services.Selection, len(req.Options))
		snapshot := make([]models.SelectedOption, 0, len(req.Options))
		for i := range product.Options {
			opt := &product.Options[i]
			sel, ok := req.Options[opt.Name]
			if !ok {
				continue
			}
			selections[opt.Name] = services.Selection{Value: sel.Value, Width: sel.Width, Height: sel.Height}
			snapshot = append(snapshot, models.SelectedOption{
				Name:   opt.Name,
				Type:   opt.Type,
				Value:  sel.Value,
				Width:  sel.Width,
				Height: sel.Height,
			})
		}
		// Selections naming no product option are passed through so the
		// engine can reject them.
		for name, sel := range req.Options {
			if product.OptionByName(name) == nil {
				selections[name] = services.Selection{Value: sel.Value, Width: sel.Width, Height: sel.Height}
			}
		}

		price, err := services.PriceLineItem(&product, req.Quantity, selections)
		if err != nil {
			return nil, nil, nil, err
		}

		priced = append(priced, models.LineItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        req.Quantity,
			SelectedOptions: snapshot,
			UnitPrice:       price.UnitPrice,
			TotalPrice:      price.TotalPrice,
		})
		categories = append(categories, product.Category)
		productIDs = append(productIDs, product.ID)
	}

	return priced, categories, productIDs, nil
}

// CreateOrder handles POST /api/v1/orders - places a new order (customers only)
func CreateOrder(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	if user.Role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only customers can place orders",
			},
		})
		return
	}

	var req CreateOrderRequest
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

	if req.Delivery.Method != models.DeliveryMethodPickup && req.Delivery.Method != models.DeliveryMethodCourier {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Delivery method must be pickup or courier",
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

	cfg := config.GetConfig()
	now := time.Now()

	var promotion *models.Promotion
	if req.PromoCode != "" {
		var promo models.Promotion
		if err := db.Where("code = ?", req.PromoCode).First(&promo).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROMO_NOT_FOUND",
					"message": "Promotion code not found",
				},
			})
			return
		}
		promotion = &promo
	}

	pricing, gst, promoResult, err := services.BuildPricing(items, services.AggregateInput{
		Promotion:      promotion,
		Categories:     categories,
		ProductIDs:     productIDs,
		DeliveryMethod: req.Delivery.Method,
		ShippingRate:   cfg.ShippingFlatRate,
		GSTRate:        cfg.GSTRatePercent,
		IntraState:     cfg.GSTIntraState,
		Currency:       cfg.Currency,
		Now:            now,
	})
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

	// A supplied but inapplicable code is an explicit failure, not a silent
	// zero discount; the customer expected money off.
	if promotion != nil && !promoResult.Applicable {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROMO_NOT_APPLICABLE",
				"message": promoResult.Reason,
			},
		})
		return
	}

	orderNumber, err := services.NextNumber(db, cfg.OrderNumberPrefix, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to generate order number",
			},
		})
		return
	}

	order := models.Order{
		OrderNumber:   orderNumber,
		UserID:        &user.ID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
		Items:         items,
		Pricing:       pricing,
		GST:           gst,
		Delivery:      req.Delivery,
		Payment:       models.Payment{Method: req.PaymentMethod, Status: models.PaymentStatusPending},
		Status:        models.OrderStatusPlaced,
	}
	order.AuditTrail = order.AuditTrail.Append("order_placed", user.Email, now, "")

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if promotion != nil {
			return services.IncrementPromotionUsage(tx, promotion.ID)
		}
		return nil
	}); err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROMO_EXHAUSTED",
					"message": vErr.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	if notifier := services.GetNotificationService(); notifier != nil {
		intent := services.NewNotificationIntent(models.NotificationOrderCreated, user.Email,
			order.OrderNumber, "", "Your order "+order.OrderNumber+" has been placed.")
		_ = notifier.Notify(intent)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one order. Customers can
// only see their own orders; admins can see any.
func GetOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !user.IsAdmin() && (order.UserID == nil || *order.UserID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only view your own orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists the caller's orders, or all
// orders for admins (optionally filtered by status)
func ListOrders(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	query := db.Order("created_at DESC")
	if user.IsAdmin() {
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
	} else {
		query = query.Where("user_id = ?", user.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/admin/orders/:id/status - moves an
// order through its lifecycle (admins only)
func UpdateOrderStatus(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req UpdateOrderStatusRequest
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
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	previous := order.Status
	if err := services.TransitionOrder(&order, req.Status, admin.Email, req.Notes, time.Now()); err != nil {
		var tErr *services.InvalidTransitionError
		if errors.As(err, &tErr) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TRANSITION",
					"message": tErr.Error(),
					"details": gin.H{"current": tErr.Current, "target": tErr.Target},
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	// Same-status requests succeed without touching the row.
	if order.Status != previous {
		if err := db.Model(&order).Updates(map[string]interface{}{
			"status":      order.Status,
			"audit_trail": order.AuditTrail,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to save order status",
				},
			})
			return
		}

		if notifier := services.GetNotificationService(); notifier != nil {
			intent := services.NewNotificationIntent(models.NotificationOrderStatusChanged,
				order.CustomerEmail, order.OrderNumber, "",
				"Your order "+order.OrderNumber+" is now "+order.Status+".")
			_ = notifier.Notify(intent)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdatePaymentStatus handles PATCH /api/v1/admin/orders/:id/payment - records
// the payment gateway outcome on the order (admins only; the razorpay webhook
// handler calls this after signature verification)
func UpdatePaymentStatus(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req UpdatePaymentStatusRequest
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
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !paymentTransitionAllowed(order.Payment.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PAYMENT_TRANSITION",
				"message": "Cannot move payment from " + order.Payment.Status + " to " + req.Status,
			},
		})
		return
	}

	order.Payment.Status = req.Status
	if req.GatewayOrderID != "" {
		order.Payment.GatewayOrderID = req.GatewayOrderID
	}
	if req.GatewayPaymentID != "" {
		order.Payment.GatewayPaymentID = req.GatewayPaymentID
	}
	order.AuditTrail = order.AuditTrail.Append("payment_"+req.Status, admin.Email, time.Now(), "")

	if err := db.Model(&order).Updates(map[string]interface{}{
		"payment":     order.Payment,
		"audit_trail": order.AuditTrail,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save payment status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// paymentTransitionAllowed encodes the payment state glue: pending can resolve
// to completed or failed, failed payments can be retried to completed, and a
// completed payment can be refunded.
func paymentTransitionAllowed(current, target string) bool {
	switch current {
	case models.PaymentStatusPending:
		return target == models.PaymentStatusCompleted || target == models.PaymentStatusFailed
	case models.PaymentStatusFailed:
		return target == models.PaymentStatusCompleted
	case models.PaymentStatusCompleted:
		return target == models.PaymentStatusRefunded
	default:
		return false
	}
}
