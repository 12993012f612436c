package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/middleware"
	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/services"
	"github.com/printvala/printvala-api/utils"
)

// CreateQuoteRequest represents the public quote submission body
type CreateQuoteRequest struct {
	CustomerName  string            `json:"customer_name" binding:"required"`
	CustomerEmail string            `json:"customer_email" binding:"required,email"`
	CustomerPhone string            `json:"customer_phone"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1"`
}

// UpdateQuoteStatusRequest represents the request body for a quote transition
type UpdateQuoteStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateQuoteNotesRequest represents the request body for editing admin notes
type UpdateQuoteNotesRequest struct {
	AdminNotes string `json:"admin_notes" binding:"required"`
}

// ConvertQuoteRequest represents the request body for quote-to-order conversion
type ConvertQuoteRequest struct {
	Override      bool            `json:"override"`
	Delivery      models.Delivery `json:"delivery"`
	PaymentMethod string          `json:"payment_method"`
}

// CreateQuote handles POST /api/v1/quotes - public quote submission. Each line
// item is priced against the current catalog so the customer sees an estimate
// immediately.
func CreateQuote(c *gin.Context) {
	var req CreateQuoteRequest
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
	items, _, _, err := priceRequestItems(db, req.Items)
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
	quoteNumber, err := services.NextNumber(db, cfg.QuoteNumberPrefix, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to generate quote number",
			},
		})
		return
	}

	quote := models.Quote{
		QuoteNumber:   quoteNumber,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Status:        models.QuoteStatusNew,
	}
	quote.AuditTrail = quote.AuditTrail.Append("quote_created", req.CustomerEmail, now, "")

	if err := db.Create(&quote).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create quote",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    quote,
	})
}

// ListQuotes handles GET /api/v1/admin/quotes - lists quotes, newest first,
// optionally filtered by status (admins only)
func ListQuotes(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list quotes",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quotes,
	})
}

// GetQuote handles GET /api/v1/admin/quotes/:id (admins only)
func GetQuote(c *gin.Context) {
	db := config.GetDB()
	var quote models.Quote
	if err := db.First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_NOT_FOUND",
				"message": "Quote not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// UpdateQuoteStatus handles PATCH /api/v1/admin/quotes/:id/status - moves a
// quote through its review lifecycle (admins only)
func UpdateQuoteStatus(c *gin.Context) {
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

	var req UpdateQuoteStatusRequest
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
	var quote models.Quote
	if err := db.First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_NOT_FOUND",
				"message": "Quote not found",
			},
		})
		return
	}

	previous := quote.Status
	if err := services.TransitionQuote(&quote, req.Status, admin.Email, req.Notes, time.Now()); err != nil {
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
				"message": "Failed to update quote status",
			},
		})
		return
	}

	if quote.Status != previous {
		if err := db.Model(&quote).Updates(map[string]interface{}{
			"status":      quote.Status,
			"audit_trail": quote.AuditTrail,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to save quote status",
				},
			})
			return
		}

		if quote.Status == models.QuoteStatusReplied {
			if notifier := services.GetNotificationService(); notifier != nil {
				intent := services.NewNotificationIntent(models.NotificationQuoteReplied,
					quote.CustomerEmail, "", quote.QuoteNumber,
					"We have replied to your quote "+quote.QuoteNumber+".")
				_ = notifier.Notify(intent)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// UpdateQuoteNotes handles PATCH /api/v1/admin/quotes/:id/notes (admins only)
func UpdateQuoteNotes(c *gin.Context) {
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

	var req UpdateQuoteNotesRequest
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
	var quote models.Quote
	if err := db.First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_NOT_FOUND",
				"message": "Quote not found",
			},
		})
		return
	}

	quote.AdminNotes = req.AdminNotes
	quote.AuditTrail = quote.AuditTrail.Append("notes_updated", admin.Email, time.Now(), "")

	if err := db.Model(&quote).Updates(map[string]interface{}{
		"admin_notes": quote.AdminNotes,
		"audit_trail": quote.AuditTrail,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save quote notes",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// UploadQuoteFile handles POST /api/v1/quotes/:id/files - attaches an artwork
// file to a quote. Public, so customers can add files right after submission.
func UploadQuoteFile(c *gin.Context) {
	db := config.GetDB()
	var quote models.Quote
	if err := db.First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_NOT_FOUND",
				"message": "Quote not found",
			},
		})
		return
	}

	if quote.IsConverted() || quote.Status == models.QuoteStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_CLOSED",
				"message": "Files cannot be added to a completed quote",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "No file provided",
			},
		})
		return
	}

	artwork := services.GetArtworkService()
	if artwork == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "File storage is not available",
			},
		})
		return
	}

	fileRef, err := artwork.UploadArtwork(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store file",
			},
		})
		return
	}

	quote.Files = append(quote.Files, *fileRef)
	quote.AuditTrail = quote.AuditTrail.Append("file_attached", quote.CustomerEmail, time.Now(), fileRef.FileName)

	if err := db.Model(&quote).Updates(map[string]interface{}{
		"files":       quote.Files,
		"audit_trail": quote.AuditTrail,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save file reference",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// ConvertQuoteToOrder handles POST /api/v1/admin/quotes/:id/convert - turns a
// quote into an order exactly once (admins only). Price drift between quoted
// and current catalog prices blocks conversion unless override is set.
func ConvertQuoteToOrder(c *gin.Context) {
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

	var req ConvertQuoteRequest
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
	var quote models.Quote
	if err := db.First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUOTE_NOT_FOUND",
				"message": "Quote not found",
			},
		})
		return
	}

	cfg := config.GetConfig()
	order, err := services.ConvertQuote(db, &quote, admin.Email, services.ConvertOptions{
		OrderNumberPrefix: cfg.OrderNumberPrefix,
		Tolerance:         cfg.PriceDriftTolerance,
		Override:          req.Override,
		Delivery:          req.Delivery,
		PaymentMethod:     req.PaymentMethod,
		GSTRate:           cfg.GSTRatePercent,
		IntraState:        cfg.GSTIntraState,
		Currency:          cfg.Currency,
	})
	if err != nil {
		var convErr *services.AlreadyConvertedError
		if errors.As(err, &convErr) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_CONVERTED",
					"message": convErr.Error(),
					"details": gin.H{"order_id": convErr.OrderID},
				},
			})
			return
		}
		var driftErr *services.PriceDriftError
		if errors.As(err, &driftErr) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PRICE_DRIFT",
					"message": driftErr.Error(),
					"details": gin.H{"items": driftErr.Items},
				},
			})
			return
		}
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": vErr.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONVERSION_FAILED",
				"message": "Failed to convert quote",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}
