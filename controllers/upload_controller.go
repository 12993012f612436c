package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/printvala/printvala-api/services"
	"github.com/printvala/printvala-api/utils"
)

// GetArtworkURL handles GET /api/v1/admin/artwork/:key - returns a short-lived
// download URL for an uploaded artwork file (admins only, for proofing)
func GetArtworkURL(c *gin.Context) {
	key := c.Param("key")

	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "File key is required",
			},
		})
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(key, "..") || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILENAME",
				"message": "Invalid file key",
			},
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(key))
	allowed := false
	for _, format := range utils.AllowedPrintFormats {
		if ext == format {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only " + strings.Join(utils.AllowedPrintFormats, ", ") + " files are supported",
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

	url, err := artwork.GetArtworkURL(utils.GetArtworkPath(key))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_NOT_FOUND",
				"message": "Artwork file not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url": url,
		},
	})
}
