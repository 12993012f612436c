package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printvala/printvala-api/config"
	"github.com/printvala/printvala-api/controllers"
	"github.com/printvala/printvala-api/middleware"
	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// FileUploadAcceptanceTestSuite covers the quote-with-artwork journey over a
// real HTTP server: a customer asks for a custom job, attaches artwork, the
// shop replies and converts the quote into an order.
type FileUploadAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
	mockS3 *services.MockS3Service
}

// SetupSuite runs once before all tests
func (suite *FileUploadAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Quote{},
		&models.Order{},
		&models.NumberSequence{},
	)
	suite.NoError(err)

	config.SetDB(db)
	config.SetConfig(&config.Config{
		OrderNumberPrefix:   "PV",
		QuoteNumberPrefix:   "QT",
		Currency:            "INR",
		GSTRatePercent:      decimal.NewFromInt(18),
		GSTIntraState:       true,
		ShippingFlatRate:    decimal.NewFromInt(50),
		PriceDriftTolerance: decimal.Zero,
	})

	mock := services.NewMockNotificationService()
	mock.SetAsMockForTesting()

	router := suite.createRouter()
	suite.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (suite *FileUploadAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *FileUploadAcceptanceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM quotes")
	suite.db.Exec("DELETE FROM products")
	suite.db.Exec("DELETE FROM users")
	suite.db.Exec("DELETE FROM number_sequences")

	suite.mockS3 = services.NewMockS3Service()
	services.InitArtworkService(suite.mockS3)

	suite.NoError(suite.db.Create(&models.User{
		Auth0ID: "auth0|admin", Name: "Shop Admin", Email: "admin@test.com", Role: models.RoleAdmin,
	}).Error)

	suite.NoError(suite.db.Create(&models.Product{
		Name:          "Vinyl Banner",
		Slug:          "vinyl-banner",
		Category:      models.CategoryPostersBanners,
		PricingMethod: models.PricingMethodArea,
		AreaPricing: models.AreaPricing{
			PricePerSqFt: decimal.NewFromInt(50),
			MinCharge:    decimal.NewFromInt(200),
		},
		Options: models.Options{
			{Name: "size", Type: models.OptionTypeDim2},
		},
		Active: true,
	}).Error)
}

// createRouter builds the quote routes with admin auth mocked out
func (suite *FileUploadAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/quotes", controllers.CreateQuote)
		v1.POST("/quotes/:id/files", controllers.UploadQuoteFile)

		admin := v1.Group("/admin")
		admin.Use(func(c *gin.Context) {
			c.Set("user_id", "auth0|admin")
			c.Next()
		}, middleware.RequireAdmin())
		{
			admin.GET("/quotes", controllers.ListQuotes)
			admin.GET("/quotes/:id", controllers.GetQuote)
			admin.PATCH("/quotes/:id/status", controllers.UpdateQuoteStatus)
			admin.POST("/quotes/:id/convert", controllers.ConvertQuoteToOrder)
			admin.GET("/artwork/:key", controllers.GetArtworkURL)
		}
	}

	return router
}

func (suite *FileUploadAcceptanceTestSuite) postJSON(path string, payload map[string]interface{}) (*http.Response, map[string]interface{}) {
	body, _ := json.Marshal(payload)
	resp, err := http.Post(suite.server.URL+path, "application/json", bytes.NewBuffer(body))
	suite.NoError(err)

	var decoded map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	resp.Body.Close()
	return resp, decoded
}

func (suite *FileUploadAcceptanceTestSuite) uploadFile(quoteID float64, filename string, content []byte) (*http.Response, map[string]interface{}) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	suite.NoError(err)
	part.Write(content)
	writer.Close()

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/quotes/%.0f/files", suite.server.URL, quoteID),
		writer.FormDataContentType(),
		body,
	)
	suite.NoError(err)

	var decoded map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	resp.Body.Close()
	return resp, decoded
}

// TestQuoteWithArtworkJourney walks the full custom-job path: quote request
// with dimensions, artwork upload, shop review and conversion to an order
// that carries the artwork reference.
func (suite *FileUploadAcceptanceTestSuite) TestQuoteWithArtworkJourney() {
	// Customer requests a 4x6 banner
	resp, created := suite.postJSON("/api/v1/quotes", map[string]interface{}{
		"customer_name":  "Asha Rao",
		"customer_email": "asha@test.com",
		"items": []map[string]interface{}{
			{
				"product_id": 1,
				"quantity":   1,
				"options": map[string]interface{}{
					"size": map[string]interface{}{"width": "4", "height": "6"},
				},
			},
		},
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	data := created["data"].(map[string]interface{})
	quoteID := data["id"].(float64)
	// 4ft x 6ft at 50/sqft
	suite.Equal("1200", data["items"].([]interface{})[0].(map[string]interface{})["total_price"])

	// Customer attaches the artwork
	resp, _ = suite.uploadFile(quoteID, "banner.pdf", []byte("%PDF-1.4 artwork"))
	suite.Equal(http.StatusOK, resp.StatusCode)

	// Shop reviews and replies
	for _, status := range []string{"reviewed", "replied"} {
		body, _ := json.Marshal(map[string]interface{}{"status": status})
		req, _ := http.NewRequest(http.MethodPatch,
			fmt.Sprintf("%s/api/v1/admin/quotes/%.0f/status", suite.server.URL, quoteID),
			bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		r, err := http.DefaultClient.Do(req)
		suite.NoError(err)
		r.Body.Close()
		suite.Equal(http.StatusOK, r.StatusCode)
	}

	// Shop converts the quote into an order
	resp, converted := suite.postJSON(fmt.Sprintf("/api/v1/admin/quotes/%.0f/convert", quoteID), map[string]interface{}{
		"delivery":       map[string]interface{}{"method": "courier", "address": "12 MG Road, Pune"},
		"payment_method": "razorpay",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode, "conversion response: %v", converted)

	orderData := converted["data"].(map[string]interface{})
	suite.Equal("placed", orderData["status"])

	// The artwork reference followed the quote onto the order
	var order models.Order
	suite.NoError(suite.db.First(&order, "order_number = ?", orderData["order_number"]).Error)
	suite.Require().Len(order.Items, 1)
	suite.Require().Len(order.Items[0].Files, 1)
	suite.Equal("banner.pdf", order.Items[0].Files[0].FileName)
	suite.True(suite.mockS3.FileExists(order.Items[0].Files[0].OriginalFile))

	// A second conversion is refused
	resp, second := suite.postJSON(fmt.Sprintf("/api/v1/admin/quotes/%.0f/convert", quoteID), map[string]interface{}{})
	suite.Equal(http.StatusConflict, resp.StatusCode)
	suite.Equal("ALREADY_CONVERTED", second["error"].(map[string]interface{})["code"])
}

// TestQuoteArtworkRejectsWrongFormat keeps non-print files out of storage.
func (suite *FileUploadAcceptanceTestSuite) TestQuoteArtworkRejectsWrongFormat() {
	resp, created := suite.postJSON("/api/v1/quotes", map[string]interface{}{
		"customer_name":  "Vik",
		"customer_email": "vik@test.com",
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 1},
		},
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)
	quoteID := created["data"].(map[string]interface{})["id"].(float64)

	resp, body := suite.uploadFile(quoteID, "layout.psd", []byte("8BPS"))
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal("INVALID_FILE_FORMAT", body["error"].(map[string]interface{})["code"])
	suite.Empty(suite.mockS3.GetUploadedFiles())
}

// TestFileUploadAcceptanceTestSuite runs the test suite
func TestFileUploadAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(FileUploadAcceptanceTestSuite))
}
