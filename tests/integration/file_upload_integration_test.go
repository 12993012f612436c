package integration

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

// FileUploadIntegrationTestSuite covers the artwork path end to end: a customer
// attaches a file to a quote and an admin retrieves a presigned URL for it.
type FileUploadIntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	mockS3 *services.MockS3Service
}

// SetupSuite runs once before all tests
func (suite *FileUploadIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

// SetupTest runs before each test
func (suite *FileUploadIntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(&models.User{}, &models.Product{}, &models.Quote{}, &models.NumberSequence{})
	suite.NoError(err)

	config.SetDB(db)
	config.SetConfig(&config.Config{
		QuoteNumberPrefix: "QT",
		Currency:          "INR",
		GSTRatePercent:    decimal.NewFromInt(18),
	})

	suite.mockS3 = services.NewMockS3Service()
	services.InitArtworkService(suite.mockS3)

	admin := models.User{Auth0ID: "auth0|admin", Name: "Admin", Email: "admin@test.com", Role: models.RoleAdmin}
	suite.NoError(db.Create(&admin).Error)

	product := models.Product{
		Name:          "Vinyl Banner",
		Slug:          "vinyl-banner",
		Category:      models.CategoryPostersBanners,
		BasePrice:     decimal.NewFromInt(500),
		PricingMethod: models.PricingMethodFlat,
		Active:        true,
	}
	suite.NoError(db.Create(&product).Error)

	suite.router = gin.New()
	suite.router.Use(gin.Recovery())

	v1 := suite.router.Group("/api/v1")
	{
		v1.POST("/quotes", controllers.CreateQuote)
		v1.POST("/quotes/:id/files", controllers.UploadQuoteFile)

		adminGroup := v1.Group("/admin")
		adminGroup.Use(func(c *gin.Context) {
			c.Set("user_id", "auth0|admin")
			c.Next()
		}, middleware.RequireAdmin())
		{
			adminGroup.GET("/artwork/:key", controllers.GetArtworkURL)
		}
	}
}

// TearDownTest runs after each test
func (suite *FileUploadIntegrationTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (suite *FileUploadIntegrationTestSuite) createQuote() uint {
	var product models.Product
	suite.NoError(suite.db.First(&product).Error)

	payload, _ := json.Marshal(map[string]interface{}{
		"customer_name":  "Asha Rao",
		"customer_email": "asha@test.com",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return uint(response["data"].(map[string]interface{})["id"].(float64))
}

func (suite *FileUploadIntegrationTestSuite) uploadFile(quoteID uint, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	suite.NoError(err)
	part.Write(content)
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/quotes/%d/files", quoteID), body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *FileUploadIntegrationTestSuite) TestArtworkRoundTrip() {
	quoteID := suite.createQuote()

	w := suite.uploadFile(quoteID, "banner.pdf", []byte("%PDF-1.4 artwork"))
	suite.Equal(http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	var quote models.Quote
	suite.NoError(suite.db.First(&quote, quoteID).Error)
	suite.Len(quote.Files, 1)
	suite.Equal("banner.pdf", quote.Files[0].FileName)
	suite.True(suite.mockS3.FileExists(quote.Files[0].OriginalFile))

	// Admin resolves the stored key to a presigned URL. The route parameter is
	// the bare filename portion of the storage key.
	key := quote.Files[0].OriginalFile
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/artwork/"+key[len("artwork/"):], nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code, "Response body: %s", rec.Body.String())

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	url := response["data"].(map[string]interface{})["url"].(string)
	suite.Contains(url, key)
}

func (suite *FileUploadIntegrationTestSuite) TestUploadRejectsWrongFormat() {
	quoteID := suite.createQuote()

	w := suite.uploadFile(quoteID, "malware.exe", []byte("MZ"))
	suite.Equal(http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("INVALID_FILE_FORMAT", response["error"].(map[string]interface{})["code"])

	// Nothing reached storage
	suite.Empty(suite.mockS3.GetUploadedFiles())
}

func (suite *FileUploadIntegrationTestSuite) TestUploadToUnknownQuote() {
	w := suite.uploadFile(999, "banner.pdf", []byte("%PDF"))
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *FileUploadIntegrationTestSuite) TestMultipleFilesAccumulate() {
	quoteID := suite.createQuote()

	suite.Equal(http.StatusOK, suite.uploadFile(quoteID, "front.pdf", []byte("%PDF front")).Code)
	suite.Equal(http.StatusOK, suite.uploadFile(quoteID, "back.pdf", []byte("%PDF back")).Code)

	var quote models.Quote
	suite.NoError(suite.db.First(&quote, quoteID).Error)
	suite.Len(quote.Files, 2)

	// quote_created plus one file_attached entry per upload
	suite.Len(quote.AuditTrail, 3)
}

// TestFileUploadIntegrationTestSuite runs the test suite
func TestFileUploadIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(FileUploadIntegrationTestSuite))
}
