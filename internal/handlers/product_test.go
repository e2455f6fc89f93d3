package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/database"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/repositories"
	"github.com/javajoker/catalog-backend/internal/router"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

const assetsBaseURL = "http://assets.test"

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
}

type filePart struct {
	field, name string
	data        []byte
}

type ProductAPITestSuite struct {
	suite.Suite
	router     *gin.Engine
	repo       repositories.ProductRepository
	cancel     context.CancelFunc
	adminToken string
	userToken  string
}

func (suite *ProductAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
}

func (suite *ProductAPITestSuite) SetupTest() {
	t := suite.T()

	cfg := &config.Config{
		Server: config.ServerConfig{MaxUploadSize: 8 << 20},
		JWT:    config.JWTConfig{SecretKey: "test-secret"},
		Storage: config.StorageConfig{
			Driver:        "local",
			LocalDir:      t.TempDir(),
			PublicBaseURL: assetsBaseURL,
			TempDir:       t.TempDir(),
			MaxFileSize:   1 << 20,
		},
		I18n: config.I18nConfig{DefaultLocale: "en"},
	}

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel:   "silent",
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunMigrations(db))
	t.Cleanup(func() { database.Close(db) })

	storage, err := services.NewStorageService(cfg)
	suite.Require().NoError(err)

	var ctx context.Context
	ctx, suite.cancel = context.WithCancel(context.Background())
	suite.repo = repositories.NewGORMProductRepository(db)
	suite.router = router.Initialize(ctx, cfg, suite.repo, storage, nil)

	suite.adminToken, err = utils.GenerateJWT("admin-1", "root", utils.RoleAdmin, time.Hour)
	suite.Require().NoError(err)
	suite.userToken, err = utils.GenerateJWT("user-1", "ana", "customer", time.Hour)
	suite.Require().NoError(err)
}

func (suite *ProductAPITestSuite) TearDownTest() {
	suite.cancel()
}

func (suite *ProductAPITestSuite) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (suite *ProductAPITestSuite) multipart(method, path string, fields map[string]string, files ...filePart) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		suite.Require().NoError(mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		suite.Require().NoError(err)
		_, err = fw.Write(f.data)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (suite *ProductAPITestSuite) productFields(title string) map[string]string {
	return map[string]string{
		"title":       title,
		"description": title + " description",
		"price":       "19.99",
		"stocks":      "5",
	}
}

func (suite *ProductAPITestSuite) addProduct(fields map[string]string, files ...filePart) (*httptest.ResponseRecorder, envelope) {
	if len(files) == 0 {
		files = []filePart{{"image", "main.png", pngBytes}}
	}
	return suite.do(suite.multipart(http.MethodPost, "/add", fields, files...), suite.adminToken)
}

func (suite *ProductAPITestSuite) mustAdd(title string) models.Product {
	w, resp := suite.addProduct(suite.productFields(title))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return suite.decodeProduct(resp)
}

func (suite *ProductAPITestSuite) decodeProduct(resp envelope) models.Product {
	var product models.Product
	suite.Require().NoError(json.Unmarshal(resp.Data, &product))
	return product
}

func (suite *ProductAPITestSuite) decodeProducts(resp envelope) []models.Product {
	var products []models.Product
	suite.Require().NoError(json.Unmarshal(resp.Data, &products))
	return products
}

func (suite *ProductAPITestSuite) approve(id uuid.UUID) {
	w, _ := suite.do(httptest.NewRequest(http.MethodPatch, "/Aprove?id="+id.String(), nil), suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
}

func (suite *ProductAPITestSuite) TestAddProduct() {
	fields := suite.productFields("Blue Shirt")
	fields["sku"] = "SKU-1"
	fields["tags"] = "cotton"

	w, resp := suite.addProduct(fields,
		filePart{"image", "main.png", pngBytes},
		filePart{"thumbnail", "a.png", pngBytes},
		filePart{"thumbnail", "b.png", pngBytes},
	)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.True(resp.Success)
	suite.Equal("Product added successfully", resp.Message)

	product := suite.decodeProduct(resp)
	suite.NotEqual(uuid.Nil, product.ID)
	suite.False(product.IsApproved)
	suite.Equal("Blue Shirt", product.Title)
	suite.Equal([]string{"cotton"}, []string(product.Tags))
	suite.True(strings.HasPrefix(product.Image, assetsBaseURL+"/uploads/products/"))
	suite.Len(product.Thumbnail, 2)

	// the stored asset is served back
	assetReq := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(product.Image, assetsBaseURL), nil)
	aw := httptest.NewRecorder()
	suite.router.ServeHTTP(aw, assetReq)
	suite.Equal(http.StatusOK, aw.Code)
	suite.Equal(pngBytes, aw.Body.Bytes())
}

func (suite *ProductAPITestSuite) TestAddProduct_RequiresAdmin() {
	req := suite.multipart(http.MethodPost, "/add", suite.productFields("Blue Shirt"), filePart{"image", "main.png", pngBytes})
	w, resp := suite.do(req, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.False(resp.Success)

	req = suite.multipart(http.MethodPost, "/add", suite.productFields("Blue Shirt"), filePart{"image", "main.png", pngBytes})
	w, resp = suite.do(req, suite.userToken)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("Admin access required", resp.Message)
}

func (suite *ProductAPITestSuite) TestAddProduct_Validation() {
	missingTitle := suite.productFields("x")
	delete(missingTitle, "title")
	negative := suite.productFields("Blue Shirt")
	negative["price"] = "-4"

	tests := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{"empty body", suite.multipart(http.MethodPost, "/add", nil), "request body is missing or empty"},
		{"missing title", suite.multipart(http.MethodPost, "/add", missingTitle, filePart{"image", "a.png", pngBytes}), "title is required"},
		{"negative price", suite.multipart(http.MethodPost, "/add", negative, filePart{"image", "a.png", pngBytes}), "price must be a number from 0 to 9999999999.99 with at most 2 decimal places"},
		{"no image", suite.multipart(http.MethodPost, "/add", suite.productFields("Blue Shirt")), "image file is required"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w, resp := suite.do(tt.req, suite.adminToken)
			suite.Equal(http.StatusBadRequest, w.Code)
			suite.False(resp.Success)
			suite.Equal(tt.message, resp.Message)
		})
	}

	products, err := suite.repo.FindAll(context.Background(), false)
	suite.Require().NoError(err)
	suite.Empty(products)
}

func (suite *ProductAPITestSuite) TestAddProduct_UploadFailure() {
	w, resp := suite.addProduct(suite.productFields("Blue Shirt"), filePart{"image", "main.png", []byte("plain text, not an image")})
	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Asset upload failed", resp.Message)
	suite.NotContains(w.Body.String(), "not allowed")

	products, err := suite.repo.FindAll(context.Background(), false)
	suite.Require().NoError(err)
	suite.Empty(products)
}

func (suite *ProductAPITestSuite) TestAddProduct_DuplicateSKU() {
	fields := suite.productFields("Blue Shirt")
	fields["sku"] = "SKU-1"
	w, _ := suite.addProduct(fields)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w, resp := suite.addProduct(fields)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("A product with this SKU already exists", resp.Message)
}

func (suite *ProductAPITestSuite) TestGetProducts_PublicSeesApprovedOnly() {
	approved := suite.mustAdd("Blue Shirt")
	suite.mustAdd("Red Pants")
	suite.approve(approved.ID)

	w, resp := suite.do(httptest.NewRequest(http.MethodGet, "/products", nil), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	public := suite.decodeProducts(resp)
	suite.Require().Len(public, 1)
	suite.Equal(approved.ID, public[0].ID)

	w, resp = suite.do(httptest.NewRequest(http.MethodGet, "/products", nil), suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(suite.decodeProducts(resp), 2)
}

func (suite *ProductAPITestSuite) TestGetProducts_EmptyListIsArray() {
	w, _ := suite.do(httptest.NewRequest(http.MethodGet, "/products", nil), "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"success":true,"data":[],"message":"Products fetched successfully"}`, w.Body.String())
}

func (suite *ProductAPITestSuite) TestGetProduct() {
	created := suite.mustAdd("Blue Shirt")

	w, resp := suite.do(httptest.NewRequest(http.MethodGet, "/product?id="+created.ID.String(), nil), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	got := suite.decodeProduct(resp)
	suite.Equal(created.ID, got.ID)
	suite.True(got.Price.Equal(created.Price))

	for path, status := range map[string]int{
		"/product":                        http.StatusBadRequest,
		"/product?id=not-a-uuid":          http.StatusNotFound,
		"/product?id=" + uuid.NewString(): http.StatusNotFound,
	} {
		w, resp := suite.do(httptest.NewRequest(http.MethodGet, path, nil), "")
		suite.Equal(status, w.Code, path)
		suite.False(resp.Success)
	}
}

func (suite *ProductAPITestSuite) TestGetProduct_LocalizedNotFound() {
	req := httptest.NewRequest(http.MethodGet, "/product?id="+uuid.NewString(), nil)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9")
	w, resp := suite.do(req, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("找不到商品", resp.Message)
}

func (suite *ProductAPITestSuite) TestSearchProducts() {
	shirt := suite.mustAdd("Blue Shirt")
	pants := suite.mustAdd("Red Pants")
	suite.approve(shirt.ID)
	suite.approve(pants.ID)

	w, resp := suite.do(httptest.NewRequest(http.MethodGet, "/searchproduct?query=shirt", nil), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	products := suite.decodeProducts(resp)
	suite.Require().Len(products, 1)
	suite.Equal("Blue Shirt", products[0].Title)
	suite.Equal("1", w.Header().Get("X-Total-Count"))
	pagination := resp.Meta["pagination"].(map[string]interface{})
	suite.Equal(float64(1), pagination["total"])
	suite.Equal(float64(1), pagination["page"])

	w, resp = suite.do(httptest.NewRequest(http.MethodGet, "/searchproduct", nil), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(suite.decodeProducts(resp), 2)

	w, resp = suite.do(httptest.NewRequest(http.MethodGet, "/searchproduct?page=9&limit=10", nil), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.True(resp.Success)
	suite.Equal("[]", string(resp.Data))
}

func (suite *ProductAPITestSuite) TestSearchProducts_HidesUnapprovedFromPublic() {
	suite.mustAdd("Blue Shirt")

	w, resp := suite.do(httptest.NewRequest(http.MethodGet, "/searchproduct?query=shirt", nil), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(suite.decodeProducts(resp))
	suite.Equal("No products found", resp.Message)

	w, resp = suite.do(httptest.NewRequest(http.MethodGet, "/searchproduct?query=shirt", nil), suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(suite.decodeProducts(resp), 1)
}

func (suite *ProductAPITestSuite) TestApproveProduct_JSONBodyTwice() {
	created := suite.mustAdd("Blue Shirt")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPatch, "/Aprove", strings.NewReader(`{"id":"`+created.ID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		w, resp := suite.do(req, suite.adminToken)
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		suite.True(suite.decodeProduct(resp).IsApproved)
	}
}

func (suite *ProductAPITestSuite) TestApproveProduct_MissingID() {
	w, resp := suite.do(httptest.NewRequest(http.MethodPatch, "/Aprove", nil), suite.adminToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Product id is required", resp.Message)
}

func (suite *ProductAPITestSuite) TestDeleteProduct() {
	created := suite.mustAdd("Blue Shirt")

	deleteReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodDelete, "/delete", strings.NewReader(url.Values{"id": {created.ID.String()}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	w, resp := suite.do(deleteReq(), suite.userToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w, resp = suite.do(deleteReq(), suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Product deleted successfully", resp.Message)

	w, _ = suite.do(httptest.NewRequest(http.MethodGet, "/product?id="+created.ID.String(), nil), "")
	suite.Equal(http.StatusNotFound, w.Code)

	w, resp = suite.do(deleteReq(), suite.adminToken)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Product not found", resp.Message)
}

func (suite *ProductAPITestSuite) TestUpdateProduct() {
	w, resp := suite.addProduct(suite.productFields("Blue Shirt"),
		filePart{"image", "main.png", pngBytes},
		filePart{"thumbnail", "a.png", pngBytes},
		filePart{"thumbnail", "b.png", pngBytes},
	)
	suite.Require().Equal(http.StatusCreated, w.Code)
	created := suite.decodeProduct(resp)

	req := suite.multipart(http.MethodPatch, "/update", map[string]string{
		"id":    created.ID.String(),
		"title": "Navy Shirt",
	}, filePart{"thumbnail", "c.png", pngBytes})
	w, resp = suite.do(req, suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	updated := suite.decodeProduct(resp)
	suite.Equal("Navy Shirt", updated.Title)
	suite.Equal(created.Description, updated.Description)
	suite.Equal(created.Image, updated.Image)
	suite.Require().Len(updated.Thumbnail, 1)
	suite.NotContains([]string(created.Thumbnail), updated.Thumbnail[0])
}

func (suite *ProductAPITestSuite) TestUpdateProduct_Errors() {
	created := suite.mustAdd("Blue Shirt")

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"missing id", suite.multipart(http.MethodPatch, "/update", map[string]string{"title": "x"}), http.StatusBadRequest},
		{"unknown id", suite.multipart(http.MethodPatch, "/update?id="+uuid.NewString(), map[string]string{"title": "x"}), http.StatusNotFound},
		{"negative stocks", suite.multipart(http.MethodPatch, "/update?id="+created.ID.String(), map[string]string{"stocks": "-2"}), http.StatusBadRequest},
		{"unexpected file field", suite.multipart(http.MethodPatch, "/update?id="+created.ID.String(), nil, filePart{"avatar", "a.png", pngBytes}), http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w, resp := suite.do(tt.req, suite.adminToken)
			suite.Equal(tt.status, w.Code)
			suite.False(resp.Success)
		})
	}
}

func (suite *ProductAPITestSuite) TestHealth() {
	w, resp := suite.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	suite.Equal(http.StatusOK, w.Code)
	suite.True(resp.Success)
}

func TestProductAPITestSuite(t *testing.T) {
	suite.Run(t, new(ProductAPITestSuite))
}
