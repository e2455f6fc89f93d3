// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/middleware"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// POST /add
func (h *ProductHandler) AddProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	sub, err := submissionFromRequest(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyRequestMalformed))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyProductCreated), product)
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	// Public callers only see moderated products
	products, err := h.productService.GetProducts(c.Request.Context(), !utils.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductsFetched), products)
}

// GET /product?id=
func (h *ProductHandler) GetProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id := c.Query("id")
	if id == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductIDMissing))
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductFetched), product)
}

// GET /searchproduct?query=&category=&subcategory=&page=&limit=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.SearchProducts(c.Request.Context(), services.ProductSearchParams{
		Query:        c.Query("query"),
		Category:     c.Query("category"),
		Subcategory:  c.Query("subcategory"),
		ApprovedOnly: !utils.IsAdmin(c),
		Page:         params.Page,
		Limit:        params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := i18n.T(lang, i18n.KeySearchResultsFound, total)
	if total == 0 {
		message = i18n.T(lang, i18n.KeySearchNoResults)
	}

	utils.PaginatedResponse(c, message, utils.CreatePaginationResult(products, total, params))
}

// PATCH /update
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	sub, err := submissionFromRequest(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyRequestMalformed))
		return
	}

	id := productID(c, sub.Values)
	if id == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductIDMissing))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, sub)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductUpdated), product)
}

// PATCH /Aprove
func (h *ProductHandler) ApproveProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := h.requireID(c)
	if !ok {
		return
	}

	product, err := h.productService.ApproveProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductApproved), product)
}

// DELETE /delete
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := h.requireID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductDeleted), nil)
}

// requireID reads the product id from the query string or the body and
// writes the error response when there is none.
func (h *ProductHandler) requireID(c *gin.Context) (string, bool) {
	lang := utils.GetLangFromContext(c)

	if id := c.Query("id"); id != "" {
		return id, true
	}

	values, err := requestValues(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyRequestMalformed))
		return "", false
	}

	id := productID(c, values)
	if id == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductIDMissing))
		return "", false
	}
	return id, true
}

func submissionFromRequest(c *gin.Context) (*services.ProductSubmission, error) {
	values, err := requestValues(c)
	if err != nil {
		return nil, err
	}
	return &services.ProductSubmission{
		Values: values,
		Files:  middleware.UploadedFiles(c),
	}, nil
}
