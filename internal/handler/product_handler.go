package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"billforge/internal/service"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// Create handles POST /api/v1/products
// @Summary Create a product
// @Description Add a catalog entry; unit price and tax rate are canonicalized to plain decimal strings
// @Tags products
// @Accept json
// @Produce json
// @Param request body service.CreateProductInput true "Product details"
// @Success 201 {object} Response{data=domain.Product} "Product created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondCreated(c, product)
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} Response{data=domain.Product} "Product details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Product not found"
// @Security UserIDAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid product ID")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), userID, productID)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, product)
}

// List handles GET /api/v1/products
// @Summary List products
// @Tags products
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Product,meta=PagMeta} "List of products"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	products, total, err := h.productService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondPaginated(c, products, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Update handles PUT /api/v1/products/:id
// @Summary Update a product
// @Description Merge the provided fields into the product; omitted fields keep their stored values
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param request body service.UpdateProductInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Product} "Updated product"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Product not found"
// @Security UserIDAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid product ID")
		return
	}

	var input service.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is required")
		return
	}

	product, err := h.productService.Update(c.Request.Context(), userID, productID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, product)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Remove a product; documents that reference it keep their line item snapshots
// @Tags products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Product deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Product not found"
// @Security UserIDAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), userID, productID); err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{"message": "product deleted"})
}

// Match handles POST /api/v1/products/match
// @Summary Match a product mention
// @Description Score an extracted line item description against the user's catalog and return up to three ranked candidates with a confidence level
// @Tags products
// @Accept json
// @Produce json
// @Param request body service.MatchProductInput true "Extracted product fields"
// @Success 200 {object} Response{data=MatchResponse} "Ranked candidates"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /products/match [post]
func (h *ProductHandler) Match(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	var input service.MatchProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is required")
		return
	}

	result, err := h.productService.Match(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}
