package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"billforge/internal/domain"
	"billforge/internal/export"
	"billforge/internal/port"
	"billforge/internal/service"
)

// DocumentHandler handles invoice and quote endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, logger: logger}
}

// Create handles POST /api/v1/documents
// @Summary Create a document
// @Description Create an invoice or quote from form fields, free text routed through extraction, or both
// @Tags documents
// @Accept json
// @Produce json
// @Param request body service.CreateDocumentInput true "Document creation details"
// @Success 201 {object} Response{data=service.DocumentResult} "Document created"
// @Failure 400 {object} ErrorResponseBody "Invalid type or no line items"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Referenced client not found"
// @Failure 503 {object} ErrorResponseBody "No extraction provider configured"
// @Security UserIDAuth
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	var input service.CreateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "type is required ('invoice' or 'quote')")
		return
	}

	result, err := h.documentService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondCreated(c, result)
}

// Extract handles POST /api/v1/documents/extract
// @Summary Extract a draft from free text
// @Description Run extraction and normalization on free text without persisting anything, returning the repaired draft and its clarification flags
// @Tags documents
// @Accept json
// @Produce json
// @Param request body service.ExtractDocumentInput true "Raw text and document type"
// @Success 200 {object} Response{data=service.DraftResult} "Repaired draft"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 503 {object} ErrorResponseBody "No extraction provider configured"
// @Security UserIDAuth
// @Router /documents/extract [post]
func (h *DocumentHandler) Extract(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	var input service.ExtractDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "type and raw_text are required")
		return
	}

	result, err := h.documentService.Extract(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security UserIDAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, doc)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List the user's documents, newest first, with optional type and status filters
// @Tags documents
// @Produce json
// @Param type query string false "Filter by type (invoice or quote)"
// @Param status query string false "Filter by status"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Failure 400 {object} ErrorResponseBody "Invalid type filter"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	input := service.ListDocumentsInput{Offset: offset, Limit: limit}

	if t := c.Query("type"); t != "" {
		docType := domain.DocumentType(t)
		if !domain.AllowedDocumentTypes[docType] {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "type must be 'invoice' or 'quote'")
			return
		}
		input.Type = docType
	}
	if s := c.Query("status"); s != "" {
		input.Status = domain.DocumentStatus(s)
	}

	docs, total, err := h.documentService.List(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Update handles PUT /api/v1/documents/:id
// @Summary Update a document
// @Description Merge changes into a document and recompute totals and clarification state. The identifier and status never change here.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body service.UpdateDocumentInput true "Fields to change"
// @Success 200 {object} Response{data=service.DocumentResult} "Updated document"
// @Failure 400 {object} ErrorResponseBody "Invalid request or empty item list"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security UserIDAuth
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var input service.UpdateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is required")
		return
	}

	result, err := h.documentService.Update(c.Request.Context(), userID, docID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}

// UpdateStatus handles PATCH /api/v1/documents/:id/status
// @Summary Update document status
// @Description Transition the document lifecycle status within the allowed set for its type
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body StatusUpdateRequest true "Target status"
// @Success 200 {object} Response{data=domain.Document} "Updated document"
// @Failure 400 {object} ErrorResponseBody "Status not allowed for this document type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security UserIDAuth
// @Router /documents/{id}/status [patch]
func (h *DocumentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		Status domain.DocumentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}

	doc, err := h.documentService.UpdateStatus(c.Request.Context(), userID, docID, req.Status)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security UserIDAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), userID, docID); err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}

// DownloadPDF handles GET /api/v1/documents/:id/pdf
// @Summary Download document PDF
// @Tags documents
// @Produce application/pdf
// @Param id path string true "Document ID (UUID)"
// @Success 200 {file} binary "Rendered PDF"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security UserIDAuth
// @Router /documents/{id}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	pdf, doc, err := h.documentService.RenderPDF(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Identifier+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Send handles POST /api/v1/documents/:id/send
// @Summary Send a document to the client
// @Description Email the rendered PDF to the document's client address; a draft moves to sent
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document sent"
// @Failure 400 {object} ErrorResponseBody "Document has no client email"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security UserIDAuth
// @Router /documents/{id}/send [post]
func (h *DocumentHandler) Send(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.Send(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, doc)
}

// Export handles GET /api/v1/documents/export
// @Summary Export documents
// @Description Download the user's documents as CSV (default) or XLSX, with optional type and status filters
// @Tags documents
// @Produce text/csv
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Param type query string false "Filter by type (invoice or quote)"
// @Param status query string false "Filter by status"
// @Success 200 {file} binary "Exported spreadsheet"
// @Failure 400 {object} ErrorResponseBody "Invalid format or type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be 'csv' or 'xlsx'")
		return
	}

	var filter port.DocumentFilter
	if t := c.Query("type"); t != "" {
		docType := domain.DocumentType(t)
		if !domain.AllowedDocumentTypes[docType] {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "type must be 'invoice' or 'quote'")
			return
		}
		filter.Type = docType
	}
	if s := c.Query("status"); s != "" {
		filter.Status = domain.DocumentStatus(s)
	}

	docs, err := h.documentService.ListForExport(c.Request.Context(), userID, filter)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	prefix := "documents"
	switch filter.Type {
	case domain.DocumentTypeInvoice:
		prefix = "invoices"
	case domain.DocumentTypeQuote:
		prefix = "quotes"
	}

	if format == "xlsx" {
		filename := export.BuildFilename(prefix, "xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Status(http.StatusOK)
		if err := export.WriteXLSX(c.Writer, docs); err != nil {
			// Headers are already sent; nothing left to do but log.
			h.logger.Warn("documentHandler.Export: xlsx write failed", zap.Error(err))
		}
		return
	}

	filename := export.BuildFilename(prefix, "csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		h.logger.Warn("documentHandler.Export: write BOM failed", zap.Error(err))
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		h.logger.Warn("documentHandler.Export: write header failed", zap.Error(err))
		return
	}
	if err := w.WriteDocuments(docs); err != nil {
		h.logger.Warn("documentHandler.Export: write rows failed", zap.Error(err))
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.logger.Warn("documentHandler.Export: flush failed", zap.Error(err))
	}
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
