package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"billforge/internal/domain"
	"billforge/internal/match"
	"billforge/internal/money"
	"billforge/internal/normalize"
	"billforge/internal/numbering"
	"billforge/internal/port"
)

// defaultDueDays is the payment/validity window applied when a create request
// omits the due date.
const defaultDueDays = 30

// DocumentItemInput is one line of a create or update request. Amounts are
// decimal strings. A ProductID links the line to a catalog product; blank
// description, price and tax rate are then filled from the catalog.
type DocumentItemInput struct {
	ProductID   *uuid.UUID `json:"product_id"`
	Description string     `json:"description"`
	Quantity    string     `json:"quantity"`
	UnitPrice   string     `json:"unit_price"`
	TaxRate     string     `json:"tax_rate"`
}

// CreateDocumentInput is the DTO for creating a document, either from filled
// form fields (Items) or from free text (RawText) routed through extraction.
// When both are present the extracted draft supplies whatever the form left
// blank.
type CreateDocumentInput struct {
	Type        domain.DocumentType `json:"type" binding:"required"`
	RawText     string              `json:"raw_text"`
	ClientID    *uuid.UUID          `json:"client_id"`
	ClientName  string              `json:"client_name"`
	ClientEmail string              `json:"client_email"`
	IssueDate   string              `json:"issue_date"`
	DueDate     string              `json:"due_date"`
	Items       []DocumentItemInput `json:"items"`
	Discount    string              `json:"discount"`
	Notes       string              `json:"notes"`
}

// UpdateDocumentInput is the DTO for updating a document. Nil fields keep
// their stored value; Items nil keeps the stored lines while an empty slice
// is rejected with ErrNoLineItems. Passing the zero uuid as ClientID unlinks
// the client while keeping the name snapshot.
type UpdateDocumentInput struct {
	ClientID    *uuid.UUID          `json:"client_id"`
	ClientName  *string             `json:"client_name"`
	ClientEmail *string             `json:"client_email"`
	IssueDate   *string             `json:"issue_date"`
	DueDate     *string             `json:"due_date"`
	Items       []DocumentItemInput `json:"items"`
	Discount    *string             `json:"discount"`
	Notes       *string             `json:"notes"`
}

// ExtractDocumentInput is the DTO for the extraction dry run.
type ExtractDocumentInput struct {
	Type    domain.DocumentType `json:"type" binding:"required"`
	RawText string              `json:"raw_text" binding:"required"`
}

// ListDocumentsInput carries the list filter and pagination window.
type ListDocumentsInput struct {
	Type   domain.DocumentType
	Status domain.DocumentStatus
	Offset int
	Limit  int
}

// DocumentResult is the workflow outcome: the persisted document, its
// terminal state, and the client match metadata produced while resolving the
// client reference (nil when no matching ran).
type DocumentResult struct {
	Document      *domain.Document     `json:"document"`
	State         domain.DocumentState `json:"state"`
	ClientMatches *match.Result        `json:"client_matches,omitempty"`
}

// DraftResult is the extraction dry-run outcome: the repaired draft and its
// clarification flags, without anything persisted.
type DraftResult struct {
	Draft              normalize.Draft `json:"draft"`
	NeedsClarification bool            `json:"needs_clarification"`
	Questions          []string        `json:"clarification_questions"`
	ClientMatches      *match.Result   `json:"client_matches,omitempty"`
	ModelUsed          string          `json:"model_used,omitempty"`
}

// DocumentService runs the document workflow: extraction, normalization,
// entity matching, totals and numbering composed into create/update, plus the
// read, lifecycle and delivery operations around it.
type DocumentService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateDocumentInput) (*DocumentResult, error)
	Extract(ctx context.Context, userID uuid.UUID, input ExtractDocumentInput) (*DraftResult, error)
	GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, userID uuid.UUID, input ListDocumentsInput) ([]domain.Document, int, error)
	ListForExport(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter) ([]domain.Document, error)
	Update(ctx context.Context, userID, docID uuid.UUID, input UpdateDocumentInput) (*DocumentResult, error)
	UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status domain.DocumentStatus) (*domain.Document, error)
	Delete(ctx context.Context, userID, docID uuid.UUID) error
	RenderPDF(ctx context.Context, userID, docID uuid.UUID) ([]byte, *domain.Document, error)
	Send(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error)
}

type documentService struct {
	docRepo     port.DocumentRepository
	clientRepo  port.ClientRepository
	productRepo port.ProductRepository
	extractor   port.DocumentExtractor // nil when no provider is configured
	renderer    port.DocumentRenderer
	sender      port.EmailSender
	logger      *zap.Logger
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	clientRepo port.ClientRepository,
	productRepo port.ProductRepository,
	extractor port.DocumentExtractor,
	renderer port.DocumentRenderer,
	sender port.EmailSender,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		docRepo:     docRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		extractor:   extractor,
		renderer:    renderer,
		sender:      sender,
		logger:      logger,
	}
}

// Create runs the full pipeline: normalize (when text-extracted), match the
// client reference when unresolved, compute per-item and document totals,
// assign the identifier, persist. Every step degrades to a flagged
// best-effort result; the only hard failures are an invalid type, a dangling
// client reference, zero line items, and storage errors.
func (s *documentService) Create(ctx context.Context, userID uuid.UUID, input CreateDocumentInput) (*DocumentResult, error) {
	if !domain.AllowedDocumentTypes[input.Type] {
		return nil, domain.ErrInvalidDocumentType
	}

	doc := &domain.Document{
		UserID:      userID,
		Type:        input.Type,
		Status:      domain.StatusDraft,
		ClientID:    input.ClientID,
		ClientName:  strings.TrimSpace(input.ClientName),
		ClientEmail: strings.TrimSpace(input.ClientEmail),
		Discount:    strings.TrimSpace(input.Discount),
		Notes:       strings.TrimSpace(input.Notes),
	}

	var (
		questions []string
		items     []domain.LineItem
		extracted match.ExtractedEntity
	)

	if strings.TrimSpace(input.RawText) != "" {
		norm, _, err := s.extractDraft(ctx, input.RawText, input.Type)
		if err != nil {
			return nil, err
		}
		questions = norm.Questions
		items = draftItems(norm.Draft.Items)
		extracted = norm.Draft.Client.Entity()

		// Form fields win over extracted ones when both are present.
		if doc.ClientName == "" {
			doc.ClientName = norm.Draft.Client.Name
			doc.ClientEmail = norm.Draft.Client.Email
		}
		doc.IssueDate = norm.Draft.IssueDate
		doc.DueDate = norm.Draft.DueDate
		if doc.Discount == "" {
			doc.Discount = norm.Draft.Discount
		}
		if doc.Notes == "" {
			doc.Notes = norm.Draft.Notes
		}
	} else {
		items = s.manualItems(ctx, userID, input.Items)
		doc.IssueDate, doc.DueDate, questions = resolveDates(input.IssueDate, input.DueDate, input.Type, questions)
		extracted = match.ExtractedEntity{
			Name:  doc.ClientName,
			Email: doc.ClientEmail,
		}
	}

	if len(items) == 0 {
		return nil, domain.ErrNoLineItems
	}

	clientMatches, questions, err := s.resolveClient(ctx, userID, doc, extracted, questions)
	if err != nil {
		return nil, err
	}

	s.computeTotals(doc, items)

	num := numbering.Next(ctx, userID, doc.Type, s.docRepo.LatestIdentifier)
	if num.Fallback {
		s.logger.Warn("documentService.Create: identifier fallback",
			zap.String("user_id", userID.String()),
			zap.String("reason", num.Reason))
	}
	doc.Identifier = num.Identifier

	doc.NeedsClarification = len(questions) > 0
	doc.ClarificationQuestions = questions

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return &DocumentResult{Document: doc, State: doc.State(), ClientMatches: clientMatches}, nil
}

// Extract is the dry-run surface: extraction, normalization and client
// matching without persisting anything.
func (s *documentService) Extract(ctx context.Context, userID uuid.UUID, input ExtractDocumentInput) (*DraftResult, error) {
	if !domain.AllowedDocumentTypes[input.Type] {
		return nil, domain.ErrInvalidDocumentType
	}

	norm, modelUsed, err := s.extractDraft(ctx, input.RawText, input.Type)
	if err != nil {
		return nil, err
	}

	result := &DraftResult{
		Draft:     norm.Draft,
		Questions: norm.Questions,
		ModelUsed: modelUsed,
	}

	if name := norm.Draft.Client.Name; name != "" && name != normalize.UnknownClientName {
		res := s.matchClient(ctx, userID, norm.Draft.Client.Entity())
		result.ClientMatches = &res
		if res.Confidence != domain.ConfidenceHigh || len(res.Matches) == 0 {
			result.Questions = normalize.AppendQuestion(result.Questions,
				fmt.Sprintf("Which existing client does %q refer to?", name))
		}
	}

	result.NeedsClarification = len(result.Questions) > 0
	return result, nil
}

func (s *documentService) GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, userID, docID)
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID, input ListDocumentsInput) ([]domain.Document, int, error) {
	filter := port.DocumentFilter{Type: input.Type, Status: input.Status}
	return s.docRepo.ListByUser(ctx, userID, filter, input.Offset, input.Limit)
}

func (s *documentService) ListForExport(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter) ([]domain.Document, error) {
	return s.docRepo.ListForExport(ctx, userID, filter)
}

// Update merges the input into the stored document and re-runs the
// computation tail of the pipeline: client resolution, per-item totals,
// document totals. The identifier and status are never touched here, and the
// clarification state is recomputed from the merged document rather than
// carried over.
func (s *documentService) Update(ctx context.Context, userID, docID uuid.UUID, input UpdateDocumentInput) (*DocumentResult, error) {
	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	var questions []string

	if input.ClientID != nil {
		if *input.ClientID == uuid.Nil {
			doc.ClientID = nil
		} else {
			doc.ClientID = input.ClientID
		}
	}
	if input.ClientName != nil {
		name := strings.TrimSpace(*input.ClientName)
		if input.ClientID == nil && !strings.EqualFold(name, doc.ClientName) {
			// A renamed client invalidates the stored link.
			doc.ClientID = nil
		}
		doc.ClientName = name
	}
	if input.ClientEmail != nil {
		doc.ClientEmail = strings.TrimSpace(*input.ClientEmail)
	}
	if input.IssueDate != nil {
		if parsed := normalize.ParseDate(*input.IssueDate); !parsed.IsZero() {
			doc.IssueDate = parsed
		} else {
			questions = normalize.AppendQuestion(questions, "What is the issue date for this document?")
		}
	}
	if input.DueDate != nil {
		if parsed := normalize.ParseDate(*input.DueDate); !parsed.IsZero() {
			doc.DueDate = parsed
		} else if doc.Type == domain.DocumentTypeQuote {
			questions = normalize.AppendQuestion(questions, "Until when is this quote valid?")
		} else {
			questions = normalize.AppendQuestion(questions, "When is payment due?")
		}
	}
	if input.Discount != nil {
		doc.Discount = strings.TrimSpace(*input.Discount)
	}
	if input.Notes != nil {
		doc.Notes = strings.TrimSpace(*input.Notes)
	}

	items := []domain.LineItem(doc.Items)
	if input.Items != nil {
		items = s.manualItems(ctx, userID, input.Items)
	}
	if len(items) == 0 {
		return nil, domain.ErrNoLineItems
	}

	extracted := match.ExtractedEntity{Name: doc.ClientName, Email: doc.ClientEmail}
	clientMatches, questions, err := s.resolveClient(ctx, userID, doc, extracted, questions)
	if err != nil {
		return nil, err
	}

	s.computeTotals(doc, items)

	doc.NeedsClarification = len(questions) > 0
	doc.ClarificationQuestions = questions

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	return &DocumentResult{Document: doc, State: doc.State(), ClientMatches: clientMatches}, nil
}

// UpdateStatus transitions the document lifecycle, validating the target
// status against the closed set for the document's type.
func (s *documentService) UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status domain.DocumentStatus) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidStatus(doc.Type, status) {
		return nil, domain.ErrInvalidDocumentStatus
	}
	if err := s.docRepo.UpdateStatus(ctx, userID, docID, status); err != nil {
		return nil, err
	}
	doc.Status = status
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	return s.docRepo.Delete(ctx, userID, docID)
}

// RenderPDF renders the stored document to PDF bytes, returning the document
// alongside so callers can build response headers from it.
func (s *documentService) RenderPDF(ctx context.Context, userID, docID uuid.UUID) ([]byte, *domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.renderer.RenderDocument(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("documentService.RenderPDF: %w", err)
	}
	return pdf, doc, nil
}

// Send emails the rendered document to the client address and marks a draft
// as sent. Re-sending never regresses a later lifecycle status back to sent.
func (s *documentService) Send(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.ClientEmail) == "" {
		return nil, domain.ErrNoRecipient
	}

	pdf, err := s.renderer.RenderDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("documentService.Send: render: %w", err)
	}

	email := port.DocumentEmail{To: doc.ClientEmail, Document: doc, PDF: pdf}
	if err := s.sender.SendDocumentEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("documentService.Send: %w", err)
	}

	if doc.Status == domain.StatusDraft {
		if err := s.docRepo.UpdateStatus(ctx, userID, docID, domain.StatusSent); err != nil {
			return nil, err
		}
		doc.Status = domain.StatusSent
	}
	return doc, nil
}

// extractDraft runs the extraction collaborator and normalizes whatever comes
// back. Transport failures degrade to normalizing an empty payload so the
// caller still gets a structurally valid, clarification-flagged draft; only a
// completely unconfigured extractor is an error.
func (s *documentService) extractDraft(ctx context.Context, text string, docType domain.DocumentType) (normalize.Normalized, string, error) {
	if s.extractor == nil {
		return normalize.Normalized{}, "", domain.ErrExtractionUnavailable
	}

	var (
		raw       []byte
		modelUsed string
	)
	out, err := s.extractor.Extract(ctx, port.ExtractInput{Text: text, DocumentType: docType})
	if err != nil {
		s.logger.Warn("documentService.extractDraft: extraction failed", zap.Error(err))
	} else {
		raw = out.RawJSON
		modelUsed = out.ModelUsed
	}
	return normalize.Normalize(raw, docType), modelUsed, nil
}

// resolveClient settles the document's client reference. An explicit ClientID
// is authoritative and snapshots the stored name; an unlinked name runs the
// matcher and auto-links only on a high-confidence top match, otherwise the
// document is flagged for clarification. Returns the match result when
// matching ran.
func (s *documentService) resolveClient(ctx context.Context, userID uuid.UUID, doc *domain.Document, extracted match.ExtractedEntity, questions []string) (*match.Result, []string, error) {
	if doc.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, userID, *doc.ClientID)
		if err != nil {
			return nil, nil, err
		}
		doc.ClientName = client.Name
		if doc.ClientEmail == "" {
			doc.ClientEmail = client.Email
		}
		return nil, questions, nil
	}

	if doc.ClientName == "" || doc.ClientName == normalize.UnknownClientName {
		questions = normalize.AppendQuestion(questions, "Which client is this document for?")
		return nil, questions, nil
	}

	res := s.matchClient(ctx, userID, extracted)
	if res.Confidence == domain.ConfidenceHigh && len(res.Matches) > 0 {
		top := res.Matches[0].Candidate
		doc.ClientID = &top.ID
		doc.ClientName = top.Name
		if doc.ClientEmail == "" {
			doc.ClientEmail = top.Email
		}
	} else {
		questions = normalize.AppendQuestion(questions,
			fmt.Sprintf("Which existing client does %q refer to?", doc.ClientName))
	}
	return &res, questions, nil
}

// matchClient scores the user's stored clients against the extracted mention.
// Candidate lookup failures degrade to an empty low-confidence result; the
// unresolved client then surfaces as a clarification, not an error.
func (s *documentService) matchClient(ctx context.Context, userID uuid.UUID, extracted match.ExtractedEntity) match.Result {
	clients, _, err := s.clientRepo.ListByUser(ctx, userID, 0, matchCandidateLimit)
	if err != nil {
		s.logger.Warn("documentService.matchClient: candidate lookup failed", zap.Error(err))
		return match.Result{Matches: []match.Scored{}, Confidence: domain.ConfidenceLow}
	}
	return match.Match(extracted, match.ClientCandidates(clients), domain.MatchKindClient)
}

// manualItems converts form lines to line items, filling blanks from the
// catalog when a product reference is given. A dangling product reference is
// dropped rather than failing the request.
func (s *documentService) manualItems(ctx context.Context, userID uuid.UUID, inputs []DocumentItemInput) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		item := domain.LineItem{
			ProductID:   in.ProductID,
			Description: strings.TrimSpace(in.Description),
			Quantity:    strings.TrimSpace(in.Quantity),
			UnitPrice:   strings.TrimSpace(in.UnitPrice),
			TaxRate:     strings.TrimSpace(in.TaxRate),
		}
		if item.ProductID != nil {
			s.fillFromProduct(ctx, userID, &item)
		}
		if item.Quantity == "" {
			item.Quantity = "1"
		}
		items = append(items, item)
	}
	return items
}

func (s *documentService) fillFromProduct(ctx context.Context, userID uuid.UUID, item *domain.LineItem) {
	product, err := s.productRepo.GetByID(ctx, userID, *item.ProductID)
	if err != nil {
		s.logger.Warn("documentService.fillFromProduct: product lookup failed",
			zap.String("product_id", item.ProductID.String()),
			zap.Error(err))
		item.ProductID = nil
		return
	}
	if item.Description == "" {
		item.Description = product.Name
	}
	if item.UnitPrice == "" {
		item.UnitPrice = product.UnitPrice
	}
	if item.TaxRate == "" {
		item.TaxRate = product.TaxRate
	}
}

// computeTotals derives every per-item amount and the document aggregate,
// writing them onto the document.
func (s *documentService) computeTotals(doc *domain.Document, items []domain.LineItem) {
	computed := make(domain.LineItems, len(items))
	amounts := make([]money.ItemAmounts, len(items))
	for i, item := range items {
		lt := money.LineItemTotals(item.Quantity, item.UnitPrice, item.TaxRate)
		item.Subtotal = lt.Subtotal
		item.TaxAmount = lt.TaxAmount
		item.Total = lt.Total
		computed[i] = item
		amounts[i] = money.ItemAmounts{Subtotal: lt.Subtotal, TaxAmount: lt.TaxAmount}
	}

	if doc.Discount == "" {
		doc.Discount = "0"
	}
	totals := money.DocumentTotals(amounts, doc.Discount)

	doc.Items = computed
	doc.Subtotal = totals.Subtotal
	doc.TaxAmount = totals.TaxAmount
	doc.Total = totals.Total
}

// resolveDates settles the manual-path dates: omitted dates default silently
// (today, issue+30d), unparsable dates default the same way but flag a
// question since the caller supplied something unusable.
func resolveDates(issueStr, dueStr string, docType domain.DocumentType, questions []string) (time.Time, time.Time, []string) {
	today := normalize.DateOnly(time.Now().UTC())

	issue := normalize.ParseDate(issueStr)
	if issue.IsZero() {
		issue = today
		if strings.TrimSpace(issueStr) != "" {
			questions = normalize.AppendQuestion(questions, "What is the issue date for this document?")
		}
	}

	due := normalize.ParseDate(dueStr)
	if due.IsZero() {
		due = issue.AddDate(0, 0, defaultDueDays)
		if strings.TrimSpace(dueStr) != "" {
			if docType == domain.DocumentTypeQuote {
				questions = normalize.AppendQuestion(questions, "Until when is this quote valid?")
			} else {
				questions = normalize.AppendQuestion(questions, "When is payment due?")
			}
		}
	}

	return issue, due, questions
}

// draftItems converts normalized draft lines to line items awaiting totals.
func draftItems(items []normalize.Item) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, it := range items {
		out[i] = domain.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		}
	}
	return out
}
