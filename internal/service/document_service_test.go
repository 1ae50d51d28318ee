package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"billforge/internal/domain"
	"billforge/internal/normalize"
	"billforge/internal/port"
	"billforge/internal/service"
	"billforge/mocks"
)

func setupDocumentService() (
	service.DocumentService,
	*mocks.MockDocumentRepo,
	*mocks.MockClientRepo,
	*mocks.MockProductRepo,
	*mocks.MockDocumentExtractor,
	*mocks.MockDocumentRenderer,
	*mocks.MockEmailSender,
) {
	docRepo := new(mocks.MockDocumentRepo)
	clientRepo := new(mocks.MockClientRepo)
	productRepo := new(mocks.MockProductRepo)
	extractor := new(mocks.MockDocumentExtractor)
	renderer := new(mocks.MockDocumentRenderer)
	sender := new(mocks.MockEmailSender)
	svc := service.NewDocumentService(docRepo, clientRepo, productRepo, extractor, renderer, sender, zap.NewNop())
	return svc, docRepo, clientRepo, productRepo, extractor, renderer, sender
}

// --- Create (manual path) ---

func TestDocumentService_Create_ManualReady(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, UserID: userID, Name: "Acme Studio", Email: "billing@acme.test"}, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items: []service.DocumentItemInput{
			{Description: "Design work", Quantity: "5", UnitPrice: "100", TaxRate: "8"},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	doc := result.Document

	assert.Equal(t, domain.StateReady, result.State)
	assert.False(t, doc.NeedsClarification)
	assert.Empty(t, doc.ClarificationQuestions)
	assert.Equal(t, domain.StatusDraft, doc.Status)
	assert.Equal(t, "INV-0001", doc.Identifier)
	assert.Equal(t, "Acme Studio", doc.ClientName)
	assert.Equal(t, "billing@acme.test", doc.ClientEmail)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), doc.IssueDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), doc.DueDate)

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "500.00", doc.Items[0].Subtotal)
	assert.Equal(t, "40.00", doc.Items[0].TaxAmount)
	assert.Equal(t, "540.00", doc.Items[0].Total)
	assert.Equal(t, "500.00", doc.Subtotal)
	assert.Equal(t, "40.00", doc.TaxAmount)
	assert.Equal(t, "540.00", doc.Total)

	docRepo.AssertExpectations(t)
	clientRepo.AssertExpectations(t)
}

func TestDocumentService_Create_DiscountAcrossItems(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Discount:  "50",
		Items: []service.DocumentItemInput{
			{Description: "Hosting", Quantity: "1", UnitPrice: "200", TaxRate: "0"},
			{Description: "Support", Quantity: "3", UnitPrice: "50", TaxRate: "10"},
		},
	})

	require.NoError(t, err)
	doc := result.Document

	// 200.00 + 165.00 item totals, minus the 50 document discount.
	assert.Equal(t, "200.00", doc.Items[0].Total)
	assert.Equal(t, "165.00", doc.Items[1].Total)
	assert.Equal(t, "350.00", doc.Subtotal)
	assert.Equal(t, "15.00", doc.TaxAmount)
	assert.Equal(t, "315.00", doc.Total)
}

func TestDocumentService_Create_InvalidType(t *testing.T) {
	svc, _, _, _, _, _, _ := setupDocumentService()

	result, err := svc.Create(context.Background(), uuid.New(), service.CreateDocumentInput{
		Type: "receipt",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
}

func TestDocumentService_Create_NoItems(t *testing.T) {
	svc, _, _, _, _, _, _ := setupDocumentService()

	result, err := svc.Create(context.Background(), uuid.New(), service.CreateDocumentInput{
		Type:       domain.DocumentTypeInvoice,
		ClientName: "Acme Studio",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoLineItems)
}

func TestDocumentService_Create_ClientRefNotFound(t *testing.T) {
	svc, _, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, userID, clientID).Return(nil, domain.ErrNotFound)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:     domain.DocumentTypeInvoice,
		ClientID: &clientID,
		Items:    []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Create_NamedClientFlaggedBelowHigh(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	stored := domain.Client{ID: uuid.New(), Name: "Acme Studio", Email: "billing@acme.test"}

	clientRepo.On("ListByUser", mock.Anything, userID, 0, 500).Return([]domain.Client{stored}, 1, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	// Exact name and email score 3+5 = 8, which is not above the high
	// threshold, so the document must stay unlinked and flagged.
	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:        domain.DocumentTypeInvoice,
		ClientName:  "Acme Studio",
		ClientEmail: "billing@acme.test",
		IssueDate:   "2025-03-01",
		DueDate:     "2025-03-31",
		Items:       []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	require.NoError(t, err)
	doc := result.Document

	assert.Nil(t, doc.ClientID)
	assert.True(t, doc.NeedsClarification)
	assert.Equal(t, domain.StateNeedsClarification, result.State)
	assert.Contains(t, []string(doc.ClarificationQuestions), `Which existing client does "Acme Studio" refer to?`)

	require.NotNil(t, result.ClientMatches)
	assert.Equal(t, domain.ConfidenceMedium, result.ClientMatches.Confidence)
	require.Len(t, result.ClientMatches.Matches, 1)
	assert.Equal(t, stored.ID, result.ClientMatches.Matches[0].Candidate.ID)
}

func TestDocumentService_Create_NoClientFlagged(t *testing.T) {
	svc, docRepo, _, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items:     []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	require.NoError(t, err)
	assert.True(t, result.Document.NeedsClarification)
	assert.Contains(t, []string(result.Document.ClarificationQuestions), "Which client is this document for?")
	assert.Nil(t, result.ClientMatches)
}

func TestDocumentService_Create_CandidateLookupFailureDegrades(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientRepo.On("ListByUser", mock.Anything, userID, 0, 500).
		Return(nil, 0, errors.New("connection refused"))
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:       domain.DocumentTypeInvoice,
		ClientName: "Acme Studio",
		IssueDate:  "2025-03-01",
		DueDate:    "2025-03-31",
		Items:      []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	require.NoError(t, err)
	assert.True(t, result.Document.NeedsClarification)
	require.NotNil(t, result.ClientMatches)
	assert.Empty(t, result.ClientMatches.Matches)
	assert.Equal(t, domain.ConfidenceLow, result.ClientMatches.Confidence)
}

// --- Create (numbering) ---

func TestDocumentService_Create_IdentifierIncrement(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("INV-0007", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items:     []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-0008", result.Document.Identifier)
}

func TestDocumentService_Create_QuoteSeed(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeQuote).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeQuote,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items:     []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Q-00001", result.Document.Identifier)
}

func TestDocumentService_Create_IdentifierFallbackOnLookupError(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).
		Return("", errors.New("connection refused"))
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items:     []service.DocumentItemInput{{Description: "Work", Quantity: "1", UnitPrice: "10"}},
	})

	// A numbering failure never blocks creation.
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d+$`, result.Document.Identifier)
	docRepo.AssertExpectations(t)
}

// --- Create (catalog references) ---

func TestDocumentService_Create_FillsItemFromProduct(t *testing.T) {
	svc, docRepo, clientRepo, productRepo, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	productID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	productRepo.On("GetByID", mock.Anything, userID, productID).
		Return(&domain.Product{ID: productID, Name: "Consulting", UnitPrice: "150", TaxRate: "5"}, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items:     []service.DocumentItemInput{{ProductID: &productID, Quantity: "2"}},
	})

	require.NoError(t, err)
	item := result.Document.Items[0]
	assert.Equal(t, "Consulting", item.Description)
	assert.Equal(t, "150", item.UnitPrice)
	assert.Equal(t, "5", item.TaxRate)
	assert.Equal(t, "300.00", item.Subtotal)
	assert.Equal(t, "15.00", item.TaxAmount)
	assert.Equal(t, "315.00", result.Document.Total)
}

func TestDocumentService_Create_DanglingProductRefDropped(t *testing.T) {
	svc, docRepo, clientRepo, productRepo, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	productID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	productRepo.On("GetByID", mock.Anything, userID, productID).Return(nil, domain.ErrNotFound)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:      domain.DocumentTypeInvoice,
		ClientID:  &clientID,
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Items: []service.DocumentItemInput{
			{ProductID: &productID, Description: "Typed by hand", Quantity: "1", UnitPrice: "25"},
		},
	})

	require.NoError(t, err)
	item := result.Document.Items[0]
	assert.Nil(t, item.ProductID)
	assert.Equal(t, "Typed by hand", item.Description)
	assert.Equal(t, "25.00", item.Subtotal)
}

// --- Create (extraction path) ---

func TestDocumentService_Create_ExtractedAutoLinksClient(t *testing.T) {
	svc, docRepo, clientRepo, _, extractor, _, _ := setupDocumentService()

	userID := uuid.New()
	stored := domain.Client{
		ID:    uuid.New(),
		Name:  "Acme Studio",
		Email: "billing@acme.test",
		Phone: "+1 555 010 2030",
	}

	payload := `{
		"client": {"name": "Acme Studio", "email": "billing@acme.test", "phone": "+1 555 010 2030"},
		"items": [{"description": "Design work", "quantity": 5, "unit_price": 100, "tax_rate": 8}],
		"document": {"issue_date": "2025-03-01", "due_date": "2025-03-31"}
	}`

	extractor.On("Extract", mock.Anything, port.ExtractInput{Text: "some raw text", DocumentType: domain.DocumentTypeInvoice}).
		Return(&port.ExtractOutput{RawJSON: json.RawMessage(payload), ModelUsed: "claude-sonnet-4-20250514"}, nil)
	clientRepo.On("ListByUser", mock.Anything, userID, 0, 500).Return([]domain.Client{stored}, 1, nil)
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:    domain.DocumentTypeInvoice,
		RawText: "some raw text",
	})

	require.NoError(t, err)
	doc := result.Document

	// Name, email and phone all match, so the top score clears the high
	// threshold and the stored client is linked automatically.
	require.NotNil(t, doc.ClientID)
	assert.Equal(t, stored.ID, *doc.ClientID)
	assert.Equal(t, "Acme Studio", doc.ClientName)
	assert.Equal(t, "billing@acme.test", doc.ClientEmail)
	assert.False(t, doc.NeedsClarification)
	assert.Equal(t, domain.StateReady, result.State)

	require.NotNil(t, result.ClientMatches)
	assert.Equal(t, domain.ConfidenceHigh, result.ClientMatches.Confidence)

	assert.Equal(t, "540.00", doc.Total)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), doc.IssueDate)
}

func TestDocumentService_Create_ExtractionFailureDegrades(t *testing.T) {
	svc, docRepo, _, _, extractor, _, _ := setupDocumentService()

	userID := uuid.New()
	extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(nil, errors.New("api timeout"))
	docRepo.On("LatestIdentifier", mock.Anything, userID, domain.DocumentTypeInvoice).Return("", nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Create(context.Background(), userID, service.CreateDocumentInput{
		Type:    domain.DocumentTypeInvoice,
		RawText: "bill acme for stuff",
	})

	// The pipeline degrades to a fully-defaulted flagged draft instead of
	// failing the request.
	require.NoError(t, err)
	doc := result.Document

	require.Len(t, doc.Items, 1)
	assert.Equal(t, normalize.PlaceholderDescription, doc.Items[0].Description)
	assert.Equal(t, "0.00", doc.Total)
	assert.Equal(t, normalize.UnknownClientName, doc.ClientName)
	assert.True(t, doc.NeedsClarification)
	assert.Contains(t, []string(doc.ClarificationQuestions),
		"The extracted data could not be read. Please re-enter the document details.")
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Create_ExtractionUnavailable(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	clientRepo := new(mocks.MockClientRepo)
	productRepo := new(mocks.MockProductRepo)
	renderer := new(mocks.MockDocumentRenderer)
	sender := new(mocks.MockEmailSender)
	svc := service.NewDocumentService(docRepo, clientRepo, productRepo, nil, renderer, sender, zap.NewNop())

	result, err := svc.Create(context.Background(), uuid.New(), service.CreateDocumentInput{
		Type:    domain.DocumentTypeInvoice,
		RawText: "bill acme for stuff",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrExtractionUnavailable)
}

// --- Extract (dry run) ---

func TestDocumentService_Extract_DryRun(t *testing.T) {
	svc, docRepo, clientRepo, _, extractor, _, _ := setupDocumentService()

	userID := uuid.New()
	payload := `{
		"client": {"name": "Globex"},
		"items": [{"description": "Audit", "quantity": 1, "unit_price": 900}],
		"document": {"issue_date": "2025-04-01", "due_date": "2025-04-30"}
	}`

	extractor.On("Extract", mock.Anything, port.ExtractInput{Text: "audit for globex", DocumentType: domain.DocumentTypeQuote}).
		Return(&port.ExtractOutput{RawJSON: json.RawMessage(payload), ModelUsed: "gpt-4o"}, nil)
	clientRepo.On("ListByUser", mock.Anything, userID, 0, 500).Return([]domain.Client{}, 0, nil)

	result, err := svc.Extract(context.Background(), userID, service.ExtractDocumentInput{
		Type:    domain.DocumentTypeQuote,
		RawText: "audit for globex",
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", result.ModelUsed)
	assert.Equal(t, "Globex", result.Draft.Client.Name)
	require.Len(t, result.Draft.Items, 1)
	assert.Equal(t, "900", result.Draft.Items[0].UnitPrice)

	// No stored clients, so the mention stays unresolved and flagged.
	assert.True(t, result.NeedsClarification)
	assert.Contains(t, result.Questions, `Which existing client does "Globex" refer to?`)
	require.NotNil(t, result.ClientMatches)
	assert.Empty(t, result.ClientMatches.Matches)

	// Dry run must not touch storage.
	docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	docRepo.AssertNotCalled(t, "LatestIdentifier", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Extract_InvalidType(t *testing.T) {
	svc, _, _, _, _, _, _ := setupDocumentService()

	result, err := svc.Extract(context.Background(), uuid.New(), service.ExtractDocumentInput{
		Type:    "receipt",
		RawText: "text",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
}

// --- Update ---

func storedInvoice(userID uuid.UUID, clientID *uuid.UUID) *domain.Document {
	return &domain.Document{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.DocumentTypeInvoice,
		Identifier:  "INV-0042",
		Status:      domain.StatusDraft,
		ClientID:    clientID,
		ClientName:  "Acme Studio",
		ClientEmail: "billing@acme.test",
		IssueDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Items: domain.LineItems{
			{Description: "Design work", Quantity: "5", UnitPrice: "100", TaxRate: "8",
				Subtotal: "500.00", TaxAmount: "40.00", Total: "540.00"},
		},
		Discount:  "0",
		Subtotal:  "500.00",
		TaxAmount: "40.00",
		Total:     "540.00",
	}
}

func TestDocumentService_Update_RecomputesTotalsKeepsIdentifier(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio", Email: "billing@acme.test"}, nil)
	docRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	discount := "100"
	result, err := svc.Update(context.Background(), userID, doc.ID, service.UpdateDocumentInput{
		Discount: &discount,
	})

	require.NoError(t, err)
	updated := result.Document

	assert.Equal(t, "INV-0042", updated.Identifier)
	assert.Equal(t, domain.StatusDraft, updated.Status)
	assert.Equal(t, "500.00", updated.Subtotal)
	assert.Equal(t, "40.00", updated.TaxAmount)
	assert.Equal(t, "440.00", updated.Total)
	assert.Equal(t, domain.StateReady, result.State)

	docRepo.AssertNotCalled(t, "LatestIdentifier", mock.Anything, mock.Anything, mock.Anything)
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Update_ReplacesItems(t *testing.T) {
	svc, docRepo, clientRepo, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	clientRepo.On("GetByID", mock.Anything, userID, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme Studio"}, nil)
	docRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := svc.Update(context.Background(), userID, doc.ID, service.UpdateDocumentInput{
		Items: []service.DocumentItemInput{
			{Description: "Retainer", Quantity: "1", UnitPrice: "1000", TaxRate: "0"},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Document.Items, 1)
	assert.Equal(t, "Retainer", result.Document.Items[0].Description)
	assert.Equal(t, "1000.00", result.Document.Total)
}

func TestDocumentService_Update_EmptyItemsRejected(t *testing.T) {
	svc, docRepo, _, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)

	result, err := svc.Update(context.Background(), userID, doc.ID, service.UpdateDocumentInput{
		Items: []service.DocumentItemInput{},
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoLineItems)
	docRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDocumentService_Update_NotFound(t *testing.T) {
	svc, docRepo, _, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	docID := uuid.New()
	docRepo.On("GetByID", mock.Anything, userID, docID).Return(nil, domain.ErrNotFound)

	result, err := svc.Update(context.Background(), userID, docID, service.UpdateDocumentInput{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- UpdateStatus ---

func TestDocumentService_UpdateStatus_Valid(t *testing.T) {
	svc, docRepo, _, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	docRepo.On("UpdateStatus", mock.Anything, userID, doc.ID, domain.StatusPaid).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), userID, doc.ID, domain.StatusPaid)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, updated.Status)
	docRepo.AssertExpectations(t)
}

func TestDocumentService_UpdateStatus_InvalidForType(t *testing.T) {
	svc, docRepo, _, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)
	doc.Type = domain.DocumentTypeQuote

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)

	updated, err := svc.UpdateStatus(context.Background(), userID, doc.ID, domain.StatusPaid)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentStatus)
	docRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Send ---

func TestDocumentService_Send_Success(t *testing.T) {
	svc, docRepo, _, _, _, renderer, sender := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)
	pdf := []byte("%PDF-1.7 content")

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	renderer.On("RenderDocument", doc).Return(pdf, nil)
	sender.On("SendDocumentEmail", mock.Anything, port.DocumentEmail{
		To:       "billing@acme.test",
		Document: doc,
		PDF:      pdf,
	}).Return(nil)
	docRepo.On("UpdateStatus", mock.Anything, userID, doc.ID, domain.StatusSent).Return(nil)

	sent, err := svc.Send(context.Background(), userID, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Status)
	sender.AssertExpectations(t)
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Send_NoRecipient(t *testing.T) {
	svc, docRepo, _, _, _, renderer, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)
	doc.ClientEmail = ""

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)

	sent, err := svc.Send(context.Background(), userID, doc.ID)

	assert.Nil(t, sent)
	assert.ErrorIs(t, err, domain.ErrNoRecipient)
	renderer.AssertNotCalled(t, "RenderDocument", mock.Anything)
}

func TestDocumentService_Send_KeepsLaterStatus(t *testing.T) {
	svc, docRepo, _, _, _, renderer, sender := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)
	doc.Status = domain.StatusPaid

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	renderer.On("RenderDocument", doc).Return([]byte("pdf"), nil)
	sender.On("SendDocumentEmail", mock.Anything, mock.AnythingOfType("port.DocumentEmail")).Return(nil)

	sent, err := svc.Send(context.Background(), userID, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, sent.Status)
	docRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Send_EmailFailure(t *testing.T) {
	svc, docRepo, _, _, _, renderer, sender := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	renderer.On("RenderDocument", doc).Return([]byte("pdf"), nil)
	sender.On("SendDocumentEmail", mock.Anything, mock.AnythingOfType("port.DocumentEmail")).
		Return(errors.New("ses unavailable"))

	sent, err := svc.Send(context.Background(), userID, doc.ID)

	assert.Nil(t, sent)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "documentService.Send")
	docRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- RenderPDF / List ---

func TestDocumentService_RenderPDF(t *testing.T) {
	svc, docRepo, _, _, _, renderer, _ := setupDocumentService()

	userID := uuid.New()
	clientID := uuid.New()
	doc := storedInvoice(userID, &clientID)
	pdf := []byte("%PDF-1.7 content")

	docRepo.On("GetByID", mock.Anything, userID, doc.ID).Return(doc, nil)
	renderer.On("RenderDocument", doc).Return(pdf, nil)

	got, gotDoc, err := svc.RenderPDF(context.Background(), userID, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, pdf, got)
	assert.Equal(t, doc, gotDoc)
}

func TestDocumentService_List_PassesFilter(t *testing.T) {
	svc, docRepo, _, _, _, _, _ := setupDocumentService()

	userID := uuid.New()
	filter := port.DocumentFilter{Type: domain.DocumentTypeInvoice, Status: domain.StatusSent}
	docRepo.On("ListByUser", mock.Anything, userID, filter, 20, 10).
		Return([]domain.Document{}, 0, nil)

	_, total, err := svc.List(context.Background(), userID, service.ListDocumentsInput{
		Type:   domain.DocumentTypeInvoice,
		Status: domain.StatusSent,
		Offset: 20,
		Limit:  10,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	docRepo.AssertExpectations(t)
}
