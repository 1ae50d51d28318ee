package domain

// DocumentType distinguishes the two document kinds sharing the same core shape.
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeQuote   DocumentType = "quote"
)

// AllowedDocumentTypes is the closed set of valid document types.
var AllowedDocumentTypes = map[DocumentType]bool{
	DocumentTypeInvoice: true,
	DocumentTypeQuote:   true,
}

// DocumentStatus represents the lifecycle state of a document.
// Each document type has its own closed subset, see DocumentStatuses.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusSent      DocumentStatus = "sent"
	StatusPaid      DocumentStatus = "paid"
	StatusOverdue   DocumentStatus = "overdue"
	StatusCancelled DocumentStatus = "cancelled"
	StatusAccepted  DocumentStatus = "accepted"
	StatusDeclined  DocumentStatus = "declined"
	StatusExpired   DocumentStatus = "expired"
)

// DocumentStatuses maps each document type to its allowed status set.
var DocumentStatuses = map[DocumentType][]DocumentStatus{
	DocumentTypeInvoice: {StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled},
	DocumentTypeQuote:   {StatusDraft, StatusSent, StatusAccepted, StatusDeclined, StatusExpired},
}

// ValidStatus reports whether s is an allowed status for document type t.
func ValidStatus(t DocumentType, s DocumentStatus) bool {
	for _, allowed := range DocumentStatuses[t] {
		if s == allowed {
			return true
		}
	}
	return false
}

// ConfidenceTier summarizes how certain an entity match or extraction is.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// MatchKind selects the scoring profile for entity matching.
type MatchKind string

const (
	MatchKindClient  MatchKind = "client"
	MatchKindProduct MatchKind = "product"
)

// DocumentState is the terminal workflow state of a create/update run.
// NeedsClarification is not an error: the document is structurally valid
// but a human must confirm flagged fields before it is finalized.
type DocumentState string

const (
	StateReady              DocumentState = "ready"
	StateNeedsClarification DocumentState = "needs_clarification"
)
