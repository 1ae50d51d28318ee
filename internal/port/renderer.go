package port

import "billforge/internal/domain"

// DocumentRenderer defines the contract for producing a printable PDF of a
// document.
type DocumentRenderer interface {
	RenderDocument(doc *domain.Document) ([]byte, error)
}
