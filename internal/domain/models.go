package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client is a stored customer record owned by a user. Its text fields are the
// matchable surface used when resolving extracted client mentions.
type Client struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	TaxID     string    `db:"tax_id" json:"tax_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product is a stored catalog item owned by a user. UnitPrice and TaxRate are
// decimal strings; no monetary value is held as a float anywhere in the model.
type Product struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	UnitPrice   string    `db:"unit_price" json:"unit_price"`
	TaxRate     string    `db:"tax_rate" json:"tax_rate"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LineItem is one priced row of a document. All amounts are decimal strings
// fixed to 2 places; Subtotal, TaxAmount and Total are derived fields.
type LineItem struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Description string     `json:"description"`
	Quantity    string     `json:"quantity"`
	UnitPrice   string     `json:"unit_price"`
	TaxRate     string     `json:"tax_rate"`
	Subtotal    string     `json:"subtotal"`
	TaxAmount   string     `json:"tax_amount"`
	Total       string     `json:"total"`
}

// LineItems is an ordered line item list persisted as a JSONB column.
type LineItems []LineItem

// Value implements driver.Valuer for JSONB storage.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		l = LineItems{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for JSONB storage.
func (l *LineItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported line items source type %T", src)
	}
}

// StringList is a string array persisted as a JSONB column.
type StringList []string

// Value implements driver.Valuer for JSONB storage.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for JSONB storage.
func (s *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported string list source type %T", src)
	}
}

// Document is an invoice or quote. The two types share the same core shape;
// Type selects the identifier format and the allowed status set. DueDate holds
// the valid-until date for quotes. Identifier is a display label assigned at
// creation, best-effort monotonic per user, never reassigned on update.
type Document struct {
	ID                     uuid.UUID      `db:"id" json:"id"`
	UserID                 uuid.UUID      `db:"user_id" json:"user_id"`
	Type                   DocumentType   `db:"type" json:"type"`
	Identifier             string         `db:"identifier" json:"identifier"`
	Status                 DocumentStatus `db:"status" json:"status"`
	ClientID               *uuid.UUID     `db:"client_id" json:"client_id"`
	ClientName             string         `db:"client_name" json:"client_name"`
	ClientEmail            string         `db:"client_email" json:"client_email"`
	IssueDate              time.Time      `db:"issue_date" json:"issue_date"`
	DueDate                time.Time      `db:"due_date" json:"due_date"`
	Items                  LineItems      `db:"items" json:"items"`
	Discount               string         `db:"discount" json:"discount"`
	Subtotal               string         `db:"subtotal" json:"subtotal"`
	TaxAmount              string         `db:"tax_amount" json:"tax_amount"`
	Total                  string         `db:"total" json:"total"`
	Notes                  string         `db:"notes" json:"notes"`
	NeedsClarification     bool           `db:"needs_clarification" json:"needs_clarification"`
	ClarificationQuestions StringList     `db:"clarification_questions" json:"clarification_questions"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at" json:"updated_at"`
}

// State derives the terminal workflow state from the clarification flag.
func (d *Document) State() DocumentState {
	if d.NeedsClarification {
		return StateNeedsClarification
	}
	return StateReady
}
