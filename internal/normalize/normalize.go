// Package normalize validates and repairs the semi-structured object returned
// by the extraction collaborator into a structurally valid document draft.
// Every missing or unusable piece is replaced with a safe, clearly-flagged
// default and surfaced as a clarification question; Normalize never fails, so
// the calling workflow always has a renderable draft. Worst case — an
// undecodable payload — it returns a fully-defaulted, clarification-flagged
// result.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billforge/internal/domain"
	"billforge/internal/match"
	"billforge/internal/money"
)

// Defaults applied during repair.
const (
	PlaceholderDescription = "Services as described"
	UnknownClientName      = "Unknown Client"
	defaultDueDays         = 30
)

// Client is the repaired client block of a draft. Confidence starts low for
// extraction-sourced clients; entity matching upgrades it once the client is
// resolved against stored records.
type Client struct {
	Name       string                `json:"name"`
	Email      string                `json:"email,omitempty"`
	Phone      string                `json:"phone,omitempty"`
	Address    string                `json:"address,omitempty"`
	TaxID      string                `json:"tax_id,omitempty"`
	Confidence domain.ConfidenceTier `json:"confidence"`
}

// Entity converts the client block to its matchable view.
func (c Client) Entity() match.ExtractedEntity {
	return match.ExtractedEntity{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		TaxID:   c.TaxID,
	}
}

// Item is one repaired draft line: description plus decimal-string inputs for
// the per-item totals computation.
type Item struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
}

// Draft is a structurally valid document draft: a client with at least a name
// placeholder, a non-empty item list, an issue date and a type-appropriate
// due/valid-until date.
type Draft struct {
	Client    Client    `json:"client"`
	Items     []Item    `json:"items"`
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`
	Discount  string    `json:"discount"`
	Notes     string    `json:"notes,omitempty"`
}

// Normalized is the repair outcome. NeedsClarification is set whenever any
// repair was applied; Questions is then non-empty and deduplicated.
type Normalized struct {
	Draft              Draft    `json:"draft"`
	NeedsClarification bool     `json:"needs_clarification"`
	Questions          []string `json:"clarification_questions"`
}

// Raw wire shapes. Numeric fields tolerate JSON numbers or strings, and the
// common alternate key names extraction models drift into.
type rawClient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

type rawItem struct {
	Description string      `json:"description"`
	Quantity    interface{} `json:"quantity"`
	Qty         interface{} `json:"qty"`
	UnitPrice   interface{} `json:"unit_price"`
	Price       interface{} `json:"price"`
	TaxRate     interface{} `json:"tax_rate"`
	TaxRateAlt  interface{} `json:"taxRate"`
}

type rawDocument struct {
	IssueDate string      `json:"issue_date"`
	DueDate   string      `json:"due_date"`
	Discount  interface{} `json:"discount"`
	Notes     string      `json:"notes"`
}

type rawExtraction struct {
	Client   *rawClient   `json:"client"`
	Items    []rawItem    `json:"items"`
	Document *rawDocument `json:"document"`
}

// Normalize repairs the raw extraction payload for the given document type.
// It never returns an error.
func Normalize(raw []byte, docType domain.DocumentType) Normalized {
	var questions []string

	var ext rawExtraction
	cleaned := stripFences(raw)
	if len(cleaned) == 0 || json.Unmarshal(cleaned, &ext) != nil {
		questions = AppendQuestion(questions, "The extracted data could not be read. Please re-enter the document details.")
		ext = rawExtraction{}
	}

	draft := Draft{}
	draft.Client, questions = repairClient(ext.Client, questions)
	draft.Items, questions = repairItems(ext.Items, questions)
	draft.IssueDate, draft.DueDate, questions = repairDates(ext.Document, docType, questions)

	if ext.Document != nil {
		if discount, ok := coerceAmount(ext.Document.Discount); ok {
			draft.Discount = discount
		}
		draft.Notes = strings.TrimSpace(ext.Document.Notes)
	}
	if draft.Discount == "" {
		// An absent discount simply means none; not a repair.
		draft.Discount = "0"
	}

	return Normalized{
		Draft:              draft,
		NeedsClarification: len(questions) > 0,
		Questions:          questions,
	}
}

// AppendQuestion appends q unless an identical question is already present,
// keeping the list deduplicated in first-seen order.
func AppendQuestion(questions []string, q string) []string {
	for _, existing := range questions {
		if existing == q {
			return questions
		}
	}
	return append(questions, q)
}

func repairClient(raw *rawClient, questions []string) (Client, []string) {
	if raw == nil || strings.TrimSpace(raw.Name) == "" {
		questions = AppendQuestion(questions, "Which client is this document for?")
		return Client{Name: UnknownClientName, Confidence: domain.ConfidenceLow}, questions
	}
	return Client{
		Name:       strings.TrimSpace(raw.Name),
		Email:      strings.TrimSpace(raw.Email),
		Phone:      strings.TrimSpace(raw.Phone),
		Address:    strings.TrimSpace(raw.Address),
		TaxID:      strings.TrimSpace(raw.TaxID),
		Confidence: domain.ConfidenceLow,
	}, questions
}

func repairItems(raw []rawItem, questions []string) ([]Item, []string) {
	if len(raw) == 0 {
		questions = AppendQuestion(questions, "No line items were identified. Please confirm the services or products to bill.")
		return []Item{placeholderItem()}, questions
	}

	items := make([]Item, 0, len(raw))
	for i, r := range raw {
		item := Item{Description: strings.TrimSpace(r.Description)}
		if item.Description == "" {
			item.Description = PlaceholderDescription
			questions = AppendQuestion(questions, fmt.Sprintf("Line %d has no description. What was provided?", i+1))
		}

		qty, ok := coerceAmount(firstValue(r.Quantity, r.Qty))
		if !ok || money.ParseAmount(qty).IsZero() {
			qty = "1"
			questions = AppendQuestion(questions, fmt.Sprintf("Confirm the quantity for %q.", item.Description))
		}
		item.Quantity = qty

		price, ok := coerceAmount(firstValue(r.UnitPrice, r.Price))
		if !ok {
			price = "0"
			questions = AppendQuestion(questions, fmt.Sprintf("Confirm the unit price for %q.", item.Description))
		}
		item.UnitPrice = price

		rate, ok := coerceAmount(firstValue(r.TaxRate, r.TaxRateAlt))
		if !ok {
			rate = "0"
		}
		item.TaxRate = rate

		items = append(items, item)
	}
	return items, questions
}

func repairDates(raw *rawDocument, docType domain.DocumentType, questions []string) (time.Time, time.Time, []string) {
	today := DateOnly(time.Now().UTC())

	issue := time.Time{}
	due := time.Time{}
	if raw != nil {
		issue = ParseDate(raw.IssueDate)
		due = ParseDate(raw.DueDate)
	}

	if issue.IsZero() {
		issue = today
		questions = AppendQuestion(questions, "What is the issue date for this document?")
	}
	if due.IsZero() {
		due = issue.AddDate(0, 0, defaultDueDays)
		if docType == domain.DocumentTypeQuote {
			questions = AppendQuestion(questions, "Until when is this quote valid?")
		} else {
			questions = AppendQuestion(questions, "When is payment due?")
		}
	}

	return issue, due, questions
}

func placeholderItem() Item {
	return Item{
		Description: PlaceholderDescription,
		Quantity:    "1",
		UnitPrice:   "0",
		TaxRate:     "0",
	}
}

// stripFences removes a markdown code fence wrapper, which extraction models
// add despite instructions not to.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}

func firstValue(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// coerceAmount converts a tolerated JSON value into a decimal string. The
// second return reports whether a usable value was present.
func coerceAmount(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case float64:
		return decimal.NewFromFloat(val).String(), true
	case string:
		d, err := money.ParseAmountStrict(val)
		if err != nil {
			return "", false
		}
		return d.String(), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return "", false
		}
		return d.String(), true
	default:
		return "", false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
}

// ParseDate parses a date in any of the accepted layouts, returning the zero
// time when nothing matches. Shared with the manual-input path so form dates
// and extracted dates follow the same tolerance.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t)
		}
	}
	return time.Time{}
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
