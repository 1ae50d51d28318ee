// Package match scores a user's stored clients or products against a
// partially-specified extracted record, producing a ranked match list and a
// confidence tier. Scoring is weighted field similarity; the similarity
// function is symmetric and bounded to [0,1], with identical strings scoring 1.
package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"

	"billforge/internal/domain"
)

// MaxMatches caps the ranked list returned by Match.
const MaxMatches = 3

// Scoring weights. Similarity-weighted fields multiply a [0,1] score; exact
// fields add the full weight on a hit.
const (
	clientNameWeight    = 3.0
	clientEmailWeight   = 5.0
	clientPhoneWeight   = 4.0
	clientAddressWeight = 2.0
	clientTaxIDWeight   = 4.0

	productNameWeight        = 4.0
	productDescriptionWeight = 3.0
)

// Confidence thresholds on the top score only (strictly greater).
const (
	clientHighThreshold    = 8.0
	clientMediumThreshold  = 4.0
	productHighThreshold   = 3.0
	productMediumThreshold = 1.5
)

var simMetric = metrics.NewJaroWinkler()

// ExtractedEntity is the partial record produced by the extraction step. No
// field is guaranteed present; empty fields contribute nothing to the score.
type ExtractedEntity struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	TaxID       string `json:"tax_id"`
	Description string `json:"description"`
}

// Candidate is a stored record's identity plus its matchable text fields.
type Candidate struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	Description string    `json:"description,omitempty"`
}

// ClientCandidate converts a stored client to its matchable view.
func ClientCandidate(c domain.Client) Candidate {
	return Candidate{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		TaxID:   c.TaxID,
	}
}

// ProductCandidate converts a stored product to its matchable view.
func ProductCandidate(p domain.Product) Candidate {
	return Candidate{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}

// ClientCandidates converts a client list in order.
func ClientCandidates(clients []domain.Client) []Candidate {
	out := make([]Candidate, len(clients))
	for i, c := range clients {
		out[i] = ClientCandidate(c)
	}
	return out
}

// ProductCandidates converts a product list in order.
func ProductCandidates(products []domain.Product) []Candidate {
	out := make([]Candidate, len(products))
	for i, p := range products {
		out[i] = ProductCandidate(p)
	}
	return out
}

// Scored pairs a candidate with its weighted score.
type Scored struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

// Result is the ranked match list (at most MaxMatches) plus the confidence
// tier derived from the top score. Match always produces a Result, even with
// zero candidates: an empty list with confidence low.
type Result struct {
	Matches    []Scored              `json:"matches"`
	Confidence domain.ConfidenceTier `json:"confidence"`
}

// Match scores every candidate against the extracted record, keeps the
// positive scores ranked descending (ties broken by input order, first-seen
// wins), truncates to MaxMatches and derives the confidence tier.
func Match(extracted ExtractedEntity, candidates []Candidate, kind domain.MatchKind) Result {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		var score float64
		if kind == domain.MatchKindProduct {
			score = scoreProduct(extracted, c)
		} else {
			score = scoreClient(extracted, c)
		}
		if score > 0 {
			scored = append(scored, Scored{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > MaxMatches {
		scored = scored[:MaxMatches]
	}

	var top float64
	if len(scored) > 0 {
		top = scored[0].Score
	}
	return Result{Matches: scored, Confidence: confidenceFor(kind, top)}
}

func scoreClient(e ExtractedEntity, c Candidate) float64 {
	var score float64

	if e.Name != "" && c.Name != "" {
		score += similarity(normalizeCompany(e.Name), normalizeCompany(c.Name)) * clientNameWeight
	}
	if email := strings.TrimSpace(e.Email); email != "" && strings.EqualFold(email, strings.TrimSpace(c.Email)) {
		score += clientEmailWeight
	}
	if phone := normalizePhone(e.Phone); phone != "" && phone == normalizePhone(c.Phone) {
		score += clientPhoneWeight
	}
	if e.Address != "" && c.Address != "" {
		score += similarity(normalize(e.Address), normalize(c.Address)) * clientAddressWeight
	}
	if taxID := strings.TrimSpace(e.TaxID); taxID != "" && strings.EqualFold(taxID, strings.TrimSpace(c.TaxID)) {
		score += clientTaxIDWeight
	}

	return score
}

func scoreProduct(e ExtractedEntity, c Candidate) float64 {
	var score float64

	if e.Name != "" && c.Name != "" {
		score += similarity(normalize(e.Name), normalize(c.Name)) * productNameWeight
	}
	if e.Description != "" && c.Description != "" {
		score += similarity(normalize(e.Description), normalize(c.Description)) * productDescriptionWeight
	}

	return score
}

// similarity returns a symmetric closeness score in [0,1]; either side empty
// scores 0 so absent fields never contribute.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, simMetric)
}

func confidenceFor(kind domain.MatchKind, top float64) domain.ConfidenceTier {
	high, medium := clientHighThreshold, clientMediumThreshold
	if kind == domain.MatchKindProduct {
		high, medium = productHighThreshold, productMediumThreshold
	}

	switch {
	case top > high:
		return domain.ConfidenceHigh
	case top > medium:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
