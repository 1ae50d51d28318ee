package match_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billforge/internal/domain"
	"billforge/internal/match"
)

func TestMatch_Clients(t *testing.T) {
	t.Run("exact_email_ranks_first_with_high_confidence", func(t *testing.T) {
		other := match.Candidate{ID: uuid.New(), Name: "Globex", Email: "ap@globex.com"}
		target := match.Candidate{
			ID:    uuid.New(),
			Name:  "Acme Corporation",
			Email: "BILLING@ACME.COM",
			Phone: "15550102030",
		}

		got := match.Match(match.ExtractedEntity{
			Name:  "Acme Corp",
			Email: "billing@acme.com",
			Phone: "+1 (555) 010-2030",
		}, []match.Candidate{other, target}, domain.MatchKindClient)

		require.NotEmpty(t, got.Matches)
		assert.Equal(t, target.ID, got.Matches[0].Candidate.ID)
		assert.Equal(t, domain.ConfidenceHigh, got.Confidence)
	})

	t.Run("zero_candidates_returns_empty_low", func(t *testing.T) {
		got := match.Match(match.ExtractedEntity{Name: "Acme"}, nil, domain.MatchKindClient)
		require.NotNil(t, got.Matches)
		assert.Empty(t, got.Matches)
		assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	})

	t.Run("email_only_is_medium", func(t *testing.T) {
		// Exact email scores 5: above the medium threshold, not the high one.
		got := match.Match(
			match.ExtractedEntity{Email: "x@y.com"},
			[]match.Candidate{{ID: uuid.New(), Name: "Someone Else Entirely", Email: "x@y.com"}},
			domain.MatchKindClient,
		)
		require.Len(t, got.Matches, 1)
		assert.Equal(t, domain.ConfidenceMedium, got.Confidence)
	})

	t.Run("tax_id_only_is_low", func(t *testing.T) {
		// Exact tax id scores 4; the medium threshold is strictly greater than 4.
		got := match.Match(
			match.ExtractedEntity{TaxID: "GB123456789"},
			[]match.Candidate{{ID: uuid.New(), TaxID: "gb123456789"}},
			domain.MatchKindClient,
		)
		require.Len(t, got.Matches, 1)
		assert.InDelta(t, 4.0, got.Matches[0].Score, 1e-9)
		assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	})

	t.Run("phone_compared_digits_only", func(t *testing.T) {
		got := match.Match(
			match.ExtractedEntity{Phone: "+1 (555) 010-2030"},
			[]match.Candidate{{ID: uuid.New(), Phone: "1 555 010 2030"}},
			domain.MatchKindClient,
		)
		require.Len(t, got.Matches, 1)
		assert.InDelta(t, 4.0, got.Matches[0].Score, 1e-9)
	})

	t.Run("empty_extracted_matches_nothing", func(t *testing.T) {
		got := match.Match(match.ExtractedEntity{}, []match.Candidate{
			{ID: uuid.New(), Name: "Acme", Email: "a@b.c", Phone: "123", Address: "somewhere", TaxID: "T1"},
		}, domain.MatchKindClient)
		assert.Empty(t, got.Matches)
		assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	})

	t.Run("caps_at_three_matches", func(t *testing.T) {
		candidates := make([]match.Candidate, 6)
		for i := range candidates {
			candidates[i] = match.Candidate{ID: uuid.New(), Name: "Acme Corporation"}
		}
		got := match.Match(match.ExtractedEntity{Name: "Acme Corporation"}, candidates, domain.MatchKindClient)
		assert.Len(t, got.Matches, match.MaxMatches)
	})

	t.Run("ties_keep_input_order", func(t *testing.T) {
		first := match.Candidate{ID: uuid.New(), Name: "Acme Corporation"}
		second := match.Candidate{ID: uuid.New(), Name: "Acme Corporation"}
		got := match.Match(match.ExtractedEntity{Name: "Acme Corporation"},
			[]match.Candidate{first, second}, domain.MatchKindClient)

		require.Len(t, got.Matches, 2)
		assert.Equal(t, first.ID, got.Matches[0].Candidate.ID)
		assert.Equal(t, second.ID, got.Matches[1].Candidate.ID)
	})

	t.Run("legal_suffix_ignored_in_name_score", func(t *testing.T) {
		got := match.Match(
			match.ExtractedEntity{Name: "Acme Corp"},
			[]match.Candidate{{ID: uuid.New(), Name: "acme corporation"}},
			domain.MatchKindClient,
		)
		require.Len(t, got.Matches, 1)
		assert.InDelta(t, 3.0, got.Matches[0].Score, 1e-9)
	})
}

func TestMatch_Products(t *testing.T) {
	t.Run("identical_name_is_high", func(t *testing.T) {
		// Name weight 4 exceeds the product high threshold of 3.
		got := match.Match(
			match.ExtractedEntity{Name: "Web Hosting"},
			[]match.Candidate{{ID: uuid.New(), Name: "web hosting"}},
			domain.MatchKindProduct,
		)
		require.Len(t, got.Matches, 1)
		assert.InDelta(t, 4.0, got.Matches[0].Score, 1e-9)
		assert.Equal(t, domain.ConfidenceHigh, got.Confidence)
	})

	t.Run("identical_description_only_is_medium", func(t *testing.T) {
		// Description weight 3 sits exactly on the high threshold, which is
		// strictly greater-than, so this lands in medium.
		got := match.Match(
			match.ExtractedEntity{Description: "Monthly maintenance retainer"},
			[]match.Candidate{{ID: uuid.New(), Description: "monthly maintenance retainer"}},
			domain.MatchKindProduct,
		)
		require.Len(t, got.Matches, 1)
		assert.InDelta(t, 3.0, got.Matches[0].Score, 1e-9)
		assert.Equal(t, domain.ConfidenceMedium, got.Confidence)
	})

	t.Run("disjoint_strings_score_near_zero", func(t *testing.T) {
		got := match.Match(
			match.ExtractedEntity{Name: "zzzz"},
			[]match.Candidate{{ID: uuid.New(), Name: "aeiou"}},
			domain.MatchKindProduct,
		)
		if len(got.Matches) > 0 {
			assert.Less(t, got.Matches[0].Score, 1.5)
		}
		assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	})

	t.Run("best_name_match_ranks_first", func(t *testing.T) {
		exact := match.Candidate{ID: uuid.New(), Name: "Consulting Hours"}
		partial := match.Candidate{ID: uuid.New(), Name: "Consulting Retainer"}
		got := match.Match(match.ExtractedEntity{Name: "Consulting Hours"},
			[]match.Candidate{partial, exact}, domain.MatchKindProduct)

		require.NotEmpty(t, got.Matches)
		assert.Equal(t, exact.ID, got.Matches[0].Candidate.ID)
	})
}

func TestCandidateConversion(t *testing.T) {
	t.Run("client_fields_mapped", func(t *testing.T) {
		c := domain.Client{ID: uuid.New(), Name: "Acme", Email: "a@acme.com", Phone: "555", Address: "1 Road", TaxID: "T-1"}
		got := match.ClientCandidate(c)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, c.Name, got.Name)
		assert.Equal(t, c.Email, got.Email)
		assert.Equal(t, c.Phone, got.Phone)
		assert.Equal(t, c.Address, got.Address)
		assert.Equal(t, c.TaxID, got.TaxID)
	})

	t.Run("product_fields_mapped_in_order", func(t *testing.T) {
		products := []domain.Product{
			{ID: uuid.New(), Name: "A", Description: "first"},
			{ID: uuid.New(), Name: "B", Description: "second"},
		}
		got := match.ProductCandidates(products)
		require.Len(t, got, 2)
		assert.Equal(t, products[0].ID, got[0].ID)
		assert.Equal(t, products[1].ID, got[1].ID)
		assert.Equal(t, "first", got[0].Description)
	})
}
