package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dippreneurlab/new-salt/internal/domain"
)

func TestComputeQuoteUID(t *testing.T) {
	tests := []struct {
		name string
		doc  domain.QuoteDocument
		want string
	}{
		{
			name: "explicit id wins",
			doc:  domain.QuoteDocument{"id": "q1", "projectNumber": "PN-100"},
			want: "q1",
		},
		{
			name: "flat project number",
			doc:  domain.QuoteDocument{"projectNumber": "PN-200"},
			want: "PN-200-u1",
		},
		{
			name: "nested project number",
			doc:  domain.QuoteDocument{"project": map[string]any{"projectNumber": "PN-300"}},
			want: "PN-300-u1",
		},
		{
			name: "flat project number beats nested",
			doc: domain.QuoteDocument{
				"projectNumber": "PN-400",
				"project":       map[string]any{"projectNumber": "PN-500"},
			},
			want: "PN-400-u1",
		},
		{
			name: "empty id falls through",
			doc:  domain.QuoteDocument{"id": "", "projectNumber": "PN-600"},
			want: "PN-600-u1",
		},
		{
			name: "no natural key degenerates to the owner slot",
			doc:  domain.QuoteDocument{"clientName": "Acme"},
			want: "quote-u1",
		},
		{
			name: "numeric project number",
			doc:  domain.QuoteDocument{"projectNumber": float64(7001)},
			want: "7001-u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.ComputeQuoteUID("u1", tt.doc))
		})
	}
}

// Two documents without id or project number collide on the same per-owner
// slot; the reconciliation keeps the last writer.
func TestComputeQuoteUIDCollision(t *testing.T) {
	a := domain.ComputeQuoteUID("u1", domain.QuoteDocument{"clientName": "Acme"})
	b := domain.ComputeQuoteUID("u1", domain.QuoteDocument{"clientName": "Globex"})
	require.Equal(t, a, b)
}

func TestFlattenQuoteDefaults(t *testing.T) {
	row := domain.FlattenQuote("u1", domain.QuoteDocument{
		"id":            "q1",
		"projectNumber": "PN-100",
		"clientName":    "Acme",
	})

	require.Equal(t, "q1", row.QuoteUID)
	require.Equal(t, "PN-100", *row.ProjectNumber)
	require.Equal(t, "Acme", *row.ClientName)
	require.Equal(t, "CAD", row.Currency)
	require.Equal(t, "draft", row.Status)
	require.Equal(t, "u1", row.CreatedBy)
	require.Equal(t, "u1", row.UpdatedBy)
	require.JSONEq(t, "[]", string(row.Phases))
	require.JSONEq(t, "{}", string(row.PhaseSettings))
	require.Nil(t, row.BriefDate)
	require.Nil(t, row.TotalProgramBudget)
}

func TestFlattenQuoteFieldPrecedence(t *testing.T) {
	row := domain.FlattenQuote("u1", domain.QuoteDocument{
		"id":             "q1",
		"clientName":     "Flat Client",
		"clientCategory": "Flat Category",
		"currency":       "USD",
		"totalRevenue":   float64(1000),
		"rateCard":       "flat-card",
		"briefDate":      "2024-01-01",
		"project": map[string]any{
			"clientName":         "Nested Client",
			"clientCategory":     "Nested Category",
			"currency":           "EUR",
			"totalProgramBudget": float64(2000),
			"rateCard":           "nested-card",
			"briefDate":          "2024-06-15",
			"phases":             []any{"discovery", "build"},
			"phaseSettings":      map[string]any{"discovery": map[string]any{"weeks": float64(2)}},
		},
	})

	// clientName prefers the flat document; clientCategory, rateCard, budget
	// and dates prefer the nested project object.
	require.Equal(t, "Flat Client", *row.ClientName)
	require.Equal(t, "Nested Category", *row.ClientCategory)
	require.Equal(t, "USD", row.Currency)
	require.Equal(t, "2000", *row.TotalProgramBudget)
	require.Equal(t, "nested-card", *row.RateCard)
	require.Equal(t, "2024-06-15", *row.BriefDate)
	require.JSONEq(t, `["discovery","build"]`, string(row.Phases))
	require.JSONEq(t, `{"discovery":{"weeks":2}}`, string(row.PhaseSettings))
}

func TestFlattenQuoteEmptyStringsAreAbsent(t *testing.T) {
	row := domain.FlattenQuote("u1", domain.QuoteDocument{
		"id":         "q1",
		"clientName": "   ",
		"project":    map[string]any{"clientName": "Nested Client"},
	})
	require.Equal(t, "Nested Client", *row.ClientName)
}

func TestFlattenQuoteDates(t *testing.T) {
	doc := domain.QuoteDocument{
		"id":           "q1",
		"briefDate":    "2024-03-05T10:30:00Z",
		"inMarketDate": "not a date",
		"project": map[string]any{
			"projectCompletionDate": float64(1717200000000), // 2024-06-01 UTC
		},
	}
	row := domain.FlattenQuote("u1", doc)

	require.Equal(t, "2024-03-05", *row.BriefDate)
	require.Nil(t, row.InMarketDate)
	require.Equal(t, "2024-06-01", *row.ProjectCompletionDate)
}

func TestFlattenQuoteRoundTripsFullDocument(t *testing.T) {
	doc := domain.QuoteDocument{
		"id":     "q1",
		"custom": map[string]any{"anything": []any{float64(1), "two"}},
	}
	row := domain.FlattenQuote("u1", doc)

	var decoded domain.QuoteDocument
	require.NoError(t, json.Unmarshal(row.FullQuote, &decoded))
	require.Equal(t, doc, decoded)
}
