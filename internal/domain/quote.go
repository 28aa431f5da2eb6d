package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuoteDocument is the opaque, caller-defined quote payload. It is persisted
// verbatim; the flattened columns derived from it exist only for querying.
type QuoteDocument map[string]any

// QuoteRow is the flattened projection of a QuoteDocument, keyed by QuoteUID.
type QuoteRow struct {
	QuoteUID              string
	ProjectNumber         *string
	ClientName            *string
	ClientCategory        *string
	Brand                 *string
	ProjectName           *string
	BriefDate             *string
	InMarketDate          *string
	ProjectCompletionDate *string
	TotalProgramBudget    *string
	RateCard              *string
	Currency              string
	Phases                json.RawMessage
	PhaseSettings         json.RawMessage
	Status                string
	CreatedBy             string
	UpdatedBy             string
	FullQuote             json.RawMessage
}

// ComputeQuoteUID derives the deterministic storage key for a document.
// An explicit non-empty id wins; otherwise the key is synthesized from the
// project number (flat field preferred over the nested project object) and
// the owner id. A document with neither id nor project number degenerates to
// the single "quote-{owner}" slot for that owner.
func ComputeQuoteUID(ownerID string, doc QuoteDocument) string {
	if id := textValue(doc["id"]); id != nil {
		return *id
	}
	project := nestedObject(doc, "project")
	number := textValue(firstValue(doc["projectNumber"], project["projectNumber"]))
	token := "quote"
	if number != nil {
		token = *number
	}
	return token + "-" + ownerID
}

// FlattenQuote projects a document onto its denormalized row for ownerID.
// Every candidate field follows a first-non-empty rule across the flat
// document and the nested project object; empty strings count as absent.
func FlattenQuote(ownerID string, doc QuoteDocument) QuoteRow {
	project := nestedObject(doc, "project")

	currency := "CAD"
	if v := textValue(firstValue(doc["currency"], project["currency"])); v != nil {
		currency = *v
	}
	status := "draft"
	if v := textValue(doc["status"]); v != nil {
		status = *v
	}

	phases := rawJSON(project["phases"], json.RawMessage("[]"))
	phaseSettings := rawJSON(project["phaseSettings"], json.RawMessage("{}"))
	full := rawJSON(doc, json.RawMessage("{}"))

	return QuoteRow{
		QuoteUID:              ComputeQuoteUID(ownerID, doc),
		ProjectNumber:         textValue(firstValue(doc["projectNumber"], project["projectNumber"])),
		ClientName:            textValue(firstValue(doc["clientName"], project["clientName"])),
		ClientCategory:        textValue(firstValue(project["clientCategory"], doc["clientCategory"])),
		Brand:                 textValue(firstValue(doc["brand"], project["brand"])),
		ProjectName:           textValue(firstValue(doc["projectName"], project["projectName"])),
		BriefDate:             normalizeDate(firstValue(project["briefDate"], doc["briefDate"])),
		InMarketDate:          normalizeDate(firstValue(project["inMarketDate"], doc["inMarketDate"])),
		ProjectCompletionDate: normalizeDate(firstValue(project["projectCompletionDate"], doc["projectCompletionDate"])),
		TotalProgramBudget:    textValue(firstValue(project["totalProgramBudget"], doc["totalRevenue"])),
		RateCard:              textValue(firstValue(project["rateCard"], doc["rateCard"])),
		Currency:              currency,
		Phases:                phases,
		PhaseSettings:         phaseSettings,
		Status:                status,
		CreatedBy:             ownerID,
		UpdatedBy:             ownerID,
		FullQuote:             full,
	}
}

// firstValue returns the first candidate that is neither nil nor a blank
// string. Both null and "" count as absent.
func firstValue(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func nestedObject(doc QuoteDocument, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// textValue renders a scalar candidate as a column value. Numbers are kept
// because project numbers and budgets arrive as JSON numbers as often as
// strings.
func textValue(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return nil
		}
		return &trimmed
	case json.Number:
		s := t.String()
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(t)
		return &s
	case int64:
		s := strconv.FormatInt(t, 10)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	default:
		s := fmt.Sprintf("%v", t)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &s
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// normalizeDate reduces a candidate to a calendar-date string (YYYY-MM-DD).
// Unparseable input is dropped to nil rather than rejected.
func normalizeDate(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				out := parsed.UTC().Format("2006-01-02")
				return &out
			}
		}
		return nil
	case float64:
		// Epoch milliseconds, the usual JSON serialization of a Date.
		out := time.UnixMilli(int64(t)).UTC().Format("2006-01-02")
		return &out
	case int64:
		out := time.UnixMilli(t).UTC().Format("2006-01-02")
		return &out
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			out := time.UnixMilli(ms).UTC().Format("2006-01-02")
			return &out
		}
		return nil
	default:
		return nil
	}
}

func rawJSON(v any, fallback json.RawMessage) json.RawMessage {
	if v == nil {
		return fallback
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return data
}
