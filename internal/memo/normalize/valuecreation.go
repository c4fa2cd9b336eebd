package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"memo-gateway/internal/memo/wire"
)

// valueCreationSources is the priority order for locating the raw
// value-creation object. Newest API shape first; several backend versions
// coexist in production, so this order must not change.
var valueCreationSources = []wire.Candidate{
	{Path: "preview", Key: "value_creation"},
	{Path: "preview_data.peer_cohort_stats", Key: "value_creation"},
	{Path: "", Key: "value_creation"},
}

// ResolveValueCreation finds the raw value-creation object in a backend
// payload, or nil when no shape carries one.
func ResolveValueCreation(doc wire.Document) wire.Document {
	v, ok := doc.FirstTruthy(valueCreationSources)
	if !ok {
		return nil
	}
	obj, _ := wire.ObjectOf(v)
	return obj
}

// ValueCreationTotal reduces either value-creation schema to one annual
// total. The new schema nests amounts; the legacy schema carries a flat
// total_annual.
func ValueCreationTotal(vc wire.Document) float64 {
	if vc == nil {
		return 0
	}
	if vc.Has("annual_tax_savings.amount") {
		return vc.NumberOr("annual_tax_savings.amount", 0) +
			vc.NumberOr("capital_gains_savings.amount", 0)
	}
	return vc.NumberOr("total_annual", 0)
}

// FormatValueCreation renders a savings amount for display: "—" for zero,
// "$2.5M" above a million, "$45K" above a thousand, "$500" with separators
// below that.
func FormatValueCreation(amount float64) string {
	if amount == 0 {
		return Unknown
	}
	if amount >= 1_000_000 {
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	}
	if amount >= 1_000 {
		return "$" + strconv.FormatInt(int64(math.Round(amount/1_000)), 10) + "K"
	}
	return "$" + GroupDigits(amount)
}

// GroupDigits formats a number with comma thousands separators, the
// equivalent of toLocaleString in the page layer.
func GroupDigits(n float64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	intPart := int64(n)
	digits := strconv.FormatInt(intPart, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}

	if frac := n - float64(intPart); frac > 1e-9 {
		fracStr := strconv.FormatFloat(frac, 'g', -1, 64)
		// FormatFloat yields "0.5"; keep everything from the dot.
		if idx := strings.IndexByte(fracStr, '.'); idx != -1 {
			b.WriteString(fracStr[idx:])
		}
	}
	return b.String()
}

// ApplyValueCreation resolves the value-creation object in doc and, when the
// total is positive, writes the canonical savings fields into preview_data.
// The 5x and 20x projection multiplications live here and nowhere else.
func ApplyValueCreation(doc, previewData wire.Document) {
	vc := ResolveValueCreation(doc)
	total := ValueCreationTotal(vc)
	if total <= 0 {
		return
	}
	previewData["total_savings"] = FormatValueCreation(total)
	previewData["annual_value_creation"] = FormatValueCreation(total)
	previewData["five_year_projection"] = FormatValueCreation(total * 5)
	previewData["twenty_year_projection"] = FormatValueCreation(total * 20)
	previewData["value_creation_raw"] = map[string]any{
		"annual_tax_savings": vc.NumberOr("annual_tax_savings.amount", 0),
		"annual_cgt_savings": vc.NumberOr("capital_gains_savings.amount", 0),
		"total_annual":       total,
	}
}
