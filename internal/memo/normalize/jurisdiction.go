package normalize

import (
	"regexp"
	"sort"
	"strings"

	"memo-gateway/internal/memo/wire"
)

// Unknown is the sentinel for a jurisdiction that could not be determined.
// The page keys off this exact value to render N/A states, so it must be
// preserved verbatim through every layer.
const Unknown = "—"

// regionSynonyms maps lowercase city and region spellings to the canonical
// jurisdiction name used throughout the memo.
var regionSynonyms = map[string]string{
	"dallas":        "Texas",
	"houston":       "Texas",
	"austin":        "Texas",
	"dfw":           "Texas",
	"miami":         "Florida",
	"south florida": "Florida",
	"orlando":       "Florida",
	"tampa":         "Florida",
	"los angeles":   "California",
	"san francisco": "California",
	"san diego":     "California",
	"la":            "California",
	"sf":            "California",
	"nyc":           "New York",
	"manhattan":     "New York",
	"brooklyn":      "New York",
	"chicago":       "Illinois",
	"seattle":       "Washington",
	"boston":        "Massachusetts",
}

// genericUS entries are too broad to serve as a jurisdiction; they normalize
// to "" so callers look for a better-specified source instead.
var genericUS = map[string]struct{}{
	"united states": {},
	"usa":           {},
	"us":            {},
}

// NormalizeJurisdiction maps raw city or region text to its canonical
// jurisdiction name. Unmatched input passes through trimmed.
func NormalizeJurisdiction(raw string) string {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(trimmed)
	if _, ok := genericUS[key]; ok {
		return ""
	}
	if region, ok := regionSynonyms[key]; ok {
		return region
	}
	return trimmed
}

// destinationAllowList is the fixed, ordered set of jurisdictions a thesis
// destination is matched against. Order matters: the first entry whose
// pattern matches (and differs from the source) wins.
var destinationAllowList = []string{
	"Texas",
	"Florida",
	"California",
	"New York",
	"Delaware",
	"Nevada",
	"Wyoming",
	"Puerto Rico",
	"Singapore",
	"Dubai",
	"Abu Dhabi",
	"UAE",
	"Switzerland",
	"Monaco",
	"Portugal",
	"Italy",
	"Greece",
	"Malta",
	"Cyprus",
	"Cayman Islands",
	"Bahamas",
	"Bermuda",
	"London",
	"United Kingdom",
	"Ireland",
	"New Zealand",
}

var (
	// "<Jurisdiction>-based" / "<Jurisdiction> based": capitalized run
	// immediately before the marker.
	basedPattern = regexp.MustCompile(`([A-Z][A-Za-z]*(?: [A-Z][A-Za-z]*)*)[- ]based`)

	// Generic "<text> → <text>" anywhere in the thesis.
	arrowPattern = regexp.MustCompile(`([^→\n]+)→([^→\n,.;]+)`)

	destinationPatterns = buildDestinationPatterns()
)

func buildDestinationPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(destinationAllowList))
	for _, dest := range destinationAllowList {
		quoted := regexp.QuoteMeta(dest)
		patterns[dest] = regexp.MustCompile(
			`(?i)(?:\b(?:moving to|relocating to|to|in)\s+|→\s*)` + quoted + `\b`)
	}
	return patterns
}

// ParseJurisdictions infers a source→destination jurisdiction pair from a
// memo artifact when the backend omits the structured fields. Strategies are
// tried in order, each best-effort; when nothing matches both sides come
// back as Unknown — no synthetic guess is ever made.
func ParseJurisdictions(artifact wire.Document) (source, destination string) {
	if artifact == nil {
		return Unknown, Unknown
	}

	thesis := artifact.String("thesis_summary")

	if src, dest, ok := fromThesisBased(thesis); ok {
		return src, dest
	}
	if src, dest, ok := fromThesisArrow(thesis); ok {
		return src, dest
	}
	if src, dest, ok := fromDealOverview(artifact); ok {
		return src, dest
	}
	if src, dest, ok := fromImpliedIPS(artifact); ok {
		return src, dest
	}
	return Unknown, Unknown
}

// fromThesisBased pairs a "<Jurisdiction>-based" source with the first
// allow-list destination whose relocation pattern matches.
func fromThesisBased(thesis string) (string, string, bool) {
	if thesis == "" {
		return "", "", false
	}
	m := basedPattern.FindStringSubmatch(thesis)
	if m == nil {
		return "", "", false
	}
	source := NormalizeJurisdiction(m[1])
	if source == "" {
		return "", "", false
	}
	for _, dest := range destinationAllowList {
		if strings.EqualFold(dest, source) {
			continue
		}
		if destinationPatterns[dest].MatchString(thesis) {
			return source, dest, true
		}
	}
	return "", "", false
}

// fromThesisArrow handles a literal "<text> → <text>" pair in the thesis.
func fromThesisArrow(thesis string) (string, string, bool) {
	if thesis == "" {
		return "", "", false
	}
	m := arrowPattern.FindStringSubmatch(thesis)
	if m == nil {
		return "", "", false
	}
	// "target market" is placeholder text from the intake form, not a
	// destination.
	if strings.EqualFold(strings.TrimSpace(m[2]), "target market") {
		return "", "", false
	}
	source := NormalizeJurisdiction(m[1])
	destination := NormalizeJurisdiction(m[2])
	if source == "" || destination == "" {
		return "", "", false
	}
	return source, destination, true
}

// fromDealOverview splits deal_overview.jurisdictions on the arrow.
func fromDealOverview(artifact wire.Document) (string, string, bool) {
	raw := artifact.String("deal_overview.jurisdictions")
	if raw == "" {
		return "", "", false
	}
	parts := strings.Split(raw, "→")
	if len(parts) != 2 {
		return "", "", false
	}
	source := strings.TrimSpace(parts[0])
	destination := strings.TrimSpace(parts[1])
	if source == "" || destination == "" {
		return "", "", false
	}
	return source, destination, true
}

// fromImpliedIPS falls back to the implied investment-policy fields: the
// first usable tax jurisdiction is the source; the destination comes from
// geographic_targets keys or the next differing tax jurisdiction.
func fromImpliedIPS(artifact wire.Document) (string, string, bool) {
	entries := artifact.Array("implied_ips.tax_jurisdictions")
	if len(entries) == 0 {
		return "", "", false
	}

	source := ""
	sourceIdx := -1
	for i, v := range entries {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s), "target market") {
			continue
		}
		if normalized := NormalizeJurisdiction(s); normalized != "" {
			source = normalized
			sourceIdx = i
			break
		}
	}
	if source == "" {
		return "", "", false
	}

	// Keys are sorted for determinism; JSON object order does not survive
	// decoding.
	targets := artifact.Child("implied_ips.geographic_targets")
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, "Other") || strings.EqualFold(k, "target market") {
			continue
		}
		if destination := NormalizeJurisdiction(k); destination != "" && destination != source {
			return source, destination, true
		}
	}

	for _, v := range entries[sourceIdx+1:] {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if destination := NormalizeJurisdiction(s); destination != "" && destination != source {
			return source, destination, true
		}
	}
	return "", "", false
}
