// Package session produces the full session document the memo page consumes:
// jurisdiction and tax merges over the backend payload, a derived lifecycle
// status, and the elevated-risk context when the verdict calls for it.
package session

import (
	"log/slog"

	"memo-gateway/internal/memo/normalize"
	"memo-gateway/internal/memo/vianegativa"
	"memo-gateway/internal/memo/wire"
)

// Session lifecycle states. The gateway never transitions a session; it only
// derives which state the backend data already represents.
const (
	StatusProcessing   = "PROCESSING"
	StatusPreviewReady = "PREVIEW_READY"
	StatusPaid         = "PAID"
)

// Resolver assembles session documents.
type Resolver struct {
	logger *slog.Logger
}

// New constructs a session resolver.
func New(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// jurisdictionSources is the backfill order for each side of the
// jurisdiction pair; only applied when preview_data does not already carry
// the field.
func jurisdictionSources(key string) []wire.Candidate {
	return []wire.Candidate{
		{Path: "", Key: key},
		{Path: "preview", Key: key},
		{Path: "artifact", Key: key},
		{Path: "deal_overview", Key: key},
	}
}

// taxRateSources mirrors the jurisdiction backfill for tax-rate objects;
// tax_differential uses bare side names.
func taxRateSources(side string) []wire.Candidate {
	return []wire.Candidate{
		{Path: "", Key: side + "_tax_rates"},
		{Path: "preview", Key: side + "_tax_rates"},
		{Path: "tax_differential", Key: side},
	}
}

// rootPassthroughs are backend fields forwarded verbatim when present.
var rootPassthroughs = []string{
	"paid_at",
	"unlock_at",
	"price",
	"price_display",
	"full_artifact",
	"memo_data",
	"preview",
}

// Resolve builds the session response for one intake from a raw backend
// payload. Like all normalization here it is best-effort and never fails:
// missing backend fields degrade to sentinels.
func (r *Resolver) Resolve(intakeID string, doc wire.Document) wire.Document {
	if doc == nil {
		doc = wire.Document{}
	}
	pd := doc.Ensure("preview_data")

	r.backfillJurisdictions(doc, pd)
	r.backfillTaxRates(doc, pd)
	normalize.ApplyValueCreation(doc, pd)

	resp := wire.Document{
		"intake_id":    intakeID,
		"status":       deriveStatus(doc, pd),
		"is_unlocked":  isUnlocked(doc),
		"preview_data": map[string]any(pd),
	}
	for _, key := range rootPassthroughs {
		if v, ok := doc[key]; ok && v != nil {
			resp[key] = v
		}
	}

	if ctx := vianegativa.Build(pd); ctx != nil {
		resp["via_negativa"] = ctx
	}
	return resp
}

// backfillJurisdictions fills each side from the structured locations first
// and falls back to parsing the artifact thesis. The em-dash sentinel from
// the parser is preserved verbatim: the page keys off it for N/A states.
func (r *Resolver) backfillJurisdictions(doc, pd wire.Document) {
	for _, key := range []string{"source_jurisdiction", "destination_jurisdiction"} {
		if wire.Truthy(pd[key]) {
			continue
		}
		if v, ok := doc.FirstTruthy(jurisdictionSources(key)); ok {
			pd[key] = v
		}
	}

	if wire.Truthy(pd["source_jurisdiction"]) && wire.Truthy(pd["destination_jurisdiction"]) {
		return
	}
	artifact := doc.Child("artifact")
	if artifact == nil {
		artifact = doc
	}
	source, destination := normalize.ParseJurisdictions(artifact)
	if !wire.Truthy(pd["source_jurisdiction"]) {
		pd["source_jurisdiction"] = source
	}
	if !wire.Truthy(pd["destination_jurisdiction"]) {
		pd["destination_jurisdiction"] = destination
	}
}

func (r *Resolver) backfillTaxRates(doc, pd wire.Document) {
	for _, side := range []string{"source", "destination"} {
		key := side + "_tax_rates"
		if wire.Truthy(pd[key]) {
			continue
		}
		if v, ok := doc.FirstTruthy(taxRateSources(side)); ok {
			pd[key] = v
		}
	}
}

func isUnlocked(doc wire.Document) bool {
	v, _ := doc.Lookup("is_unlocked")
	return wire.Truthy(v)
}

// deriveStatus infers the session lifecycle state. The backend does not
// always set an explicit status while still having produced usable preview
// content; the presence heuristic keeps a client from sitting on a
// processing spinner when data already exists.
func deriveStatus(doc, pd wire.Document) string {
	if isUnlocked(doc) {
		return StatusPaid
	}
	if s := doc.String("status"); s != "" {
		return s
	}
	previewVerdict, _ := doc.Lookup("preview.verdict")
	switch {
	case wire.Truthy(doc["verdict"]),
		wire.Truthy(doc["sequence_preview"]),
		wire.Truthy(previewVerdict),
		len(pd.Array("all_opportunities")) > 0,
		len(pd.Array("execution_sequence")) > 0,
		// Known-fragile shape check, kept deliberately: more than the two
		// jurisdiction sentinels means the backend attached real content.
		len(pd) > 2:
		return StatusPreviewReady
	}
	return StatusProcessing
}
