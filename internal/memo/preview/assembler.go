// Package preview assembles the preview_data document the memo page renders
// from a raw backend payload. The backend's schema has drifted across
// versions, so the same logical field may live in any of several locations;
// assembly is one pass of ordered, defensive merges with no error paths.
package preview

import (
	"log/slog"

	"memo-gateway/internal/memo/normalize"
	"memo-gateway/internal/memo/wire"
)

// Assembler merges scattered backend fields into one preview_data object.
type Assembler struct {
	logger *slog.Logger
}

// New constructs a preview assembler.
func New(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logger}
}

type expertSection struct {
	// The backend has historically emitted both spellings.
	snake string
	camel string
}

var expertSections = []expertSection{
	{snake: "transparency_regime_impact", camel: "transparencyRegimeImpact"},
	{snake: "crisis_resilience_stress_test", camel: "crisisResilienceStressTest"},
}

// expertSectionBases is the accumulated priority order of locations an
// expert section may live at. The order reflects successive backend schema
// migrations, not a designed hierarchy; it is preserved as-is for
// behavioral compatibility. Snake_case is checked before camelCase at each
// location.
var expertSectionBases = []string{
	"memo_data",
	"artifact.memo_data",
	"", // response root
	"artifact",
	"preview",
	"preview_data",
	"full_artifact.memo_data",
}

func (s expertSection) candidates() []wire.Candidate {
	out := make([]wire.Candidate, 0, len(expertSectionBases)*2)
	for _, base := range expertSectionBases {
		out = append(out,
			wire.Candidate{Path: base, Key: s.snake},
			wire.Candidate{Path: base, Key: s.camel},
		)
	}
	return out
}

// scalarCopies are preview fields lifted into preview_data when present;
// absent fields never overwrite.
var scalarCopies = []struct {
	from string
	to   string
}{
	{from: "preview.data_quality", to: "data_quality"},
	{from: "preview.principal_profile", to: "exposure_class"},
	{from: "preview.precedent_count", to: "precedent_count"},
}

// Assemble augments the backend payload in place and returns it. Given the
// same payload it always produces the same result; nothing here depends on
// time or request identity beyond the intake ID itself.
func (a *Assembler) Assemble(intakeID string, doc wire.Document) wire.Document {
	if doc == nil {
		doc = wire.Document{}
	}
	pd := doc.Ensure("preview_data")

	normalize.ApplyValueCreation(doc, pd)

	for _, c := range scalarCopies {
		if v, ok := doc.Lookup(c.from); ok && v != nil {
			pd[c.to] = v
		}
	}

	a.sanitizeCapitalFlow(doc, pd)
	a.resolveExpertSections(doc, pd)

	doc["intake_id"] = intakeID
	return doc
}

// sanitizeCapitalFlow copies capital_flow_data into preview_data with the
// numeric fields guaranteed non-null: downstream rendering cannot guard
// against null, so absence becomes 0 or an empty list.
func (a *Assembler) sanitizeCapitalFlow(doc, pd wire.Document) {
	raw, ok := doc.Lookup("capital_flow_data")
	if !ok || !wire.Truthy(raw) {
		return
	}
	src, ok := wire.ObjectOf(raw)
	if !ok {
		return
	}

	flow := make(map[string]any, len(src)+3)
	for k, v := range src {
		flow[k] = v
	}
	flow["flow_intensity_index"] = src.NumberOr("flow_intensity_index", 0)
	if arr := src.Array("source_flows"); arr != nil {
		flow["source_flows"] = arr
	} else {
		flow["source_flows"] = []any{}
	}
	if arr := src.Array("destination_flows"); arr != nil {
		flow["destination_flows"] = arr
	} else {
		flow["destination_flows"] = []any{}
	}
	pd["capital_flow_data"] = flow
}

// resolveExpertSections finds each expert section at its first truthy
// location and writes it to both consumer paths.
func (a *Assembler) resolveExpertSections(doc, pd wire.Document) {
	for _, section := range expertSections {
		v, ok := doc.FirstTruthy(section.candidates())
		if !ok {
			continue
		}
		pd[section.snake] = v
		doc.Ensure("memo_data")[section.snake] = v
	}
}
