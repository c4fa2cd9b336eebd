package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"memo-gateway/internal/memo/wire"
)

func TestNormalizeJurisdiction(t *testing.T) {
	synonyms := map[string]string{
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

	for city, region := range synonyms {
		assert.Equal(t, region, NormalizeJurisdiction(city), city)
		// Case-insensitive and whitespace-tolerant.
		assert.Equal(t, region, NormalizeJurisdiction("  "+city+"  "), city)
		assert.Equal(t, region, NormalizeJurisdiction(strings.ToUpper(city)), city)
	}

	t.Run("generic US normalizes to empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeJurisdiction("United States"))
		assert.Equal(t, "", NormalizeJurisdiction("usa"))
		assert.Equal(t, "", NormalizeJurisdiction("US"))
	})

	t.Run("unmatched passes through trimmed", func(t *testing.T) {
		assert.Equal(t, "Singapore", NormalizeJurisdiction("  Singapore "))
		assert.Equal(t, "Lichtenstein", NormalizeJurisdiction("Lichtenstein"))
	})
}

func TestParseJurisdictions(t *testing.T) {
	t.Run("thesis based pattern", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"thesis_summary": "California-based family relocating to Texas",
		})
		assert.Equal(t, "California", src)
		assert.Equal(t, "Texas", dest)
	})

	t.Run("thesis based with space marker and city source", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"thesis_summary": "Miami based entrepreneur moving to Singapore next year",
		})
		assert.Equal(t, "Florida", src)
		assert.Equal(t, "Singapore", dest)
	})

	t.Run("source never equals destination", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"thesis_summary": "Texas-based operator expanding to Texas and relocating to Monaco",
		})
		assert.Equal(t, "Texas", src)
		assert.Equal(t, "Monaco", dest)
	})

	t.Run("arrow pattern", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"thesis_summary": "nyc → Singapore",
		})
		assert.Equal(t, "New York", src)
		assert.Equal(t, "Singapore", dest)
	})

	t.Run("arrow pattern rejects target market placeholder", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"thesis_summary": "chicago → target market",
		})
		assert.Equal(t, Unknown, src)
		assert.Equal(t, Unknown, dest)
	})

	t.Run("deal overview split", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"deal_overview": map[string]any{"jurisdictions": "California → Portugal"},
		})
		assert.Equal(t, "California", src)
		assert.Equal(t, "Portugal", dest)
	})

	t.Run("deal overview needs exactly two parts", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"deal_overview": map[string]any{"jurisdictions": "California → Portugal → Malta"},
		})
		assert.Equal(t, Unknown, src)
		assert.Equal(t, Unknown, dest)
	})

	t.Run("implied ips tax jurisdictions with geographic targets", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"implied_ips": map[string]any{
				"tax_jurisdictions":  []any{"united states", "dallas", "Monaco"},
				"geographic_targets": map[string]any{"Other": 1.0, "Portugal": 2.0},
			},
		})
		assert.Equal(t, "Texas", src)
		assert.Equal(t, "Portugal", dest)
	})

	t.Run("implied ips falls back to next differing entry", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{
			"implied_ips": map[string]any{
				"tax_jurisdictions": []any{"target market", "seattle", "seattle", "Dubai"},
			},
		})
		assert.Equal(t, "Washington", src)
		assert.Equal(t, "Dubai", dest)
	})

	t.Run("empty artifact falls through to sentinel", func(t *testing.T) {
		src, dest := ParseJurisdictions(wire.Document{})
		assert.Equal(t, Unknown, src)
		assert.Equal(t, Unknown, dest)
	})

	t.Run("nil artifact never panics", func(t *testing.T) {
		src, dest := ParseJurisdictions(nil)
		assert.Equal(t, Unknown, src)
		assert.Equal(t, Unknown, dest)
	})
}
