package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"memo-gateway/internal/memo/normalize"
	"memo-gateway/internal/memo/vianegativa"
	"memo-gateway/internal/memo/wire"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.resolver = New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ResolverSuite) TestStatusDerivation() {
	tests := []struct {
		name string
		doc  wire.Document
		want string
	}{
		{
			name: "empty payload is processing",
			doc:  wire.Document{},
			want: StatusProcessing,
		},
		{
			name: "unlocked wins over everything",
			doc:  wire.Document{"is_unlocked": true, "status": "PROCESSING"},
			want: StatusPaid,
		},
		{
			name: "explicit backend status passes through",
			doc:  wire.Document{"status": "PREVIEW_READY"},
			want: StatusPreviewReady,
		},
		{
			name: "root verdict implies preview ready",
			doc:  wire.Document{"verdict": "PROCEED"},
			want: StatusPreviewReady,
		},
		{
			name: "sequence preview implies preview ready",
			doc:  wire.Document{"sequence_preview": []any{map[string]any{"step": 1.0}}},
			want: StatusPreviewReady,
		},
		{
			name: "nested preview verdict implies preview ready",
			doc:  wire.Document{"preview": map[string]any{"verdict": "DO_NOT_PROCEED"}},
			want: StatusPreviewReady,
		},
		{
			name: "opportunities imply preview ready",
			doc: wire.Document{
				"preview_data": map[string]any{
					"all_opportunities": []any{map[string]any{"id": "opp1"}},
				},
			},
			want: StatusPreviewReady,
		},
		{
			name: "execution sequence implies preview ready",
			doc: wire.Document{
				"preview_data": map[string]any{
					"execution_sequence": []any{map[string]any{"step": 1.0}},
				},
			},
			want: StatusPreviewReady,
		},
		{
			name: "rich preview_data implies preview ready",
			doc: wire.Document{
				"preview_data": map[string]any{
					"total_savings":   "$2.5M",
					"data_quality":    "high",
					"exposure_class":  "UHNW",
					"precedent_count": 10.0,
				},
			},
			want: StatusPreviewReady,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.resolver.Resolve("ia_1", tt.doc)
			s.Equal(tt.want, resp["status"])
		})
	}
}

func (s *ResolverSuite) TestJurisdictionBackfillOrder() {
	s.Run("existing preview_data value is never overwritten", func() {
		doc := wire.Document{
			"preview_data":        map[string]any{"source_jurisdiction": "Texas"},
			"source_jurisdiction": "California",
		}
		resp := s.resolver.Resolve("ia_1", doc)
		s.Equal("Texas", resp.String("preview_data.source_jurisdiction"))
	})

	s.Run("root beats preview beats artifact beats deal_overview", func() {
		doc := wire.Document{
			"preview":       map[string]any{"source_jurisdiction": "California"},
			"artifact":      map[string]any{"source_jurisdiction": "Florida"},
			"deal_overview": map[string]any{"source_jurisdiction": "Illinois"},
		}
		resp := s.resolver.Resolve("ia_1", doc)
		s.Equal("California", resp.String("preview_data.source_jurisdiction"))

		resp = s.resolver.Resolve("ia_1", wire.Document{
			"source_jurisdiction": "Texas",
			"preview":             map[string]any{"source_jurisdiction": "California"},
		})
		s.Equal("Texas", resp.String("preview_data.source_jurisdiction"))
	})

	s.Run("thesis parsing fills what structured fields cannot", func() {
		doc := wire.Document{
			"artifact": map[string]any{
				"thesis_summary": "California-based family relocating to Texas",
			},
		}
		resp := s.resolver.Resolve("ia_1", doc)
		s.Equal("California", resp.String("preview_data.source_jurisdiction"))
		s.Equal("Texas", resp.String("preview_data.destination_jurisdiction"))
	})

	s.Run("sentinels when nothing matches", func() {
		resp := s.resolver.Resolve("ia_1", wire.Document{})
		s.Equal(normalize.Unknown, resp.String("preview_data.source_jurisdiction"))
		s.Equal(normalize.Unknown, resp.String("preview_data.destination_jurisdiction"))
	})
}

func (s *ResolverSuite) TestTaxRateBackfill() {
	rates := map[string]any{"income": 0.37, "capital_gains": 0.20}

	s.Run("root field wins", func() {
		resp := s.resolver.Resolve("ia_1", wire.Document{
			"source_tax_rates": rates,
			"preview":          map[string]any{"source_tax_rates": map[string]any{"income": 0.1}},
		})
		s.Equal(0.37, resp.Child("preview_data").NumberOr("source_tax_rates.income", -1))
	})

	s.Run("tax differential as last resort", func() {
		resp := s.resolver.Resolve("ia_1", wire.Document{
			"tax_differential": map[string]any{
				"source":      rates,
				"destination": map[string]any{"income": 0.0},
			},
		})
		pd := resp.Child("preview_data")
		s.Equal(0.37, pd.NumberOr("source_tax_rates.income", -1))
		s.Equal(0.0, pd.NumberOr("destination_tax_rates.income", -1))
	})
}

func (s *ResolverSuite) TestRootPassthroughs() {
	doc := wire.Document{
		"paid_at":       "2026-08-01T10:00:00Z",
		"price":         497.0,
		"price_display": "$497",
		"full_artifact": map[string]any{"thesis": "x"},
	}
	resp := s.resolver.Resolve("ia_1", doc)

	s.Equal("2026-08-01T10:00:00Z", resp["paid_at"])
	s.Equal(497.0, resp["price"])
	s.Equal("$497", resp["price_display"])
	s.NotNil(resp.Child("full_artifact"))
	// Absent optionals stay absent rather than null.
	s.False(resp.Has("unlock_at"))
}

func (s *ResolverSuite) TestViaNegativaEmbedding() {
	s.Run("absent for standard verdicts", func() {
		resp := s.resolver.Resolve("ia_1", wire.Document{
			"preview_data": map[string]any{
				"structure_optimization": map[string]any{"verdict": "PROCEED"},
			},
		})
		s.False(resp.Has("via_negativa"))
	})

	s.Run("present for do-not-proceed", func() {
		resp := s.resolver.Resolve("ia_1", wire.Document{
			"preview_data": map[string]any{
				"structure_optimization": map[string]any{
					"verdict":          vianegativa.VerdictDoNotProceed,
					"day_one_loss_pct": 23.0,
				},
			},
		})
		ctx, ok := resp["via_negativa"].(*vianegativa.Context)
		s.Require().True(ok)
		s.Equal(23.0, ctx.DayOneLossPct)
		s.False(ctx.LiquidityPassed)
	})
}

func (s *ResolverSuite) TestValueCreationMergeOnSession() {
	resp := s.resolver.Resolve("ia_1", wire.Document{
		"value_creation": map[string]any{"total_annual": 45_000.0},
	})
	s.Equal("$45K", resp.String("preview_data.total_savings"))
}
