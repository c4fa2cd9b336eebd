// Package vianegativa derives the elevated-risk display context shown when
// the backend's structural verdict is negative. The page historically built
// this at render time; the gateway now computes it once per response so the
// page receives fully resolved strings.
package vianegativa

import (
	"strconv"
	"strings"

	"memo-gateway/internal/memo/normalize"
	"memo-gateway/internal/memo/wire"
)

// VerdictDoNotProceed is the only verdict value that activates this mode.
const VerdictDoNotProceed = "DO_NOT_PROCEED"

// Context carries every display field for the elevated-risk memo mode. Each
// field resolves independently as backend value or literal fallback; no
// cross-field invariants exist beyond the non-negative numeric clamps.
type Context struct {
	Verdict     string `json:"verdict"`
	Headline    string `json:"headline"`
	SubHeadline string `json:"subHeadline"`
	RiskBadge   string `json:"riskBadge"`

	NoticeTitle string `json:"noticeTitle"`
	NoticeBody  string `json:"noticeBody"`

	CTATitle       string `json:"ctaTitle"`
	CTABody        string `json:"ctaBody"`
	CTAButtonLabel string `json:"ctaButtonLabel"`

	DayOneLossPct             float64 `json:"dayOneLossPct"`
	DayOneLossAmount          float64 `json:"dayOneLossAmount"`
	DayOneLossDisplay         string  `json:"dayOneLossDisplay"`
	TotalConfiscationExposure float64 `json:"totalConfiscationExposure"`
	ConfiscationDisplay       string  `json:"confiscationDisplay"`

	PrecedentCount int    `json:"precedentCount"`
	PrecedentLabel string `json:"precedentLabel"`

	TaxEfficiencyPassed bool   `json:"taxEfficiencyPassed"`
	TaxEfficiencyLabel  string `json:"taxEfficiencyLabel"`
	TaxEfficiencyDetail string `json:"taxEfficiencyDetail"`
	LiquidityPassed     bool   `json:"liquidityPassed"`
	LiquidityLabel      string `json:"liquidityLabel"`
	LiquidityDetail     string `json:"liquidityDetail"`
	StructurePassed     bool   `json:"structurePassed"`
	StructureLabel      string `json:"structureLabel"`
	StructureDetail     string `json:"structureDetail"`
	GatesTitle          string `json:"gatesTitle"`

	AlternativeTitle string `json:"alternativeTitle"`
	AlternativeBody  string `json:"alternativeBody"`
	Disclaimer       string `json:"disclaimer"`
	ReportLabel      string `json:"reportLabel"`
}

// Build constructs the elevated-risk context from assembled preview data.
// It returns nil for any verdict other than DO_NOT_PROCEED: the standard
// mode carries no partial context.
func Build(previewData wire.Document) *Context {
	if previewData.String("structure_optimization.verdict") != VerdictDoNotProceed {
		return nil
	}
	so := previewData.Child("structure_optimization")
	if so == nil {
		so = wire.Document{}
	}

	pct := clamp(so.NumberOr("day_one_loss_pct", 0))
	amount := clamp(so.NumberOr("day_one_loss_amount", 0))
	exposure := clamp(so.NumberOr("total_confiscation_exposure", 0))
	precedents := int(so.NumberOr("precedents", 0))

	ctx := &Context{
		Verdict:     VerdictDoNotProceed,
		Headline:    stringOr(so, "headline", "Structural Failure Detected"),
		SubHeadline: stringOr(so, "sub_headline", "This structure fails under current enforcement conditions"),
		RiskBadge:   stringOr(so, "risk_badge", "ELEVATED RISK"),

		NoticeTitle: stringOr(so, "notice_title", "Why this structure fails"),
		NoticeBody: stringOr(so, "notice_body",
			"Modeled outcome: {dayOneLoss}% of transferred capital is exposed on day one, across {precedentCount} precedent cases."),

		CTATitle: stringOr(so, "cta_title", "See the full failure analysis"),
		CTABody: stringOr(so, "cta_body",
			"The complete memo documents each failure point and the {precedentCount} precedent cases behind it."),
		CTAButtonLabel: stringOr(so, "cta_button_label", "Unlock Full Memo"),

		DayOneLossPct:             pct,
		DayOneLossAmount:          amount,
		DayOneLossDisplay:         stringOr(so, "day_one_loss_display", normalize.FormatValueCreation(amount)),
		TotalConfiscationExposure: exposure,
		ConfiscationDisplay:       stringOr(so, "confiscation_display", normalize.FormatValueCreation(exposure)),

		PrecedentCount: precedents,
		PrecedentLabel: stringOr(so, "precedent_label", "precedent cases"),

		TaxEfficiencyPassed: taxEfficiencyPassed(so, previewData),
		TaxEfficiencyLabel:  stringOr(so, "tax_efficiency_label", "Tax Efficiency"),
		TaxEfficiencyDetail: stringOr(so, "tax_efficiency_detail", "Projected savings survive audit scrutiny"),
		LiquidityPassed:     liquidityPassed(so, pct),
		LiquidityLabel:      stringOr(so, "liquidity_label", "Liquidity"),
		LiquidityDetail:     stringOr(so, "liquidity_detail", "Capital remains accessible after transfer"),
		StructurePassed:     structurePassed(so),
		StructureLabel:      stringOr(so, "structure_label", "Structural Integrity"),
		StructureDetail:     stringOr(so, "structure_detail", "Holding chain withstands look-through rules"),
		GatesTitle:          stringOr(so, "gates_title", "Three-gate assessment"),

		AlternativeTitle: stringOr(so, "alternative_title", "What works instead"),
		AlternativeBody: stringOr(so, "alternative_body",
			"Comparable households reached the same objective through sequenced relocation rather than entity layering."),
		Disclaimer:  stringOr(so, "disclaimer", "Analysis reflects enforcement data current at generation time."),
		ReportLabel: stringOr(so, "report_label", "Pattern Audit — Elevated Risk Edition"),
	}

	// The backend may send fully formed strings or templates; substitution is
	// unconditional and a no-op when placeholders are absent.
	ctx.NoticeBody = substitute(ctx.NoticeBody, pct, precedents)
	ctx.CTABody = substitute(ctx.CTABody, pct, precedents)

	return ctx
}

// taxEfficiencyPassed defaults to passing unless the backend explicitly
// opted out of showing tax savings.
func taxEfficiencyPassed(so, previewData wire.Document) bool {
	if b, ok := so.Bool("tax_efficiency_passed"); ok {
		return b
	}
	if b, ok := so.Bool("show_tax_savings"); ok {
		return b
	}
	if b, ok := previewData.Bool("show_tax_savings"); ok {
		return b
	}
	return true
}

// liquidityPassed defaults on the day-one loss threshold.
func liquidityPassed(so wire.Document, pct float64) bool {
	if b, ok := so.Bool("liquidity_passed"); ok {
		return b
	}
	return pct < 10
}

// structurePassed fails safe: inside a do-not-proceed branch the structure
// has not passed unless the backend says otherwise.
func structurePassed(so wire.Document) bool {
	if b, ok := so.Bool("structure_passed"); ok {
		return b
	}
	return false
}

func substitute(s string, pct float64, precedents int) string {
	s = strings.ReplaceAll(s, "{dayOneLoss}", strconv.FormatFloat(pct, 'f', 1, 64))
	s = strings.ReplaceAll(s, "{precedentCount}", normalize.GroupDigits(float64(precedents)))
	return s
}

func stringOr(doc wire.Document, key, fallback string) string {
	if s := doc.String(key); s != "" {
		return s
	}
	return fallback
}

func clamp(n float64) float64 {
	if n < 0 {
		return 0
	}
	return n
}
