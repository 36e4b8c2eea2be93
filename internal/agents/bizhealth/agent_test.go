package bizhealth

import (
	"context"
	"math"
	"testing"
	"time"

	"agents-backend/internal/engine"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func businessInput() engine.Input {
	return engine.Input{
		"company_name":           "DataDriven Enterprises",
		"revenue":                2_500_000.0,
		"profit_margin":          18.0,
		"cash_flow":              300_000.0,
		"growth_rate":            15.0,
		"customer_satisfaction":  85.0,
		"employee_satisfaction":  78.0,
		"operational_efficiency": 82.0,
		"market_share":           12.0,
		"historical_data": map[string]any{
			"revenue":       []any{2_000_000.0, 2_200_000.0, 2_400_000.0, 2_500_000.0},
			"customers":     []any{1000.0, 1100.0, 1250.0, 1300.0},
			"profit_margin": []any{15.0, 16.0, 17.0, 18.0},
		},
	}
}

func TestAnalyzeBusiness(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), businessInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	kpis, ok := report.Sections["kpi_analysis"].(KPIAnalysis)
	if !ok {
		t.Fatalf("missing kpi_analysis section")
	}
	// All four financial KPIs exceed benchmark and cap at 100.
	if kpis.FinancialHealth != 100 {
		t.Fatalf("expected financial health 100, got %.4f", kpis.FinancialHealth)
	}
	// quality_score is absent and defaults to 0: (100+100+96.47+0)/4.
	if math.Abs(kpis.OperationalHealth-74.11764705882354) > 1e-9 {
		t.Fatalf("expected operational health 74.12, got %.6f", kpis.OperationalHealth)
	}
	if kpis.HealthLevel != "Good" {
		t.Fatalf("expected Good health level, got %q (%.2f)", kpis.HealthLevel, kpis.OverallHealth)
	}

	trends, ok := report.Sections["trend_analysis"].(TrendAnalysis)
	if !ok {
		t.Fatalf("missing trend_analysis section")
	}
	for name, tr := range map[string]Trend{
		"revenue":  trends.Revenue,
		"customer": trends.Customer,
		"margin":   trends.Margin,
	} {
		if tr.Direction != "Increasing" {
			t.Fatalf("%s: expected Increasing, got %q", name, tr.Direction)
		}
	}
	if trends.Revenue.Rate != 170_000 {
		t.Fatalf("expected revenue slope 170000, got %.2f", trends.Revenue.Rate)
	}
	if trends.Summary != "Overall Positive Trend" {
		t.Fatalf("unexpected trend summary %q", trends.Summary)
	}

	insights := report.Sections["automated_insights"].([]Insight)
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d: %+v", len(insights), insights)
	}
	if insights[0].Type != "Growth" || insights[1].Type != "Operations" {
		t.Fatalf("unexpected insight types: %+v", insights)
	}

	summary := report.Sections["executive_summary"].(ExecutiveSummary)
	if summary.OverallStatus != "Strong Performance" {
		t.Fatalf("expected Strong Performance, got %q", summary.OverallStatus)
	}
	if len(summary.PriorityActions) != 0 {
		t.Fatalf("expected no priority actions, got %v", summary.PriorityActions)
	}

	alerts := report.Sections["performance_alerts"].([]Alert)
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}

	want := []string{"Operational Investment", "Growth"}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("expected %d recommendations, got %d", len(want), len(report.Recommendations))
	}
	for i, cat := range want {
		if report.Recommendations[i].Category != cat {
			t.Fatalf("recommendation %d: expected %q, got %q", i, cat, report.Recommendations[i].Category)
		}
	}
}

func TestAnalyzeStrugglingBusiness(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), engine.Input{
		"revenue":       100_000.0,
		"profit_margin": 2.0,
		"historical_data": map[string]any{
			"revenue":       []any{400_000.0, 300_000.0, 200_000.0, 100_000.0},
			"profit_margin": []any{8.0, 6.0, 4.0, 2.0},
		},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	kpis := report.Sections["kpi_analysis"].(KPIAnalysis)
	if kpis.HealthLevel != "Critical" {
		t.Fatalf("expected Critical health, got %q (%.2f)", kpis.HealthLevel, kpis.OverallHealth)
	}

	trends := report.Sections["trend_analysis"].(TrendAnalysis)
	if trends.Revenue.Direction != "Decreasing" || trends.Summary != "Overall Negative Trend" {
		t.Fatalf("expected negative trends, got %+v", trends)
	}

	alerts := report.Sections["performance_alerts"].([]Alert)
	if len(alerts) == 0 || alerts[0].Type != "Critical" {
		t.Fatalf("expected critical alert first, got %+v", alerts)
	}

	if len(report.Recommendations) < 2 {
		t.Fatalf("expected recovery recommendations, got %+v", report.Recommendations)
	}
	if report.Recommendations[0].Category != "Performance Recovery" {
		t.Fatalf("expected Performance Recovery first, got %q", report.Recommendations[0].Category)
	}
	if report.Recommendations[1].Category != "Trend Reversal" {
		t.Fatalf("expected Trend Reversal second, got %q", report.Recommendations[1].Category)
	}
}

func TestTrendInsufficientData(t *testing.T) {
	tr := calculateTrend([]float64{42})
	if tr.Direction != "Insufficient Data" || tr.Rate != 0 {
		t.Fatalf("unexpected trend for single point: %+v", tr)
	}
}

func TestMalformedHistorySeriesFails(t *testing.T) {
	agent := New(fixedClock)
	_, err := agent.Analyze(context.Background(), engine.Input{
		"historical_data": map[string]any{
			"revenue": []any{100.0, "n/a", 300.0},
		},
	})
	if err == nil {
		t.Fatal("expected error for non-numeric history point")
	}
}
