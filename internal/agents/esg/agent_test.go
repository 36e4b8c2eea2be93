package esg

import (
	"context"
	"math"
	"testing"
	"time"

	"agents-backend/internal/engine"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sustainabilityInput() engine.Input {
	return engine.Input{
		"company_name": "GreenTech Enterprises",
		"environmental_metrics": map[string]any{
			"carbon_intensity":            60.0,
			"energy_efficiency_score":     75.0,
			"waste_reduction_percentage":  45.0,
			"renewable_energy_percentage": 35.0,
		},
		"social_metrics": map[string]any{
			"employee_satisfaction":  78.0,
			"diversity_score":        68.0,
			"workplace_safety_score": 85.0,
		},
		"governance_metrics": map[string]any{
			"board_independence_score": 80.0,
			"transparency_score":       72.0,
			"ethics_program_score":     88.0,
		},
		"carbon_metrics": map[string]any{
			"scope1_emissions":            800.0,
			"scope2_emissions":            1200.0,
			"scope3_emissions":            2500.0,
			"reduction_target_percentage": 50.0,
			"target_year":                 2030.0,
		},
		"annual_revenue": 25_000_000.0,
	}
}

func TestAnalyzeSustainability(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), sustainabilityInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Agent != "esg" || report.Company != "GreenTech Enterprises" {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if !report.NextReview.Equal(fixedNow.Add(90 * 24 * time.Hour)) {
		t.Fatalf("expected quarterly review date, got %s", report.NextReview)
	}

	esg, ok := report.Sections["esg_analysis"].(ESGAnalysis)
	if !ok {
		t.Fatalf("missing esg_analysis section")
	}
	// env: (40+75+45+50+35)/5 = 49; social: (78+68+60+85+70)/5 = 72.2;
	// gov: (80+70+72+88+75)/5 = 77; overall = 66.07.
	if math.Abs(esg.EnvironmentalScore-49) > 1e-9 {
		t.Fatalf("expected environmental 49, got %.4f", esg.EnvironmentalScore)
	}
	if math.Abs(esg.SocialScore-72.2) > 1e-9 {
		t.Fatalf("expected social 72.2, got %.4f", esg.SocialScore)
	}
	if math.Abs(esg.GovernanceScore-77) > 1e-9 {
		t.Fatalf("expected governance 77, got %.4f", esg.GovernanceScore)
	}
	if esg.Rating != "A" {
		t.Fatalf("expected rating A, got %q", esg.Rating)
	}
	if len(esg.ImprovementAreas) != 1 {
		t.Fatalf("expected 1 improvement area, got %v", esg.ImprovementAreas)
	}

	carbon, ok := report.Sections["carbon_analysis"].(CarbonAnalysis)
	if !ok {
		t.Fatalf("missing carbon_analysis section")
	}
	if carbon.TotalEmissionsTCO2e != 4500 {
		t.Fatalf("expected 4500 tCO2e, got %.0f", carbon.TotalEmissionsTCO2e)
	}
	if carbon.CarbonIntensity != 180 {
		t.Fatalf("expected intensity 180, got %.2f", carbon.CarbonIntensity)
	}
	if carbon.Performance != "Fair - High carbon intensity" {
		t.Fatalf("unexpected carbon performance %q", carbon.Performance)
	}
	if carbon.YearsToTarget != 4 || carbon.AnnualReductionNeeded != 12.5 {
		t.Fatalf("unexpected reduction plan: %+v", carbon)
	}

	social, ok := report.Sections["social_impact"].(SocialImpact)
	if !ok {
		t.Fatalf("missing social_impact section")
	}
	// Defaults: (70 + 75 + 60 + 0) / 4 = 51.25.
	if math.Abs(social.ImpactScore-51.25) > 1e-9 {
		t.Fatalf("expected impact score 51.25, got %.4f", social.ImpactScore)
	}
	if social.Performance != "Limited social performance" {
		t.Fatalf("unexpected social performance %q", social.Performance)
	}

	gov, ok := report.Sections["governance_assessment"].(GovernanceAssessment)
	if !ok {
		t.Fatalf("missing governance_assessment section")
	}
	if gov.Level != "Strong governance" {
		t.Fatalf("expected strong governance, got %q (score %.2f)", gov.Level, gov.Score)
	}

	want := []string{"ESG Performance", "Carbon Reduction", "Social Impact"}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("expected %d recommendations, got %d", len(want), len(report.Recommendations))
	}
	for i, cat := range want {
		if report.Recommendations[i].Category != cat {
			t.Fatalf("recommendation %d: expected %q, got %q", i, cat, report.Recommendations[i].Category)
		}
	}
}

func TestRatingBands(t *testing.T) {
	agent := New(fixedClock)
	cases := map[float64]string{
		90: "AAA",
		85: "AAA",
		80: "AA",
		70: "A",
		60: "BBB",
		50: "BB",
		40: "B",
	}
	for score, want := range cases {
		if got := agent.ratingScale.Classify(score); got != want {
			t.Fatalf("score %.0f: expected %q, got %q", score, want, got)
		}
	}
}

func TestAnalyzeDefaultsOnly(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), engine.Input{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	esg := report.Sections["esg_analysis"].(ESGAnalysis)
	// env: (50+60+40+50+30)/5 = 46; social: (70+65+60+80+70)/5 = 69;
	// gov: (75+70+65+80+75)/5 = 73; overall = 62.67 -> BBB.
	if esg.Rating != "BBB" {
		t.Fatalf("expected default rating BBB, got %q (%.2f)", esg.Rating, esg.OverallScore)
	}
	carbon := report.Sections["carbon_analysis"].(CarbonAnalysis)
	// 5500 tCO2e over $10M revenue -> intensity 550.
	if carbon.Performance != "Poor - Very high carbon intensity" {
		t.Fatalf("unexpected default carbon performance %q", carbon.Performance)
	}
	if report.Company != "Unknown Company" {
		t.Fatalf("expected fallback company name, got %q", report.Company)
	}
}

func TestAnalyzeMalformedMetricFails(t *testing.T) {
	agent := New(fixedClock)
	_, err := agent.Analyze(context.Background(), engine.Input{
		"environmental_metrics": map[string]any{"carbon_intensity": []int{1}},
	})
	if err == nil {
		t.Fatal("expected error for non-numeric carbon_intensity")
	}
}
