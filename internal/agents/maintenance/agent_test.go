package maintenance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"agents-backend/internal/engine"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func fleetInput() engine.Input {
	return engine.Input{
		"company_name": "Manufacturing Pro Inc",
		"equipment": []any{
			map[string]any{
				"id":                     "EQ001",
				"name":                   "Production Line A",
				"age_years":              8.0,
				"usage_hours_percentage": 85.0,
				"maintenance_compliance": 70.0,
				"performance_efficiency": 75.0,
				"criticality":            "High",
				"maintenance_base_cost":  15000.0,
			},
			map[string]any{
				"id":                     "EQ002",
				"name":                   "Conveyor System B",
				"age_years":              3.0,
				"usage_hours_percentage": 60.0,
				"maintenance_compliance": 90.0,
				"performance_efficiency": 92.0,
				"criticality":            "Medium",
				"maintenance_base_cost":  8000.0,
			},
		},
	}
}

func TestAnalyzeFleet(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), fleetInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Agent != "maintenance" || report.Company != "Manufacturing Pro Inc" {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if got := report.NextReview; !got.Equal(fixedNow.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected weekly review date, got %s", got)
	}

	health, ok := report.Sections["health_assessment"].(HealthAssessment)
	if !ok {
		t.Fatalf("missing health_assessment section")
	}
	// EQ001: 20*.15 + 15*.20 + 70*.25 + 75*.20 + 80*.10 + 85*.10 = 55.0
	// EQ002: 70*.15 + 40*.20 + 90*.25 + 92*.20 + 80*.10 + 85*.10 = 75.9
	if math.Abs(health.AverageHealthScore-65.45) > 1e-9 {
		t.Fatalf("expected average health 65.45, got %.4f", health.AverageHealthScore)
	}
	if health.OverallStatus != "Fair" {
		t.Fatalf("expected Fair status, got %q", health.OverallStatus)
	}
	if health.CriticalCount != 1 || health.CriticalEquipment[0].EquipmentID != "EQ001" {
		t.Fatalf("expected EQ001 flagged critical, got %+v", health.CriticalEquipment)
	}

	outlook, ok := report.Sections["failure_predictions"].(FailureOutlook)
	if !ok {
		t.Fatalf("missing failure_predictions section")
	}
	if len(outlook.Predictions) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(outlook.Predictions))
	}
	for _, p := range outlook.Predictions {
		if p.RiskLevel != "Low" {
			t.Fatalf("%s: expected Low risk, got %q", p.EquipmentID, p.RiskLevel)
		}
		if p.DaysToFailure != 90 {
			t.Fatalf("%s: expected 90 days, got %d", p.EquipmentID, p.DaysToFailure)
		}
	}
	if outlook.ImmediateAttention != 0 {
		t.Fatalf("expected no immediate-attention units, got %d", outlook.ImmediateAttention)
	}

	schedule, ok := report.Sections["maintenance_optimization"].(Schedule)
	if !ok {
		t.Fatalf("missing maintenance_optimization section")
	}
	if len(schedule.Urgent) != 0 || len(schedule.Scheduled) != 2 {
		t.Fatalf("expected all tasks scheduled, got %d urgent / %d scheduled",
			len(schedule.Urgent), len(schedule.Scheduled))
	}
	// EQ001 High criticality: 15000 * 1.5; EQ002 Medium: 8000.
	if schedule.TotalCost != 30500 {
		t.Fatalf("expected total cost 30500, got %.0f", schedule.TotalCost)
	}
	if schedule.TotalHours != 16 {
		t.Fatalf("expected 16 total hours, got %.0f", schedule.TotalHours)
	}
	if got := schedule.Scheduled[0].Recommended; !got.Equal(fixedNow.AddDate(0, 0, 90)) {
		t.Fatalf("expected schedule date 90 days out, got %s", got)
	}

	if len(report.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(report.Recommendations))
	}
	if report.Recommendations[0].Category != "Preventive Maintenance" {
		t.Fatalf("expected preventive maintenance first, got %q", report.Recommendations[0].Category)
	}
	if report.Recommendations[1].Category != "Maintenance Optimization" {
		t.Fatalf("expected optimization advice last, got %q", report.Recommendations[1].Category)
	}
	if got := report.Recommendations[0].EstimatedCost; math.Abs(got-30500*0.3) > 1e-9 {
		t.Fatalf("expected preventive cost %.0f, got %.0f", 30500*0.3, got)
	}
}

func TestAnalyzeEmptyFleet(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), engine.Input{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	health := report.Sections["health_assessment"].(HealthAssessment)
	if health.TotalEquipment != 0 || health.AverageHealthScore != 0 {
		t.Fatalf("expected empty assessment, got %+v", health)
	}
	if health.OverallStatus != "Poor" {
		t.Fatalf("expected Poor status for empty fleet, got %q", health.OverallStatus)
	}
	// The always-on optimization advice still applies.
	if len(report.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(report.Recommendations))
	}
}

func TestAnalyzeMalformedFieldFails(t *testing.T) {
	agent := New(fixedClock)
	_, err := agent.Analyze(context.Background(), engine.Input{
		"equipment": []any{
			map[string]any{"id": "EQ009", "age_years": "old"},
		},
	})
	if err == nil {
		t.Fatal("expected error for non-numeric age_years")
	}
	var typeErr *engine.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected *engine.TypeError, got %T", err)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	agent := New(fixedClock)
	first, err := agent.Analyze(context.Background(), fleetInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := agent.Analyze(context.Background(), fleetInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	h1 := first.Sections["health_assessment"].(HealthAssessment)
	h2 := second.Sections["health_assessment"].(HealthAssessment)
	if h1.AverageHealthScore != h2.AverageHealthScore {
		t.Fatalf("expected identical scores, got %.6f and %.6f",
			h1.AverageHealthScore, h2.AverageHealthScore)
	}
	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatal("expected identical recommendation sets")
	}
}

func TestHighRiskEquipmentSchedulesUrgently(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), engine.Input{
		"equipment": []any{
			map[string]any{
				"id":                      "EQ777",
				"age_years":               15.0,
				"usage_hours_percentage":  95.0,
				"maintenance_compliance":  30.0,
				"performance_efficiency":  50.0,
				"sensor_anomaly_score":    80.0,
				"historical_failure_rate": 30.0,
				"criticality":             "High",
				"maintenance_complexity":  "High",
			},
		},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	outlook := report.Sections["failure_predictions"].(FailureOutlook)
	// 100 + 57 + 50 + 80 + 80 + 90 = 457/6 = 76.2 -> High risk.
	if outlook.Predictions[0].RiskLevel != "High" {
		t.Fatalf("expected High risk, got %q", outlook.Predictions[0].RiskLevel)
	}
	if len(outlook.HighRiskEquipment) != 1 {
		t.Fatalf("expected 1 high-risk unit, got %d", len(outlook.HighRiskEquipment))
	}
	schedule := report.Sections["maintenance_optimization"].(Schedule)
	if len(schedule.Urgent) != 1 {
		t.Fatalf("expected 1 urgent task, got %d", len(schedule.Urgent))
	}
	if got := schedule.Urgent[0].Recommended; !got.Equal(fixedNow.AddDate(0, 0, 7)) {
		t.Fatalf("urgent work should be capped at 7 days out, got %s", got)
	}
	if schedule.Urgent[0].DurationHours != 16 {
		t.Fatalf("expected 16h for high-complexity work, got %.0f", schedule.Urgent[0].DurationHours)
	}
}
