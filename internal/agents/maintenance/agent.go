// Package maintenance implements the predictive maintenance agent:
// per-equipment health scoring, failure prediction, and schedule
// optimization.
package maintenance

import (
	"context"
	"fmt"
	"math"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

const reviewCycle = 7 * 24 * time.Hour

// Equipment health below this score marks the unit critical.
const criticalHealthThreshold = 60

type Agent struct {
	clock       agents.Clock
	healthTable engine.WeightTable
	riskScale   engine.Scale
	rules       engine.RuleSet[facts]
}

func New(clock agents.Clock) *Agent {
	if clock == nil {
		clock = time.Now
	}
	return &Agent{
		clock:       clock,
		healthTable: healthTable(),
		riskScale: engine.NewScale("Low",
			engine.Band{Threshold: 85, Label: "Critical"},
			engine.Band{Threshold: 70, Label: "High"},
			engine.Band{Threshold: 50, Label: "Medium"},
		),
		rules: recommendationRules(),
	}
}

func (a *Agent) Meta() agents.Metadata {
	return agents.Metadata{
		Key:      "maintenance",
		Name:     "Predictive Maintenance Intelligence Agent",
		Version:  "1.0.0",
		Category: "operations",
		Capabilities: []string{
			"Failure Prediction",
			"Maintenance Scheduling",
			"Cost Optimization",
			"Performance Analytics",
			"Resource Planning",
			"Risk Assessment",
		},
		ReviewCycle: reviewCycle,
	}
}

func healthTable() engine.WeightTable {
	return engine.Table(
		engine.Factor{Name: "age_years", Weight: 0.15, Default: 5, Transform: func(v float64) float64 {
			return 100 - math.Min(100, v*10)
		}},
		engine.Factor{Name: "usage_hours_percentage", Weight: 0.20, Default: 50, Transform: func(v float64) float64 {
			return 100 - v
		}},
		engine.Factor{Name: "maintenance_compliance", Weight: 0.25, Default: 80},
		engine.Factor{Name: "performance_efficiency", Weight: 0.20, Default: 85},
		engine.Factor{Name: "abnormal_vibration_score", Weight: 0.10, Default: 20, Transform: func(v float64) float64 {
			return 100 - v
		}},
		engine.Factor{Name: "temperature_variance_score", Weight: 0.10, Default: 15, Transform: func(v float64) float64 {
			return 100 - v
		}},
	)
}

// HealthAssessment summarizes fleet-wide equipment health.
type HealthAssessment struct {
	AverageHealthScore float64             `json:"averageHealthScore"`
	TotalEquipment     int                 `json:"totalEquipment"`
	CriticalCount      int                 `json:"criticalEquipmentCount"`
	CriticalEquipment  []CriticalEquipment `json:"criticalEquipment"`
	OverallStatus      string              `json:"overallStatus"`
}

type CriticalEquipment struct {
	EquipmentID string  `json:"equipmentId"`
	Name        string  `json:"name"`
	HealthScore float64 `json:"healthScore"`
	Criticality string  `json:"criticality"`
}

// FailurePrediction is the per-unit failure outlook.
type FailurePrediction struct {
	EquipmentID        string  `json:"equipmentId"`
	EquipmentName      string  `json:"equipmentName"`
	FailureProbability float64 `json:"failureProbability"`
	DaysToFailure      int     `json:"daysToPotentialFailure"`
	RiskLevel          string  `json:"riskLevel"`
	RecommendedAction  string  `json:"recommendedAction"`
}

type FailureOutlook struct {
	Predictions        []FailurePrediction `json:"failurePredictions"`
	HighRiskEquipment  []FailurePrediction `json:"highRiskEquipment"`
	ImmediateAttention int                 `json:"immediateAttentionNeeded"`
	AverageProbability float64             `json:"averageFailureProbability"`
}

// MaintenanceTask is a scheduled work item with resourcing estimates.
type MaintenanceTask struct {
	EquipmentID   string    `json:"equipmentId"`
	Priority      string    `json:"priority"`
	Recommended   time.Time `json:"recommendedDate"`
	DurationHours float64   `json:"estimatedDurationHours"`
	EstimatedCost float64   `json:"estimatedCost"`
}

type ResourcePlan struct {
	UrgentHoursNextWeek     float64  `json:"urgentHoursNextWeek"`
	ScheduledHoursNextMonth float64  `json:"scheduledHoursNextMonth"`
	OptimizationSuggestions []string `json:"resourceOptimizationSuggestions"`
	RecommendedTeamSize     int      `json:"recommendedTeamSize"`
}

type Schedule struct {
	Urgent       []MaintenanceTask `json:"urgentMaintenance"`
	Scheduled    []MaintenanceTask `json:"scheduledMaintenance"`
	TotalCost    float64           `json:"totalEstimatedCost"`
	TotalHours   float64           `json:"totalEstimatedHours"`
	ResourcePlan ResourcePlan      `json:"resourceOptimization"`
}

type facts struct {
	immediate     int
	criticalCount int
	urgentCost    float64
	totalCost     float64
}

func recommendationRules() engine.RuleSet[facts] {
	return engine.RuleSet[facts]{
		{
			When: func(f facts) bool { return f.immediate > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Immediate Action",
					Priority:       "Critical",
					Recommendation: fmt.Sprintf("Address %d critical equipment immediately", f.immediate),
					Actions: []string{
						"Perform emergency maintenance on critical equipment",
						"Prepare backup equipment if available",
						"Monitor equipment continuously until maintenance",
					},
					Timeline:      "1-3 days",
					EstimatedCost: f.urgentCost,
				}
			},
		},
		{
			When: func(f facts) bool { return f.criticalCount > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Preventive Maintenance",
					Priority:       "High",
					Recommendation: "Implement enhanced preventive maintenance program",
					Actions: []string{
						"Increase monitoring frequency for critical equipment",
						"Implement condition-based maintenance",
						"Review and update maintenance procedures",
					},
					Timeline:      "1-4 weeks",
					EstimatedCost: f.totalCost * 0.3,
				}
			},
		},
		{
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Maintenance Optimization",
					Priority:       "Medium",
					Recommendation: "Optimize maintenance operations",
					Actions: []string{
						"Implement predictive maintenance technologies",
						"Train maintenance staff on new procedures",
						"Establish maintenance performance metrics",
					},
					Timeline:      "3-6 months",
					EstimatedCost: 50000,
				}
			},
		},
	}
}

func (a *Agent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")
	fleet := in.List("equipment")

	health, err := a.assessHealth(fleet)
	if err != nil {
		return engine.Report{}, err
	}
	outlook, err := a.predictFailures(fleet)
	if err != nil {
		return engine.Report{}, err
	}
	schedule := a.optimizeSchedule(now, fleet, outlook)

	report := engine.NewReport("maintenance", company, now, reviewCycle)
	report.AddSection("health_assessment", health)
	report.AddSection("failure_predictions", outlook)
	report.AddSection("maintenance_optimization", schedule)
	report.Recommendations = a.rules.Evaluate(facts{
		immediate:     outlook.ImmediateAttention,
		criticalCount: health.CriticalCount,
		urgentCost:    sumCosts(schedule.Urgent),
		totalCost:     schedule.TotalCost,
	})
	return report, nil
}

func (a *Agent) assessHealth(fleet []engine.Input) (HealthAssessment, error) {
	scores := make([]float64, 0, len(fleet))
	critical := []CriticalEquipment{}

	for _, unit := range fleet {
		score, err := a.healthTable.Score(unit)
		if err != nil {
			return HealthAssessment{}, err
		}
		scores = append(scores, score)
		if score < criticalHealthThreshold {
			critical = append(critical, CriticalEquipment{
				EquipmentID: unit.String("id", "unknown"),
				Name:        unit.String("name", "Unknown"),
				HealthScore: score,
				Criticality: unit.String("criticality", "Medium"),
			})
		}
	}

	avg := engine.Mean(scores)
	status := "Poor"
	switch {
	case avg >= 80:
		status = "Good"
	case avg >= 60:
		status = "Fair"
	}
	return HealthAssessment{
		AverageHealthScore: avg,
		TotalEquipment:     len(fleet),
		CriticalCount:      len(critical),
		CriticalEquipment:  critical,
		OverallStatus:      status,
	}, nil
}

func (a *Agent) predictFailures(fleet []engine.Input) (FailureOutlook, error) {
	predictions := make([]FailurePrediction, 0, len(fleet))
	highRisk := []FailurePrediction{}
	var probSum float64
	immediate := 0

	for _, unit := range fleet {
		prob, err := failureProbability(unit)
		if err != nil {
			return FailureOutlook{}, err
		}
		days := daysToFailure(prob)
		p := FailurePrediction{
			EquipmentID:        unit.String("id", "unknown"),
			EquipmentName:      unit.String("name", "Unknown"),
			FailureProbability: prob,
			DaysToFailure:      days,
			RiskLevel:          a.riskScale.Classify(prob),
			RecommendedAction:  recommendedAction(prob),
		}
		predictions = append(predictions, p)
		probSum += prob
		if prob >= 70 {
			highRisk = append(highRisk, p)
		}
		if prob >= 85 {
			immediate++
		}
	}

	avg := 0.0
	if len(predictions) > 0 {
		avg = probSum / float64(len(predictions))
	}
	return FailureOutlook{
		Predictions:        predictions,
		HighRiskEquipment:  highRisk,
		ImmediateAttention: immediate,
		AverageProbability: avg,
	}, nil
}

// failureProbability averages six risk factors and caps the result at 95.
func failureProbability(unit engine.Input) (float64, error) {
	age, err := unit.Number("age_years", 5)
	if err != nil {
		return 0, err
	}
	usage, err := unit.Number("usage_hours_percentage", 50)
	if err != nil {
		return 0, err
	}
	compliance, err := unit.Number("maintenance_compliance", 80)
	if err != nil {
		return 0, err
	}
	efficiency, err := unit.Number("performance_efficiency", 85)
	if err != nil {
		return 0, err
	}
	anomalies, err := unit.Number("sensor_anomaly_score", 20)
	if err != nil {
		return 0, err
	}
	failureRate, err := unit.Number("historical_failure_rate", 10)
	if err != nil {
		return 0, err
	}

	total := math.Min(100, age*8) +
		usage*0.6 +
		math.Max(0, 80-compliance) +
		math.Max(0, 90-efficiency)*2 +
		anomalies +
		failureRate*3
	return math.Min(95, total/6), nil
}

func daysToFailure(prob float64) int {
	switch {
	case prob >= 90:
		return 7
	case prob >= 80:
		return 14
	case prob >= 70:
		return 30
	case prob >= 60:
		return 60
	default:
		return 90
	}
}

func recommendedAction(prob float64) string {
	switch {
	case prob >= 85:
		return "Immediate maintenance required"
	case prob >= 70:
		return "Schedule maintenance within 1-2 weeks"
	case prob >= 50:
		return "Plan maintenance within next month"
	default:
		return "Continue routine monitoring"
	}
}

func (a *Agent) optimizeSchedule(now time.Time, fleet []engine.Input, outlook FailureOutlook) Schedule {
	byID := make(map[string]engine.Input, len(fleet))
	for _, unit := range fleet {
		byID[unit.String("id", "unknown")] = unit
	}

	urgent := []MaintenanceTask{}
	scheduled := []MaintenanceTask{}
	for _, p := range outlook.Predictions {
		unit := byID[p.EquipmentID]
		task := MaintenanceTask{
			EquipmentID:   p.EquipmentID,
			Priority:      p.RiskLevel,
			DurationHours: maintenanceDuration(unit),
			EstimatedCost: maintenanceCost(unit),
		}
		if p.RiskLevel == "Critical" || p.RiskLevel == "High" {
			task.Recommended = now.AddDate(0, 0, min(7, p.DaysToFailure))
			urgent = append(urgent, task)
		} else {
			task.Recommended = now.AddDate(0, 0, p.DaysToFailure)
			scheduled = append(scheduled, task)
		}
	}

	var totalCost, totalHours float64
	for _, t := range urgent {
		totalCost += t.EstimatedCost
		totalHours += t.DurationHours
	}
	for _, t := range scheduled {
		totalCost += t.EstimatedCost
		totalHours += t.DurationHours
	}

	return Schedule{
		Urgent:       urgent,
		Scheduled:    scheduled,
		TotalCost:    totalCost,
		TotalHours:   totalHours,
		ResourcePlan: planResources(urgent, scheduled),
	}
}

func maintenanceDuration(unit engine.Input) float64 {
	switch unit.String("maintenance_complexity", "Medium") {
	case "High":
		return 16
	case "Medium":
		return 8
	default:
		return 4
	}
}

func maintenanceCost(unit engine.Input) float64 {
	base, err := unit.Number("maintenance_base_cost", 5000)
	if err != nil {
		base = 5000
	}
	switch unit.String("criticality", "Medium") {
	case "High":
		return base * 1.5
	case "Low":
		return base * 0.7
	default:
		return base
	}
}

func planResources(urgent, scheduled []MaintenanceTask) ResourcePlan {
	var urgentHours, scheduledHours float64
	for _, t := range urgent {
		urgentHours += t.DurationHours
	}
	for _, t := range scheduled {
		scheduledHours += t.DurationHours
	}

	suggestions := []string{}
	if urgentHours > 40 {
		suggestions = append(suggestions, "Consider hiring temporary maintenance staff or contractors")
	}
	if len(urgent) > 5 {
		suggestions = append(suggestions, "Prioritize critical equipment and defer lower-priority items")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Current resource allocation appears adequate")
	}

	return ResourcePlan{
		UrgentHoursNextWeek:     urgentHours,
		ScheduledHoursNextMonth: scheduledHours,
		OptimizationSuggestions: suggestions,
		RecommendedTeamSize:     max(1, int(urgentHours/40)+1),
	}
}

func sumCosts(tasks []MaintenanceTask) float64 {
	var sum float64
	for _, t := range tasks {
		sum += t.EstimatedCost
	}
	return sum
}
