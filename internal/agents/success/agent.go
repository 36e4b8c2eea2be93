// Package success implements the customer success agent: per-customer
// health and churn scoring, intervention urgency, trajectory banding,
// and retention planning.
package success

import (
	"context"
	"fmt"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

const reviewCycle = 30 * 24 * time.Hour

type Agent struct {
	clock agents.Clock
}

func New(clock agents.Clock) *Agent {
	if clock == nil {
		clock = time.Now
	}
	return &Agent{clock: clock}
}

func (a *Agent) Meta() agents.Metadata {
	return agents.Metadata{
		Key:      "success",
		Name:     "Predictive Customer Success Agent",
		Version:  "1.0.0",
		Category: "customer-success",
		Capabilities: []string{
			"Churn Prediction & Prevention",
			"Customer Health Monitoring",
			"Proactive Intervention",
			"Success Journey Optimization",
			"Lifetime Value Maximization",
			"Retention Intelligence",
		},
		ReviewCycle: reviewCycle,
	}
}

// HealthMetric is the per-customer health and churn picture.
type HealthMetric struct {
	CustomerID       string  `json:"customerId"`
	HealthScore      float64 `json:"healthScore"`
	ChurnProbability float64 `json:"churnProbability"`
	Urgency          string  `json:"interventionUrgency"`
	Trajectory       string  `json:"successTrajectory"`
}

type HealthMonitoring struct {
	TotalCustomers     int            `json:"totalCustomersMonitored"`
	Metrics            []HealthMetric `json:"customerHealthMetrics"`
	AverageHealthScore float64        `json:"averageHealthScore"`
	AtRiskPercentage   float64        `json:"atRiskPercentage"`
	Distribution       map[string]int `json:"healthScoreDistribution"`
}

type ChurnPrediction struct {
	HighRiskCustomers   int     `json:"highRiskCustomers"`
	MediumRiskCustomers int     `json:"mediumRiskCustomers"`
	LowRiskCustomers    int     `json:"lowRiskCustomers"`
	AverageChurnRisk    float64 `json:"averageChurnRisk"`
	PredictedChurnRate  float64 `json:"predictedChurnRate"`
}

// InterventionStrategy is one playbook entry matched to an urgency tier.
type InterventionStrategy struct {
	Name              string  `json:"strategyName"`
	Description       string  `json:"description"`
	TargetSegment     string  `json:"targetSegment"`
	SuccessRate       float64 `json:"successRate"`
	ResourceIntensity string  `json:"resourceIntensity"`
}

type InterventionPlan struct {
	CriticalInterventions []InterventionStrategy `json:"criticalRiskInterventions"`
	HighInterventions     []InterventionStrategy `json:"highRiskInterventions"`
	MediumInterventions   []InterventionStrategy `json:"mediumRiskInterventions"`
	CustomersNeedingHelp  int                    `json:"customersNeedingIntervention"`
}

func (a *Agent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")

	monitoring, err := monitorHealth(in.List("customers"))
	if err != nil {
		return engine.Report{}, err
	}
	churn := predictChurn(monitoring.Metrics)
	plan := planInterventions(monitoring.Metrics)

	report := engine.NewReport("success", company, now, reviewCycle)
	report.AddSection("health_monitoring", monitoring)
	report.AddSection("churn_prediction", churn)
	report.AddSection("intervention_orchestration", plan)
	report.Recommendations = recommendations(monitoring, churn)
	return report, nil
}

func monitorHealth(customers []engine.Input) (HealthMonitoring, error) {
	metrics := make([]HealthMetric, 0, len(customers))
	distribution := map[string]int{"healthy": 0, "moderate": 0, "poor": 0}
	var healthSum float64
	atRisk := 0

	for _, c := range customers {
		health, err := c.Number("health_score", 0.7)
		if err != nil {
			return HealthMonitoring{}, err
		}
		churn, err := c.Number("churn_probability", 0.2)
		if err != nil {
			return HealthMonitoring{}, err
		}
		health = engine.Clamp(health, 0, 1)
		churn = engine.Clamp(churn, 0, 1)

		m := HealthMetric{
			CustomerID:       c.String("id", "unknown"),
			HealthScore:      health,
			ChurnProbability: churn,
			Urgency:          interventionUrgency(health, churn),
			Trajectory:       successTrajectory(health, churn),
		}
		metrics = append(metrics, m)
		healthSum += health
		if m.Urgency == "Critical" || m.Urgency == "High" {
			atRisk++
		}
		switch {
		case health >= 0.7:
			distribution["healthy"]++
		case health >= 0.4:
			distribution["moderate"]++
		default:
			distribution["poor"]++
		}
	}

	avg, pct := 0.0, 0.0
	if len(metrics) > 0 {
		avg = healthSum / float64(len(metrics))
		pct = float64(atRisk) / float64(len(metrics)) * 100
	}
	return HealthMonitoring{
		TotalCustomers:     len(metrics),
		Metrics:            metrics,
		AverageHealthScore: avg,
		AtRiskPercentage:   pct,
		Distribution:       distribution,
	}, nil
}

func interventionUrgency(health, churn float64) string {
	switch {
	case churn > 0.7 || health < 0.4:
		return "Critical"
	case churn > 0.5 || health < 0.6:
		return "High"
	case churn > 0.3 || health < 0.7:
		return "Medium"
	default:
		return "Low"
	}
}

func successTrajectory(health, churn float64) string {
	switch {
	case health > 0.8 && churn < 0.1:
		return "Expanding"
	case health > 0.7 && churn < 0.2:
		return "Stable Growth"
	case health > 0.6 && churn < 0.4:
		return "Maintaining"
	case health > 0.4 && churn < 0.6:
		return "At Risk"
	default:
		return "Declining"
	}
}

func predictChurn(metrics []HealthMetric) ChurnPrediction {
	var high, medium, low int
	var churnSum float64
	for _, m := range metrics {
		churnSum += m.ChurnProbability
		switch {
		case m.ChurnProbability > 0.6:
			high++
		case m.ChurnProbability >= 0.3:
			medium++
		default:
			low++
		}
	}
	avg := 0.0
	if len(metrics) > 0 {
		avg = churnSum / float64(len(metrics))
	}
	return ChurnPrediction{
		HighRiskCustomers:   high,
		MediumRiskCustomers: medium,
		LowRiskCustomers:    low,
		AverageChurnRisk:    avg,
		PredictedChurnRate:  avg,
	}
}

func planInterventions(metrics []HealthMetric) InterventionPlan {
	needingHelp := 0
	for _, m := range metrics {
		if m.Urgency != "Low" {
			needingHelp++
		}
	}
	return InterventionPlan{
		CriticalInterventions: []InterventionStrategy{
			{
				Name:              "Executive Escalation",
				Description:       "C-level engagement with at-risk enterprise accounts",
				TargetSegment:     "Enterprise",
				SuccessRate:       0.85,
				ResourceIntensity: "High",
			},
			{
				Name:              "Emergency Success Session",
				Description:       "Immediate 1:1 success consultation",
				TargetSegment:     "All",
				SuccessRate:       0.70,
				ResourceIntensity: "Medium",
			},
			{
				Name:              "Value Realization Acceleration",
				Description:       "Fast-track to value with dedicated support",
				TargetSegment:     "Growth",
				SuccessRate:       0.78,
				ResourceIntensity: "High",
			},
		},
		HighInterventions: []InterventionStrategy{
			{
				Name:              "Health Check & Optimization",
				Description:       "Comprehensive account health assessment",
				TargetSegment:     "All",
				SuccessRate:       0.65,
				ResourceIntensity: "Medium",
			},
			{
				Name:              "Feature Adoption Acceleration",
				Description:       "Guided feature adoption with training",
				TargetSegment:     "Underutilized",
				SuccessRate:       0.72,
				ResourceIntensity: "Medium",
			},
			{
				Name:              "Strategic Business Review",
				Description:       "Quarterly business value assessment",
				TargetSegment:     "Enterprise",
				SuccessRate:       0.80,
				ResourceIntensity: "Medium",
			},
		},
		MediumInterventions: []InterventionStrategy{
			{
				Name:              "Engagement Boost Campaign",
				Description:       "Targeted engagement increase activities",
				TargetSegment:     "All",
				SuccessRate:       0.60,
				ResourceIntensity: "Low",
			},
			{
				Name:              "Success Milestone Celebration",
				Description:       "Recognize and reinforce customer wins",
				TargetSegment:     "Growth",
				SuccessRate:       0.55,
				ResourceIntensity: "Low",
			},
		},
		CustomersNeedingHelp: needingHelp,
	}
}

func recommendations(monitoring HealthMonitoring, churn ChurnPrediction) []engine.Recommendation {
	type facts struct {
		critical  int
		high      int
		avgHealth float64
		expanding int
	}

	var critical, high, expanding int
	for _, m := range monitoring.Metrics {
		switch m.Urgency {
		case "Critical":
			critical++
		case "High":
			high++
		}
		if m.Trajectory == "Expanding" {
			expanding++
		}
	}

	rules := engine.RuleSet[facts]{
		{
			When: func(f facts) bool { return f.critical > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Churn Prevention",
					Priority:       "Critical",
					Recommendation: fmt.Sprintf("Launch executive escalation for %d critical-risk customers", f.critical),
					Actions: []string{
						"Schedule emergency success sessions within 48 hours",
						"Engage executive sponsors on at-risk enterprise accounts",
						"Fast-track outstanding support escalations",
					},
					Timeline: "1-2 weeks",
				}
			},
		},
		{
			When: func(f facts) bool { return f.high > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Proactive Intervention",
					Priority:       "High",
					Recommendation: fmt.Sprintf("Run health checks for %d high-risk customers", f.high),
					Actions: []string{
						"Conduct comprehensive account health assessments",
						"Accelerate feature adoption with guided training",
						"Schedule strategic business reviews",
					},
					Timeline: "2-4 weeks",
				}
			},
		},
		{
			When: func(f facts) bool { return f.avgHealth > 0 && f.avgHealth < 0.6 },
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Success Program",
					Priority:       "Medium",
					Recommendation: "Strengthen the customer success program across the whole base",
					Actions: []string{
						"Map success journeys and define milestone tracking",
						"Introduce engagement boost campaigns",
						"Review onboarding time-to-value",
					},
					Timeline: "1-3 months",
				}
			},
		},
		{
			When: func(f facts) bool { return f.expanding > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Expansion",
					Priority:       "Low",
					Recommendation: fmt.Sprintf("Pursue expansion opportunities with %d expanding customers", f.expanding),
					Actions: []string{
						"Identify upsell and cross-sell candidates",
						"Celebrate success milestones with champions",
					},
					Timeline: "Ongoing",
				}
			},
		},
	}
	return rules.Evaluate(facts{
		critical:  critical,
		high:      high,
		avgHealth: monitoring.AverageHealthScore,
		expanding: expanding,
	})
}
