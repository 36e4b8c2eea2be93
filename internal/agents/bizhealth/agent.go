// Package bizhealth implements the business intelligence agent: KPI
// health against fixed benchmarks, trend analysis over history series,
// automated insights, and an executive summary.
package bizhealth

import (
	"context"
	"fmt"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

const reviewCycle = 7 * 24 * time.Hour

type Agent struct {
	clock       agents.Clock
	healthScale engine.Scale
}

func New(clock agents.Clock) *Agent {
	if clock == nil {
		clock = time.Now
	}
	return &Agent{
		clock: clock,
		healthScale: engine.NewScale("Critical",
			engine.Band{Threshold: 90, Label: "Excellent"},
			engine.Band{Threshold: 75, Label: "Good"},
			engine.Band{Threshold: 60, Label: "Fair"},
			engine.Band{Threshold: 45, Label: "Poor"},
		),
	}
}

func (a *Agent) Meta() agents.Metadata {
	return agents.Metadata{
		Key:      "bizhealth",
		Name:     "Business Intelligence & Reporting Agent",
		Version:  "1.0.0",
		Category: "analytics",
		Capabilities: []string{
			"KPI Analysis",
			"Automated Insights",
			"Executive Reporting",
			"Trend Analysis",
			"Performance Monitoring",
			"Predictive Analytics",
		},
		ReviewCycle: reviewCycle,
	}
}

// benchmark is the target value a KPI is scored against. For
// lower-is-better metrics the ratio is inverted.
type benchmark struct {
	field         string
	target        float64
	lowerIsBetter bool
}

var (
	financialBenchmarks = []benchmark{
		{field: "revenue", target: 1_000_000},
		{field: "profit_margin", target: 15},
		{field: "cash_flow", target: 100_000},
		{field: "growth_rate", target: 10},
	}
	operationalBenchmarks = []benchmark{
		{field: "customer_satisfaction", target: 80},
		{field: "employee_satisfaction", target: 75},
		{field: "operational_efficiency", target: 85},
		{field: "quality_score", target: 90},
	}
	marketBenchmarks = []benchmark{
		{field: "market_share", target: 10},
		{field: "customer_acquisition_cost", target: 100, lowerIsBetter: true},
		{field: "customer_lifetime_value", target: 1000},
		{field: "churn_rate", target: 5, lowerIsBetter: true},
	}
)

type KPIAnalysis struct {
	FinancialKPIs     map[string]float64 `json:"financialKpis"`
	OperationalKPIs   map[string]float64 `json:"operationalKpis"`
	MarketKPIs        map[string]float64 `json:"marketKpis"`
	FinancialHealth   float64            `json:"financialHealth"`
	OperationalHealth float64            `json:"operationalHealth"`
	MarketHealth      float64            `json:"marketHealth"`
	OverallHealth     float64            `json:"overallHealth"`
	HealthLevel       string             `json:"healthLevel"`
}

type Trend struct {
	Direction  string  `json:"direction"`
	Rate       float64 `json:"rate"`
	Confidence float64 `json:"confidence"`
}

type TrendAnalysis struct {
	Revenue  Trend    `json:"revenueTrend"`
	Customer Trend    `json:"customerTrend"`
	Margin   Trend    `json:"marginTrend"`
	Patterns []string `json:"trendPatterns"`
	Summary  string   `json:"trendSummary"`
}

type Insight struct {
	Type           string `json:"type"`
	Insight        string `json:"insight"`
	Impact         string `json:"impact"`
	Confidence     string `json:"confidence"`
	Recommendation string `json:"recommendation"`
}

type ExecutiveSummary struct {
	ReportPeriod    string   `json:"reportPeriod"`
	KeyHighlights   []string `json:"keyHighlights"`
	PriorityActions []string `json:"priorityActions"`
	OverallStatus   string   `json:"overallStatus"`
	Recommendations []string `json:"executiveRecommendations"`
}

type Alert struct {
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	Metric         string  `json:"metric"`
	Value          float64 `json:"value"`
	Threshold      float64 `json:"threshold"`
	ActionRequired string  `json:"actionRequired"`
}

func (a *Agent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")

	kpis, err := a.analyzeKPIs(in)
	if err != nil {
		return engine.Report{}, err
	}
	trends, err := analyzeTrends(in)
	if err != nil {
		return engine.Report{}, err
	}
	insights := automatedInsights(kpis, trends)

	report := engine.NewReport("bizhealth", company, now, reviewCycle)
	report.AddSection("kpi_analysis", kpis)
	report.AddSection("trend_analysis", trends)
	report.AddSection("automated_insights", insights)
	report.AddSection("executive_summary", executiveSummary(kpis, trends, insights))
	report.AddSection("performance_alerts", performanceAlerts(kpis))
	report.Recommendations = recommendations(kpis, trends, insights)
	return report, nil
}

func (a *Agent) analyzeKPIs(in engine.Input) (KPIAnalysis, error) {
	financial, finHealth, err := scoreCategory(in, financialBenchmarks)
	if err != nil {
		return KPIAnalysis{}, err
	}
	operational, opHealth, err := scoreCategory(in, operationalBenchmarks)
	if err != nil {
		return KPIAnalysis{}, err
	}
	market, mktHealth, err := scoreCategory(in, marketBenchmarks)
	if err != nil {
		return KPIAnalysis{}, err
	}

	overall := (finHealth + opHealth + mktHealth) / 3
	return KPIAnalysis{
		FinancialKPIs:     financial,
		OperationalKPIs:   operational,
		MarketKPIs:        market,
		FinancialHealth:   finHealth,
		OperationalHealth: opHealth,
		MarketHealth:      mktHealth,
		OverallHealth:     overall,
		HealthLevel:       a.healthScale.Classify(overall),
	}, nil
}

func scoreCategory(in engine.Input, benchmarks []benchmark) (map[string]float64, float64, error) {
	values := make(map[string]float64, len(benchmarks))
	scores := make([]float64, 0, len(benchmarks))
	for _, b := range benchmarks {
		v, err := in.Number(b.field, 0)
		if err != nil {
			return nil, 0, err
		}
		values[b.field] = v
		if b.lowerIsBetter {
			scores = append(scores, engine.Clamp(b.target/maxFloat(1, v)*100, 0, 100))
		} else {
			scores = append(scores, engine.Clamp(v/b.target*100, 0, 100))
		}
	}
	return values, engine.Mean(scores), nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func analyzeTrends(in engine.Input) (TrendAnalysis, error) {
	history := in.Section("historical_data")

	revenue, err := numberSeries(history, "revenue")
	if err != nil {
		return TrendAnalysis{}, err
	}
	customers, err := numberSeries(history, "customers")
	if err != nil {
		return TrendAnalysis{}, err
	}
	margin, err := numberSeries(history, "profit_margin")
	if err != nil {
		return TrendAnalysis{}, err
	}

	trends := TrendAnalysis{
		Revenue:  calculateTrend(revenue),
		Customer: calculateTrend(customers),
		Margin:   calculateTrend(margin),
	}
	named := map[string]Trend{
		"revenue_trend":  trends.Revenue,
		"customer_trend": trends.Customer,
		"margin_trend":   trends.Margin,
	}
	trends.Patterns = trendPatterns(named)
	trends.Summary = summarizeTrends(named)
	return trends, nil
}

func numberSeries(in engine.Input, key string) ([]float64, error) {
	raw, ok := in[key].([]any)
	if !ok {
		if typed, ok := in[key].([]float64); ok {
			return typed, nil
		}
		return nil, nil
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			out = append(out, v)
		case int:
			out = append(out, float64(v))
		case int64:
			out = append(out, float64(v))
		default:
			return nil, &engine.TypeError{Field: key, Value: item}
		}
	}
	return out, nil
}

// calculateTrend fits a least-squares line over equally spaced points.
func calculateTrend(points []float64) Trend {
	n := len(points)
	if n < 2 {
		return Trend{Direction: "Insufficient Data"}
	}

	var xSum, ySum, xySum, x2Sum float64
	for i, y := range points {
		x := float64(i)
		xSum += x
		ySum += y
		xySum += x * y
		x2Sum += x * x
	}
	fn := float64(n)
	slope := (fn*xySum - xSum*ySum) / (fn*x2Sum - xSum*xSum)

	direction := "Stable"
	switch {
	case slope > 0.05:
		direction = "Increasing"
	case slope < -0.05:
		direction = "Decreasing"
	}

	yMean := ySum / fn
	var totalVar, explainedVar float64
	for i, y := range points {
		totalVar += (y - yMean) * (y - yMean)
		fit := slope * float64(i)
		explainedVar += (fit - yMean) * (fit - yMean)
	}
	confidence := 0.0
	if totalVar > 0 {
		confidence = engine.Clamp(explainedVar/totalVar*100, 0, 100)
	}

	return Trend{Direction: direction, Rate: slope, Confidence: confidence}
}

func trendPatterns(trends map[string]Trend) []string {
	patterns := []string{}
	increasing := namesWith(trends, func(t Trend) bool { return t.Direction == "Increasing" })
	decreasing := namesWith(trends, func(t Trend) bool { return t.Direction == "Decreasing" })
	reliable := namesWith(trends, func(t Trend) bool { return t.Confidence > 70 })

	if len(increasing) >= 2 {
		patterns = append(patterns, fmt.Sprintf("Strong growth pattern: %s all increasing", joinNames(increasing)))
	}
	if len(increasing) > 0 && len(decreasing) > 0 {
		patterns = append(patterns, "Mixed performance: Some metrics improving while others declining")
	}
	if len(reliable) > 0 {
		patterns = append(patterns, fmt.Sprintf("Reliable trends in: %s", joinNames(reliable)))
	}
	return patterns
}

// trendOrder fixes iteration order so pattern strings are reproducible.
var trendOrder = []string{"revenue_trend", "customer_trend", "margin_trend"}

func namesWith(trends map[string]Trend, pred func(Trend) bool) []string {
	out := []string{}
	for _, name := range trendOrder {
		if t, ok := trends[name]; ok && pred(t) {
			out = append(out, name)
		}
	}
	return out
}

func joinNames(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}

func summarizeTrends(trends map[string]Trend) string {
	var up, down int
	for _, t := range trends {
		switch t.Direction {
		case "Increasing":
			up++
		case "Decreasing":
			down++
		}
	}
	switch {
	case up > down:
		return "Overall Positive Trend"
	case down > up:
		return "Overall Negative Trend"
	default:
		return "Mixed or Stable Trends"
	}
}

func automatedInsights(kpis KPIAnalysis, trends TrendAnalysis) []Insight {
	insights := []Insight{}

	if kpis.OverallHealth >= 90 {
		insights = append(insights, Insight{
			Type:           "Performance",
			Insight:        "Business performance is excellent across all key areas",
			Impact:         "Positive",
			Confidence:     "High",
			Recommendation: "Maintain current strategies and look for growth opportunities",
		})
	} else if kpis.OverallHealth < 60 {
		insights = append(insights, Insight{
			Type:           "Performance",
			Insight:        "Business performance requires immediate attention",
			Impact:         "Negative",
			Confidence:     "High",
			Recommendation: "Focus on underperforming areas and implement corrective actions",
		})
	}

	switch trends.Summary {
	case "Overall Positive Trend":
		insights = append(insights, Insight{
			Type:           "Growth",
			Insight:        "Multiple business metrics show positive growth trajectory",
			Impact:         "Positive",
			Confidence:     "Medium",
			Recommendation: "Invest in growth initiatives to accelerate positive trends",
		})
	case "Overall Negative Trend":
		insights = append(insights, Insight{
			Type:           "Risk",
			Insight:        "Concerning decline across multiple business metrics",
			Impact:         "Negative",
			Confidence:     "Medium",
			Recommendation: "Conduct thorough analysis and implement turnaround strategies",
		})
	}

	if kpis.FinancialHealth > kpis.OperationalHealth+20 {
		insights = append(insights, Insight{
			Type:           "Operations",
			Insight:        "Financial performance outpacing operational efficiency",
			Impact:         "Opportunity",
			Confidence:     "Medium",
			Recommendation: "Invest in operational improvements for sustainable growth",
		})
	}

	return insights
}

func executiveSummary(kpis KPIAnalysis, trends TrendAnalysis, insights []Insight) ExecutiveSummary {
	var positive, negative int
	for _, i := range insights {
		switch i.Impact {
		case "Positive":
			positive++
		case "Negative":
			negative++
		}
	}

	highlights := []string{
		fmt.Sprintf("Overall business health: %s (%.1f/100)", kpis.HealthLevel, kpis.OverallHealth),
		fmt.Sprintf("Business trends: %s", trends.Summary),
		fmt.Sprintf("Insights: %d positive, %d areas of concern", positive, negative),
	}

	actions := []string{}
	if kpis.OverallHealth < 70 {
		actions = append(actions, "Address underperforming KPIs")
	}
	for _, i := range insights {
		if i.Impact == "Negative" && i.Confidence == "High" {
			actions = append(actions, "Immediate attention to high-confidence negative insights")
			break
		}
	}
	if trends.Summary == "Overall Negative Trend" {
		actions = append(actions, "Implement trend reversal strategies")
	}

	status := "Performance Issues"
	switch {
	case kpis.OverallHealth >= 80 && trends.Summary == "Overall Positive Trend":
		status = "Strong Performance"
	case kpis.OverallHealth >= 70 && negative <= 1:
		status = "Good Performance"
	case kpis.OverallHealth >= 60:
		status = "Fair Performance"
	}

	recs := []string{}
	if kpis.FinancialHealth < 70 {
		recs = append(recs, "Focus on financial performance improvement initiatives")
	}
	if kpis.OperationalHealth < 70 {
		recs = append(recs, "Invest in operational efficiency and quality improvements")
	}
	if kpis.MarketHealth < 70 {
		recs = append(recs, "Strengthen market position and customer relationships")
	}
	for _, i := range insights {
		if i.Confidence == "High" {
			recs = append(recs, i.Recommendation)
		}
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}

	return ExecutiveSummary{
		ReportPeriod:    "Current Period",
		KeyHighlights:   highlights,
		PriorityActions: actions,
		OverallStatus:   status,
		Recommendations: recs,
	}
}

func performanceAlerts(kpis KPIAnalysis) []Alert {
	alerts := []Alert{}
	if kpis.OverallHealth < 50 {
		alerts = append(alerts, Alert{
			Type:           "Critical",
			Message:        "Overall business health is critically low",
			Metric:         "Overall Health",
			Value:          kpis.OverallHealth,
			Threshold:      50,
			ActionRequired: "Immediate executive attention required",
		})
	}
	if kpis.FinancialHealth < 60 {
		alerts = append(alerts, Alert{
			Type:           "Warning",
			Message:        "Financial performance below acceptable levels",
			Metric:         "Financial Health",
			Value:          kpis.FinancialHealth,
			Threshold:      60,
			ActionRequired: "Review financial strategies and performance",
		})
	}
	if kpis.OperationalHealth < 60 {
		alerts = append(alerts, Alert{
			Type:           "Warning",
			Message:        "Operational efficiency needs improvement",
			Metric:         "Operational Health",
			Value:          kpis.OperationalHealth,
			Threshold:      60,
			ActionRequired: "Focus on operational optimization",
		})
	}
	return alerts
}

func recommendations(kpis KPIAnalysis, trends TrendAnalysis, insights []Insight) []engine.Recommendation {
	type facts struct {
		kpis     KPIAnalysis
		trends   TrendAnalysis
		insights []Insight
	}
	rules := engine.RuleSet[facts]{
		{
			When: func(f facts) bool { return f.kpis.OverallHealth < 60 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Performance Recovery",
					Priority:       "High",
					Recommendation: "Focus on underperforming areas and implement corrective actions",
					Actions: []string{
						"Review the weakest KPI category first",
						"Set weekly improvement targets per KPI",
						"Re-run the health review after each reporting cycle",
					},
					Timeline:       "1-3 months",
					ExpectedImpact: "Restore overall health above the Fair threshold",
				}
			},
		},
		{
			When: func(f facts) bool { return f.trends.Summary == "Overall Negative Trend" },
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Trend Reversal",
					Priority:       "High",
					Recommendation: "Conduct thorough analysis and implement turnaround strategies",
					Actions: []string{
						"Identify the drivers behind each declining metric",
						"Prioritize the declines with the highest confidence",
					},
					Timeline:       "1-2 quarters",
					ExpectedImpact: "Stabilize declining metrics",
				}
			},
		},
		{
			When: func(f facts) bool {
				return f.kpis.FinancialHealth > f.kpis.OperationalHealth+20
			},
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Operational Investment",
					Priority:       "Medium",
					Recommendation: "Invest in operational improvements for sustainable growth",
					Actions: []string{
						"Benchmark operational KPIs against industry targets",
						"Fund efficiency and quality programs from the financial surplus",
					},
					Timeline:       "3-6 months",
					ExpectedImpact: "Close the gap between financial and operational health",
				}
			},
		},
		{
			When: func(f facts) bool { return f.trends.Summary == "Overall Positive Trend" },
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Growth",
					Priority:       "Low",
					Recommendation: "Invest in growth initiatives to accelerate positive trends",
					Timeline:       "Ongoing",
					ExpectedImpact: "Compound the current growth trajectory",
				}
			},
		},
	}
	return rules.Evaluate(facts{kpis: kpis, trends: trends, insights: insights})
}
