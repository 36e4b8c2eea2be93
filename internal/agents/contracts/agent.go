// Package contracts implements the contract intelligence agent:
// per-contract risk and compliance review, portfolio concentration
// analysis, and vendor performance tracking.
package contracts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

const reviewCycle = 90 * 24 * time.Hour

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
		Key:      "contracts",
		Name:     "Contract Intelligence & Negotiation Agent",
		Version:  "1.0.0",
		Category: "procurement",
		Capabilities: []string{
			"Contract Risk Analysis",
			"Negotiation Strategy Development",
			"Compliance Verification",
			"Performance Tracking",
			"Cost Optimization",
			"Risk Mitigation",
		},
		ReviewCycle: reviewCycle,
	}
}

// ContractRisk is one identified risk with its mitigation.
type ContractRisk struct {
	Type        string `json:"riskType"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation"`
}

type RiskAssessment struct {
	Risks            []ContractRisk `json:"identifiedRisks"`
	RiskCount        int            `json:"riskCount"`
	OverallRiskLevel string         `json:"overallRiskLevel"`
	RiskScore        float64        `json:"riskScore"`
}

type ComplianceStatus struct {
	Score                   float64  `json:"complianceScore"`
	Status                  string   `json:"complianceStatus"`
	NonCompliantAreas       []string `json:"nonCompliantAreas"`
	CorrectiveActionsNeeded bool     `json:"correctiveActionsNeeded"`
}

type PerformanceMetrics struct {
	Delivery     float64  `json:"deliveryPerformance"`
	Quality      float64  `json:"qualityPerformance"`
	Cost         float64  `json:"costPerformance"`
	ServiceLevel float64  `json:"serviceLevelAchievement"`
	Overall      float64  `json:"overallPerformance"`
	Trend        string   `json:"performanceTrend"`
	Gaps         []string `json:"performanceGaps"`
}

type Opportunity struct {
	Type             string  `json:"type"`
	Opportunity      string  `json:"opportunity"`
	PotentialSavings float64 `json:"potentialSavings,omitempty"`
	PotentialBenefit string  `json:"potentialBenefit,omitempty"`
	Implementation   string  `json:"implementation"`
}

type ContractAnalysis struct {
	ContractID    string             `json:"contractId"`
	ContractType  string             `json:"contractType"`
	Vendor        string             `json:"vendor"`
	Value         float64            `json:"value"`
	Risk          RiskAssessment     `json:"riskAssessment"`
	Compliance    ComplianceStatus   `json:"complianceStatus"`
	Performance   PerformanceMetrics `json:"performanceMetrics"`
	Opportunities []Opportunity      `json:"optimizationOpportunities"`
}

type PortfolioAnalysis struct {
	TotalContracts          int            `json:"totalContracts"`
	TotalValue              float64        `json:"totalPortfolioValue"`
	HighRiskContracts       int            `json:"highRiskContracts"`
	HighRiskPercentage      float64        `json:"highRiskPercentage"`
	VendorConcentrationRisk float64        `json:"vendorConcentrationRisk"`
	TypeDistribution        map[string]int `json:"contractTypeDistribution"`
	RiskLevel               string         `json:"portfolioRiskLevel"`
	DiversificationAdvice   []string       `json:"diversificationRecommendations"`
}

type VendorRecord struct {
	Contracts          []string `json:"contracts"`
	ContractCount      int      `json:"contractCount"`
	TotalValue         float64  `json:"totalValue"`
	AveragePerformance float64  `json:"averagePerformance"`
	RiskLevel          string   `json:"riskLevel"`
}

type VendorSummary struct {
	AveragePerformance float64 `json:"averagePerformance"`
	HighPerformers     int     `json:"highPerformers"`
	AveragePerformers  int     `json:"averagePerformers"`
	Underperformers    int     `json:"underperformers"`
	ImprovementNeeded  bool    `json:"improvementNeeded"`
}

type VendorAnalysis struct {
	Vendors         map[string]VendorRecord `json:"vendorPerformance"`
	TopPerformers   []string                `json:"topPerformers"`
	Underperformers []string                `json:"underperformers"`
	VendorCount     int                     `json:"vendorCount"`
	Summary         VendorSummary           `json:"performanceSummary"`
}

func (a *Agent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")
	contracts := in.List("contracts")

	analyses, err := analyzeContracts(contracts)
	if err != nil {
		return engine.Report{}, err
	}
	portfolio := analyzePortfolio(analyses)
	vendors, err := analyzeVendors(contracts)
	if err != nil {
		return engine.Report{}, err
	}

	report := engine.NewReport("contracts", company, now, reviewCycle)
	report.AddSection("contract_analyses", analyses)
	report.AddSection("portfolio_analysis", portfolio)
	report.AddSection("vendor_analysis", vendors)
	report.Recommendations = recommendations(analyses, portfolio, vendors)
	return report, nil
}

func analyzeContracts(contracts []engine.Input) ([]ContractAnalysis, error) {
	analyses := make([]ContractAnalysis, 0, len(contracts))
	for _, c := range contracts {
		value, err := c.Number("value", 0)
		if err != nil {
			return nil, err
		}
		risk, err := assessRisks(c)
		if err != nil {
			return nil, err
		}
		perf, err := performanceMetrics(c)
		if err != nil {
			return nil, err
		}
		opps, err := optimizationOpportunities(c)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, ContractAnalysis{
			ContractID:    c.String("id", "unknown"),
			ContractType:  c.String("type", "general"),
			Vendor:        c.String("vendor", "Unknown"),
			Value:         value,
			Risk:          risk,
			Compliance:    complianceStatus(c),
			Performance:   perf,
			Opportunities: opps,
		})
	}
	return analyses, nil
}

func assessRisks(c engine.Input) (RiskAssessment, error) {
	value, err := c.Number("value", 0)
	if err != nil {
		return RiskAssessment{}, err
	}
	term, err := c.Number("term_months", 12)
	if err != nil {
		return RiskAssessment{}, err
	}
	history, err := c.Number("performance_history", 80)
	if err != nil {
		return RiskAssessment{}, err
	}

	risks := []ContractRisk{}
	if value > 1_000_000 {
		risks = append(risks, ContractRisk{
			Type:        "Financial",
			Severity:    "High",
			Description: "High-value contract exposure",
			Mitigation:  "Implement milestone-based payments",
		})
	}
	if term > 36 {
		risks = append(risks, ContractRisk{
			Type:        "Term",
			Severity:    "Medium",
			Description: "Long-term commitment risk",
			Mitigation:  "Include periodic review clauses",
		})
	}
	if history < 70 {
		risks = append(risks, ContractRisk{
			Type:        "Performance",
			Severity:    "High",
			Description: "Poor vendor performance history",
			Mitigation:  "Implement enhanced monitoring and penalties",
		})
	}
	if len(c.Strings("regulatory_requirements")) > 0 {
		risks = append(risks, ContractRisk{
			Type:        "Compliance",
			Severity:    "Medium",
			Description: "Regulatory compliance requirements",
			Mitigation:  "Regular compliance audits and reporting",
		})
	}

	var total float64
	for _, r := range risks {
		switch r.Severity {
		case "High":
			total += 3
		case "Medium":
			total += 2
		default:
			total += 1
		}
	}
	score := 0.0
	if len(risks) > 0 {
		score = total / float64(len(risks))
	}

	level := "Low"
	switch {
	case score >= 2.5:
		level = "High"
	case score >= 1.5:
		level = "Medium"
	}

	return RiskAssessment{
		Risks:            risks,
		RiskCount:        len(risks),
		OverallRiskLevel: level,
		RiskScore:        score,
	}, nil
}

func complianceStatus(c engine.Input) ComplianceStatus {
	checks := []struct {
		area string
		met  bool
	}{
		{"terms_compliance", c.Bool("terms_met", true)},
		{"payment_compliance", c.Bool("payments_current", true)},
		{"performance_compliance", c.Bool("performance_standards_met", true)},
		{"regulatory_compliance", c.Bool("regulatory_compliant", true)},
	}

	met := 0
	failing := []string{}
	for _, check := range checks {
		if check.met {
			met++
		} else {
			failing = append(failing, check.area)
		}
	}
	score := float64(met) / float64(len(checks)) * 100

	status := "Non-Compliant"
	switch {
	case score >= 90:
		status = "Compliant"
	case score >= 70:
		status = "Partially Compliant"
	}

	return ComplianceStatus{
		Score:                   score,
		Status:                  status,
		NonCompliantAreas:       failing,
		CorrectiveActionsNeeded: len(failing) > 0,
	}
}

func performanceMetrics(c engine.Input) (PerformanceMetrics, error) {
	delivery, err := c.Number("on_time_delivery", 85)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	quality, err := c.Number("quality_score", 80)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	cost, err := c.Number("cost_efficiency", 75)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	sla, err := c.Number("sla_achievement", 90)
	if err != nil {
		return PerformanceMetrics{}, err
	}

	overall := (delivery + quality + cost + sla) / 4
	trend := "Declining"
	switch {
	case overall > 80:
		trend = "Improving"
	case overall > 70:
		trend = "Stable"
	}

	gaps := []string{}
	for _, m := range []struct {
		name  string
		score float64
	}{
		{"delivery_performance", delivery},
		{"quality_performance", quality},
		{"cost_performance", cost},
		{"service_level_achievement", sla},
	} {
		if m.score < 75 {
			gaps = append(gaps, m.name)
		}
	}

	return PerformanceMetrics{
		Delivery:     delivery,
		Quality:      quality,
		Cost:         cost,
		ServiceLevel: sla,
		Overall:      overall,
		Trend:        trend,
		Gaps:         gaps,
	}, nil
}

func optimizationOpportunities(c engine.Input) ([]Opportunity, error) {
	cost, err := c.Number("cost_efficiency", 75)
	if err != nil {
		return nil, err
	}
	quality, err := c.Number("quality_score", 80)
	if err != nil {
		return nil, err
	}
	term, err := c.Number("term_months", 12)
	if err != nil {
		return nil, err
	}
	value, err := c.Number("value", 0)
	if err != nil {
		return nil, err
	}

	opps := []Opportunity{}
	if cost < 80 {
		opps = append(opps, Opportunity{
			Type:             "Cost Optimization",
			Opportunity:      "Renegotiate pricing terms",
			PotentialSavings: value * 0.1,
			Implementation:   "Medium",
		})
	}
	if quality < 85 {
		opps = append(opps, Opportunity{
			Type:             "Performance Enhancement",
			Opportunity:      "Implement performance incentives",
			PotentialBenefit: "Improve service quality by 10-15%",
			Implementation:   "Easy",
		})
	}
	if term < 12 {
		opps = append(opps, Opportunity{
			Type:             "Term Optimization",
			Opportunity:      "Negotiate longer-term contract for better rates",
			PotentialBenefit: "Reduce costs by 5-10%",
			Implementation:   "Medium",
		})
	}
	return opps, nil
}

func analyzePortfolio(analyses []ContractAnalysis) PortfolioAnalysis {
	if len(analyses) == 0 {
		return PortfolioAnalysis{RiskLevel: "No contracts", TypeDistribution: map[string]int{}}
	}

	highRisk := 0
	var totalValue float64
	vendorExposure := map[string]float64{}
	types := map[string]int{}
	for _, a := range analyses {
		if a.Risk.OverallRiskLevel == "High" {
			highRisk++
		}
		totalValue += a.Value
		vendorExposure[a.Vendor] += a.Value
		types[a.ContractType]++
	}

	var maxExposure float64
	for _, v := range vendorExposure {
		if v > maxExposure {
			maxExposure = v
		}
	}
	concentration := 0.0
	if totalValue > 0 {
		concentration = maxExposure / totalValue * 100
	}
	highRiskPct := float64(highRisk) / float64(len(analyses)) * 100

	level := "Low"
	switch {
	case highRiskPct > 30 || concentration > 40:
		level = "High"
	case highRiskPct > 15 || concentration > 25:
		level = "Medium"
	}

	advice := []string{}
	if totalValue > 0 && maxExposure/totalValue > 0.4 {
		advice = append(advice, "Reduce vendor concentration risk by diversifying supplier base")
	}
	if len(types) < 3 {
		advice = append(advice, "Consider diversifying contract types to reduce portfolio risk")
	}
	if len(advice) == 0 {
		advice = append(advice, "Portfolio diversification is adequate")
	}

	return PortfolioAnalysis{
		TotalContracts:          len(analyses),
		TotalValue:              totalValue,
		HighRiskContracts:       highRisk,
		HighRiskPercentage:      highRiskPct,
		VendorConcentrationRisk: concentration,
		TypeDistribution:        types,
		RiskLevel:               level,
		DiversificationAdvice:   advice,
	}
}

func analyzeVendors(contracts []engine.Input) (VendorAnalysis, error) {
	records := map[string]VendorRecord{}
	perfByVendor := map[string][]float64{}

	for _, c := range contracts {
		vendor := c.String("vendor", "Unknown")
		value, err := c.Number("value", 0)
		if err != nil {
			return VendorAnalysis{}, err
		}
		history, err := c.Number("performance_history", 80)
		if err != nil {
			return VendorAnalysis{}, err
		}
		rec := records[vendor]
		rec.Contracts = append(rec.Contracts, c.String("id", "unknown"))
		rec.TotalValue += value
		records[vendor] = rec
		perfByVendor[vendor] = append(perfByVendor[vendor], history)
	}

	names := make([]string, 0, len(records))
	for vendor, rec := range records {
		avg := engine.Mean(perfByVendor[vendor])
		rec.AveragePerformance = avg
		rec.ContractCount = len(rec.Contracts)
		switch {
		case avg < 70:
			rec.RiskLevel = "High"
		case avg < 85:
			rec.RiskLevel = "Medium"
		default:
			rec.RiskLevel = "Low"
		}
		records[vendor] = rec
		names = append(names, vendor)
	}

	// Best performance first; vendor name breaks ties for stable output.
	sort.Slice(names, func(i, j int) bool {
		pi, pj := records[names[i]].AveragePerformance, records[names[j]].AveragePerformance
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})

	top := names
	if len(top) > 3 {
		top = top[:3]
	}
	under := []string{}
	for _, v := range names {
		if records[v].AveragePerformance < 75 {
			under = append(under, v)
		}
	}

	return VendorAnalysis{
		Vendors:         records,
		TopPerformers:   append([]string(nil), top...),
		Underperformers: under,
		VendorCount:     len(records),
		Summary:         summarizeVendors(records),
	}, nil
}

func summarizeVendors(records map[string]VendorRecord) VendorSummary {
	if len(records) == 0 {
		return VendorSummary{}
	}
	var sum float64
	var high, average, under int
	for _, rec := range records {
		sum += rec.AveragePerformance
		switch {
		case rec.AveragePerformance >= 85:
			high++
		case rec.AveragePerformance >= 70:
			average++
		default:
			under++
		}
	}
	return VendorSummary{
		AveragePerformance: sum / float64(len(records)),
		HighPerformers:     high,
		AveragePerformers:  average,
		Underperformers:    under,
		ImprovementNeeded:  under > 0,
	}
}

func recommendations(analyses []ContractAnalysis, portfolio PortfolioAnalysis, vendors VendorAnalysis) []engine.Recommendation {
	type facts struct {
		highRisk     int
		portfolio    PortfolioAnalysis
		vendors      VendorAnalysis
		totalSavings float64
	}

	highRisk := 0
	var totalSavings float64
	for _, a := range analyses {
		if a.Risk.OverallRiskLevel == "High" {
			highRisk++
		}
		for _, o := range a.Opportunities {
			totalSavings += o.PotentialSavings
		}
	}

	rules := engine.RuleSet[facts]{
		{
			When: func(f facts) bool { return f.highRisk > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Risk Management",
					Priority:       "High",
					Recommendation: fmt.Sprintf("Address %d high-risk contracts immediately", f.highRisk),
					Actions: []string{
						"Conduct detailed risk assessments",
						"Implement additional risk mitigation measures",
						"Consider contract renegotiation or termination",
					},
					Timeline:       "1-3 months",
					ExpectedImpact: "Reduce portfolio risk by 40-60%",
				}
			},
		},
		{
			When: func(f facts) bool { return f.vendors.Summary.ImprovementNeeded },
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Vendor Management",
					Priority:       "Medium",
					Recommendation: "Improve underperforming vendor relationships",
					Actions: []string{
						"Implement vendor improvement plans",
						"Establish performance monitoring systems",
						"Consider vendor replacement for persistent issues",
					},
					Timeline:       "3-6 months",
					ExpectedImpact: "Improve overall vendor performance by 15-25%",
				}
			},
		},
		{
			When: func(f facts) bool { return f.portfolio.RiskLevel == "High" },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Portfolio Optimization",
					Priority:       "Medium",
					Recommendation: "Optimize contract portfolio structure",
					Actions:        f.portfolio.DiversificationAdvice,
					Timeline:       "6-12 months",
					ExpectedImpact: "Reduce portfolio concentration risk",
				}
			},
		},
		{
			When: func(f facts) bool { return f.totalSavings > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Cost Optimization",
					Priority:       "Medium",
					Recommendation: "Implement contract cost optimization initiatives",
					Actions: []string{
						"Renegotiate underperforming contracts",
						"Implement performance-based pricing",
						"Consolidate similar contracts for better terms",
					},
					Timeline:       "3-9 months",
					ExpectedImpact: fmt.Sprintf("Potential savings of $%.0f", f.totalSavings),
				}
			},
		},
	}
	return rules.Evaluate(facts{
		highRisk:     highRisk,
		portfolio:    portfolio,
		vendors:      vendors,
		totalSavings: totalSavings,
	})
}
