// Package esg implements the sustainability reporting agent: ESG
// performance scoring, carbon footprint assessment, social impact and
// governance evaluation.
package esg

import (
	"context"
	"fmt"
	"math"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

const reviewCycle = 90 * 24 * time.Hour

type Agent struct {
	clock       agents.Clock
	ratingScale engine.Scale
}

func New(clock agents.Clock) *Agent {
	if clock == nil {
		clock = time.Now
	}
	return &Agent{
		clock: clock,
		ratingScale: engine.NewScale("B",
			engine.Band{Threshold: 85, Label: "AAA"},
			engine.Band{Threshold: 75, Label: "AA"},
			engine.Band{Threshold: 65, Label: "A"},
			engine.Band{Threshold: 55, Label: "BBB"},
			engine.Band{Threshold: 45, Label: "BB"},
		),
	}
}

func (a *Agent) Meta() agents.Metadata {
	return agents.Metadata{
		Key:      "esg",
		Name:     "Sustainability Reporting & ESG Agent",
		Version:  "1.0.0",
		Category: "sustainability",
		Capabilities: []string{
			"ESG Performance Tracking",
			"Carbon Footprint Analysis",
			"Sustainability Reporting",
			"Stakeholder Communication",
			"Compliance Monitoring",
			"Impact Measurement",
		},
		ReviewCycle: reviewCycle,
	}
}

// The three pillar tables use equal weights: each pillar score is the plain
// mean of its five factors.
func environmentalTable() engine.WeightTable {
	return engine.Table(
		engine.Factor{Name: "carbon_intensity", Weight: 0.2, Default: 50, Transform: func(v float64) float64 {
			return 100 - math.Min(100, v)
		}},
		engine.Factor{Name: "energy_efficiency_score", Weight: 0.2, Default: 60},
		engine.Factor{Name: "waste_reduction_percentage", Weight: 0.2, Default: 40},
		engine.Factor{Name: "water_conservation_score", Weight: 0.2, Default: 50},
		engine.Factor{Name: "renewable_energy_percentage", Weight: 0.2, Default: 30},
	)
}

func socialTable() engine.WeightTable {
	return engine.Table(
		engine.Factor{Name: "employee_satisfaction", Weight: 0.2, Default: 70},
		engine.Factor{Name: "diversity_score", Weight: 0.2, Default: 65},
		engine.Factor{Name: "community_investment_score", Weight: 0.2, Default: 60},
		engine.Factor{Name: "workplace_safety_score", Weight: 0.2, Default: 80},
		engine.Factor{Name: "training_investment_score", Weight: 0.2, Default: 70},
	)
}

func governanceTable() engine.WeightTable {
	return engine.Table(
		engine.Factor{Name: "board_independence_score", Weight: 0.2, Default: 75},
		engine.Factor{Name: "compensation_alignment_score", Weight: 0.2, Default: 70},
		engine.Factor{Name: "transparency_score", Weight: 0.2, Default: 65},
		engine.Factor{Name: "ethics_program_score", Weight: 0.2, Default: 80},
		engine.Factor{Name: "risk_management_score", Weight: 0.2, Default: 75},
	)
}

// ESGAnalysis is the three-pillar score breakdown.
type ESGAnalysis struct {
	EnvironmentalScore float64  `json:"environmentalScore"`
	SocialScore        float64  `json:"socialScore"`
	GovernanceScore    float64  `json:"governanceScore"`
	OverallScore       float64  `json:"overallEsgScore"`
	Rating             string   `json:"esgRating"`
	ImprovementAreas   []string `json:"improvementAreas"`
}

// CarbonAnalysis covers scope 1/2/3 emissions and reduction targets.
type CarbonAnalysis struct {
	TotalEmissionsTCO2e   float64 `json:"totalEmissionsTco2e"`
	Scope1                float64 `json:"scope1Emissions"`
	Scope2                float64 `json:"scope2Emissions"`
	Scope3                float64 `json:"scope3Emissions"`
	CarbonIntensity       float64 `json:"carbonIntensity"`
	ReductionTarget       float64 `json:"reductionTarget"`
	TargetYear            int     `json:"targetYear"`
	YearsToTarget         int     `json:"yearsToTarget"`
	AnnualReductionNeeded float64 `json:"annualReductionNeeded"`
	Performance           string  `json:"carbonPerformance"`
}

// SocialImpact covers community and workforce programs.
type SocialImpact struct {
	CommunityProgramCount   int     `json:"communityProgramsCount"`
	EmployeeWellnessScore   float64 `json:"employeeWellnessScore"`
	DiversityInitiatives    float64 `json:"diversityInitiatives"`
	StakeholderSatisfaction float64 `json:"stakeholderSatisfaction"`
	SocialInvestment        float64 `json:"socialInvestment"`
	ImpactScore             float64 `json:"socialImpactScore"`
	Performance             string  `json:"socialPerformance"`
}

// GovernanceAssessment covers board composition and oversight quality.
type GovernanceAssessment struct {
	BoardIndependencePct     float64 `json:"boardIndependencePercentage"`
	BoardDiversityPct        float64 `json:"boardDiversityPercentage"`
	CEOPayRatio              float64 `json:"ceoPayRatio"`
	EthicsTrainingCompletion float64 `json:"ethicsTrainingCompletion"`
	WhistleblowerProgram     bool    `json:"whistleblowerProgram"`
	RiskCommitteeExists      bool    `json:"riskCommitteeExists"`
	Score                    float64 `json:"governanceScore"`
	Level                    string  `json:"governanceLevel"`
}

func (a *Agent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")

	esg, err := a.analyzeESG(in)
	if err != nil {
		return engine.Report{}, err
	}
	carbon, err := a.assessCarbon(now, in)
	if err != nil {
		return engine.Report{}, err
	}
	social, err := evaluateSocialImpact(in)
	if err != nil {
		return engine.Report{}, err
	}
	governance, err := assessGovernance(in)
	if err != nil {
		return engine.Report{}, err
	}

	report := engine.NewReport("esg", company, now, reviewCycle)
	report.AddSection("esg_analysis", esg)
	report.AddSection("carbon_analysis", carbon)
	report.AddSection("social_impact", social)
	report.AddSection("governance_assessment", governance)
	report.Recommendations = recommendations(esg, carbon, social, governance)
	return report, nil
}

func (a *Agent) analyzeESG(in engine.Input) (ESGAnalysis, error) {
	env, err := environmentalTable().Score(in.Section("environmental_metrics"))
	if err != nil {
		return ESGAnalysis{}, err
	}
	social, err := socialTable().Score(in.Section("social_metrics"))
	if err != nil {
		return ESGAnalysis{}, err
	}
	gov, err := governanceTable().Score(in.Section("governance_metrics"))
	if err != nil {
		return ESGAnalysis{}, err
	}

	overall := (env + social + gov) / 3
	areas := []string{}
	if env < 70 {
		areas = append(areas, "Environmental performance needs significant improvement")
	}
	if social < 70 {
		areas = append(areas, "Social impact initiatives require enhancement")
	}
	if gov < 70 {
		areas = append(areas, "Governance practices need strengthening")
	}

	return ESGAnalysis{
		EnvironmentalScore: env,
		SocialScore:        social,
		GovernanceScore:    gov,
		OverallScore:       overall,
		Rating:             a.ratingScale.Classify(overall),
		ImprovementAreas:   areas,
	}, nil
}

func (a *Agent) assessCarbon(now time.Time, in engine.Input) (CarbonAnalysis, error) {
	carbon := in.Section("carbon_metrics")

	scope1, err := carbon.Number("scope1_emissions", 1000)
	if err != nil {
		return CarbonAnalysis{}, err
	}
	scope2, err := carbon.Number("scope2_emissions", 1500)
	if err != nil {
		return CarbonAnalysis{}, err
	}
	scope3, err := carbon.Number("scope3_emissions", 3000)
	if err != nil {
		return CarbonAnalysis{}, err
	}
	revenue, err := in.Number("annual_revenue", 10_000_000)
	if err != nil {
		return CarbonAnalysis{}, err
	}
	target, err := carbon.Number("reduction_target_percentage", 50)
	if err != nil {
		return CarbonAnalysis{}, err
	}
	targetYear, err := carbon.Number("target_year", 2030)
	if err != nil {
		return CarbonAnalysis{}, err
	}

	total := scope1 + scope2 + scope3
	// Tonnes CO2e per $M revenue.
	intensity := total / (revenue / 1_000_000)
	yearsToTarget := int(targetYear) - now.Year()

	return CarbonAnalysis{
		TotalEmissionsTCO2e:   total,
		Scope1:                scope1,
		Scope2:                scope2,
		Scope3:                scope3,
		CarbonIntensity:       intensity,
		ReductionTarget:       target,
		TargetYear:            int(targetYear),
		YearsToTarget:         yearsToTarget,
		AnnualReductionNeeded: target / math.Max(1, float64(yearsToTarget)),
		Performance:           carbonPerformance(intensity),
	}, nil
}

func carbonPerformance(intensity float64) string {
	switch {
	case intensity < 50:
		return "Excellent - Low carbon intensity"
	case intensity < 100:
		return "Good - Moderate carbon intensity"
	case intensity < 200:
		return "Fair - High carbon intensity"
	default:
		return "Poor - Very high carbon intensity"
	}
}

func evaluateSocialImpact(in engine.Input) (SocialImpact, error) {
	social := in.Section("social_impact")

	wellness, err := social.Number("employee_wellness_score", 70)
	if err != nil {
		return SocialImpact{}, err
	}
	initiatives, err := social.Number("diversity_initiatives_count", 3)
	if err != nil {
		return SocialImpact{}, err
	}
	satisfaction, err := social.Number("stakeholder_satisfaction", 75)
	if err != nil {
		return SocialImpact{}, err
	}
	investment, err := social.Number("social_investment", 500_000)
	if err != nil {
		return SocialImpact{}, err
	}
	programs := 0
	switch v := social["community_programs"].(type) {
	case []any:
		programs = len(v)
	case []string:
		programs = len(v)
	}

	impact := engine.Mean([]float64{
		wellness,
		satisfaction,
		math.Min(100, initiatives*20),
		math.Min(100, float64(programs)*25),
	})

	return SocialImpact{
		CommunityProgramCount:   programs,
		EmployeeWellnessScore:   wellness,
		DiversityInitiatives:    initiatives,
		StakeholderSatisfaction: satisfaction,
		SocialInvestment:        investment,
		ImpactScore:             impact,
		Performance:             socialPerformance(impact),
	}, nil
}

func socialPerformance(score float64) string {
	switch {
	case score >= 85:
		return "Leading social impact"
	case score >= 70:
		return "Strong social performance"
	case score >= 55:
		return "Moderate social impact"
	default:
		return "Limited social performance"
	}
}

func assessGovernance(in engine.Input) (GovernanceAssessment, error) {
	gov := in.Section("governance")

	boardSize, err := gov.Number("board_size", 9)
	if err != nil {
		return GovernanceAssessment{}, err
	}
	independent, err := gov.Number("independent_directors", 6)
	if err != nil {
		return GovernanceAssessment{}, err
	}
	diversity, err := gov.Number("board_diversity_percentage", 40)
	if err != nil {
		return GovernanceAssessment{}, err
	}
	payRatio, err := gov.Number("ceo_pay_ratio", 200)
	if err != nil {
		return GovernanceAssessment{}, err
	}
	ethicsTraining, err := gov.Number("ethics_training_completion", 85)
	if err != nil {
		return GovernanceAssessment{}, err
	}
	riskCommittee := gov.Bool("risk_committee_exists", true)

	riskScore := 50.0
	if riskCommittee {
		riskScore = 100
	}
	score := engine.Mean([]float64{
		math.Min(100, independent/boardSize*100),
		diversity,
		math.Max(0, 100-payRatio/5),
		ethicsTraining,
		riskScore,
	})

	return GovernanceAssessment{
		BoardIndependencePct:     independent / boardSize * 100,
		BoardDiversityPct:        diversity,
		CEOPayRatio:              payRatio,
		EthicsTrainingCompletion: ethicsTraining,
		WhistleblowerProgram:     gov.Bool("whistleblower_program", true),
		RiskCommitteeExists:      riskCommittee,
		Score:                    score,
		Level:                    governanceLevel(score),
	}, nil
}

func governanceLevel(score float64) string {
	switch {
	case score >= 85:
		return "Excellent governance"
	case score >= 70:
		return "Strong governance"
	case score >= 55:
		return "Adequate governance"
	default:
		return "Governance needs improvement"
	}
}

func recommendations(esg ESGAnalysis, carbon CarbonAnalysis, social SocialImpact, gov GovernanceAssessment) []engine.Recommendation {
	type facts struct {
		esg    ESGAnalysis
		carbon CarbonAnalysis
		social SocialImpact
		gov    GovernanceAssessment
	}
	rules := engine.RuleSet[facts]{
		{
			When: func(f facts) bool { return f.esg.OverallScore < 70 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "ESG Performance",
					Priority:       "High",
					Recommendation: "Implement comprehensive ESG improvement program",
					Actions:        f.esg.ImprovementAreas,
					ExpectedImpact: fmt.Sprintf("Improve ESG rating from %s to A-level", f.esg.Rating),
					Timeline:       "12-18 months",
				}
			},
		},
		{
			When: func(f facts) bool {
				return f.carbon.Performance == "Poor - Very high carbon intensity" ||
					f.carbon.Performance == "Fair - High carbon intensity"
			},
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Carbon Reduction",
					Priority:       "Critical",
					Recommendation: "Accelerate carbon reduction initiatives",
					Actions: []string{
						"Implement renewable energy transition",
						"Improve energy efficiency across operations",
						"Engage suppliers in Scope 3 reduction",
						"Invest in carbon offset programs",
					},
					ExpectedImpact: fmt.Sprintf("Reduce carbon intensity by %.1f%% annually", f.carbon.AnnualReductionNeeded),
					Timeline:       fmt.Sprintf("%d years to target", f.carbon.YearsToTarget),
				}
			},
		},
		{
			When: func(f facts) bool {
				return f.social.Performance == "Limited social performance" ||
					f.social.Performance == "Moderate social impact"
			},
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Social Impact",
					Priority:       "Medium",
					Recommendation: "Enhance social impact and community engagement",
					Actions: []string{
						"Expand community investment programs",
						"Improve employee wellness initiatives",
						"Strengthen diversity and inclusion efforts",
						"Enhance stakeholder engagement",
					},
					ExpectedImpact: "Achieve leading social impact status",
					Timeline:       "6-12 months",
				}
			},
		},
		{
			When: func(f facts) bool {
				return f.gov.Level == "Governance needs improvement" ||
					f.gov.Level == "Adequate governance"
			},
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Governance Enhancement",
					Priority:       "Medium",
					Recommendation: "Strengthen governance practices and oversight",
					Actions: []string{
						"Improve board independence and diversity",
						"Align executive compensation with ESG goals",
						"Enhance transparency and reporting",
						"Strengthen risk management processes",
					},
					ExpectedImpact: "Achieve excellent governance rating",
					Timeline:       "9-15 months",
				}
			},
		},
	}
	return rules.Evaluate(facts{esg: esg, carbon: carbon, social: social, gov: gov})
}
