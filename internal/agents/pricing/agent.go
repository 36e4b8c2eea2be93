// Package pricing implements the dynamic pricing intelligence agent:
// product portfolio performance, competitive price positioning, and
// market sentiment context for pricing decisions.
package pricing

import (
	"context"
	"fmt"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

const reviewCycle = 30 * 24 * time.Hour

// Products below these floors drag portfolio performance.
const (
	underperformingMargin = 0.15
	underperformingVolume = 100
)

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
		Key:      "pricing",
		Name:     "Dynamic Pricing Intelligence Agent",
		Version:  "1.0.0",
		Category: "revenue-optimization",
		Capabilities: []string{
			"Portfolio Performance Analysis",
			"Competitive Price Positioning",
			"Market Sentiment Tracking",
			"Margin Optimization",
			"Revenue Intelligence",
		},
		ReviewCycle: reviewCycle,
	}
}

// PricingOpportunity flags a product whose price point leaves money on
// the table in one direction or the other.
type PricingOpportunity struct {
	ProductID   string `json:"productId"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type PortfolioPerformance struct {
	ProductCount         int                  `json:"productCount"`
	TotalRevenue         float64              `json:"totalRevenue"`
	AverageMargin        float64              `json:"averageMargin"`
	WeightedAveragePrice float64              `json:"volumeWeightedAveragePrice"`
	Underperformers      []string             `json:"underperformingProducts"`
	Opportunities        []PricingOpportunity `json:"pricingOpportunities"`
}

type CompetitiveAnalysis struct {
	OurAveragePrice    float64 `json:"ourAveragePrice"`
	MarketAveragePrice float64 `json:"marketAveragePrice"`
	PriceRatio         float64 `json:"priceRatio"`
	Position           string  `json:"position"`
	CompetitorCount    int     `json:"competitorCount"`
}

type MarketSentiment struct {
	SentimentScore  float64 `json:"sentimentScore"`
	Direction       string  `json:"direction"`
	ConfidenceLevel float64 `json:"confidenceLevel"`
}

func (a *Agent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")

	performance, err := analyzePortfolio(in.List("products"))
	if err != nil {
		return engine.Report{}, err
	}
	competitive, err := analyzeCompetition(performance.WeightedAveragePrice, in.List("competitors"))
	if err != nil {
		return engine.Report{}, err
	}
	sentiment, err := analyzeSentiment(in)
	if err != nil {
		return engine.Report{}, err
	}

	report := engine.NewReport("pricing", company, now, reviewCycle)
	report.AddSection("portfolio_performance", performance)
	report.AddSection("competitive_analysis", competitive)
	report.AddSection("market_sentiment", sentiment)
	report.Recommendations = recommendations(performance, competitive, sentiment)
	return report, nil
}

func analyzePortfolio(products []engine.Input) (PortfolioPerformance, error) {
	perf := PortfolioPerformance{
		ProductCount:    len(products),
		Underperformers: []string{},
		Opportunities:   []PricingOpportunity{},
	}
	var marginSum, priceVolumeSum, volumeSum float64

	for _, p := range products {
		id := p.String("id", "unknown")
		price, err := p.Number("price", 0)
		if err != nil {
			return PortfolioPerformance{}, err
		}
		volume, err := p.Number("volume", 0)
		if err != nil {
			return PortfolioPerformance{}, err
		}
		margin, err := p.Number("margin", 0.2)
		if err != nil {
			return PortfolioPerformance{}, err
		}
		revenue, err := p.Number("revenue", price*volume)
		if err != nil {
			return PortfolioPerformance{}, err
		}

		perf.TotalRevenue += revenue
		marginSum += margin
		priceVolumeSum += price * volume
		volumeSum += volume

		if margin < underperformingMargin || volume < underperformingVolume {
			perf.Underperformers = append(perf.Underperformers, id)
		}
		if margin > 0.4 {
			perf.Opportunities = append(perf.Opportunities, PricingOpportunity{
				ProductID:   id,
				Type:        "Price Increase",
				Description: "High margin indicates price increase potential",
			})
		}
		if volume < 50 {
			perf.Opportunities = append(perf.Opportunities, PricingOpportunity{
				ProductID:   id,
				Type:        "Volume Play",
				Description: "Price reduction could unlock volume growth",
			})
		}
	}

	if len(products) > 0 {
		perf.AverageMargin = marginSum / float64(len(products))
	}
	if volumeSum > 0 {
		perf.WeightedAveragePrice = priceVolumeSum / volumeSum
	}
	return perf, nil
}

func analyzeCompetition(ourPrice float64, competitors []engine.Input) (CompetitiveAnalysis, error) {
	analysis := CompetitiveAnalysis{
		OurAveragePrice: ourPrice,
		CompetitorCount: len(competitors),
	}
	if len(competitors) == 0 {
		analysis.Position = "No competitive data available"
		return analysis, nil
	}

	var priceSum float64
	for _, c := range competitors {
		price, err := c.Number("price", 0)
		if err != nil {
			return CompetitiveAnalysis{}, err
		}
		priceSum += price
	}
	analysis.MarketAveragePrice = priceSum / float64(len(competitors))
	if analysis.MarketAveragePrice > 0 {
		analysis.PriceRatio = ourPrice / analysis.MarketAveragePrice
	}

	switch {
	case analysis.PriceRatio > 1.1:
		analysis.Position = "Premium positioned"
	case analysis.PriceRatio < 0.9:
		analysis.Position = "Value positioned"
	default:
		analysis.Position = "Competitively positioned"
	}
	return analysis, nil
}

func analyzeSentiment(in engine.Input) (MarketSentiment, error) {
	score, err := in.Number("sentiment_score", 0.6)
	if err != nil {
		return MarketSentiment{}, err
	}
	confidence, err := in.Number("confidence_level", 0.7)
	if err != nil {
		return MarketSentiment{}, err
	}
	direction := "Neutral-to-Negative"
	if score > 0.5 {
		direction = "Positive"
	}
	return MarketSentiment{
		SentimentScore:  engine.Clamp(score, 0, 1),
		Direction:       direction,
		ConfidenceLevel: engine.Clamp(confidence, 0, 1),
	}, nil
}

func recommendations(perf PortfolioPerformance, comp CompetitiveAnalysis, sentiment MarketSentiment) []engine.Recommendation {
	type facts struct {
		underperformers int
		increaseOpps    int
		position        string
		positiveMarket  bool
	}

	increases := 0
	for _, o := range perf.Opportunities {
		if o.Type == "Price Increase" {
			increases++
		}
	}

	rules := engine.RuleSet[facts]{
		{
			When: func(f facts) bool { return f.underperformers > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Pricing Review",
					Priority:       "High",
					Recommendation: fmt.Sprintf("Review pricing for %d underperforming products", f.underperformers),
					Actions: []string{
						"Audit cost structure on low-margin products",
						"Test price elasticity on low-volume products",
						"Consider bundling or repositioning weak performers",
					},
					Timeline: "1-2 months",
				}
			},
		},
		{
			When: func(f facts) bool { return f.increaseOpps > 0 },
			Build: func(f facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Revenue Optimization",
					Priority:       "Medium",
					Recommendation: fmt.Sprintf("Capture margin headroom on %d high-margin products", f.increaseOpps),
					Actions: []string{
						"Run controlled price increase experiments",
						"Monitor volume response to price changes",
					},
					ExpectedImpact: "Incremental margin without volume loss",
					Timeline:       "1-3 months",
				}
			},
		},
		{
			When: func(f facts) bool { return f.position == "Value positioned" && f.positiveMarket },
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Market Positioning",
					Priority:       "Medium",
					Recommendation: "Positive market sentiment supports moving up from value positioning",
					Actions: []string{
						"Benchmark feature parity against premium competitors",
						"Phase price adjustments toward the market average",
					},
					Timeline: "3-6 months",
				}
			},
		},
		{
			Build: func(facts) engine.Recommendation {
				return engine.Recommendation{
					Category:       "Price Monitoring",
					Priority:       "Low",
					Recommendation: "Maintain continuous competitive price monitoring",
					Actions: []string{
						"Track competitor price moves weekly",
						"Refresh sentiment signals monthly",
					},
					Timeline: "Ongoing",
				}
			},
		},
	}
	return rules.Evaluate(facts{
		underperformers: len(perf.Underperformers),
		increaseOpps:    increases,
		position:        comp.Position,
		positiveMarket:  sentiment.Direction == "Positive",
	})
}
