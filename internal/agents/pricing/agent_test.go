package pricing

import (
	"context"
	"math"
	"testing"
	"time"

	"agents-backend/internal/engine"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func productPortfolio() engine.Input {
	return engine.Input{
		"company_name": "PriceWise Retail",
		"products": []any{
			map[string]any{"id": "PROD001", "price": 100.0, "volume": 500.0, "margin": 0.45},
			map[string]any{"id": "PROD002", "price": 250.0, "volume": 30.0, "margin": 0.35},
			map[string]any{"id": "PROD003", "price": 40.0, "volume": 1000.0, "margin": 0.10},
		},
		"competitors": []any{
			map[string]any{"name": "CompetitorA", "price": 50.0},
			map[string]any{"name": "CompetitorB", "price": 60.0},
		},
		"sentiment_score": 0.72,
	}
}

func TestAnalyzePortfolio(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), productPortfolio())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	perf, ok := report.Sections["portfolio_performance"].(PortfolioPerformance)
	if !ok {
		t.Fatalf("missing portfolio_performance section")
	}
	if perf.ProductCount != 3 {
		t.Fatalf("expected 3 products, got %d", perf.ProductCount)
	}
	// Revenue falls back to price*volume when not supplied.
	if perf.TotalRevenue != 97_500 {
		t.Fatalf("expected total revenue 97500, got %.2f", perf.TotalRevenue)
	}
	if math.Abs(perf.AverageMargin-0.3) > 1e-9 {
		t.Fatalf("expected average margin 0.30, got %.4f", perf.AverageMargin)
	}
	if math.Abs(perf.WeightedAveragePrice-97_500.0/1530.0) > 1e-9 {
		t.Fatalf("unexpected weighted price %.4f", perf.WeightedAveragePrice)
	}
	// PROD002 misses the volume floor, PROD003 the margin floor.
	if len(perf.Underperformers) != 2 || perf.Underperformers[0] != "PROD002" || perf.Underperformers[1] != "PROD003" {
		t.Fatalf("unexpected underperformers %v", perf.Underperformers)
	}
	if len(perf.Opportunities) != 2 {
		t.Fatalf("expected 2 opportunities, got %+v", perf.Opportunities)
	}
	if perf.Opportunities[0].Type != "Price Increase" || perf.Opportunities[0].ProductID != "PROD001" {
		t.Fatalf("unexpected first opportunity %+v", perf.Opportunities[0])
	}
	if perf.Opportunities[1].Type != "Volume Play" || perf.Opportunities[1].ProductID != "PROD002" {
		t.Fatalf("unexpected second opportunity %+v", perf.Opportunities[1])
	}

	comp, ok := report.Sections["competitive_analysis"].(CompetitiveAnalysis)
	if !ok {
		t.Fatalf("missing competitive_analysis section")
	}
	if comp.MarketAveragePrice != 55 || comp.CompetitorCount != 2 {
		t.Fatalf("unexpected market data %+v", comp)
	}
	if comp.Position != "Premium positioned" {
		t.Fatalf("expected premium position at ratio %.4f, got %q", comp.PriceRatio, comp.Position)
	}

	sentiment, ok := report.Sections["market_sentiment"].(MarketSentiment)
	if !ok {
		t.Fatalf("missing market_sentiment section")
	}
	if sentiment.Direction != "Positive" || sentiment.SentimentScore != 0.72 {
		t.Fatalf("unexpected sentiment %+v", sentiment)
	}
	if sentiment.ConfidenceLevel != 0.7 {
		t.Fatalf("expected default confidence 0.7, got %.2f", sentiment.ConfidenceLevel)
	}

	want := []string{"Pricing Review", "Revenue Optimization", "Price Monitoring"}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("expected %d recommendations, got %d", len(want), len(report.Recommendations))
	}
	for i, cat := range want {
		if report.Recommendations[i].Category != cat {
			t.Fatalf("recommendation %d: expected %q, got %q", i, cat, report.Recommendations[i].Category)
		}
	}
}

func TestValuePositionWithPositiveSentiment(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), engine.Input{
		"products": []any{
			map[string]any{"id": "PROD010", "price": 40.0, "volume": 2000.0, "margin": 0.25},
		},
		"competitors": []any{
			map[string]any{"name": "CompetitorA", "price": 80.0},
		},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	comp := report.Sections["competitive_analysis"].(CompetitiveAnalysis)
	if comp.Position != "Value positioned" {
		t.Fatalf("expected value position, got %q", comp.Position)
	}
	// Default sentiment 0.6 reads as positive.
	want := []string{"Market Positioning", "Price Monitoring"}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("expected %d recommendations, got %+v", len(want), report.Recommendations)
	}
	for i, cat := range want {
		if report.Recommendations[i].Category != cat {
			t.Fatalf("recommendation %d: expected %q, got %q", i, cat, report.Recommendations[i].Category)
		}
	}
}

func TestNoCompetitiveData(t *testing.T) {
	agent := New(fixedClock)
	report, err := agent.Analyze(context.Background(), engine.Input{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	comp := report.Sections["competitive_analysis"].(CompetitiveAnalysis)
	if comp.Position != "No competitive data available" {
		t.Fatalf("unexpected position %q", comp.Position)
	}
	// Monitoring fires unconditionally.
	if len(report.Recommendations) != 1 || report.Recommendations[0].Category != "Price Monitoring" {
		t.Fatalf("unexpected recommendations %+v", report.Recommendations)
	}
}

func TestMalformedProductPriceFails(t *testing.T) {
	agent := New(fixedClock)
	_, err := agent.Analyze(context.Background(), engine.Input{
		"products": []any{map[string]any{"id": "BAD", "price": "expensive"}},
	})
	if err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}
