package engine

import (
	"errors"
	"math"
	"testing"
)

func TestScoreWeightedSum(t *testing.T) {
	table := Table(
		Factor{Name: "quality", Weight: 0.6, Default: 50},
		Factor{Name: "speed", Weight: 0.4, Default: 50},
	)
	score, err := table.Score(Input{"quality": 80.0, "speed": 60.0})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	want := 80*0.6 + 60*0.4
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("expected %.2f, got %.2f", want, score)
	}
}

func TestScoreMissingFieldsUseDefaults(t *testing.T) {
	table := Table(
		Factor{Name: "compliance", Weight: 0.5, Default: 80},
		Factor{Name: "efficiency", Weight: 0.5, Default: 85},
	)
	score, err := table.Score(Input{})
	if err != nil {
		t.Fatalf("Score with empty input: %v", err)
	}
	want := 80*0.5 + 85*0.5
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("expected default-backed score %.2f, got %.2f", want, score)
	}
}

func TestScoreClamped(t *testing.T) {
	table := Table(Factor{Name: "x", Weight: 2.0, Default: 0})
	score, err := table.Score(Input{"x": 90.0})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 100 {
		t.Fatalf("expected clamp to 100, got %.2f", score)
	}

	low, err := table.Score(Input{"x": -40.0})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if low != 0 {
		t.Fatalf("expected clamp to 0, got %.2f", low)
	}
}

func TestScoreProbabilityRange(t *testing.T) {
	table := Table(Factor{Name: "p", Weight: 1.0, Default: 0.5}).WithRange(0, 1)
	score, err := table.Score(Input{"p": 1.7})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 1 {
		t.Fatalf("expected clamp to 1, got %.2f", score)
	}
}

func TestScoreMalformedFieldFails(t *testing.T) {
	table := Table(Factor{Name: "quality", Weight: 1.0, Default: 50})
	_, err := table.Score(Input{"quality": "excellent"})
	if err == nil {
		t.Fatal("expected error for non-numeric field")
	}
	var typeErr *TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected *TypeError, got %T", err)
	}
	if typeErr.Field != "quality" {
		t.Fatalf("expected field quality, got %q", typeErr.Field)
	}
}

func TestScoreTransformApplied(t *testing.T) {
	table := Table(Factor{
		Name:    "age_years",
		Weight:  1.0,
		Default: 5,
		Transform: func(v float64) float64 {
			return 100 - math.Min(100, v*10)
		},
	})
	score, err := table.Score(Input{"age_years": 8.0})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 20 {
		t.Fatalf("expected transformed score 20, got %.2f", score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	table := Table(
		Factor{Name: "a", Weight: 0.3, Default: 10},
		Factor{Name: "b", Weight: 0.7, Default: 20},
	)
	in := Input{"a": 42.0}
	first, err := table.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := table.Score(in)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if again != first {
			t.Fatalf("expected deterministic score, got %.6f then %.6f", first, again)
		}
	}
}

func TestInputNumberIntKinds(t *testing.T) {
	in := Input{"i": 7, "i64": int64(8), "f32": float32(9)}
	for key, want := range map[string]float64{"i": 7, "i64": 8, "f32": 9} {
		got, err := in.Number(key, 0)
		if err != nil {
			t.Fatalf("Number(%s): %v", key, err)
		}
		if got != want {
			t.Fatalf("Number(%s): expected %.0f, got %.2f", key, want, got)
		}
	}
}
