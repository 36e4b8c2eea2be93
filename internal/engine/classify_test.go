package engine

import "testing"

func esgScale() Scale {
	return NewScale("B",
		Band{Threshold: 85, Label: "AAA"},
		Band{Threshold: 75, Label: "AA"},
		Band{Threshold: 65, Label: "A"},
		Band{Threshold: 55, Label: "BBB"},
		Band{Threshold: 45, Label: "BB"},
	)
}

func TestClassifyBands(t *testing.T) {
	scale := esgScale()
	cases := []struct {
		score float64
		want  string
	}{
		{90, "AAA"},
		{85, "AAA"}, // exact boundary goes to the higher band
		{84.999, "AA"},
		{75, "AA"},
		{70, "A"},
		{55, "BBB"},
		{50, "BB"},
		{44.999, "B"},
		{0, "B"},
	}
	for _, tc := range cases {
		if got := scale.Classify(tc.score); got != tc.want {
			t.Fatalf("Classify(%.3f): expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

func TestClassifyUnsortedBandsInput(t *testing.T) {
	scale := NewScale("Low",
		Band{Threshold: 50, Label: "Medium"},
		Band{Threshold: 85, Label: "Critical"},
		Band{Threshold: 70, Label: "High"},
	)
	if got := scale.Classify(72); got != "High" {
		t.Fatalf("expected High, got %q", got)
	}
	if got := scale.Classify(85); got != "Critical" {
		t.Fatalf("expected Critical, got %q", got)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	scale := esgScale()
	prev := -1
	for score := 0.0; score <= 100; score += 0.5 {
		rank := scale.Rank(scale.Classify(score))
		if rank < prev {
			t.Fatalf("severity rank decreased at score %.1f", score)
		}
		prev = rank
	}
}

func TestRank(t *testing.T) {
	scale := esgScale()
	if scale.Rank("B") != 0 {
		t.Fatalf("fallback should rank 0, got %d", scale.Rank("B"))
	}
	if scale.Rank("AAA") != 5 {
		t.Fatalf("AAA should rank 5, got %d", scale.Rank("AAA"))
	}
	if scale.Rank("unknown") != -1 {
		t.Fatalf("unknown label should rank -1, got %d", scale.Rank("unknown"))
	}
}

func TestRuleSetUnionPreservesOrder(t *testing.T) {
	type facts struct {
		overall  float64
		critical int
	}
	rules := RuleSet[facts]{
		{
			When:  func(f facts) bool { return f.overall < 70 },
			Build: func(facts) Recommendation { return Recommendation{Category: "Performance"} },
		},
		{
			When:  func(f facts) bool { return f.critical > 0 },
			Build: func(facts) Recommendation { return Recommendation{Category: "Immediate Action"} },
		},
		{
			When:  func(f facts) bool { return f.overall < 50 },
			Build: func(facts) Recommendation { return Recommendation{Category: "Escalation"} },
		},
	}

	got := rules.Evaluate(facts{overall: 60, critical: 2})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Category != "Performance" || got[1].Category != "Immediate Action" {
		t.Fatalf("expected declaration order, got %q then %q", got[0].Category, got[1].Category)
	}

	if out := rules.Evaluate(facts{overall: 90}); len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
	if out := rules.Evaluate(facts{overall: 90}); out == nil {
		t.Fatal("expected non-nil empty slice")
	}
}
