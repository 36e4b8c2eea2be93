package engine

// Recommendation is a static advice template selected by a matching rule.
type Recommendation struct {
	Category       string   `json:"category"`
	Priority       string   `json:"priority"`
	Recommendation string   `json:"recommendation"`
	Actions        []string `json:"actions,omitempty"`
	ExpectedImpact string   `json:"expectedImpact,omitempty"`
	Timeline       string   `json:"timeline,omitempty"`
	EstimatedCost  float64  `json:"estimatedCost,omitempty"`
}

// Rule pairs a predicate over the aggregated analysis with the
// recommendation it contributes when the predicate holds.
type Rule[T any] struct {
	When  func(T) bool
	Build func(T) Recommendation
}

// RuleSet evaluates rules as a union: every matching rule contributes its
// recommendation, in declaration order. This is not an exclusive switch.
type RuleSet[T any] []Rule[T]

// Evaluate returns the recommendations of all matching rules. The result is
// never nil so callers can serialize it as an empty list.
func (rs RuleSet[T]) Evaluate(v T) []Recommendation {
	out := make([]Recommendation, 0, len(rs))
	for _, r := range rs {
		if r.When == nil || r.When(v) {
			out = append(out, r.Build(v))
		}
	}
	return out
}
