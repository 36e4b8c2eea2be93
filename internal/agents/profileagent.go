package agents

import (
	"context"

	"agents-backend/internal/engine"
)

// ProfileAgent adapts a declarative YAML profile into a registrable
// agent. The factor scores, classification and advice all come from the
// profile document.
type ProfileAgent struct {
	profile *engine.Profile
	table   engine.WeightTable
	scale   engine.Scale
	rules   engine.RuleSet[float64]
	clock   Clock
}

// NewProfileAgent builds an agent from a parsed profile.
func NewProfileAgent(p *engine.Profile, clock Clock) *ProfileAgent {
	return &ProfileAgent{
		profile: p,
		table:   p.Table(),
		scale:   p.Scale(),
		rules:   p.Rules(),
		clock:   clock,
	}
}

func (a *ProfileAgent) Meta() Metadata {
	return Metadata{
		Key:         a.profile.Key,
		Name:        a.profile.Name,
		Version:     a.profile.Version,
		Category:    a.profile.Category,
		ReviewCycle: a.profile.ReviewCycle(),
	}
}

func (a *ProfileAgent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	now := a.clock()
	company := in.String("company_name", "Unknown Company")

	score, err := a.table.Score(in)
	if err != nil {
		return engine.Report{}, err
	}

	factors := make(map[string]float64, len(a.profile.Factors))
	for _, f := range a.profile.Factors {
		v, err := in.Number(f.Name, f.Default)
		if err != nil {
			return engine.Report{}, err
		}
		factors[f.Name] = v
	}

	report := engine.NewReport(a.profile.Key, company, now, a.profile.ReviewCycle())
	report.AddSection("scoring", map[string]any{
		"overall_score":  score,
		"classification": a.scale.Classify(score),
		"factors":        factors,
	})
	report.Recommendations = a.rules.Evaluate(score)
	return report, nil
}
