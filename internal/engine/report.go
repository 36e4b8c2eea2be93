package engine

import "time"

// Report is the composite result of one agent invocation. Sections hold the
// agent's domain-specific sub-analyses; Recommendations the selected advice
// templates. NextReview is GeneratedAt plus the agent's review cycle.
type Report struct {
	Agent           string           `json:"agent"`
	Company         string           `json:"company,omitempty"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	NextReview      time.Time        `json:"nextReview"`
	Sections        map[string]any   `json:"sections"`
	Recommendations []Recommendation `json:"recommendations"`
}

// NewReport initializes a report for an agent at the given time.
func NewReport(agent, company string, now time.Time, reviewCycle time.Duration) Report {
	return Report{
		Agent:           agent,
		Company:         company,
		GeneratedAt:     now.UTC(),
		NextReview:      now.UTC().Add(reviewCycle),
		Sections:        map[string]any{},
		Recommendations: []Recommendation{},
	}
}

// AddSection attaches a named sub-analysis to the report.
func (r *Report) AddSection(name string, value any) {
	r.Sections[name] = value
}
