// Package pipeline runs several agents over one input document in a
// fixed order, threading each successful report into the next agent's
// input so later agents can build on earlier findings.
package pipeline

import (
	"context"
	"sort"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
)

// PriorityFunc maps an agent key to its run priority. Lower values run
// first; unknown keys get the zero priority. The marketplace catalog
// supplies this in production.
type PriorityFunc func(key string) int

// Step is the outcome of one agent in a run. Exactly one of Report and
// Error is set.
type Step struct {
	AgentKey string         `json:"agentKey"`
	Status   string         `json:"status"`
	Report   *engine.Report `json:"report,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type Summary struct {
	TotalAgents         int     `json:"totalAgents"`
	Successful          int     `json:"successful"`
	Failed              int     `json:"failed"`
	SuccessRate         float64 `json:"successRate"`
	CoordinationQuality string  `json:"coordinationQuality"`
}

type Result struct {
	Company     string    `json:"company"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	Steps       []Step    `json:"steps"`
	Summary     Summary   `json:"summary"`
}

type Runner struct {
	registry *agents.Registry
	priority PriorityFunc
	clock    agents.Clock
}

func NewRunner(registry *agents.Registry, priority PriorityFunc, clock agents.Clock) *Runner {
	if clock == nil {
		clock = time.Now
	}
	return &Runner{registry: registry, priority: priority, clock: clock}
}

// Run executes the named agents sequentially in priority order. A step
// failure is recorded inline and does not stop the remaining steps.
// Each successful report is added to the next input under
// previous_agent_insights, keyed by agent.
func (r *Runner) Run(ctx context.Context, keys []string, in engine.Input) Result {
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	if r.priority != nil {
		sort.SliceStable(ordered, func(i, j int) bool {
			return r.priority(ordered[i]) < r.priority(ordered[j])
		})
	}

	result := Result{
		Company:   in.String("company_name", "Unknown Company"),
		StartedAt: r.clock(),
		Steps:     make([]Step, 0, len(ordered)),
	}
	insights := make(map[string]any)

	for _, key := range ordered {
		agent, ok := r.registry.Get(key)
		if !ok {
			result.Steps = append(result.Steps, Step{
				AgentKey: key,
				Status:   "failed",
				Error:    "unknown agent",
			})
			continue
		}

		stepInput := make(engine.Input, len(in)+1)
		for k, v := range in {
			stepInput[k] = v
		}
		if len(insights) > 0 {
			stepInput["previous_agent_insights"] = insights
		}

		report, err := agent.Analyze(ctx, stepInput)
		if err != nil {
			result.Steps = append(result.Steps, Step{
				AgentKey: key,
				Status:   "failed",
				Error:    err.Error(),
			})
			continue
		}
		insights[key] = report
		result.Steps = append(result.Steps, Step{
			AgentKey: key,
			Status:   "completed",
			Report:   &report,
		})
	}

	result.CompletedAt = r.clock()
	result.Summary = summarize(result.Steps)
	return result
}

func summarize(steps []Step) Summary {
	s := Summary{TotalAgents: len(steps)}
	for _, step := range steps {
		if step.Status == "completed" {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	if s.TotalAgents > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.TotalAgents) * 100
	}
	switch {
	case s.Failed == 0:
		s.CoordinationQuality = "excellent"
	case s.Failed < 3:
		s.CoordinationQuality = "good"
	default:
		s.CoordinationQuality = "needs_attention"
	}
	return s
}
