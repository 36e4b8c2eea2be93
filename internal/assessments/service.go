package assessments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
	"agents-backend/internal/pipeline"
	"agents-backend/internal/shared/cache"
	"agents-backend/internal/shared/metrics"
	"agents-backend/internal/shared/mq"
	"agents-backend/internal/shared/telemetry"
	"agents-backend/internal/shared/util"
	"agents-backend/internal/usage"
)

// JobPublisher hands queued assessments to the worker. *mq.Publisher
// satisfies it; tests substitute fakes.
type JobPublisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// Service contains business logic for assessments.
type Service struct {
	Repo     Repo
	Registry *agents.Registry
	Usage    *usage.Service
	Cache    *cache.Cache
	Jobs     JobPublisher
	Pipeline *pipeline.Runner
	Clock    agents.Clock
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Create enqueues a new assessment. When a job publisher is configured
// the worker picks it up; otherwise completion runs in-process.
func (s *Service) Create(ctx context.Context, agentKey, userID string, input engine.Input) (Assessment, error) {
	if agentKey == "" || userID == "" {
		return Assessment{}, errors.New("agentKey and userID are required")
	}
	if _, ok := s.Registry.Get(agentKey); !ok {
		return Assessment{}, ErrUnknownAgent
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Assessment{}, err
		}
		if !ok {
			return Assessment{}, usage.ErrLimitReached
		}
	}

	assessment := Assessment{
		ID:        uuid.NewString(),
		AgentKey:  agentKey,
		UserID:    userID,
		Company:   input.String("company_name", "Unknown Company"),
		Status:    StatusQueued,
		Input:     input,
		CreatedAt: s.now().UTC(),
	}

	if err := s.Repo.Create(ctx, assessment); err != nil {
		return Assessment{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return Assessment{}, err
		}
	}

	if s.Jobs != nil {
		if err := s.Jobs.Publish(ctx, mq.RoutingKeyRequested, mq.Job{AssessmentID: assessment.ID}); err == nil {
			return assessment, nil
		}
		telemetry.Error("assessment.publish_failed", map[string]any{
			"assessment_id": assessment.ID,
			"agent":         agentKey,
		})
	}
	go func(ctx context.Context, id string) {
		_ = s.Process(ctx, id)
	}(backgroundWithRequestID(ctx), assessment.ID)

	return assessment, nil
}

// Process runs the agent for a queued assessment and persists the
// outcome. Agent failures end up on the record as a failed status; the
// returned error covers infrastructure problems only.
func (s *Service) Process(ctx context.Context, assessmentID string) error {
	startedAt := s.now().UTC()
	if err := s.Repo.UpdateStatus(ctx, assessmentID, StatusProcessing, nil, nil, &startedAt, nil); err != nil {
		return fmt.Errorf("set processing: %w", err)
	}

	assessment, err := s.Repo.GetByID(ctx, assessmentID)
	if err != nil {
		return fmt.Errorf("assessment lookup: %w", err)
	}

	metrics.IncAssessmentStarted(assessment.AgentKey)
	telemetry.Info("assessment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"assessment_id":     assessment.ID,
		"agent":             assessment.AgentKey,
		"user_id":           assessment.UserID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	agent, ok := s.Registry.Get(assessment.AgentKey)
	if !ok {
		return s.fail(ctx, assessment, startedAt, &AnalysisError{AgentKey: assessment.AgentKey, Err: ErrUnknownAgent})
	}

	report, cached, err := s.analyze(ctx, agent, assessment.Input)
	if err != nil {
		return s.fail(ctx, assessment, startedAt, &AnalysisError{AgentKey: assessment.AgentKey, Err: err})
	}

	completedAt := s.now().UTC()
	if err := s.Repo.UpdateStatus(ctx, assessment.ID, StatusCompleted, &report, nil, nil, &completedAt); err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	metrics.IncAssessmentCompleted(assessment.AgentKey)
	metrics.ObserveAssessmentDuration(assessment.AgentKey, completedAt.Sub(startedAt).Seconds())
	telemetry.Info("assessment.status", map[string]any{
		"request_id":    requestIDFromContext(ctx),
		"assessment_id": assessment.ID,
		"agent":         assessment.AgentKey,
		"status":        StatusCompleted,
		"cached":        cached,
		"duration_ms":   completedAt.Sub(startedAt).Milliseconds(),
	})
	return nil
}

// analyze runs the agent, serving deterministic repeats from the report
// cache. Cache trouble is logged and treated as a miss.
func (s *Service) analyze(ctx context.Context, agent agents.Agent, input engine.Input) (engine.Report, bool, error) {
	key, keyErr := reportCacheKey(agent.Meta().Key, input)
	if keyErr == nil && s.Cache != nil {
		var cachedReport engine.Report
		hit, err := s.Cache.Get(ctx, key, &cachedReport)
		if err != nil {
			telemetry.Error("assessment.cache_get_failed", map[string]any{"key": key})
		} else if hit {
			metrics.IncCacheHit()
			return cachedReport, true, nil
		}
	}

	report, err := agent.Analyze(ctx, input)
	if err != nil {
		return engine.Report{}, false, err
	}

	if keyErr == nil && s.Cache != nil {
		if err := s.Cache.Set(ctx, key, report); err != nil {
			telemetry.Error("assessment.cache_set_failed", map[string]any{"key": key})
		}
	}
	return report, false, nil
}

func (s *Service) fail(ctx context.Context, assessment Assessment, startedAt time.Time, analysisErr *AnalysisError) error {
	msg := analysisErr.Error()
	completedAt := s.now().UTC()
	if err := s.Repo.UpdateStatus(ctx, assessment.ID, StatusFailed, nil, &msg, nil, &completedAt); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	metrics.IncAssessmentFailed(assessment.AgentKey)
	telemetry.Error("assessment.failed", map[string]any{
		"request_id":    requestIDFromContext(ctx),
		"assessment_id": assessment.ID,
		"agent":         assessment.AgentKey,
		"error":         msg,
		"duration_ms":   completedAt.Sub(startedAt).Milliseconds(),
	})
	return nil
}

// Get returns an assessment by ID.
func (s *Service) Get(ctx context.Context, assessmentID string) (Assessment, error) {
	if assessmentID == "" {
		return Assessment{}, errors.New("assessmentID is required")
	}
	return s.Repo.GetByID(ctx, assessmentID)
}

// List returns assessments for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// RunPipeline executes the named agents synchronously over one input.
// One usage unit is consumed per requested agent.
func (s *Service) RunPipeline(ctx context.Context, userID string, keys []string, input engine.Input) (pipeline.Result, error) {
	if len(keys) == 0 {
		return pipeline.Result{}, errors.New("at least one agent is required")
	}
	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, len(keys))
		if err != nil {
			return pipeline.Result{}, err
		}
		if !ok {
			return pipeline.Result{}, usage.ErrLimitReached
		}
		if _, err := s.Usage.Consume(ctx, userID, len(keys)); err != nil {
			return pipeline.Result{}, err
		}
	}
	metrics.IncPipelineRun()
	result := s.Pipeline.Run(ctx, keys, input)
	telemetry.Info("pipeline.completed", map[string]any{
		"request_id":   requestIDFromContext(ctx),
		"user_id":      userID,
		"agents":       keys,
		"success_rate": result.Summary.SuccessRate,
		"quality":      result.Summary.CoordinationQuality,
	})
	return result, nil
}

func reportCacheKey(agentKey string, input engine.Input) (string, error) {
	hash, err := util.HashJSON(map[string]any(input))
	if err != nil {
		return "", err
	}
	return "report:" + agentKey + ":" + hash, nil
}
