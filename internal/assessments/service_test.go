package assessments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/engine"
	"agents-backend/internal/pipeline"
	"agents-backend/internal/usage"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeAgent struct {
	key  string
	fail bool
}

func (f fakeAgent) Meta() agents.Metadata {
	return agents.Metadata{Key: f.key, Name: f.key, ReviewCycle: time.Hour}
}

func (f fakeAgent) Analyze(_ context.Context, in engine.Input) (engine.Report, error) {
	if f.fail {
		return engine.Report{}, errors.New("bad input")
	}
	report := engine.NewReport(f.key, in.String("company_name", ""), fixedNow, time.Hour)
	report.AddSection("echo", in.String("marker", ""))
	return report, nil
}

type capturingPublisher struct {
	jobs []any
	fail bool
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, body any) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func newTestService(t *testing.T, fakes ...fakeAgent) *Service {
	t.Helper()
	registry := agents.NewRegistry()
	for _, f := range fakes {
		if err := registry.Register(f); err != nil {
			t.Fatalf("Register %s: %v", f.key, err)
		}
	}
	return &Service{
		Repo:     NewMemoryRepo(),
		Registry: registry,
		Pipeline: pipeline.NewRunner(registry, nil, fixedClock),
		Clock:    fixedClock,
	}
}

func TestCreateQueuesAssessment(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg"})
	pub := &capturingPublisher{}
	svc.Jobs = pub

	a, err := svc.Create(context.Background(), "esg", "user-1", engine.Input{"company_name": "GreenTech"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusQueued || a.Company != "GreenTech" {
		t.Fatalf("unexpected assessment %+v", a)
	}
	if len(pub.jobs) != 1 {
		t.Fatalf("expected one published job, got %d", len(pub.jobs))
	}

	stored, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusQueued {
		t.Fatalf("expected queued (worker picks it up), got %q", stored.Status)
	}
}

func TestCreateUnknownAgent(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg"})
	if _, err := svc.Create(context.Background(), "ghost", "user-1", engine.Input{}); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestProcessCompletesAssessment(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg"})
	a := Assessment{
		ID:        "assessment-1",
		AgentKey:  "esg",
		UserID:    "user-1",
		Status:    StatusQueued,
		Input:     engine.Input{"company_name": "GreenTech", "marker": "hello"},
		CreatedAt: fixedNow,
	}
	if err := svc.Repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Process(context.Background(), a.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if done.Status != StatusCompleted || done.Report == nil {
		t.Fatalf("unexpected assessment %+v", done)
	}
	if done.Report.Sections["echo"] != "hello" {
		t.Fatalf("unexpected report %+v", done.Report)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Fatal("expected timestamps set")
	}
}

func TestProcessRecordsAgentFailure(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg", fail: true})
	a := Assessment{ID: "assessment-2", AgentKey: "esg", UserID: "user-1", Status: StatusQueued, CreatedAt: fixedNow}
	if err := svc.Repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// An agent failure lands on the record, not in the returned error.
	if err := svc.Process(context.Background(), a.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	failed, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if failed.Status != StatusFailed || failed.ErrorMessage == nil {
		t.Fatalf("unexpected assessment %+v", failed)
	}
	if !strings.Contains(*failed.ErrorMessage, "agent esg") {
		t.Fatalf("unexpected error message %q", *failed.ErrorMessage)
	}
}

func TestCreateEnforcesQuota(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg"})
	svc.Jobs = &capturingPublisher{}
	svc.Usage = usage.NewService()

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(context.Background(), "esg", "user-1", engine.Input{}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if _, err := svc.Create(context.Background(), "esg", "user-1", engine.Input{}); !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestRunPipeline(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg"}, fakeAgent{key: "pricing"})
	result, err := svc.RunPipeline(context.Background(), "user-1", []string{"esg", "pricing"}, engine.Input{
		"company_name": "GreenTech",
	})
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	if result.Summary.Successful != 2 || result.Summary.CoordinationQuality != "excellent" {
		t.Fatalf("unexpected summary %+v", result.Summary)
	}
}

func TestRunPipelineConsumesOneUnitPerAgent(t *testing.T) {
	svc := newTestService(t, fakeAgent{key: "esg"}, fakeAgent{key: "pricing"})
	svc.Usage = usage.NewService()

	if _, err := svc.RunPipeline(context.Background(), "user-1", []string{"esg", "pricing"}, engine.Input{}); err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	u, err := svc.Usage.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage Get: %v", err)
	}
	if u.Used != 2 {
		t.Fatalf("expected 2 units consumed, got %d", u.Used)
	}
}
