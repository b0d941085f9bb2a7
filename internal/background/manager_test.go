package background

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest"
	"jobboard-api/pkg/models"
)

type fakeRunStore struct {
	mu        sync.Mutex
	runs      map[string]*models.ScrapeRun
	completed chan string
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{
		runs:      make(map[string]*models.ScrapeRun),
		completed: make(chan string, 16),
	}
}

func (s *fakeRunStore) CreateRun(_ context.Context, run *models.ScrapeRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.CreatedAt = time.Now()
	clone := *run
	s.runs[run.ID] = &clone
	return nil
}

func (s *fakeRunStore) MarkRunProcessing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = models.RunStatusProcessing
	}
	return nil
}

func (s *fakeRunStore) CompleteRun(_ context.Context, run *models.ScrapeRun) error {
	s.mu.Lock()
	clone := *run
	s.runs[run.ID] = &clone
	s.mu.Unlock()
	s.completed <- run.ID
	return nil
}

func (s *fakeRunStore) GetRun(_ context.Context, id string) (*models.ScrapeRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *run
	return &clone, nil
}

func (s *fakeRunStore) DeleteRunsOlderThan(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

type fakeRunner struct {
	summary *ingest.IngestSummary
	err     error
	gate    chan struct{}
}

func (r *fakeRunner) Ingest(ctx context.Context, _, _, _ string, _ int, _ *int64) (*ingest.IngestSummary, error) {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.summary, r.err
}

func managerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BackgroundTasks.PoolSize = 2
	cfg.BackgroundTasks.QueueSize = 8
	cfg.BackgroundTasks.CleanupInterval = time.Hour
	cfg.BackgroundTasks.MaxRunAge = 24 * time.Hour
	return cfg
}

func startManager(t *testing.T, runs RunStore, runner IngestRunner) *TaskManager {
	t.Helper()
	tm := NewTaskManager(managerConfig(), runs, runner, NewMemoryLocker(time.Minute))
	if err := tm.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tm.Stop(ctx)
	})
	return tm
}

func waitForCompletion(t *testing.T, runs *fakeRunStore, id string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case done := <-runs.completed:
			if done == id {
				return
			}
		case <-deadline:
			t.Fatalf("run %s did not complete in time", id)
		}
	}
}

func TestSubmitIngestRunLifecycle(t *testing.T) {
	runs := newFakeRunStore()
	runner := &fakeRunner{summary: &ingest.IngestSummary{
		Source:       "indeed",
		TotalFetched: 5,
		Saved:        3,
		Duplicate:    2,
	}}
	tm := startManager(t, runs, runner)

	req := models.TriggerScrapeRequest{Source: "indeed", Query: "go", Limit: 10}
	accepted, err := tm.SubmitIngestRun(context.Background(), req)
	if err != nil {
		t.Fatalf("SubmitIngestRun: %v", err)
	}
	if accepted.Status != models.RunStatusAccepted {
		t.Errorf("ack status = %q, want ACCEPTED", accepted.Status)
	}
	if accepted.ID == "" {
		t.Fatal("run id must be set on the acknowledgment")
	}

	waitForCompletion(t, runs, accepted.ID)

	run, err := tm.GetRun(context.Background(), accepted.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != models.RunStatusSuccess {
		t.Errorf("status = %q, want SUCCESS", run.Status)
	}
	if run.Saved != 3 || run.Duplicate != 2 || run.TotalFetched != 5 {
		t.Errorf("counters = %+v", run)
	}
}

func TestSubmitIngestRunRecordsFailure(t *testing.T) {
	runs := newFakeRunStore()
	runner := &fakeRunner{err: errors.New("board unreachable")}
	tm := startManager(t, runs, runner)

	accepted, err := tm.SubmitIngestRun(context.Background(), models.TriggerScrapeRequest{
		Source: "indeed", Query: "go", Limit: 10,
	})
	if err != nil {
		t.Fatalf("SubmitIngestRun: %v", err)
	}

	waitForCompletion(t, runs, accepted.ID)

	run, err := tm.GetRun(context.Background(), accepted.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != models.RunStatusFailure {
		t.Errorf("status = %q, want FAILURE", run.Status)
	}
	if run.Error == nil || *run.Error == "" {
		t.Error("failed run should carry the error message")
	}
}

func TestSubmitIngestRunRejectsConcurrentSameSource(t *testing.T) {
	runs := newFakeRunStore()
	gate := make(chan struct{})
	runner := &fakeRunner{summary: &ingest.IngestSummary{}, gate: gate}
	tm := startManager(t, runs, runner)

	first, err := tm.SubmitIngestRun(context.Background(), models.TriggerScrapeRequest{
		Source: "indeed", Query: "go", Limit: 10,
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Same source while the first run is in flight
	_, err = tm.SubmitIngestRun(context.Background(), models.TriggerScrapeRequest{
		Source: "indeed", Query: "rust", Limit: 10,
	})
	if !errors.Is(err, ErrSourceBusy) {
		t.Errorf("second submit = %v, want ErrSourceBusy", err)
	}

	// A different source is unaffected
	if _, err := tm.SubmitIngestRun(context.Background(), models.TriggerScrapeRequest{
		Source: "remoteok", Query: "go", Limit: 10,
	}); err != nil {
		t.Errorf("other source submit: %v", err)
	}

	close(gate)
	waitForCompletion(t, runs, first.ID)

	// The lock frees shortly after the run finishes (release happens
	// just after the completion record lands)
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := tm.SubmitIngestRun(context.Background(), models.TriggerScrapeRequest{
			Source: "indeed", Query: "go", Limit: 10,
		})
		if err == nil {
			return
		}
		if !errors.Is(err, ErrSourceBusy) {
			t.Fatalf("submit after completion: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("source lock was never released")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
