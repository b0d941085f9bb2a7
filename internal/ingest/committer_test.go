package ingest

import (
	"context"
	"errors"
	"testing"

	"jobboard-api/internal/logging"
	"jobboard-api/pkg/models"
)

func testLogger() logging.Logger {
	return logging.NewMultiLogger()
}

// fakeJobStore mimics the transactional job store: a failed batch leaves
// the stored jobs untouched
type fakeJobStore struct {
	jobs      []models.Job
	nextID    int64
	insertErr error
	lookupErr error
}

func (s *fakeJobStore) WithTx(ctx context.Context, fn func(tx JobTx) error) error {
	snapshot := make([]models.Job, len(s.jobs))
	copy(snapshot, s.jobs)

	if err := fn(&fakeJobTx{store: s}); err != nil {
		s.jobs = snapshot
		return err
	}
	return nil
}

type fakeJobTx struct {
	store *fakeJobStore
}

func (t *fakeJobTx) FindJobByTitleCompany(_ context.Context, title, company string) (*models.Job, error) {
	if t.store.lookupErr != nil {
		return nil, t.store.lookupErr
	}
	for i := range t.store.jobs {
		if t.store.jobs[i].Title == title && t.store.jobs[i].Company == company {
			return &t.store.jobs[i], nil
		}
	}
	return nil, nil
}

func (t *fakeJobTx) InsertJob(_ context.Context, job *models.Job) (*models.Job, error) {
	if t.store.insertErr != nil {
		return nil, t.store.insertErr
	}
	t.store.nextID++
	job.ID = t.store.nextID
	t.store.jobs = append(t.store.jobs, *job)
	return job, nil
}

func candidate(title, company string) models.CandidateRecord {
	return models.CandidateRecord{
		Title:       title,
		Company:     company,
		Location:    "Remote",
		Description: "No description available",
		SourceName:  "fake",
	}
}

func TestCommitSavesNewRecords(t *testing.T) {
	store := &fakeJobStore{}
	committer := NewCommitter(store, testLogger())

	records := []models.CandidateRecord{
		candidate("Go Developer", "Acme"),
		candidate("Platform Engineer", "Globex"),
	}

	summary, err := committer.Commit(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary.Saved != 2 || summary.Duplicate != 0 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 2 saved", summary)
	}
	if len(store.jobs) != 2 {
		t.Fatalf("store holds %d jobs, want 2", len(store.jobs))
	}
	for _, job := range store.jobs {
		if !job.IsScraped {
			t.Errorf("job %q should be flagged scraped", job.Title)
		}
		if job.Status != models.JobStatusActive {
			t.Errorf("job %q status = %q, want active", job.Title, job.Status)
		}
	}
}

func TestCommitIsIdempotent(t *testing.T) {
	store := &fakeJobStore{}
	committer := NewCommitter(store, testLogger())

	records := []models.CandidateRecord{
		candidate("Go Developer", "Acme"),
		candidate("Platform Engineer", "Globex"),
	}

	first, err := committer.Commit(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Saved != 2 {
		t.Fatalf("first commit saved = %d, want 2", first.Saved)
	}

	second, err := committer.Commit(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if second.Saved != 0 || second.Duplicate != 2 {
		t.Errorf("second commit summary = %+v, want 2 duplicates", second)
	}
	if len(store.jobs) != 2 {
		t.Errorf("store holds %d jobs, want 2", len(store.jobs))
	}
}

func TestCommitDetectsDuplicateWithinBatch(t *testing.T) {
	store := &fakeJobStore{}
	committer := NewCommitter(store, testLogger())

	records := []models.CandidateRecord{
		candidate("Go Developer", "Acme"),
		candidate("Go Developer", "Acme"),
	}

	summary, err := committer.Commit(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary.Saved != 1 || summary.Duplicate != 1 {
		t.Errorf("summary = %+v, want 1 saved and 1 duplicate", summary)
	}
}

func TestCommitExactMatchOnly(t *testing.T) {
	store := &fakeJobStore{}
	committer := NewCommitter(store, testLogger())

	// Case and spacing differ: both insert
	records := []models.CandidateRecord{
		candidate("Go Developer", "Acme"),
		candidate("go developer", "Acme"),
	}

	summary, err := committer.Commit(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary.Saved != 2 || summary.Duplicate != 0 {
		t.Errorf("summary = %+v, want 2 saved (matching is exact)", summary)
	}
}

func TestCommitSkipsMalformedRecords(t *testing.T) {
	store := &fakeJobStore{}
	committer := NewCommitter(store, testLogger())

	records := []models.CandidateRecord{
		candidate("", "Acme"),
		candidate("Go Developer", "Globex"),
	}

	summary, err := committer.Commit(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary.Saved != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 saved and 1 failed", summary)
	}
}

func TestCommitRollsBackWholeBatchOnStoreError(t *testing.T) {
	store := &fakeJobStore{insertErr: errors.New("disk full")}
	committer := NewCommitter(store, testLogger())

	records := []models.CandidateRecord{
		candidate("Go Developer", "Acme"),
		candidate("Platform Engineer", "Globex"),
	}

	summary, err := committer.Commit(context.Background(), records, nil)
	if err == nil {
		t.Fatal("expected commit to fail")
	}
	if summary.Failed != len(records) {
		t.Errorf("failed = %d, want %d (whole batch)", summary.Failed, len(records))
	}
	if summary.Saved != 0 {
		t.Errorf("saved = %d, want 0 after rollback", summary.Saved)
	}
	if len(store.jobs) != 0 {
		t.Errorf("store holds %d jobs, want 0 after rollback", len(store.jobs))
	}
}

func TestCommitEmptyBatch(t *testing.T) {
	store := &fakeJobStore{}
	committer := NewCommitter(store, testLogger())

	summary, err := committer.Commit(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary != (CommitSummary{}) {
		t.Errorf("summary = %+v, want zero value", summary)
	}
}
