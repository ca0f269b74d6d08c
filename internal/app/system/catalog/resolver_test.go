package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/qprep/qprep/internal/domain/models"
)

type fakeLister struct {
	papers []models.Paper
	err    error
}

func (f *fakeLister) ListPapers(context.Context) ([]models.Paper, error) {
	return f.papers, f.err
}

type fakeFetcher struct {
	payloads map[string]Payload
	err      error
	calls    int
	onFetch  func()
}

func (f *fakeFetcher) FetchPayload(_ context.Context, id string) (Payload, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return Payload{}, f.err
	}
	p, ok := f.payloads[id]
	if !ok {
		return Payload{}, errors.New("no such payload")
	}
	return p, nil
}

func newTestStore(t *testing.T, papers []models.Paper) (*Store, *fakeLister, *fakeFetcher) {
	t.Helper()

	payloads := make(map[string]Payload, len(papers))
	for _, p := range papers {
		payloads[p.ID.Hex()] = Payload{FileData: "data:application/pdf;base64," + p.ID.Hex()}
	}
	lister := &fakeLister{papers: papers}
	fetcher := &fakeFetcher{payloads: payloads}

	s, err := NewStore(lister, fetcher, 16, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	return s, lister, fetcher
}

func TestResolve_DirectScopeLookup(t *testing.T) {
	p := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	s, _, fetcher := newTestStore(t, []models.Paper{p})

	got, err := s.Resolve(context.Background(), Scope{Department: "computer science", Level: "300lvl"}, "csc 301", "first", "2023")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != p.ID.Hex() {
		t.Errorf("resolved wrong record: %s", got.ID)
	}
	if got.FileData == "" {
		t.Error("payload missing from resolved paper")
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", fetcher.calls)
	}
}

func TestResolve_CrossDepartmentFallback(t *testing.T) {
	p := paper("Industrial Technology Education", "300", "ITH 303", "Workshop Practice", "2023", "First")
	s, _, _ := newTestStore(t, []models.Paper{p})

	// Student browses from a different department and level; the course
	// only exists elsewhere, so the full-catalog scan must find it.
	got, err := s.Resolve(context.Background(), Scope{Department: "Computer Science", Level: "100"}, "ITH303", "First", "2023")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Department != "INDUSTRIAL TECHNOLOGY EDUCATION" {
		t.Errorf("resolved from wrong department: %s", got.Department)
	}
}

func TestResolve_LazyFetchHappensOnce(t *testing.T) {
	p := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	s, _, fetcher := newTestStore(t, []models.Paper{p})

	scope := Scope{Department: "Computer Science", Level: "300"}
	for i := 0; i < 3; i++ {
		if _, err := s.Resolve(context.Background(), scope, "CSC 301", "First", "2023"); err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("payload must be fetched exactly once, got %d fetches", fetcher.calls)
	}
}

func TestResolve_FetchFailureLeavesRecordRetryable(t *testing.T) {
	p := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	s, _, fetcher := newTestStore(t, []models.Paper{p})
	scope := Scope{Department: "Computer Science", Level: "300"}

	fetcher.err = errors.New("backend down")
	if _, err := s.Resolve(context.Background(), scope, "CSC 301", "First", "2023"); err == nil {
		t.Fatal("expected error when payload fetch fails")
	}

	fetcher.err = nil
	got, err := s.Resolve(context.Background(), scope, "CSC 301", "First", "2023")
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if got.FileData == "" {
		t.Error("retry must deliver the payload")
	}
	if fetcher.calls != 2 {
		t.Errorf("expected 2 fetches (failure then retry), got %d", fetcher.calls)
	}
}

func TestResolve_StalePayloadNotCachedAcrossRebuild(t *testing.T) {
	p := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	s, _, fetcher := newTestStore(t, []models.Paper{p})
	scope := Scope{Department: "Computer Science", Level: "300"}

	// Rebuild the catalog while the fetch is in flight. The fetched
	// payload still goes back to the caller but must not be cached
	// against the superseded build.
	fetcher.onFetch = func() {
		fetcher.onFetch = nil
		if err := s.Reload(context.Background()); err != nil {
			t.Fatalf("mid-fetch reload: %v", err)
		}
	}

	got, err := s.Resolve(context.Background(), scope, "CSC 301", "First", "2023")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.FileData == "" {
		t.Error("caller must still receive the stale-generation payload")
	}

	if _, err := s.Resolve(context.Background(), scope, "CSC 301", "First", "2023"); err != nil {
		t.Fatalf("Resolve after rebuild: %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("stale payload must not satisfy the next open: got %d fetches, want 2", fetcher.calls)
	}
}

func TestResolve_NotFound(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	_, err := s.Resolve(context.Background(), Scope{}, "CSC 301", "First", "2023")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_RejectsUnrecognizedSemester(t *testing.T) {
	p := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	s, _, _ := newTestStore(t, []models.Paper{p})

	_, err := s.Resolve(context.Background(), Scope{}, "CSC 301", "1st", "2023")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-canonical semester, got %v", err)
	}
}

func TestReload_FailureKeepsPreviousBuild(t *testing.T) {
	p := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	s, lister, _ := newTestStore(t, []models.Paper{p})
	gen := s.Generation()

	lister.err = errors.New("db unavailable")
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}

	if s.Generation() != gen {
		t.Error("failed reload must not advance the generation")
	}
	if courses := s.Courses(Scope{Department: "Computer Science", Level: "300"}, "First"); len(courses) != 1 {
		t.Errorf("previous build must stay in place, got %v", courses)
	}
}
