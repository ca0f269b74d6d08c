package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/qprep/qprep/internal/app/system/normalize"
	"github.com/qprep/qprep/internal/domain/models"
)

// ErrNotFound is returned when no catalog record matches a resolve
// request.
var ErrNotFound = errors.New("paper not found in catalog")

// Lister supplies the flat record set for a rebuild, payloads omitted.
type Lister interface {
	ListPapers(ctx context.Context) ([]models.Paper, error)
}

// PayloadFetcher loads one paper's payload by record ID.
type PayloadFetcher interface {
	FetchPayload(ctx context.Context, id string) (Payload, error)
}

// Scope is the browsing scope of the requesting actor, used for direct
// lookups before falling back to a whole-catalog scan. Values arrive
// raw and are normalized here.
type Scope struct {
	Department string
	Level      string
}

// Resolved is a fully loaded paper: catalog record plus payload.
type Resolved struct {
	ID           string           `json:"id"`
	Department   string           `json:"department"`
	Level        string           `json:"level"`
	CourseCode   string           `json:"courseCode"`
	CourseTitle  string           `json:"title"`
	AcademicYear string           `json:"year"`
	Semester     string           `json:"semester"`
	ContentKind  string           `json:"type"`
	Instructions string           `json:"instructions,omitempty"`
	TimeAllowed  string           `json:"time,omitempty"`
	FileData     string           `json:"fileData,omitempty"`
	Sections     []models.Section `json:"sections,omitempty"`
}

// Store owns the current catalog build. Reads take the current snapshot
// pointer; a rebuild constructs a whole new Catalog and swaps it in
// under the lock, bumping the generation counter. Payloads fetched
// against a superseded generation are returned to the caller but never
// cached, so a stale fetch can't resurrect deleted content.
type Store struct {
	mu  sync.RWMutex
	cat *Catalog
	gen uint64

	lister  Lister
	fetcher PayloadFetcher
	cache   *lru.Cache[string, Payload]
	log     *zap.Logger
}

// NewStore creates a Store with an empty catalog. cacheSize bounds the
// payload LRU; the catalog stays empty until the first Reload.
func NewStore(lister Lister, fetcher PayloadFetcher, cacheSize int, logger *zap.Logger) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, Payload](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("payload cache: %w", err)
	}
	return &Store{
		cat:     Build(nil),
		lister:  lister,
		fetcher: fetcher,
		cache:   cache,
		log:     logger,
	}, nil
}

// Reload fetches all records and rebuilds the catalog. On failure the
// previous build stays in place and the error is returned; on success
// the new build is swapped in, the generation advances, and the payload
// cache is purged.
func (s *Store) Reload(ctx context.Context) error {
	papers, err := s.lister.ListPapers(ctx)
	if err != nil {
		rebuildFailuresTotal.Inc()
		return fmt.Errorf("list papers: %w", err)
	}
	cat := Build(papers)

	s.mu.Lock()
	s.cat = cat
	s.gen++
	gen := s.gen
	s.cache.Purge()
	s.mu.Unlock()

	rebuildsTotal.Inc()
	recordsIndexed.Set(float64(cat.Len()))
	s.log.Info("catalog rebuilt",
		zap.Int("records", cat.Len()),
		zap.Uint64("generation", gen))
	return nil
}

// Snapshot returns the current catalog build.
func (s *Store) Snapshot() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Generation returns the current build generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Courses lists the courses visible in the given scope and semester.
func (s *Store) Courses(scope Scope, semester string) []CourseSummary {
	return s.Snapshot().Courses(
		normalize.Department(scope.Department),
		normalize.Level(scope.Level),
		normalize.Semester(semester),
	)
}

// Years lists the academic years a course has offerings for in the
// given semester, scope first, whole catalog as fallback.
func (s *Store) Years(scope Scope, code, semester string) []string {
	return s.Snapshot().Years(
		normalize.Department(scope.Department),
		normalize.Level(scope.Level),
		normalize.CourseCode(code),
		normalize.Semester(semester),
	)
}

// Resolve locates the paper for (code, semester, year) and returns it
// with its payload. The actor's scope is tried first; if the course
// isn't there, the whole catalog is scanned by normalized code. The
// payload comes from the record itself, then the LRU cache, then a
// fetch against the paper store. A fetch error reaches the caller
// unchanged in effect: nothing is cached, and the next open retries.
func (s *Store) Resolve(ctx context.Context, scope Scope, code, semester, year string) (*Resolved, error) {
	s.mu.RLock()
	cat := s.cat
	gen := s.gen
	s.mu.RUnlock()

	sem := normalize.Semester(semester)
	yr := normalize.Year(year)
	if sem == "" || yr == "" || strings.TrimSpace(code) == "" {
		return nil, ErrNotFound
	}
	key := normalize.CourseCode(code)

	rec, ok := cat.Lookup(normalize.Department(scope.Department), normalize.Level(scope.Level), key, yr, sem)
	if !ok {
		rec, ok = cat.LookupAnywhere(key, yr, sem)
	}
	if !ok {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	cached := rec.payload
	s.mu.RUnlock()
	if cached != nil {
		payloadCacheHitsTotal.Inc()
		return resolved(rec, *cached), nil
	}

	if p, hit := s.cache.Get(rec.ID); hit {
		payloadCacheHitsTotal.Inc()
		s.attach(rec, p, gen)
		return resolved(rec, p), nil
	}

	payloadFetchesTotal.Inc()
	p, err := s.fetcher.FetchPayload(ctx, rec.ID)
	if err != nil {
		payloadFetchFailuresTotal.Inc()
		return nil, fmt.Errorf("fetch payload for %s: %w", rec.ID, err)
	}
	s.attach(rec, p, gen)
	return resolved(rec, p), nil
}

// attach caches a payload onto the record and the LRU, but only if the
// catalog generation the request started against is still current.
func (s *Store) attach(rec *Record, p Payload, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		payloadStaleDropsTotal.Inc()
		return
	}
	rec.payload = &p
	s.cache.Add(rec.ID, p)
}

func resolved(rec *Record, p Payload) *Resolved {
	return &Resolved{
		ID:           rec.ID,
		Department:   rec.Department,
		Level:        rec.Level,
		CourseCode:   rec.CourseCode,
		CourseTitle:  rec.CourseTitle,
		AcademicYear: rec.AcademicYear,
		Semester:     rec.Semester,
		ContentKind:  rec.ContentKind,
		Instructions: rec.Instructions,
		TimeAllowed:  rec.TimeAllowed,
		FileData:     p.FileData,
		Sections:     p.Sections,
	}
}
