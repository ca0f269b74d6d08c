// internal/app/store/papers/paperstore.go
package paperstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qprep/qprep/internal/app/system/catalog"
	"github.com/qprep/qprep/internal/app/system/normalize"
	"github.com/qprep/qprep/internal/domain/models"
)

var (
	// ErrInvalid wraps validation failures so handlers can map them to 400.
	ErrInvalid = errors.New("invalid paper")
	// ErrNotFound is returned when no paper matches the given ID.
	ErrNotFound = errors.New("paper not found")
)

// listProjection omits the heavy payload fields from listing queries.
// The catalog only needs the identity tuple and display metadata; the
// payload is fetched by ID when a student opens the paper.
var listProjection = bson.M{
	"file_data": 0,
	"sections":  0,
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("papers")}
}

// Create inserts a new Paper, normalizing the identity tuple, setting CI
// fields, and stamping timestamps. Validation failures return ErrInvalid.
func (s *Store) Create(ctx context.Context, p models.Paper) (models.Paper, error) {
	now := time.Now().UTC()

	p.ID = primitive.NewObjectID()
	p = withDerivedFields(p)
	p.CreatedAt = now
	p.UpdatedAt = &now

	if err := validate(p); err != nil {
		return models.Paper{}, err
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Paper{}, fmt.Errorf("%w: duplicate paper", ErrInvalid)
		}
		return models.Paper{}, err
	}
	return p, nil
}

// Replace swaps the stored document for id with p, keeping the original
// ID and CreatedAt. The whole document is replaced so an upload that
// changes kind (say pdf to typed) leaves no stale payload behind.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, p models.Paper) (models.Paper, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Paper{}, err
	}

	now := time.Now().UTC()
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = &now
	p = withDerivedFields(p)

	if err := validate(p); err != nil {
		return models.Paper{}, err
	}

	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, p); err != nil {
		return models.Paper{}, err
	}
	return p, nil
}

// GetByID returns a paper by its ID, payload included.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Paper, error) {
	var p models.Paper
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Paper{}, ErrNotFound
	}
	if err != nil {
		return models.Paper{}, err
	}
	return p, nil
}

// Delete removes a paper by ID. Returns ErrNotFound when nothing matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes all papers whose IDs are in ids and returns the
// number deleted. IDs that match nothing are skipped, not errors.
func (s *Store) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListAll returns every paper without payloads, oldest first. Upload
// order drives the catalog's department and course ordering.
func (s *Store) ListAll(ctx context.Context) ([]models.Paper, error) {
	opts := options.Find().
		SetProjection(listProjection).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var papers []models.Paper
	if err := cur.All(ctx, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// ListPapers implements catalog.Lister.
func (s *Store) ListPapers(ctx context.Context) ([]models.Paper, error) {
	return s.ListAll(ctx)
}

// FetchPayload implements catalog.PayloadFetcher: it loads only the
// payload fields for one paper by hex ID.
func (s *Store) FetchPayload(ctx context.Context, idHex string) (catalog.Payload, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return catalog.Payload{}, ErrNotFound
	}

	var p models.Paper
	opts := options.FindOne().SetProjection(bson.M{"file_data": 1, "sections": 1})
	err = s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Payload{}, ErrNotFound
	}
	if err != nil {
		return catalog.Payload{}, err
	}
	return catalog.Payload{FileData: p.FileData, Sections: p.Sections}, nil
}

// Count returns the total number of papers.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// withDerivedFields normalizes the identity tuple and recomputes the CI
// lookup fields from the display values.
func withDerivedFields(p models.Paper) models.Paper {
	p.Department = normalize.Department(p.Department)
	p.Level = normalize.Level(p.Level)
	p.Semester = normalize.Semester(p.Semester)
	p.AcademicYear = normalize.Year(p.AcademicYear)
	p.CourseCode = strings.TrimSpace(p.CourseCode)
	p.CourseCodeCI = normalize.CourseCode(p.CourseCode)
	p.CourseTitle = strings.TrimSpace(p.CourseTitle)
	p.CourseTitleCI = text.Fold(p.CourseTitle)
	return p
}

func validate(p models.Paper) error {
	if strings.TrimSpace(p.CourseCode) == "" {
		return fmt.Errorf("%w: course code is required", ErrInvalid)
	}
	if strings.TrimSpace(p.CourseTitle) == "" {
		return fmt.Errorf("%w: course title is required", ErrInvalid)
	}
	if strings.TrimSpace(p.AcademicYear) == "" {
		return fmt.Errorf("%w: academic year is required", ErrInvalid)
	}
	// Semester was normalized by withDerivedFields; empty means the
	// upload sent something other than First/Second, and a record with
	// an unrecognized semester can never be browsed to.
	if p.Semester == "" {
		return fmt.Errorf("%w: semester must be %q or %q", ErrInvalid, normalize.SemesterFirst, normalize.SemesterSecond)
	}

	switch p.ContentKind {
	case models.KindPDF, models.KindImage:
		if strings.TrimSpace(p.FileData) == "" {
			return fmt.Errorf("%w: %s paper needs file data", ErrInvalid, p.ContentKind)
		}
		if len(p.Sections) > 0 {
			return fmt.Errorf("%w: %s paper cannot carry sections", ErrInvalid, p.ContentKind)
		}
	case models.KindTyped:
		if len(p.Sections) == 0 {
			return fmt.Errorf("%w: typed paper needs at least one section", ErrInvalid)
		}
		if strings.TrimSpace(p.FileData) != "" {
			return fmt.Errorf("%w: typed paper cannot carry file data", ErrInvalid)
		}
		for i, sec := range p.Sections {
			if len(sec.Questions) == 0 {
				return fmt.Errorf("%w: section %d has no questions", ErrInvalid, i+1)
			}
		}
	default:
		return fmt.Errorf("%w: type must be pdf, image, or typed", ErrInvalid)
	}
	return nil
}
