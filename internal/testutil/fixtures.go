package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/qprep/qprep/internal/app/system/normalize"
	"github.com/qprep/qprep/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreatePaper inserts a PDF paper for the given offering and returns it.
func (f *Fixtures) CreatePaper(ctx context.Context, dept, level, code, title, year, semester string) models.Paper {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Paper{
		ID:            primitive.NewObjectID(),
		Department:    normalize.Department(dept),
		Level:         normalize.Level(level),
		CourseCode:    code,
		CourseCodeCI:  normalize.CourseCode(code),
		CourseTitle:   title,
		CourseTitleCI: text.Fold(title),
		AcademicYear:  normalize.Year(year),
		Semester:      normalize.Semester(semester),
		ContentKind:   models.KindPDF,
		FileData:      "data:application/pdf;base64,dGVzdA==",
		CreatedAt:     now,
		UpdatedAt:     &now,
	}

	if _, err := f.db.Collection("papers").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test paper: %v", err)
	}
	return p
}

// CreateTypedPaper inserts a typed paper with one section of questions.
func (f *Fixtures) CreateTypedPaper(ctx context.Context, dept, level, code, title, year, semester string) models.Paper {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Paper{
		ID:            primitive.NewObjectID(),
		Department:    normalize.Department(dept),
		Level:         normalize.Level(level),
		CourseCode:    code,
		CourseCodeCI:  normalize.CourseCode(code),
		CourseTitle:   title,
		CourseTitleCI: text.Fold(title),
		AcademicYear:  normalize.Year(year),
		Semester:      normalize.Semester(semester),
		ContentKind:   models.KindTyped,
		Instructions:  "Answer all questions",
		TimeAllowed:   "2 hours",
		Sections: []models.Section{{
			Title: "Section A",
			Marks: "40 Marks",
			Questions: []models.Question{{
				Text: "Define an operating system.",
				Options: []models.Option{
					{Text: "System software that manages hardware", Correct: true},
					{Text: "A word processor"},
				},
			}},
		}},
		CreatedAt: now,
		UpdatedAt: &now,
	}

	if _, err := f.db.Collection("papers").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test typed paper: %v", err)
	}
	return p
}

// CreateUser inserts a user with the given role and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, username, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Username:   username,
		UsernameCI: text.Fold(username),
		Role:       normalize.Role(role),
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateStudent inserts a student scoped to the given department and level.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, username, dept, level string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, username, "student")
	u.Department = normalize.Department(dept)
	u.Level = normalize.Level(level)

	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"department": u.Department,
		"level":      u.Level,
	}})
	if err != nil {
		f.t.Fatalf("failed to scope test student: %v", err)
	}
	return u
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, username, "admin")
}

// CreateSuperAdmin creates a test super admin user.
func (f *Fixtures) CreateSuperAdmin(ctx context.Context, fullName, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, username, "super_admin")
}

// CreateModerator inserts a moderator locked to the given department and level.
func (f *Fixtures) CreateModerator(ctx context.Context, fullName, username, dept, level string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, username, "moderator")
	u.Department = normalize.Department(dept)
	u.Level = normalize.Level(level)

	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"department": u.Department,
		"level":      u.Level,
	}})
	if err != nil {
		f.t.Fatalf("failed to scope test moderator: %v", err)
	}
	return u
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, username string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, username, "student")
	u.Status = "disabled"

	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"status": "disabled"}})
	if err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}
	return u
}
