package catalog

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/qprep/qprep/internal/domain/models"
)

func paper(dept, level, code, title, year, sem string) models.Paper {
	return models.Paper{
		ID:           primitive.NewObjectID(),
		Department:   dept,
		Level:        level,
		CourseCode:   code,
		CourseTitle:  title,
		AcademicYear: year,
		Semester:     sem,
		ContentKind:  models.KindPDF,
	}
}

func TestBuild_Idempotent(t *testing.T) {
	papers := []models.Paper{
		paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First"),
		paper("Computer Science", "300", "CSC 305", "Compilers", "2023", "Second"),
		paper("Physics", "100", "PHY 101", "Mechanics", "2022", "First"),
	}

	a := Build(papers)
	b := Build(papers)

	if a.Len() != b.Len() {
		t.Fatalf("record counts differ: %d vs %d", a.Len(), b.Len())
	}
	if !reflect.DeepEqual(a.Departments(), b.Departments()) {
		t.Errorf("department order differs: %v vs %v", a.Departments(), b.Departments())
	}
	for _, dept := range a.Departments() {
		for _, level := range a.Levels(dept) {
			for _, sem := range []string{"First", "Second"} {
				if !reflect.DeepEqual(a.Courses(dept, level, sem), b.Courses(dept, level, sem)) {
					t.Errorf("course listing differs for %s/%s/%s", dept, level, sem)
				}
			}
		}
	}
}

func TestBuild_OverwriteOnCollision(t *testing.T) {
	first := paper("Computer Science", "300", "CSC 301", "Operating Systems", "2023", "First")
	second := paper("computer science", "300lvl", "csc301", "Operating Systems II", "2023", "first")

	cat := Build([]models.Paper{first, second})

	if cat.Len() != 1 {
		t.Fatalf("expected 1 record after collision, got %d", cat.Len())
	}
	rec, ok := cat.Lookup("COMPUTER SCIENCE", "300", "csc301", "2023", "First")
	if !ok {
		t.Fatal("expected record for collided tuple")
	}
	if rec.ID != second.ID.Hex() {
		t.Errorf("expected last write to win: got %s, want %s", rec.ID, second.ID.Hex())
	}
	if rec.CourseTitle != "Operating Systems II" {
		t.Errorf("expected overwritten title, got %q", rec.CourseTitle)
	}
}

func TestBuild_NormalizesKeys(t *testing.T) {
	cat := Build([]models.Paper{
		paper("  industrial technology education ", "300 Level", "ITH 303", "Workshop Practice", "2023", "FIRST"),
	})

	rec, ok := cat.Lookup("INDUSTRIAL TECHNOLOGY EDUCATION", "300", "ith303", "2023", "First")
	if !ok {
		t.Fatal("messy upload did not land under normalized keys")
	}
	if rec.CourseCode != "ITH 303" {
		t.Errorf("display code should keep original form, got %q", rec.CourseCode)
	}
}

func TestBuild_FallbackKeys(t *testing.T) {
	cat := Build([]models.Paper{
		paper("", "", "", "Untitled", "2023", "First"),
	})

	if _, ok := cat.Lookup("GENERAL", "100", "unknown", "2023", "First"); !ok {
		t.Error("record with missing fields should index under fallback keys")
	}
}

func TestBuild_InsertionOrderPreserved(t *testing.T) {
	cat := Build([]models.Paper{
		paper("Physics", "100", "PHY 101", "Mechanics", "2022", "First"),
		paper("Chemistry", "100", "CHM 101", "General Chemistry", "2022", "First"),
		paper("Physics", "100", "PHY 103", "Waves", "2022", "First"),
	})

	wantDepts := []string{"PHYSICS", "CHEMISTRY"}
	if got := cat.Departments(); !reflect.DeepEqual(got, wantDepts) {
		t.Errorf("department order = %v, want %v", got, wantDepts)
	}

	courses := cat.Courses("PHYSICS", "100", "First")
	if len(courses) != 2 || courses[0].Code != "PHY 101" || courses[1].Code != "PHY 103" {
		t.Errorf("course order not preserved: %v", courses)
	}
}
