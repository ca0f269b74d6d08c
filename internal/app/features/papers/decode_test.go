package papers

import (
	"strings"
	"testing"

	"github.com/qprep/qprep/internal/domain/models"
	"github.com/qprep/qprep/internal/testutil"
)

func TestToModel_FirstCorrectOptionWins(t *testing.T) {
	p := paperPayload{
		CourseCode:  "CSC 301",
		ContentKind: "typed",
		Sections: []sectionPayload{{
			Title: "Section A",
			Questions: []questionPayload{{
				Text: "Pick one",
				Options: []optionPayload{
					{Text: "wrong"},
					{Text: "right", Correct: true},
					{Text: "also claims right", Correct: true},
				},
			}},
		}},
	}

	m := toModel(p)
	opts := m.Sections[0].Questions[0].Options
	if opts[1].Correct != true {
		t.Error("first correct option must stay correct")
	}
	if opts[2].Correct {
		t.Error("later correct claims must be cleared")
	}
}

func TestToModel_SanitizesText(t *testing.T) {
	p := paperPayload{
		CourseCode:   "CSC 301",
		CourseTitle:  "<b>Operating</b> Systems",
		Instructions: "<script>alert(1)</script>Answer all",
		ContentKind:  "typed",
		Sections: []sectionPayload{{
			Title: "<i>Section A</i>",
			Questions: []questionPayload{{
				Text:    "What is <strong>paging</strong>?<script>x()</script>",
				Options: []optionPayload{{Text: "<em>memory</em> management"}},
			}},
		}},
	}

	m := toModel(p)
	if m.CourseTitle != "Operating Systems" {
		t.Errorf("title not stripped: %q", m.CourseTitle)
	}
	if m.Instructions != "Answer all" {
		t.Errorf("instructions not stripped: %q", m.Instructions)
	}
	if m.Sections[0].Title != "Section A" {
		t.Errorf("section title not stripped: %q", m.Sections[0].Title)
	}
	q := m.Sections[0].Questions[0]
	if !strings.Contains(q.Text, "<strong>paging</strong>") {
		t.Errorf("safe formatting must survive in question text: %q", q.Text)
	}
	if strings.Contains(q.Text, "script") {
		t.Errorf("script must be stripped from question text: %q", q.Text)
	}
	if q.Options[0].Text != "memory management" {
		t.Errorf("option text not stripped: %q", q.Options[0].Text)
	}
}

func TestToModel_InfersKind(t *testing.T) {
	withSections := toModel(paperPayload{Sections: []sectionPayload{{Title: "A"}}})
	if withSections.ContentKind != models.KindTyped {
		t.Errorf("sections imply typed, got %q", withSections.ContentKind)
	}

	bare := toModel(paperPayload{FileData: "data:application/pdf;base64,eA=="})
	if bare.ContentKind != models.KindPDF {
		t.Errorf("file data implies pdf, got %q", bare.ContentKind)
	}
}

func TestDecodeJSON_SingleObject(t *testing.T) {
	req := testutil.NewJSONRequest(t, "POST", "/api/papers", map[string]any{
		"department": "Computer Science",
		"level":      "300",
		"courseCode": "CSC 301",
		"title":      "Operating Systems",
		"year":       "2023",
		"semester":   "First",
		"type":       "pdf",
		"fileData":   "data:application/pdf;base64,eA==",
	})

	papers, err := decodeCreate(req)
	if err != nil {
		t.Fatalf("decodeCreate: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}
	if papers[0].BatchID != "" {
		t.Error("single upload must not get a batch ID")
	}
	if papers[0].CourseCode != "CSC 301" || papers[0].AcademicYear != "2023" {
		t.Errorf("fields not decoded: %+v", papers[0])
	}
}

func TestDecodeJSON_ArrayGetsBatchID(t *testing.T) {
	one := map[string]any{
		"courseCode": "CSC 301", "year": "2023", "semester": "First",
		"type": "pdf", "fileData": "data:application/pdf;base64,eA==",
	}
	two := map[string]any{
		"courseCode": "CSC 301", "year": "2022", "semester": "First",
		"type": "pdf", "fileData": "data:application/pdf;base64,eQ==",
	}

	req := testutil.NewJSONRequest(t, "POST", "/api/papers", []any{one, two})
	papers, err := decodeCreate(req)
	if err != nil {
		t.Fatalf("decodeCreate: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}
	if papers[0].BatchID == "" || papers[0].BatchID != papers[1].BatchID {
		t.Errorf("batch uploads must share a batch ID: %q vs %q", papers[0].BatchID, papers[1].BatchID)
	}
}

func TestDecodeJSON_WrapperKey(t *testing.T) {
	req := testutil.NewJSONRequest(t, "POST", "/api/papers", map[string]any{
		"papers": []any{map[string]any{
			"courseCode": "CSC 301", "year": "2023", "semester": "First",
			"type": "pdf", "fileData": "data:application/pdf;base64,eA==",
		}},
	})

	papers, err := decodeCreate(req)
	if err != nil {
		t.Fatalf("decodeCreate: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}
}

func TestDecodeJSON_WeakTyping(t *testing.T) {
	// Older upload clients send year and level as numbers.
	req := testutil.NewJSONRequest(t, "POST", "/api/papers", map[string]any{
		"courseCode": "CSC 301",
		"level":      300,
		"year":       2023,
		"semester":   "First",
		"type":       "pdf",
		"fileData":   "data:application/pdf;base64,eA==",
	})

	papers, err := decodeCreate(req)
	if err != nil {
		t.Fatalf("decodeCreate: %v", err)
	}
	if papers[0].AcademicYear != "2023" || papers[0].Level != "300" {
		t.Errorf("numeric fields not coerced: %+v", papers[0])
	}
}

func TestDecodeJSON_Rejects(t *testing.T) {
	empty := testutil.NewJSONRequest(t, "POST", "/api/papers", []any{})
	if _, err := decodeCreate(empty); err == nil {
		t.Error("expected error for empty array")
	}

	scalar := testutil.NewJSONRequest(t, "POST", "/api/papers", "just a string")
	if _, err := decodeCreate(scalar); err == nil {
		t.Error("expected error for scalar body")
	}
}
