// internal/domain/models/paper.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content kinds for a question paper. The kind is decided once at upload
// and never changes for the life of the record.
const (
	KindPDF   = "pdf"   // FileData holds a base64 data URL of a PDF
	KindImage = "image" // FileData holds a base64 data URL of an image
	KindTyped = "typed" // Sections hold structured questions, FileData empty
)

// Paper is one past exam paper for a course offering: a specific
// (department, level, course, academic year, semester) tuple.
//
// FileData is the payload: an opaque base64 data URL. It is large, so
// listing queries project it out and it is fetched lazily by ID when a
// student opens the paper. Typed papers carry Sections instead.
type Paper struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Department string `bson:"department" json:"department"`
	Level      string `bson:"level" json:"level"`

	CourseCode    string `bson:"course_code" json:"courseCode"`
	CourseCodeCI  string `bson:"course_code_ci" json:"-"`            // lowercase, whitespace-stripped
	CourseTitle   string `bson:"course_title" json:"title"`
	CourseTitleCI string `bson:"course_title_ci,omitempty" json:"-"` // lowercase, diacritics-stripped

	AcademicYear string `bson:"academic_year" json:"year"`
	Semester     string `bson:"semester" json:"semester"` // "First" or "Second"

	ContentKind string `bson:"content_kind" json:"type"` // pdf | image | typed
	FileData    string `bson:"file_data,omitempty" json:"fileData,omitempty"`

	Instructions string    `bson:"instructions,omitempty" json:"instructions,omitempty"`
	TimeAllowed  string    `bson:"time_allowed,omitempty" json:"time,omitempty"`
	Sections     []Section `bson:"sections,omitempty" json:"sections,omitempty"`

	// BatchID groups papers created by a single multi-file upload.
	BatchID string `bson:"batch_id,omitempty" json:"batchId,omitempty"`

	UploadedByID   *primitive.ObjectID `bson:"uploaded_by_id,omitempty" json:"uploadedById,omitempty"`
	UploadedByName string              `bson:"uploaded_by_name,omitempty" json:"uploadedByName,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Section is one titled block of a typed paper (e.g. "Section A").
type Section struct {
	Title     string     `bson:"title" json:"title"`
	Marks     string     `bson:"marks,omitempty" json:"marks,omitempty"` // display label, e.g. "40 Marks"
	Questions []Question `bson:"questions" json:"questions"`
}

// Question is one question within a section. Text may contain limited
// HTML (bold, lists, sub/superscript) and is sanitized at ingestion.
type Question struct {
	Text    string   `bson:"text" json:"text"`
	Options []Option `bson:"options,omitempty" json:"options,omitempty"`
}

// Option is one answer choice for an objective question. At most one
// option per question is marked correct.
type Option struct {
	Text    string `bson:"text" json:"text"`
	Correct bool   `bson:"correct,omitempty" json:"correct,omitempty"`
}

// IsTyped reports whether this paper carries structured sections
// rather than a file payload.
func (p *Paper) IsTyped() bool {
	return p.ContentKind == KindTyped
}

// HasPayload reports whether the file payload is present on this copy
// of the record (listings omit it).
func (p *Paper) HasPayload() bool {
	return p.FileData != "" || (p.IsTyped() && len(p.Sections) > 0)
}
