// internal/app/features/papers/decode.go
package papers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/qprep/qprep/internal/app/system/htmlsanitize"
	"github.com/qprep/qprep/internal/app/system/limits"
	"github.com/qprep/qprep/internal/domain/models"
)

var errEmptyUpload = errors.New("upload contains no papers")

// Upload clients have drifted over the years, so the create body is
// decoded loosely: a single paper object, a bare array, or a wrapper
// with a "papers" key all work. mapstructure with weak typing absorbs
// string/number mismatches from older clients.
type paperPayload struct {
	Department   string           `mapstructure:"department"`
	Level        string           `mapstructure:"level"`
	CourseCode   string           `mapstructure:"courseCode"`
	CourseTitle  string           `mapstructure:"title"`
	AcademicYear string           `mapstructure:"year"`
	Semester     string           `mapstructure:"semester"`
	ContentKind  string           `mapstructure:"type"`
	FileData     string           `mapstructure:"fileData"`
	Instructions string           `mapstructure:"instructions"`
	TimeAllowed  string           `mapstructure:"time"`
	Sections     []sectionPayload `mapstructure:"sections"`
}

type sectionPayload struct {
	Title     string            `mapstructure:"title"`
	Marks     string            `mapstructure:"marks"`
	Questions []questionPayload `mapstructure:"questions"`
}

type questionPayload struct {
	Text    string          `mapstructure:"text"`
	Options []optionPayload `mapstructure:"options"`
}

type optionPayload struct {
	Text    string `mapstructure:"text"`
	Correct bool   `mapstructure:"correct"`
}

// decodeCreate extracts one or more papers from an upload request.
// JSON bodies carry data URLs or typed sections; multipart bodies carry
// raw files that are encoded here. Multi-paper uploads share a BatchID.
func decodeCreate(r *http.Request) ([]models.Paper, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return decodeMultipart(r)
	}
	return decodeJSON(r)
}

func decodeJSON(r *http.Request) ([]models.Paper, error) {
	var raw any
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxUploadBody))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if nested, ok := v["papers"].([]any); ok {
			items = nested
		} else {
			items = []any{v}
		}
	default:
		return nil, errors.New("body must be a paper object or an array of papers")
	}
	if len(items) == 0 {
		return nil, errEmptyUpload
	}

	papers := make([]models.Paper, 0, len(items))
	batchID := ""
	if len(items) > 1 {
		batchID = uuid.NewString()
	}
	for i, item := range items {
		var p paperPayload
		cfg := &mapstructure.DecoderConfig{Result: &p, WeaklyTypedInput: true}
		d, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, err
		}
		if err := d.Decode(item); err != nil {
			return nil, fmt.Errorf("paper %d: %w", i+1, err)
		}
		m := toModel(p)
		m.BatchID = batchID
		papers = append(papers, m)
	}
	return papers, nil
}

// decodeMultipart builds one paper per uploaded file, sharing the form's
// identity tuple across the batch.
func decodeMultipart(r *http.Request) ([]models.Paper, error) {
	if err := r.ParseMultipartForm(limits.MaxUploadBody); err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	base := paperPayload{
		Department:   r.FormValue("department"),
		Level:        r.FormValue("level"),
		CourseCode:   r.FormValue("courseCode"),
		CourseTitle:  r.FormValue("title"),
		AcademicYear: r.FormValue("year"),
		Semester:     r.FormValue("semester"),
		ContentKind:  r.FormValue("type"),
		Instructions: r.FormValue("instructions"),
		TimeAllowed:  r.FormValue("time"),
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		if fs, ok := r.MultipartForm.File["files"]; ok {
			files = fs
		} else {
			for _, fs := range r.MultipartForm.File {
				files = append(files, fs...)
			}
		}
	}
	if len(files) == 0 {
		return nil, errEmptyUpload
	}

	batchID := ""
	if len(files) > 1 {
		batchID = uuid.NewString()
	}

	papers := make([]models.Paper, 0, len(files))
	for _, fh := range files {
		dataURL, detected, err := encodeFile(fh)
		if err != nil {
			return nil, fmt.Errorf("file %q: %w", fh.Filename, err)
		}

		p := base
		p.FileData = dataURL
		if p.ContentKind == "" {
			p.ContentKind = kindForContentType(detected)
		}
		m := toModel(p)
		m.BatchID = batchID
		papers = append(papers, m)
	}
	return papers, nil
}

// encodeFile reads an uploaded file into a base64 data URL. The payload
// stays opaque from here on; only the sniffed content type is inspected.
func encodeFile(fh *multipart.FileHeader) (dataURL, contentType string, err error) {
	f, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limits.MaxUploadBody))
	if err != nil {
		return "", "", err
	}
	if len(data) == 0 {
		return "", "", errors.New("file is empty")
	}

	contentType = fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return "data:" + contentType + ";base64," + encoded, contentType, nil
}

func kindForContentType(ct string) string {
	if strings.HasPrefix(ct, "image/") {
		return models.KindImage
	}
	return models.KindPDF
}

// toModel converts a decoded payload into a Paper, sanitizing every
// user-supplied text field. Question text keeps limited formatting;
// titles, instructions, and options are stripped to plain text. At most
// one option per question stays marked correct: the first one wins.
func toModel(p paperPayload) models.Paper {
	m := models.Paper{
		Department:   p.Department,
		Level:        p.Level,
		CourseCode:   htmlsanitize.StripTags(p.CourseCode),
		CourseTitle:  htmlsanitize.StripTags(p.CourseTitle),
		AcademicYear: p.AcademicYear,
		Semester:     p.Semester,
		ContentKind:  strings.ToLower(strings.TrimSpace(p.ContentKind)),
		FileData:     strings.TrimSpace(p.FileData),
		Instructions: htmlsanitize.StripTags(p.Instructions),
		TimeAllowed:  htmlsanitize.StripTags(p.TimeAllowed),
	}

	if m.ContentKind == "" {
		if len(p.Sections) > 0 {
			m.ContentKind = models.KindTyped
		} else {
			m.ContentKind = models.KindPDF
		}
	}

	for _, sec := range p.Sections {
		section := models.Section{
			Title: htmlsanitize.StripTags(sec.Title),
			Marks: htmlsanitize.StripTags(sec.Marks),
		}
		for _, q := range sec.Questions {
			question := models.Question{Text: htmlsanitize.Sanitize(q.Text)}
			correctSeen := false
			for _, opt := range q.Options {
				correct := opt.Correct && !correctSeen
				if correct {
					correctSeen = true
				}
				question.Options = append(question.Options, models.Option{
					Text:    htmlsanitize.StripTags(opt.Text),
					Correct: correct,
				})
			}
			section.Questions = append(section.Questions, question)
		}
		m.Sections = append(m.Sections, section)
	}
	return m
}
