// Package catalog maintains the in-memory browse index for past exam
// papers: department → level → course → offerings by academic year and
// semester. The index is rebuilt wholesale from the paper store and
// swapped atomically; large file payloads are left out of the index and
// fetched lazily when a paper is opened.
package catalog

import "github.com/qprep/qprep/internal/domain/models"

// Catalog is one immutable build of the nested index. All map walks go
// through insertion-order slices so listings are stable for a given
// build. A Catalog is never mutated after Build except for lazy payload
// attachment, which the Store guards.
type Catalog struct {
	depts map[string]*deptNode
	order []string
	count int
}

type deptNode struct {
	levels map[string]*levelNode
	order  []string
}

type levelNode struct {
	courses map[string]*Course
	order   []string
}

// Course is one course within a department/level bucket, keyed by the
// normalized course code. Code and Title keep the display form of the
// most recent upload.
type Course struct {
	Key   string
	Code  string
	Title string

	offerings map[string]map[string]*Record // year → semester → record
	yearOrder []string
}

// Record is the catalog's view of one paper: everything except the
// payload, which is attached lazily after a successful fetch.
type Record struct {
	ID           string
	Department   string
	Level        string
	CourseCode   string
	CourseTitle  string
	AcademicYear string
	Semester     string
	ContentKind  string
	Instructions string
	TimeAllowed  string

	payload *Payload // guarded by Store.mu
}

// Payload is the lazily fetched content of a paper: a data-URL blob for
// pdf/image papers, structured sections for typed ones.
type Payload struct {
	FileData string
	Sections []models.Section
}

// CourseSummary is one row of a course listing.
type CourseSummary struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Len returns the number of records indexed.
func (c *Catalog) Len() int { return c.count }

// Departments returns the department keys in insertion order.
func (c *Catalog) Departments() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Levels returns the level keys of a department in insertion order.
func (c *Catalog) Levels(dept string) []string {
	d, ok := c.depts[dept]
	if !ok {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Courses lists the courses under (dept, level) that have at least one
// offering in the given canonical semester, in insertion order. Unknown
// department or level, or an empty semester, yields an empty list.
func (c *Catalog) Courses(dept, level, semester string) []CourseSummary {
	out := []CourseSummary{}
	if semester == "" {
		return out
	}
	d, ok := c.depts[dept]
	if !ok {
		return out
	}
	l, ok := d.levels[level]
	if !ok {
		return out
	}
	for _, key := range l.order {
		course := l.courses[key]
		if course.hasSemester(semester) {
			out = append(out, CourseSummary{Code: course.Code, Title: course.Title})
		}
	}
	return out
}

// Years returns the academic years, in insertion order, for which the
// course identified by the normalized code has an offering in the given
// semester. The (dept, level) scope is tried first, then the whole
// catalog.
func (c *Catalog) Years(dept, level, key, semester string) []string {
	out := []string{}
	if semester == "" {
		return out
	}
	course, ok := c.findCourse(dept, level, key)
	if !ok {
		course, ok = c.findCourseAnywhere(key)
	}
	if !ok {
		return out
	}
	for _, year := range course.yearOrder {
		if _, has := course.offerings[year][semester]; has {
			out = append(out, year)
		}
	}
	return out
}

// Lookup finds the record for an exact (dept, level, code key, year,
// semester) tuple.
func (c *Catalog) Lookup(dept, level, key, year, semester string) (*Record, bool) {
	if semester == "" {
		return nil, false
	}
	course, ok := c.findCourse(dept, level, key)
	if !ok {
		return nil, false
	}
	rec, ok := course.offerings[year][semester]
	return rec, ok
}

// LookupAnywhere scans every department and level in insertion order
// for a course whose normalized code matches, and returns its offering
// for (year, semester). First match wins.
func (c *Catalog) LookupAnywhere(key, year, semester string) (*Record, bool) {
	if semester == "" {
		return nil, false
	}
	for _, dk := range c.order {
		d := c.depts[dk]
		for _, lk := range d.order {
			l := d.levels[lk]
			if course, ok := l.courses[key]; ok {
				if rec, ok := course.offerings[year][semester]; ok {
					return rec, true
				}
			}
		}
	}
	return nil, false
}

func (c *Catalog) findCourse(dept, level, key string) (*Course, bool) {
	d, ok := c.depts[dept]
	if !ok {
		return nil, false
	}
	l, ok := d.levels[level]
	if !ok {
		return nil, false
	}
	course, ok := l.courses[key]
	return course, ok
}

func (c *Catalog) findCourseAnywhere(key string) (*Course, bool) {
	for _, dk := range c.order {
		d := c.depts[dk]
		for _, lk := range d.order {
			if course, ok := d.levels[lk].courses[key]; ok {
				return course, true
			}
		}
	}
	return nil, false
}

func (co *Course) hasSemester(semester string) bool {
	for _, year := range co.yearOrder {
		if _, has := co.offerings[year][semester]; has {
			return true
		}
	}
	return false
}
