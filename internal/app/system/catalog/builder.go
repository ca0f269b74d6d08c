package catalog

import (
	"github.com/qprep/qprep/internal/app/system/normalize"
	"github.com/qprep/qprep/internal/domain/models"
)

// Build folds a flat list of paper records into a fresh Catalog in a
// single pass. Nodes are created lazily in first-seen order. When two
// records normalize to the same (department, level, code, year,
// semester) tuple, the later one in the input wins, so building is
// idempotent and replays of the same input produce the same index.
func Build(papers []models.Paper) *Catalog {
	cat := &Catalog{depts: make(map[string]*deptNode)}

	for i := range papers {
		p := &papers[i]

		dept := normalize.Department(p.Department)
		level := normalize.Level(p.Level)
		key := normalize.CourseCode(p.CourseCode)
		year := normalize.Year(p.AcademicYear)
		sem := normalize.Semester(p.Semester)

		d, ok := cat.depts[dept]
		if !ok {
			d = &deptNode{levels: make(map[string]*levelNode)}
			cat.depts[dept] = d
			cat.order = append(cat.order, dept)
		}

		l, ok := d.levels[level]
		if !ok {
			l = &levelNode{courses: make(map[string]*Course)}
			d.levels[level] = l
			d.order = append(d.order, level)
		}

		course, ok := l.courses[key]
		if !ok {
			course = &Course{Key: key, offerings: make(map[string]map[string]*Record)}
			l.courses[key] = course
			l.order = append(l.order, key)
		}
		// Display fields track the most recent upload.
		course.Code = p.CourseCode
		course.Title = p.CourseTitle

		sems, ok := course.offerings[year]
		if !ok {
			sems = make(map[string]*Record)
			course.offerings[year] = sems
			course.yearOrder = append(course.yearOrder, year)
		}

		if _, replaced := sems[sem]; !replaced {
			cat.count++
		}
		sems[sem] = &Record{
			ID:           p.ID.Hex(),
			Department:   dept,
			Level:        level,
			CourseCode:   p.CourseCode,
			CourseTitle:  p.CourseTitle,
			AcademicYear: year,
			Semester:     sem,
			ContentKind:  p.ContentKind,
			Instructions: p.Instructions,
			TimeAllowed:  p.TimeAllowed,
		}
	}

	return cat
}
