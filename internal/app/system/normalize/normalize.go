// Package normalize canonicalizes the catalog key fields of a paper
// record. Uploads arrive with inconsistent casing, stray whitespace, and
// level labels like "300lvl" or "300 Level"; every record passes through
// these functions before it is indexed, so equivalent raw inputs always
// land under the same catalog keys.
package normalize

import "strings"

// Canonical semester labels. Anything else normalizes to empty.
const (
	SemesterFirst  = "First"
	SemesterSecond = "Second"
)

// Fallback keys used when a record's field is missing or unusable.
const (
	DefaultDepartment = "GENERAL"
	DefaultLevel      = "100"
	DefaultCourseCode = "unknown"
)

// Department trims whitespace and uppercases. A missing department
// falls back to DefaultDepartment.
func Department(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultDepartment
	}
	return s
}

// Level keeps only the digits: "300lvl", "300 Level", and " 300 " all
// become "300". No digits at all falls back to DefaultLevel.
func Level(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultLevel
	}
	return b.String()
}

// CourseCode strips all whitespace and lowercases, so "ITH 303",
// "ith303", and "ITH  303 " compare equal. Empty falls back to
// DefaultCourseCode. The stored display code keeps its original form;
// this is the matching key only.
func CourseCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	code := strings.ToLower(b.String())
	if code == "" {
		return DefaultCourseCode
	}
	return code
}

// Semester maps any casing of the canonical labels to SemesterFirst or
// SemesterSecond. Matching is exact (case-insensitive) equality:
// "first"/"FIRST" normalize, "First Semester" and "1st" do not.
// Anything unrecognized returns "" and never matches a semester filter.
func Semester(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return SemesterFirst
	case "second":
		return SemesterSecond
	default:
		return ""
	}
}

// Year trims whitespace. Years are opaque labels ("2023", "2022/2023");
// the catalog preserves them as uploaded.
func Year(s string) string {
	return strings.TrimSpace(s)
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username lowercases and trims a username.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
