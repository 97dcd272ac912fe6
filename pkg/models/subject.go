package models

import (
	"errors"
	"fmt"
)

// ErrUnknownSubject is returned when a subject key is outside the closed set.
var ErrUnknownSubject = errors.New("unknown subject")

// Subject identifies one of the selected exam subjects.
type Subject string

const (
	SubjectChinese   Subject = "chinese"
	SubjectMath      Subject = "math"
	SubjectEnglish   Subject = "english"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
)

// Subjects lists every subject in report order.
var Subjects = []Subject{
	SubjectChinese,
	SubjectMath,
	SubjectEnglish,
	SubjectPhysics,
	SubjectChemistry,
	SubjectBiology,
}

type subjectInfo struct {
	label string
	color string // bar fill
}

var subjectTable = map[Subject]subjectInfo{
	SubjectChinese:   {"语文", "#8884d8"},
	SubjectMath:      {"数学", "#82ca9d"},
	SubjectEnglish:   {"英语", "#ffc658"},
	SubjectPhysics:   {"物理", "#a4de6c"},
	SubjectChemistry: {"化学", "#d0ed57"},
	SubjectBiology:   {"生物", "#8dd1e1"},
}

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	_, ok := subjectTable[s]
	return ok
}

// Label returns the display name used in the report.
func (s Subject) Label() string {
	if info, ok := subjectTable[s]; ok {
		return info.label
	}
	return string(s)
}

// Color returns the fixed bar color of the subject.
func (s Subject) Color() string {
	if info, ok := subjectTable[s]; ok {
		return info.color
	}
	return "#888888"
}

// UnmarshalText rejects subjects outside the closed set. Display labels are
// accepted as aliases so datasets can be keyed either way.
func (s *Subject) UnmarshalText(text []byte) error {
	v := Subject(text)
	if v.Valid() {
		*s = v
		return nil
	}
	for id, info := range subjectTable {
		if info.label == string(text) {
			*s = id
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownSubject, string(text))
}

// ParseSubject resolves an identifier or display label to a Subject.
func ParseSubject(name string) (Subject, error) {
	var s Subject
	err := s.UnmarshalText([]byte(name))
	return s, err
}
