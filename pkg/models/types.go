package models

// Dataset is the full exam history of one student, in chronological order.
type Dataset struct {
	Student string       `json:"student" yaml:"student"`
	Title   string       `json:"title,omitempty" yaml:"title,omitempty"`
	Summary string       `json:"summary,omitempty" yaml:"summary,omitempty"` // markdown
	Exams   []ExamRecord `json:"exams" yaml:"exams"`
}

// ExamRecord holds the results of a single exam sitting.
type ExamRecord struct {
	ExamName     string               `json:"examName" yaml:"examName"`
	Subjects     map[Subject]*float64 `json:"subjects,omitempty" yaml:"subjects,omitempty"`
	SubjectRanks map[Subject]RankPair `json:"subjectRanks,omitempty" yaml:"subjectRanks,omitempty"`

	// Aggregates over the selected subjects.
	SelectedSubjectsTotalScore *float64 `json:"selectedSubjectsTotalScore,omitempty" yaml:"selectedSubjectsTotalScore,omitempty"`
	SelectedSubjectsClassRank  *int     `json:"selectedSubjectsClassRank,omitempty" yaml:"selectedSubjectsClassRank,omitempty"`
	SelectedSubjectsSchoolRank *int     `json:"selectedSubjectsSchoolRank,omitempty" yaml:"selectedSubjectsSchoolRank,omitempty"`
}

// RankPair is a subject's class and school rank for one exam.
type RankPair struct {
	Class  *int `json:"class,omitempty" yaml:"class,omitempty"`
	School *int `json:"school,omitempty" yaml:"school,omitempty"`
}

// Score returns the score recorded for subject, if any.
func (e ExamRecord) Score(subject Subject) (float64, bool) {
	v, ok := e.Subjects[subject]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Rank returns the class or school rank recorded for subject, if any.
func (e ExamRecord) Rank(subject Subject, kind RankKind) (int, bool) {
	pair, ok := e.SubjectRanks[subject]
	if !ok {
		return 0, false
	}
	var v *int
	switch kind {
	case RankClass:
		v = pair.Class
	case RankSchool:
		v = pair.School
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// ExamNames returns the exam labels in dataset order.
func (d Dataset) ExamNames() []string {
	names := make([]string, len(d.Exams))
	for i, e := range d.Exams {
		names[i] = e.ExamName
	}
	return names
}

// RankKind selects between class and school ranking.
type RankKind string

const (
	RankClass  RankKind = "class"
	RankSchool RankKind = "school"
)

// Label returns the report wording for the rank kind.
func (k RankKind) Label() string {
	if k == RankSchool {
		return "年级"
	}
	return "班级"
}
