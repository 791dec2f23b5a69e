package dataprocessing

// Section names of an AnalysisResult
const (
	SectionSummary               = "summary"
	SectionAvgSalaryByDepartment = "avg_salary_by_department"
	SectionGenderDistribution    = "gender_distribution"
	SectionAgeDistribution       = "age_distribution"
)

// Frame is a two-dimensional labelled grid. Cells hold float64, int, string,
// time.Time or nil for a not-applicable entry.
type Frame struct {
	Index   []string
	Columns []string
	Cells   [][]any
}

// Series is a one-dimensional labelled sequence of numbers
type Series struct {
	Name      string
	IndexName string
	Labels    []string
	Values    []float64
}

// Section is one named part of an AnalysisResult; exactly one of Frame and
// Series is set.
type Section struct {
	Name   string
	Frame  *Frame
	Series *Series
}

// AnalysisResult holds the report sections in the order they were added
type AnalysisResult struct {
	Sections []Section
}

// Get returns the section with the given name
func (r *AnalysisResult) Get(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Names returns the section names in order
func (r *AnalysisResult) Names() []string {
	names := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		names[i] = s.Name
	}
	return names
}

func (r *AnalysisResult) addFrame(name string, f *Frame) {
	r.Sections = append(r.Sections, Section{Name: name, Frame: f})
}

func (r *AnalysisResult) addSeries(name string, s *Series) {
	r.Sections = append(r.Sections, Section{Name: name, Series: s})
}
