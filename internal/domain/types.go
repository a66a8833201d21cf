package domain

// LineHit records how many times a single executable line was hit.
type LineHit struct {
	Line int
	Hits int
}

// FileCoverage captures the coverage data for one source file in a report.
// Found is the number of instrumented lines, Hit the number with at least
// one execution.
type FileCoverage struct {
	Path  string
	Found int
	Hit   int
	Lines []LineHit
}

// Report is a parsed coverage report. Percentage is the aggregate line
// coverage across all files; Files preserves report order.
//
// An empty Files slice means there was nothing to cover. That state is
// distinct from "0% covered" and always passes the threshold check.
type Report struct {
	Percentage float64
	Files      []FileCoverage
}

// UncoveredLine identifies a single line with zero hits.
type UncoveredLine struct {
	File   string
	Number int
}

// NewReport aggregates per-file coverage into a Report. The percentage is
// computed as a single ratio of total hit lines over total found lines, so
// larger files weigh proportionally more than an average of per-file
// percentages would allow.
func NewReport(files []FileCoverage) Report {
	var found, hit int
	for _, f := range files {
		found += f.Found
		hit += f.Hit
	}

	var percentage float64
	if found > 0 {
		percentage = 100 * float64(hit) / float64(found)
	}

	return Report{
		Percentage: percentage,
		Files:      files,
	}
}
