package domain

import "sort"

// Coverage wraps a Report with read-only query operations. All methods are
// pure functions of the wrapped report and are safe to call repeatedly.
type Coverage struct {
	report Report
}

// NewCoverage wraps a parsed report.
func NewCoverage(report Report) Coverage {
	return Coverage{report: report}
}

// Percentage returns the aggregate line coverage in [0,100].
func (c Coverage) Percentage() float64 {
	return c.report.Percentage
}

// IsEmpty reports whether the report contains no files at all.
func (c Coverage) IsEmpty() bool {
	return len(c.report.Files) == 0
}

// PassesThreshold reports whether the coverage meets the minimum threshold.
// An empty report passes vacuously regardless of the threshold value.
func (c Coverage) PassesThreshold(threshold int) bool {
	return c.IsEmpty() || c.report.Percentage >= float64(threshold)
}

// UncoveredLines returns every line with zero hits in files that have at
// least one uncovered line. Order is stable: files as they appear in the
// report, lines ascending within a file.
func (c Coverage) UncoveredLines() []UncoveredLine {
	var lines []UncoveredLine
	for _, file := range c.report.Files {
		if file.Found <= file.Hit {
			continue
		}
		start := len(lines)
		for _, line := range file.Lines {
			if line.Hits == 0 {
				lines = append(lines, UncoveredLine{File: file.Path, Number: line.Line})
			}
		}
		sort.Slice(lines[start:], func(i, j int) bool {
			return lines[start+i].Number < lines[start+j].Number
		})
	}
	return lines
}
