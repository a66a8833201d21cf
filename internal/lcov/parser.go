// Package lcov parses LCOV tracefiles into the domain coverage model.
package lcov

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/sergavshin/gha-test-coverage-check/internal/domain"
)

// ParseError reports a malformed or empty tracefile. Line is 1-indexed and
// zero when the error is not tied to a specific line.
type ParseError struct {
	Line    int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lcov: line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("lcov: %s", e.Message)
}

// Record prefixes that carry no line-coverage data. They are accepted and
// skipped so tracefiles with function or branch sections still parse.
var ignoredPrefixes = []string{"TN:", "FN:", "FNDA:", "FNF:", "FNH:", "BRDA:", "BRF:", "BRH:"}

// Parse converts LCOV tracefile content into a coverage report.
//
// Empty or whitespace-only content is valid and yields an empty report,
// the same as a run with nothing to cover. Non-empty content that produces
// no file records at all is rejected, as are malformed records.
func Parse(content string) (domain.Report, error) {
	if strings.TrimSpace(content) == "" {
		return domain.NewReport(nil), nil
	}

	var (
		files   []domain.FileCoverage
		current *fileBlock
	)

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SF:"):
			if current != nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: "SF record before end_of_record"}
			}
			path := strings.TrimPrefix(line, "SF:")
			if path == "" {
				return domain.Report{}, &ParseError{Line: lineNo, Message: "SF record without a file path"}
			}
			current = &fileBlock{path: path}

		case strings.HasPrefix(line, "DA:"):
			if current == nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: "DA record outside a file block"}
			}
			hit, err := parseLineRecord(line)
			if err != nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: err.Error()}
			}
			current.lines = append(current.lines, hit)

		case strings.HasPrefix(line, "LF:"):
			if current == nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: "LF record outside a file block"}
			}
			found, err := parseCount(strings.TrimPrefix(line, "LF:"))
			if err != nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: fmt.Sprintf("invalid LF record: %v", err)}
			}
			current.found = &found

		case strings.HasPrefix(line, "LH:"):
			if current == nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: "LH record outside a file block"}
			}
			hit, err := parseCount(strings.TrimPrefix(line, "LH:"))
			if err != nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: fmt.Sprintf("invalid LH record: %v", err)}
			}
			current.hit = &hit

		case line == "end_of_record":
			if current == nil {
				return domain.Report{}, &ParseError{Line: lineNo, Message: "end_of_record without a file block"}
			}
			files = append(files, current.finish())
			current = nil

		case hasIgnoredPrefix(line):
			// Function and branch coverage sections are not used.

		default:
			return domain.Report{}, &ParseError{Line: lineNo, Message: fmt.Sprintf("unrecognized record %q", truncate(line, 40))}
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Report{}, &ParseError{Message: err.Error()}
	}
	if current != nil {
		return domain.Report{}, &ParseError{Line: lineNo, Message: "unexpected end of report: missing end_of_record"}
	}
	if len(files) == 0 {
		return domain.Report{}, &ParseError{Message: "report contains no file records"}
	}

	return domain.NewReport(files), nil
}

// fileBlock accumulates one SF..end_of_record section.
type fileBlock struct {
	path  string
	lines []domain.LineHit
	found *int
	hit   *int
}

// finish materializes the block. When LF/LH are missing, counts are derived
// from the DA records.
func (b *fileBlock) finish() domain.FileCoverage {
	found := len(b.lines)
	if b.found != nil {
		found = *b.found
	}

	hit := 0
	if b.hit != nil {
		hit = *b.hit
	} else {
		for _, l := range b.lines {
			if l.Hits > 0 {
				hit++
			}
		}
	}

	return domain.FileCoverage{
		Path:  b.path,
		Found: found,
		Hit:   hit,
		Lines: b.lines,
	}
}

// parseLineRecord parses "DA:<line>,<hits>[,<checksum>]".
func parseLineRecord(record string) (domain.LineHit, error) {
	parts := strings.Split(strings.TrimPrefix(record, "DA:"), ",")
	if len(parts) < 2 {
		return domain.LineHit{}, fmt.Errorf("invalid DA record: expected line and hit count")
	}

	line, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || line <= 0 {
		return domain.LineHit{}, fmt.Errorf("invalid DA line number %q", parts[0])
	}
	hits, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || hits < 0 {
		return domain.LineHit{}, fmt.Errorf("invalid DA hit count %q", parts[1])
	}

	return domain.LineHit{Line: line, Hits: hits}, nil
}

func parseCount(value string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	return count, nil
}

func hasIgnoredPrefix(line string) bool {
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
