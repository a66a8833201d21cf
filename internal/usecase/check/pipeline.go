// Package check wires the coverage gate end to end: settings, report
// parsing, threshold evaluation, and pull-request reporting.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/github"
	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/observability"
	"github.com/sergavshin/gha-test-coverage-check/internal/config"
	"github.com/sergavshin/gha-test-coverage-check/internal/domain"
	"github.com/sergavshin/gha-test-coverage-check/internal/lcov"
	"github.com/sergavshin/gha-test-coverage-check/internal/usecase/report"
)

// Deps captures the pipeline's collaborators. Every step is injectable so
// tests can run the whole pipeline without a network or a real
// environment.
type Deps struct {
	LoadSettings func() (config.Settings, error)
	LoadContext  func() (github.Context, error)
	ReadReport   func(path string) (string, error)
	ParseReport  func(content string) (domain.Report, error)
	NewClient    func(token string) report.Client
	Logger       observability.Logger
	Out          io.Writer
}

// Pipeline runs the coverage check once per invocation.
type Pipeline struct {
	deps Deps
}

// NewPipeline creates a pipeline, filling in production defaults for any
// dependency left nil.
func NewPipeline(deps Deps) *Pipeline {
	if deps.LoadSettings == nil {
		deps.LoadSettings = func() (config.Settings, error) {
			return config.Load(config.LoaderOptions{})
		}
	}
	if deps.LoadContext == nil {
		deps.LoadContext = github.LoadContext
	}
	if deps.ReadReport == nil {
		deps.ReadReport = lcov.ReadFile
	}
	if deps.ParseReport == nil {
		deps.ParseReport = lcov.Parse
	}
	if deps.NewClient == nil {
		deps.NewClient = func(token string) report.Client {
			return github.NewClient(token)
		}
	}
	if deps.Logger == nil {
		deps.Logger = observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &Pipeline{deps: deps}
}

// Run executes the check. The returned error carries the status line when
// the threshold is not met, so the workflow failure message matches the
// log output.
func (p *Pipeline) Run(ctx context.Context) error {
	settings, err := p.deps.LoadSettings()
	if err != nil {
		return err
	}

	content, err := p.deps.ReadReport(settings.ReportFilePath)
	if err != nil {
		return err
	}

	parsed, err := p.deps.ParseReport(content)
	if err != nil {
		return err
	}
	coverage := domain.NewCoverage(parsed)

	ghctx, err := p.deps.LoadContext()
	if err != nil {
		return err
	}

	reporter := report.NewReporter(report.Deps{
		Client:       p.deps.NewClient(settings.Token),
		Context:      ghctx,
		Logger:       p.deps.Logger,
		MinThreshold: settings.MinThreshold,
	})

	if err := reporter.UseCoverage(ctx, coverage); err != nil {
		return err
	}
	if err := reporter.SendReport(ctx); err != nil {
		return err
	}

	if settings.ShowFileBreakdown && !coverage.IsEmpty() {
		if err := p.printBreakdown(parsed); err != nil {
			return err
		}
	}

	statusLine := reporter.StatusLine()
	if !reporter.Passed() {
		color.New(color.FgRed, color.Bold).Fprintln(p.deps.Out, statusLine)
		return errors.New(statusLine)
	}

	color.New(color.FgGreen).Fprintln(p.deps.Out, statusLine)
	p.deps.Logger.LogInfo(ctx, "coverage check passed", map[string]any{
		"percentage": coverage.Percentage(),
		"threshold":  settings.MinThreshold,
	})
	return nil
}

// printBreakdown renders the per-file coverage table for the workflow log.
func (p *Pipeline) printBreakdown(parsed domain.Report) error {
	table := tablewriter.NewWriter(p.deps.Out)
	table.Header([]string{"File", "Lines", "Hit", "Coverage"})

	var data [][]string
	for _, file := range parsed.Files {
		percent := 0.0
		if file.Found > 0 {
			percent = 100 * float64(file.Hit) / float64(file.Found)
		}
		data = append(data, []string{
			file.Path,
			fmt.Sprintf("%d", file.Found),
			fmt.Sprintf("%d", file.Hit),
			fmt.Sprintf("%.2f%%", percent),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
