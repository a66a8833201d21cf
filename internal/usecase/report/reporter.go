// Package report turns a coverage aggregate into pull-request feedback: a
// summary comment, a check run with inline annotations, and the workflow
// status line.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/github"
	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/observability"
	"github.com/sergavshin/gha-test-coverage-check/internal/domain"
)

var (
	// ErrCoverageNotBound is returned when a reporting method is called
	// before UseCoverage.
	ErrCoverageNotBound = errors.New("coverage not bound: call UseCoverage first")

	// ErrNotPullRequest is returned when a comment is requested outside a
	// pull-request event.
	ErrNotPullRequest = errors.New("not a pull request event")
)

// Client is the GitHub capability the reporter depends on. Injected as an
// interface so tests never touch the network.
type Client interface {
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]github.PullRequestFile, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*github.IssueComment, error)
	CreateCheckRun(ctx context.Context, owner, repo string, input github.CreateCheckRunInput) (*github.CheckRun, error)
	UpdateCheckRun(ctx context.Context, owner, repo string, id int64, input github.UpdateCheckRunInput) (*github.CheckRun, error)
}

// Deps captures the reporter's collaborators and static configuration.
type Deps struct {
	Client       Client
	Context      github.Context
	Logger       observability.Logger
	CheckName    string
	MinThreshold int
}

// Reporter publishes coverage results for one run. It is a small state
// machine: construct, bind coverage once with UseCoverage, then report.
type Reporter struct {
	client       Client
	ghctx        github.Context
	logger       observability.Logger
	checkName    string
	minThreshold int

	bound       bool
	coverage    domain.Coverage
	annotations []github.CheckAnnotation
}

// NewReporter creates an unbound reporter.
func NewReporter(deps Deps) *Reporter {
	checkName := deps.CheckName
	if checkName == "" {
		checkName = "coverage-check"
	}
	logger := deps.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.LogLevelError, observability.LogFormatHuman)
	}
	return &Reporter{
		client:       deps.Client,
		ghctx:        deps.Context,
		logger:       logger,
		checkName:    checkName,
		minThreshold: deps.MinThreshold,
	}
}

// UseCoverage binds the coverage aggregate and computes the annotation
// list. The PR's changed files are fetched once here; annotations are only
// emitted for uncovered lines inside files the PR actually touches.
func (r *Reporter) UseCoverage(ctx context.Context, coverage domain.Coverage) error {
	var changed []github.PullRequestFile
	if r.ghctx.PullNumber > 0 {
		var err error
		changed, err = r.client.ListPullRequestFiles(ctx, r.ghctx.Owner, r.ghctx.Repo, r.ghctx.PullNumber)
		if err != nil {
			return fmt.Errorf("list pull request files: %w", err)
		}
	}

	r.coverage = coverage
	r.annotations = buildAnnotations(coverage, changed, r.ghctx.Workspace)
	r.bound = true

	r.logger.LogDebug(ctx, "coverage bound", map[string]any{
		"percentage":  coverage.Percentage(),
		"changed":     len(changed),
		"annotations": len(r.annotations),
	})
	return nil
}

// buildAnnotations maps uncovered lines to check annotations. Paths are
// made repo-relative by stripping the workspace prefix, then filtered
// against the PR's changed files. The ordinal suffix is cosmetic numbering
// applied across the whole surviving list, before any chunking.
func buildAnnotations(coverage domain.Coverage, changed []github.PullRequestFile, workspace string) []github.CheckAnnotation {
	changedSet := make(map[string]struct{}, len(changed))
	for _, f := range changed {
		changedSet[f.Filename] = struct{}{}
	}

	prefix := workspace
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var annotations []github.CheckAnnotation
	for _, line := range coverage.UncoveredLines() {
		path := strings.TrimPrefix(line.File, prefix)
		if _, ok := changedSet[path]; !ok {
			continue
		}
		annotations = append(annotations, github.CheckAnnotation{
			Path:            path,
			StartLine:       line.Number,
			EndLine:         line.Number,
			AnnotationLevel: github.AnnotationLevelFailure,
			Message:         "Uncovered line",
		})
	}

	total := len(annotations)
	for i := range annotations {
		annotations[i].Message = fmt.Sprintf("%s (%d/%d)", annotations[i].Message, i+1, total)
	}
	return annotations
}

// SendCheck creates the check run. With no annotations the check concludes
// success and carries no output. Otherwise it concludes failure, the first
// batch of annotations rides on the create call, and every further batch
// is attached through an update; the API accepts at most 50 per call.
func (r *Reporter) SendCheck(ctx context.Context) error {
	if !r.bound {
		return ErrCoverageNotBound
	}

	if len(r.annotations) == 0 {
		_, err := r.client.CreateCheckRun(ctx, r.ghctx.Owner, r.ghctx.Repo, github.CreateCheckRunInput{
			Name:       r.checkName,
			HeadSHA:    r.ghctx.SHA,
			Status:     github.StatusCompleted,
			Conclusion: github.ConclusionSuccess,
		})
		if err != nil {
			return fmt.Errorf("create check run: %w", err)
		}
		return nil
	}

	chunks := chunkAnnotations(r.annotations, github.MaxAnnotationsPerRequest)
	summary := fmt.Sprintf("%d uncovered line(s) found", len(r.annotations))

	run, err := r.client.CreateCheckRun(ctx, r.ghctx.Owner, r.ghctx.Repo, github.CreateCheckRunInput{
		Name:       r.checkName,
		HeadSHA:    r.ghctx.SHA,
		Status:     github.StatusCompleted,
		Conclusion: github.ConclusionFailure,
		Output: &github.CheckRunOutput{
			Title:       r.checkName,
			Summary:     summary,
			Annotations: chunks[0],
		},
	})
	if err != nil {
		return fmt.Errorf("create check run: %w", err)
	}

	for _, chunk := range chunks[1:] {
		_, err := r.client.UpdateCheckRun(ctx, r.ghctx.Owner, r.ghctx.Repo, run.ID, github.UpdateCheckRunInput{
			Output: &github.CheckRunOutput{
				Title:       r.checkName,
				Summary:     summary,
				Annotations: chunk,
			},
		})
		if err != nil {
			return fmt.Errorf("update check run: %w", err)
		}
	}
	return nil
}

// SendCoverageComment posts the summary comment on the pull request.
func (r *Reporter) SendCoverageComment(ctx context.Context) error {
	if !r.bound {
		return ErrCoverageNotBound
	}
	if !r.ghctx.IsPullRequest() {
		return ErrNotPullRequest
	}

	_, err := r.client.CreateIssueComment(ctx, r.ghctx.Owner, r.ghctx.Repo, r.ghctx.PullNumber, r.CommentBody())
	if err != nil {
		return fmt.Errorf("create coverage comment: %w", err)
	}
	return nil
}

// SendReport posts the comment and the check run concurrently. The two
// touch disjoint resources, so neither waits on nor cancels the other;
// both are always attempted and the first failure is reported.
func (r *Reporter) SendReport(ctx context.Context) error {
	if !r.bound {
		return ErrCoverageNotBound
	}

	var g errgroup.Group
	g.Go(func() error { return r.SendCoverageComment(ctx) })
	g.Go(func() error { return r.SendCheck(ctx) })
	return g.Wait()
}

// CommentBody renders the deterministic comment text: header with status
// icon, status sentence, and the current/required footer. The footer is
// rendered even for an empty report.
func (r *Reporter) CommentBody() string {
	icon := "❌"
	if r.coverage.PassesThreshold(r.minThreshold) {
		icon = "✅"
	}

	status := "All code covered!"
	switch {
	case r.coverage.IsEmpty():
		status = "No code to cover."
	case len(r.coverage.UncoveredLines()) > 0:
		status = "PR contains uncovered code!"
	}

	footer := fmt.Sprintf("Current coverage: %.2f%%. Required: %d%%.",
		r.coverage.Percentage(), r.minThreshold)

	return fmt.Sprintf("## Coverage check %s\n\n%s\n\n%s", icon, status, footer)
}

// StatusLine is the one-line result for the workflow log; the same text is
// used for the failure message when the threshold is not met.
func (r *Reporter) StatusLine() string {
	if r.coverage.IsEmpty() {
		return "No code to cover."
	}
	return fmt.Sprintf("Coverage %.2f%%. Required minimum %d%%.",
		r.coverage.Percentage(), r.minThreshold)
}

// Passed reports whether the bound coverage meets the threshold.
func (r *Reporter) Passed() bool {
	return r.coverage.PassesThreshold(r.minThreshold)
}

func chunkAnnotations(annotations []github.CheckAnnotation, size int) [][]github.CheckAnnotation {
	var chunks [][]github.CheckAnnotation
	for len(annotations) > size {
		chunks = append(chunks, annotations[:size])
		annotations = annotations[size:]
	}
	return append(chunks, annotations)
}
