package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/github"
	"github.com/sergavshin/gha-test-coverage-check/internal/domain"
	"github.com/sergavshin/gha-test-coverage-check/internal/usecase/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records API calls in memory. Safe for concurrent use because
// SendReport issues two calls in parallel.
type fakeClient struct {
	mu sync.Mutex

	files []github.PullRequestFile

	listErr    error
	commentErr error
	createErr  error
	updateErr  error

	comments      []string
	createdChecks []github.CreateCheckRunInput
	updatedChecks []github.UpdateCheckRunInput
}

func (f *fakeClient) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]github.PullRequestFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeClient) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*github.IssueComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	f.comments = append(f.comments, body)
	return &github.IssueComment{ID: int64(len(f.comments)), Body: body}, nil
}

func (f *fakeClient) CreateCheckRun(ctx context.Context, owner, repo string, input github.CreateCheckRunInput) (*github.CheckRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdChecks = append(f.createdChecks, input)
	return &github.CheckRun{ID: 99, Name: input.Name}, nil
}

func (f *fakeClient) UpdateCheckRun(ctx context.Context, owner, repo string, id int64, input github.UpdateCheckRunInput) (*github.CheckRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedChecks = append(f.updatedChecks, input)
	return &github.CheckRun{ID: id}, nil
}

func prContext() github.Context {
	return github.Context{
		Owner:      "octocat",
		Repo:       "hello-world",
		SHA:        "head-sha",
		EventName:  "pull_request",
		PullNumber: 5,
		Workspace:  "/workspace",
	}
}

func newReporter(client *fakeClient, threshold int) *report.Reporter {
	return report.NewReporter(report.Deps{
		Client:       client,
		Context:      prContext(),
		MinThreshold: threshold,
	})
}

// singleFileCoverage builds coverage for one file with the given uncovered
// line numbers plus one covered line.
func singleFileCoverage(path string, uncovered ...int) domain.Coverage {
	lines := []domain.LineHit{{Line: 1, Hits: 1}}
	for _, n := range uncovered {
		lines = append(lines, domain.LineHit{Line: n, Hits: 0})
	}
	return domain.NewCoverage(domain.NewReport([]domain.FileCoverage{
		{Path: path, Found: len(lines), Hit: 1, Lines: lines},
	}))
}

func TestReporter_ReportBeforeBindFails(t *testing.T) {
	r := newReporter(&fakeClient{}, 100)
	ctx := context.Background()

	assert.ErrorIs(t, r.SendCheck(ctx), report.ErrCoverageNotBound)
	assert.ErrorIs(t, r.SendCoverageComment(ctx), report.ErrCoverageNotBound)
	assert.ErrorIs(t, r.SendReport(ctx), report.ErrCoverageNotBound)
}

func TestReporter_AnnotationFiltering(t *testing.T) {
	client := &fakeClient{files: []github.PullRequestFile{
		{Filename: "src/app.ts", Status: "modified"},
	}}
	r := newReporter(client, 100)

	coverage := domain.NewCoverage(domain.NewReport([]domain.FileCoverage{
		{Path: "/workspace/src/app.ts", Found: 2, Hit: 1, Lines: []domain.LineHit{{Line: 4, Hits: 0}, {Line: 5, Hits: 1}}},
		{Path: "/workspace/src/untouched.ts", Found: 1, Hit: 0, Lines: []domain.LineHit{{Line: 9, Hits: 0}}},
	}))
	require.NoError(t, r.UseCoverage(context.Background(), coverage))
	require.NoError(t, r.SendCheck(context.Background()))

	require.Len(t, client.createdChecks, 1)
	check := client.createdChecks[0]
	assert.Equal(t, github.ConclusionFailure, check.Conclusion)
	require.NotNil(t, check.Output)
	require.Len(t, check.Output.Annotations, 1)

	ann := check.Output.Annotations[0]
	assert.Equal(t, "src/app.ts", ann.Path)
	assert.Equal(t, 4, ann.StartLine)
	assert.Equal(t, 4, ann.EndLine)
	assert.Equal(t, github.AnnotationLevelFailure, ann.AnnotationLevel)
	assert.Equal(t, "Uncovered line (1/1)", ann.Message)
}

func TestReporter_AnnotationNumbering(t *testing.T) {
	client := &fakeClient{files: []github.PullRequestFile{{Filename: "a.go"}}}
	r := newReporter(client, 100)

	require.NoError(t, r.UseCoverage(context.Background(), singleFileCoverage("/workspace/a.go", 10, 11, 12)))
	require.NoError(t, r.SendCheck(context.Background()))

	annotations := client.createdChecks[0].Output.Annotations
	require.Len(t, annotations, 3)
	assert.Equal(t, "Uncovered line (1/3)", annotations[0].Message)
	assert.Equal(t, "Uncovered line (2/3)", annotations[1].Message)
	assert.Equal(t, "Uncovered line (3/3)", annotations[2].Message)
}

func TestReporter_NoAnnotationsYieldsSuccessCheck(t *testing.T) {
	client := &fakeClient{files: []github.PullRequestFile{{Filename: "other.go"}}}
	r := newReporter(client, 100)

	require.NoError(t, r.UseCoverage(context.Background(), singleFileCoverage("/workspace/a.go", 3)))
	require.NoError(t, r.SendCheck(context.Background()))

	require.Len(t, client.createdChecks, 1)
	check := client.createdChecks[0]
	assert.Equal(t, github.ConclusionSuccess, check.Conclusion)
	assert.Equal(t, "head-sha", check.HeadSHA)
	assert.Equal(t, github.StatusCompleted, check.Status)
	assert.Nil(t, check.Output)
	assert.Empty(t, client.updatedChecks)
}

func TestReporter_AnnotationBatching(t *testing.T) {
	client := &fakeClient{files: []github.PullRequestFile{{Filename: "big.go"}}}
	r := newReporter(client, 100)

	uncovered := make([]int, 120)
	for i := range uncovered {
		uncovered[i] = i + 100
	}
	require.NoError(t, r.UseCoverage(context.Background(), singleFileCoverage("/workspace/big.go", uncovered...)))
	require.NoError(t, r.SendCheck(context.Background()))

	require.Len(t, client.createdChecks, 1)
	require.Len(t, client.updatedChecks, 2)

	first := client.createdChecks[0].Output
	assert.Equal(t, "120 uncovered line(s) found", first.Summary)
	require.Len(t, first.Annotations, 50)
	assert.Equal(t, "Uncovered line (1/120)", first.Annotations[0].Message)
	assert.Equal(t, "Uncovered line (50/120)", first.Annotations[49].Message)

	second := client.updatedChecks[0].Output
	require.Len(t, second.Annotations, 50)
	assert.Equal(t, "Uncovered line (51/120)", second.Annotations[0].Message)
	assert.Equal(t, "Uncovered line (100/120)", second.Annotations[49].Message)

	third := client.updatedChecks[1].Output
	require.Len(t, third.Annotations, 20)
	assert.Equal(t, "Uncovered line (101/120)", third.Annotations[0].Message)
	assert.Equal(t, "Uncovered line (120/120)", third.Annotations[19].Message)
}

func TestReporter_CommentOutsidePullRequest(t *testing.T) {
	client := &fakeClient{}
	r := report.NewReporter(report.Deps{
		Client:       client,
		Context:      github.Context{Owner: "octocat", Repo: "hello-world", EventName: "push"},
		MinThreshold: 100,
	})

	require.NoError(t, r.UseCoverage(context.Background(), domain.NewCoverage(domain.NewReport(nil))))

	err := r.SendCoverageComment(context.Background())
	assert.ErrorIs(t, err, report.ErrNotPullRequest)
	assert.Empty(t, client.comments)
}

func TestReporter_CommentBody(t *testing.T) {
	testCases := []struct {
		name      string
		coverage  domain.Coverage
		threshold int
		want      string
	}{
		{
			name:      "empty report",
			coverage:  domain.NewCoverage(domain.NewReport(nil)),
			threshold: 100,
			want:      "## Coverage check ✅\n\nNo code to cover.\n\nCurrent coverage: 0.00%. Required: 100%.",
		},
		{
			name:      "uncovered code below threshold",
			coverage:  singleFileCoverage("/workspace/a.go", 2),
			threshold: 80,
			want:      "## Coverage check ❌\n\nPR contains uncovered code!\n\nCurrent coverage: 50.00%. Required: 80%.",
		},
		{
			name:      "uncovered code above threshold",
			coverage:  singleFileCoverage("/workspace/a.go", 2),
			threshold: 50,
			want:      "## Coverage check ✅\n\nPR contains uncovered code!\n\nCurrent coverage: 50.00%. Required: 50%.",
		},
		{
			name: "all covered",
			coverage: domain.NewCoverage(domain.NewReport([]domain.FileCoverage{
				{Path: "/workspace/a.go", Found: 2, Hit: 2, Lines: []domain.LineHit{{Line: 1, Hits: 1}, {Line: 2, Hits: 3}}},
			})),
			threshold: 100,
			want:      "## Coverage check ✅\n\nAll code covered!\n\nCurrent coverage: 100.00%. Required: 100%.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{}
			r := newReporter(client, tc.threshold)
			require.NoError(t, r.UseCoverage(context.Background(), tc.coverage))

			assert.Equal(t, tc.want, r.CommentBody())

			require.NoError(t, r.SendCoverageComment(context.Background()))
			require.Len(t, client.comments, 1)
			assert.Equal(t, tc.want, client.comments[0])
		})
	}
}

func TestReporter_SendReportPostsBoth(t *testing.T) {
	client := &fakeClient{files: []github.PullRequestFile{{Filename: "a.go"}}}
	r := newReporter(client, 50)

	require.NoError(t, r.UseCoverage(context.Background(), singleFileCoverage("/workspace/a.go", 2)))
	require.NoError(t, r.SendReport(context.Background()))

	assert.Len(t, client.comments, 1)
	assert.Len(t, client.createdChecks, 1)
}

func TestReporter_SendReportFailureDoesNotSuppressOther(t *testing.T) {
	commentFailure := errors.New("comment exploded")
	client := &fakeClient{
		files:      []github.PullRequestFile{{Filename: "a.go"}},
		commentErr: commentFailure,
	}
	r := newReporter(client, 50)

	require.NoError(t, r.UseCoverage(context.Background(), singleFileCoverage("/workspace/a.go", 2)))

	err := r.SendReport(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, commentFailure)
	// The check run was still created despite the comment failure.
	assert.Len(t, client.createdChecks, 1)
}

func TestReporter_UseCoverageListFailure(t *testing.T) {
	client := &fakeClient{listErr: &github.APIError{Type: github.ErrTypeServiceUnavailable, Message: "bad gateway", StatusCode: 502}}
	r := newReporter(client, 100)

	err := r.UseCoverage(context.Background(), singleFileCoverage("/workspace/a.go", 2))
	require.Error(t, err)

	var apiErr *github.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestReporter_StatusLine(t *testing.T) {
	r := newReporter(&fakeClient{}, 25)
	require.NoError(t, r.UseCoverage(context.Background(), domain.NewCoverage(domain.NewReport([]domain.FileCoverage{
		{Path: "a.go", Found: 4, Hit: 1},
	}))))

	assert.Equal(t, "Coverage 25.00%. Required minimum 25%.", r.StatusLine())
	assert.True(t, r.Passed())

	empty := newReporter(&fakeClient{}, 100)
	require.NoError(t, empty.UseCoverage(context.Background(), domain.NewCoverage(domain.NewReport(nil))))
	assert.Equal(t, "No code to cover.", empty.StatusLine())
	assert.True(t, empty.Passed())
}
