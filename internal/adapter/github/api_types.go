package github

// GitHub REST API types for the endpoints this action consumes.
// See: https://docs.github.com/en/rest/checks/runs
//      https://docs.github.com/en/rest/pulls/pulls#list-pull-requests-files
//      https://docs.github.com/en/rest/issues/comments#create-an-issue-comment

// MaxAnnotationsPerRequest is the hard API limit on annotations attached to
// a single check-run create or update call.
const MaxAnnotationsPerRequest = 50

// Annotation levels accepted by the Checks API.
const (
	AnnotationLevelFailure = "failure"
	AnnotationLevelWarning = "warning"
	AnnotationLevelNotice  = "notice"
)

// Check-run conclusions used by this action.
const (
	ConclusionSuccess = "success"
	ConclusionFailure = "failure"
)

// StatusCompleted is the only check-run status this action emits; the run
// is always finished by the time the check is created.
const StatusCompleted = "completed"

// PullRequestFile is one entry from the list-PR-files endpoint. Only the
// repo-relative name and change status are consumed; the file list acts as
// a filter for annotations.
type PullRequestFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// IssueComment is the response from creating a PR comment.
type IssueComment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// CheckAnnotation marks a line range in a file on the Checks tab and the
// PR diff view.
type CheckAnnotation struct {
	Path            string `json:"path"`
	StartLine       int    `json:"start_line"`
	EndLine         int    `json:"end_line"`
	AnnotationLevel string `json:"annotation_level"`
	Message         string `json:"message"`
}

// CheckRunOutput is the rendered body of a check run. Each create or update
// call attaches at most MaxAnnotationsPerRequest annotations.
type CheckRunOutput struct {
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	Annotations []CheckAnnotation `json:"annotations,omitempty"`
}

// CreateCheckRunInput is the request body for POST /repos/{owner}/{repo}/check-runs.
type CreateCheckRunInput struct {
	Name       string          `json:"name"`
	HeadSHA    string          `json:"head_sha"`
	Status     string          `json:"status"`
	Conclusion string          `json:"conclusion,omitempty"`
	Output     *CheckRunOutput `json:"output,omitempty"`
}

// UpdateCheckRunInput is the request body for PATCH /repos/{owner}/{repo}/check-runs/{id}.
// An update replaces nothing on the run itself; its annotation batch is
// attached in addition to previously submitted batches.
type UpdateCheckRunInput struct {
	Output *CheckRunOutput `json:"output,omitempty"`
}

// CheckRun is the response from the check-run endpoints.
type CheckRun struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	HTMLURL    string `json:"html_url"`
}

// apiErrorResponse is GitHub's error body shape.
type apiErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}
