package gh

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/jsonutil"
	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// Common errors
var (
	ErrGHNotFound       = errors.New("gh CLI not found in PATH")
	ErrNotAuthenticated = errors.New("gh CLI not authenticated")
	ErrPRNotFound       = errors.New("pull request not found")
	ErrRefAlreadyExists = errors.New("reference already exists")
)

// githubClient implements the Client interface using the gh CLI
type githubClient struct {
	runner      CommandRunner
	logger      *logrus.Logger
	currentUser *User        // Cache for current user
	mu          sync.RWMutex // Protects currentUser
}

// NewClient creates a new GitHub client using the gh CLI.
//
// Returns an error if gh is not installed or the token is not accepted.
func NewClient(ctx context.Context, logger *logrus.Logger, logConfig *logging.LogConfig, token string) (Client, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return nil, ErrGHNotFound
	}

	runner := NewCommandRunner(logger, logConfig, token)

	if _, err := runner.Run(ctx, "gh", "api", "rate_limit"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	return &githubClient{
		runner: runner,
		logger: logger,
	}, nil
}

// NewClientWithRunner creates a GitHub client with a custom command runner (for testing)
func NewClientWithRunner(runner CommandRunner, logger *logrus.Logger) Client {
	return &githubClient{
		runner: runner,
		logger: logger,
	}
}

// GetCurrentUser returns the authenticated user
func (g *githubClient) GetCurrentUser(ctx context.Context) (*User, error) {
	g.mu.RLock()
	if g.currentUser != nil {
		user := g.currentUser
		g.mu.RUnlock()
		return user, nil
	}
	g.mu.RUnlock()

	output, err := g.runner.Run(ctx, "gh", "api", "user")
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "get current user")
	}

	user, err := jsonutil.UnmarshalJSON[User](output)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "parse user")
	}

	g.mu.Lock()
	g.currentUser = &user
	g.mu.Unlock()

	return &user, nil
}

// CreateFork forks a repository. A pre-existing fork is not an error: the
// API returns the existing fork with a 202/200 in that case.
func (g *githubClient) CreateFork(ctx context.Context, repo, owner string) error {
	payload := map[string]interface{}{}
	if owner != "" {
		payload["organization"] = owner
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return appErrors.WrapWithContext(err, "marshal fork request")
	}

	_, err = g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/forks", repo), "--method", "POST", "--input", "-")
	if err != nil {
		return appErrors.WrapWithContext(err, "create fork")
	}

	return nil
}

// CompareCommits returns the raw unified diff between two commits using the
// diff media type.
func (g *githubClient) CompareCommits(ctx context.Context, repo, base, head string) (string, error) {
	output, err := g.runner.Run(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/compare/%s...%s", repo, base, head),
		"-H", "Accept: application/vnd.github.diff")
	if err != nil {
		return "", appErrors.WrapWithContext(err, "compare commits")
	}

	return string(output), nil
}

// CreateBlob uploads base64-encoded blob content and returns the blob SHA.
// The returned SHA equals the local git blob id for the same content, since
// both are content hashes of the identical blob object.
func (g *githubClient) CreateBlob(ctx context.Context, repo, contentBase64 string) (string, error) {
	payload := map[string]string{
		"content":  contentBase64,
		"encoding": "base64",
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return "", appErrors.WrapWithContext(err, "marshal blob")
	}

	output, err := g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/git/blobs", repo), "--method", "POST", "--input", "-")
	if err != nil {
		return "", appErrors.WrapWithContext(err, "create blob")
	}

	blob, err := jsonutil.UnmarshalJSON[blobResponse](output)
	if err != nil {
		return "", appErrors.WrapWithContext(err, "parse blob response")
	}

	return blob.SHA, nil
}

// CreateTree creates a tree object from the given entries
func (g *githubClient) CreateTree(ctx context.Context, repo, baseTree string, entries []TreeEntry) (string, error) {
	payload := map[string]interface{}{
		"tree": entries,
	}
	if baseTree != "" {
		payload["base_tree"] = baseTree
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return "", appErrors.WrapWithContext(err, "marshal tree")
	}

	output, err := g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/git/trees", repo), "--method", "POST", "--input", "-")
	if err != nil {
		return "", fmt.Errorf("failed to create tree with base %q: %w", baseTree, err)
	}

	tree, err := jsonutil.UnmarshalJSON[treeResponse](output)
	if err != nil {
		return "", appErrors.WrapWithContext(err, "parse tree response")
	}

	return tree.SHA, nil
}

// CreateCommit creates a commit object pointing at a tree
func (g *githubClient) CreateCommit(ctx context.Context, repo, message, tree string, parents []string) (string, error) {
	payload := map[string]interface{}{
		"message": message,
		"tree":    tree,
		"parents": parents,
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return "", appErrors.WrapWithContext(err, "marshal commit")
	}

	output, err := g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/git/commits", repo), "--method", "POST", "--input", "-")
	if err != nil {
		return "", appErrors.WrapWithContext(err, "create commit")
	}

	commit, err := jsonutil.UnmarshalJSON[commitResponse](output)
	if err != nil {
		return "", appErrors.WrapWithContext(err, "parse commit response")
	}

	return commit.SHA, nil
}

// CreateRef creates a branch ref at the given SHA
func (g *githubClient) CreateRef(ctx context.Context, repo, ref, sha string) error {
	payload := map[string]string{
		"ref": "refs/heads/" + strings.TrimPrefix(ref, "refs/heads/"),
		"sha": sha,
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return appErrors.WrapWithContext(err, "marshal ref")
	}

	_, err = g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/git/refs", repo), "--method", "POST", "--input", "-")
	if err != nil {
		if isRefExistsError(err) {
			return ErrRefAlreadyExists
		}
		return appErrors.WrapWithContext(err, "create ref")
	}

	return nil
}

// UpdateRef moves a branch ref to the given SHA
func (g *githubClient) UpdateRef(ctx context.Context, repo, ref, sha string, force bool) error {
	payload := map[string]interface{}{
		"sha":   sha,
		"force": force,
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return appErrors.WrapWithContext(err, "marshal ref update")
	}

	refName := strings.TrimPrefix(ref, "refs/heads/")
	_, err = g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/git/refs/heads/%s", repo, refName), "--method", "PATCH", "--input", "-")
	if err != nil {
		return appErrors.WrapWithContext(err, "update ref")
	}

	return nil
}

// ListPRs lists pull requests for a repository
func (g *githubClient) ListPRs(ctx context.Context, repo, state, head string) ([]PR, error) {
	apiURL := fmt.Sprintf("repos/%s/pulls", repo)

	var params []string
	if state != "" && state != "all" {
		params = append(params, "state="+state)
	}
	if head != "" {
		params = append(params, "head="+head)
	}
	if len(params) > 0 {
		apiURL += "?" + strings.Join(params, "&")
	}

	output, err := g.runner.Run(ctx, "gh", "api", apiURL, "--paginate")
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "list PRs")
	}

	prs, err := jsonutil.UnmarshalJSON[[]PR](output)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "parse PRs")
	}

	return prs, nil
}

// CreatePR creates a new pull request
func (g *githubClient) CreatePR(ctx context.Context, repo string, req PRRequest) (*PR, error) {
	jsonData, err := jsonutil.MarshalJSON(req)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "marshal PR data")
	}

	output, err := g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/pulls", repo), "--method", "POST", "--input", "-")
	if err != nil {
		return nil, fmt.Errorf("failed to create PR with head '%s' and base '%s': %w", req.Head, req.Base, err)
	}

	pr, err := jsonutil.UnmarshalJSON[PR](output)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "parse PR response")
	}

	return &pr, nil
}

// UpdatePR updates a pull request
func (g *githubClient) UpdatePR(ctx context.Context, repo string, number int, updates PRUpdate) (*PR, error) {
	jsonData, err := jsonutil.MarshalJSON(updates)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "marshal PR update")
	}

	output, err := g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/pulls/%d", repo, number), "--method", "PATCH", "--input", "-")
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrPRNotFound
		}
		return nil, appErrors.WrapWithContext(err, "update PR")
	}

	pr, err := jsonutil.UnmarshalJSON[PR](output)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "parse PR response")
	}

	return &pr, nil
}

// AddLabels adds labels to a pull request
func (g *githubClient) AddLabels(ctx context.Context, repo string, number int, labels []string) error {
	jsonData, err := jsonutil.MarshalJSON(map[string]interface{}{"labels": labels})
	if err != nil {
		return appErrors.WrapWithContext(err, "marshal label data")
	}

	_, err = g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/issues/%d/labels", repo, number), "--method", "POST", "--input", "-")
	if err != nil {
		return appErrors.WrapWithContext(err, "set PR labels")
	}

	return nil
}

// AddAssignees adds assignees to a pull request
func (g *githubClient) AddAssignees(ctx context.Context, repo string, number int, assignees []string) error {
	jsonData, err := jsonutil.MarshalJSON(map[string]interface{}{"assignees": assignees})
	if err != nil {
		return appErrors.WrapWithContext(err, "marshal assignee data")
	}

	_, err = g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/issues/%d/assignees", repo, number), "--method", "POST", "--input", "-")
	if err != nil {
		return appErrors.WrapWithContext(err, "set PR assignees")
	}

	return nil
}

// RequestReviewers requests user and team reviews on a pull request
func (g *githubClient) RequestReviewers(ctx context.Context, repo string, number int, reviewers, teamReviewers []string) error {
	payload := map[string]interface{}{}
	if len(reviewers) > 0 {
		payload["reviewers"] = reviewers
	}
	if len(teamReviewers) > 0 {
		payload["team_reviewers"] = teamReviewers
	}
	if len(payload) == 0 {
		return nil
	}

	jsonData, err := jsonutil.MarshalJSON(payload)
	if err != nil {
		return appErrors.WrapWithContext(err, "marshal reviewer data")
	}

	_, err = g.runner.RunWithInput(ctx, jsonData, "gh", "api", fmt.Sprintf("repos/%s/pulls/%d/requested_reviewers", repo, number), "--method", "POST", "--input", "-")
	if err != nil {
		return appErrors.WrapWithContext(err, "set PR reviewers")
	}

	return nil
}

// isNotFoundError checks if the error is a 404 from the GitHub API
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "Not Found") ||
		strings.Contains(errStr, "could not resolve")
}

// isRefExistsError checks if a ref creation failed because the ref is
// already present (HTTP 422 with a "Reference already exists" message).
func isRefExistsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "Reference already exists") ||
		strings.Contains(errStr, "already_exists")
}
