package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v82/github"
)

var (
	// ErrNotFound reports a pull request or repository that does not exist
	// (or is not visible to the configured token).
	ErrNotFound = errors.New("pull request not found")
	// ErrAuth reports rejected credentials.
	ErrAuth = errors.New("source control authentication failed")
)

// Client is the source-control contract the pipeline consumes.
type Client interface {
	// FetchDiff returns the raw unified diff for a pull request.
	FetchDiff(ctx context.Context, owner, repo string, number int) (string, error)
	// PostComment posts a review comment on a pull request.
	PostComment(ctx context.Context, owner, repo string, number int, body string) error
}

// RESTClient implements Client over the GitHub REST API.
type RESTClient struct {
	gh *gh.Client
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(token string) *RESTClient {
	return &RESTClient{gh: gh.NewClient(nil).WithAuthToken(token)}
}

// NewClientWithBaseURL creates a client against a non-default API base URL
// (GitHub Enterprise, or a test server).
func NewClientWithBaseURL(baseURL, token string) (*RESTClient, error) {
	c := gh.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	c.BaseURL = u
	return &RESTClient{gh: c}, nil
}

// FetchDiff returns the raw diff for a pull request.
func (c *RESTClient) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, resp, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", mapErr(resp, err, fmt.Sprintf("fetching diff for %s/%s#%d", owner, repo, number))
	}
	return diff, nil
}

// PostComment posts a review summary comment on a pull request.
func (c *RESTClient) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return mapErr(resp, err, fmt.Sprintf("posting comment on %s/%s#%d", owner, repo, number))
	}
	return nil
}

func mapErr(resp *gh.Response, err error, op string) error {
	if resp != nil {
		switch resp.StatusCode {
		case 404:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case 401, 403:
			return fmt.Errorf("%s: %w", op, ErrAuth)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
