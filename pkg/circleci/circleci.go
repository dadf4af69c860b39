// Package circleci triggers CircleCI jobs through the v1.1 REST API.
package circleci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the public CircleCI API endpoint.
	DefaultBaseURL = "https://circleci.com/api/v1.1"
	// DefaultOrganization is the VCS organization jobs are triggered under.
	DefaultOrganization = "seglab"
	// vcsType is the only supported version control provider.
	vcsType = "github"
)

// Client calls the CircleCI API.
type Client struct {
	// APIToken is the personal API token used for authentication.
	APIToken string
	// Organization overrides DefaultOrganization when set.
	Organization string
	// BaseURL overrides DefaultBaseURL when set.
	BaseURL string
	// HTTPClient overrides the default HTTP client when set.
	HTTPClient *http.Client
}

// New returns a client using the default organization and endpoint.
func New(apiToken string) *Client {
	return &Client{APIToken: apiToken}
}

// TriggerJob starts a build of one job on a project branch. revision pins a
// specific commit and tag builds a git tag; they are mutually exclusive and
// both optional. Returns the decoded API response.
func (c *Client) TriggerJob(ctx context.Context, project, branch, job, revision, tag string) (map[string]interface{}, error) {
	if c.APIToken == "" {
		return nil, fmt.Errorf("circleci: API token not configured")
	}
	if revision != "" && tag != "" {
		return nil, fmt.Errorf("circleci: revision and tag cannot both be set")
	}

	payload := map[string]interface{}{
		"build_parameters": map[string]string{"CIRCLE_JOB": job},
	}
	if revision != "" {
		payload["revision"] = revision
	}
	if tag != "" {
		payload["tag"] = tag
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/project/%s/%s/%s/tree/%s",
		c.baseURL(), vcsType, c.organization(), url.PathEscape(project), url.PathEscape(branch))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	q := req.URL.Query()
	q.Set("circle-token", c.APIToken)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("circleci: trigger request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("circleci: trigger of %s/%s returned %s: %s",
			project, job, resp.Status, respBody)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("circleci: can't decode response: %w", err)
	}
	return decoded, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) organization() string {
	if c.Organization != "" {
		return c.Organization
	}
	return DefaultOrganization
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
