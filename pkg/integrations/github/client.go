// Package github opens and updates pull requests that record manifest
// changes pushed by depdrift. Only the handful of REST endpoints the
// tool needs are wrapped; everything rides on the integrations base
// client for headers, retries, and response caching.
package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/depdrift/depdrift/pkg/cache"
	"github.com/depdrift/depdrift/pkg/deptree"
	"github.com/depdrift/depdrift/pkg/errors"
	"github.com/depdrift/depdrift/pkg/gitops"
	"github.com/depdrift/depdrift/pkg/integrations"
)

var repoRefPattern = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9_.]*)/([A-Za-z0-9][-A-Za-z0-9_.]*)$`)

// ParseRepoRef validates an "owner/name" repository reference.
func ParseRepoRef(ref string) (owner, name string, err error) {
	m := repoRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", "", errors.New(errors.ErrCodeInvalidInput,
			"invalid repository %q: expected owner/name", ref)
	}
	return m[1], m[2], nil
}

// Client provides access to the GitHub pulls API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client. The token is required for
// opening pull requests; pass an empty string only for read calls
// against public data.
func NewClient(token string, c cache.Cache, ttl time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, ttl, headers),
		baseURL: "https://api.github.com",
	}
}

// SetBaseURL overrides the API endpoint. Intended for tests and GitHub
// Enterprise installations.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }

// User fetches the authenticated account, served from cache when fresh.
// A successful call doubles as a token validity check.
func (c *Client) User(ctx context.Context, refresh bool) (*User, error) {
	var u User
	err := c.Cached(ctx, "github:user", refresh, &u, func() error {
		return c.Get(ctx, c.baseURL+"/user", &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsurePull opens a pull request from head into base on repo
// ("owner/name"). If an open pull request for head already exists, its
// title and body are updated instead. Returns the created or updated
// pull request.
func (c *Client) EnsurePull(ctx context.Context, repo, base, head, title, body string) (*Pull, error) {
	owner, _, err := ParseRepoRef(repo)
	if err != nil {
		return nil, err
	}

	payload := pullRequestPayload{Title: title, Body: body, Base: base, Head: head}
	var pull Pull
	err = c.Post(ctx, fmt.Sprintf("%s/repos/%s/pulls", c.baseURL, repo), payload, &pull)
	if err == nil {
		return &pull, nil
	}

	// 422 means a pull request for this head already exists; find and
	// update it. Anything else propagates unchanged.
	var statusErr *integrations.StatusError
	if !stderrors.As(err, &statusErr) || statusErr.Code != 422 {
		return nil, err
	}

	existing, err := c.openPull(ctx, repo, owner, head)
	if err != nil {
		return nil, err
	}
	update := pullUpdatePayload{Title: title, Body: body}
	var updated Pull
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, repo, existing.Number)
	if err := c.Patch(ctx, url, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) openPull(ctx context.Context, repo, owner, head string) (*Pull, error) {
	var pulls []Pull
	q := url.Values{"head": {owner + ":" + head}, "state": {"open"}}
	if err := c.Get(ctx, fmt.Sprintf("%s/repos/%s/pulls?%s", c.baseURL, repo, q.Encode()), &pulls); err != nil {
		return nil, err
	}
	if len(pulls) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no open pull request for head %s", head)
	}
	return &pulls[0], nil
}

// BuildPull renders the pull-request title and body for a manifest
// change. At least one of missing or extra must be given; pushType must
// be valid. sysInfo, when present, is appended to the title so parallel
// environments produce distinguishable pull requests.
func BuildPull(pushType gitops.PushType, missing, extra []*deptree.Package, sysInfo []deptree.Marker) (title, body string, err error) {
	if err := pushType.Validate(); err != nil {
		return "", "", err
	}
	if len(missing) == 0 && len(extra) == 0 {
		return "", "", errors.New(errors.ErrCodeInvalidInput,
			"at least one of missing or extra packages should be given")
	}

	title = fmt.Sprintf("%s requirements manifest", pushType.Title())
	if len(sysInfo) > 0 {
		parts := make([]string, 0, len(sysInfo))
		for _, m := range sysInfo {
			parts = append(parts, fmt.Sprintf("%s = %s", m.Key, m.Val))
		}
		title += " for " + strings.Join(parts, " ")
	}

	var b strings.Builder
	writeSection := func(heading string, pkgs []*deptree.Package) {
		if len(pkgs) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(heading)
		b.WriteString("\n")
		for _, p := range pkgs {
			b.WriteString(p.String())
			b.WriteString("\n")
		}
	}
	writeSection("Missing packages:", missing)
	writeSection("Extra packages:", extra)
	return title, b.String(), nil
}
