package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/machinebox/graphql"
	"github.com/robby/ghboard/internal/domain"
	"go.uber.org/zap"
)

// pageSize is the number of nodes fetched per GraphQL page (the API maximum).
const pageSize = 100

// issueFields is the selection set shared by every query and mutation that returns an issue.
const issueFields = `
	id
	number
	title
	body
	state
	createdAt
	updatedAt
	labels(first: 100) {
		nodes {
			name
		}
	}
`

// issueNode mirrors the issueFields selection set.
type issueNode struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	State     string `json:"state"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Labels    *struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
}

func (n issueNode) toDomain() domain.Issue {
	issue := domain.Issue{
		Number:    n.Number,
		NodeID:    n.ID,
		Title:     n.Title,
		Body:      n.Body,
		State:     n.State,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.Labels != nil {
		issue.Labels = make([]string, 0, len(n.Labels.Nodes))
		for _, l := range n.Labels.Nodes {
			issue.Labels = append(issue.Labels, l.Name)
		}
	}
	return issue
}

// ListIssues fetches every open issue in the repository, oldest first.
// Closed issues are deleted tasks and are never returned.
func (c *Client) ListIssues(ctx context.Context) ([]domain.Issue, error) {
	var (
		issues []domain.Issue
		cursor string
	)

	// Keep loading until we have all issues
	for {
		page, nextCursor, hasMore, err := c.listIssuesPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}
		issues = append(issues, page...)

		if !hasMore || nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	c.logger.Debug("listed issues", zap.String("repo", c.Repository()), zap.Int("count", len(issues)))
	return issues, nil
}

// listIssuesPage fetches a single page of open issues.
// Returns issues, next cursor, and whether there are more issues.
func (c *Client) listIssuesPage(ctx context.Context, cursor string) ([]domain.Issue, string, bool, error) {
	req := graphql.NewRequest(`
		query($owner: String!, $repo: String!, $first: Int!, $after: String) {
			repository(owner: $owner, name: $repo) {
				issues(first: $first, after: $after, states: [OPEN], orderBy: {field: CREATED_AT, direction: ASC}) {
					pageInfo {
						hasNextPage
						endCursor
					}
					nodes {` + issueFields + `}
				}
			}
		}
	`)
	req.Var("owner", c.owner)
	req.Var("repo", c.repo)
	req.Var("first", pageSize)
	if cursor != "" {
		req.Var("after", cursor)
	} else {
		req.Var("after", nil)
	}

	var resp struct {
		Repository *struct {
			Issues struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []issueNode `json:"nodes"`
			} `json:"issues"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, "", false, err
	}
	if resp.Repository == nil {
		return nil, "", false, fmt.Errorf("%w: %s", ErrRepoNotFound, c.Repository())
	}

	issues := make([]domain.Issue, 0, len(resp.Repository.Issues.Nodes))
	for _, node := range resp.Repository.Issues.Nodes {
		issues = append(issues, node.toDomain())
	}

	info := resp.Repository.Issues.PageInfo
	return issues, info.EndCursor, info.HasNextPage, nil
}

// getIssueNodeID retrieves the GraphQL node ID for an issue number.
func (c *Client) getIssueNodeID(ctx context.Context, number int) (string, error) {
	req := graphql.NewRequest(`
		query($owner: String!, $repo: String!, $number: Int!) {
			repository(owner: $owner, name: $repo) {
				issue(number: $number) {
					id
				}
			}
		}
	`)

	req.Var("owner", c.owner)
	req.Var("repo", c.repo)
	req.Var("number", number)

	var resp struct {
		Repository *struct {
			Issue *struct {
				ID string `json:"id"`
			} `json:"issue"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: #%d in %s", ErrIssueNotFound, number, c.Repository())
		}
		return "", err
	}
	if resp.Repository == nil {
		return "", fmt.Errorf("%w: %s", ErrRepoNotFound, c.Repository())
	}
	if resp.Repository.Issue == nil || resp.Repository.Issue.ID == "" {
		return "", fmt.Errorf("%w: #%d in %s", ErrIssueNotFound, number, c.Repository())
	}

	return resp.Repository.Issue.ID, nil
}

// loadRepository resolves the repository node ID and its existing labels, keyed by
// lowercased name since GitHub label names are case-insensitive. Results are cached
// until forgetRepository drops them.
func (c *Client) loadRepository(ctx context.Context) (string, map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repoID != "" {
		return c.repoID, c.labels, nil
	}

	labels := make(map[string]string)
	var (
		repoID string
		cursor string
	)
	for {
		req := graphql.NewRequest(`
			query($owner: String!, $repo: String!, $first: Int!, $after: String) {
				repository(owner: $owner, name: $repo) {
					id
					labels(first: $first, after: $after) {
						pageInfo {
							hasNextPage
							endCursor
						}
						nodes {
							id
							name
						}
					}
				}
			}
		`)
		req.Var("owner", c.owner)
		req.Var("repo", c.repo)
		req.Var("first", pageSize)
		if cursor != "" {
			req.Var("after", cursor)
		} else {
			req.Var("after", nil)
		}

		var resp struct {
			Repository *struct {
				ID     string `json:"id"`
				Labels struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"nodes"`
				} `json:"labels"`
			} `json:"repository"`
		}

		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return "", nil, fmt.Errorf("failed to load repository: %w", err)
		}
		if resp.Repository == nil {
			return "", nil, fmt.Errorf("%w: %s", ErrRepoNotFound, c.Repository())
		}

		repoID = resp.Repository.ID
		for _, l := range resp.Repository.Labels.Nodes {
			labels[labelKey(l.Name)] = l.ID
		}

		info := resp.Repository.Labels.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			break
		}
		cursor = info.EndCursor
	}

	c.repoID = repoID
	c.labels = labels
	return repoID, labels, nil
}

// forgetRepository drops the cached repository and labels so the next call reloads them.
func (c *Client) forgetRepository() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repoID = ""
	c.labels = nil
}

func labelKey(name string) string {
	return strings.ToLower(name)
}

// isNotFound recognizes GitHub's NOT_FOUND GraphQL error for an unknown issue number.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Could not resolve to an Issue") || strings.Contains(msg, "NOT_FOUND")
}
