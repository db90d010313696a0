package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/machinebox/graphql"
	"github.com/robby/ghboard/internal/domain"
	"go.uber.org/zap"
)

// Label colors by prefix, used when a label has to be created on the fly.
var labelColors = map[string]string{
	"status:":   "0e8a16",
	"priority:": "d93f0b",
	"tag:":      "1d76db",
}

const defaultLabelColor = "ededed"

// CreateIssue opens a new issue with the given title, body and labels.
// Labels that do not exist in the repository yet are created first.
func (c *Client) CreateIssue(ctx context.Context, fields domain.IssueFields) (domain.Issue, error) {
	repoID, _, err := c.loadRepository(ctx)
	if err != nil {
		return domain.Issue{}, err
	}
	labelIDs, err := c.resolveLabels(ctx, fields.Labels)
	if err != nil {
		return domain.Issue{}, err
	}

	req := graphql.NewRequest(`
		mutation($repositoryId: ID!, $title: String!, $body: String, $labelIds: [ID!]) {
			createIssue(input: {repositoryId: $repositoryId, title: $title, body: $body, labelIds: $labelIds}) {
				issue {` + issueFields + `}
			}
		}
	`)
	req.Var("repositoryId", repoID)
	req.Var("title", fields.Title)
	req.Var("body", fields.Body)
	req.Var("labelIds", labelIDs)

	var resp struct {
		CreateIssue struct {
			Issue issueNode `json:"issue"`
		} `json:"createIssue"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		c.forgetRepository()
		return domain.Issue{}, fmt.Errorf("failed to create issue: %w", err)
	}

	issue := resp.CreateIssue.Issue.toDomain()
	c.logger.Info("created issue", zap.String("repo", c.Repository()), zap.Int("number", issue.Number))
	return issue, nil
}

// UpdateIssue replaces the title, body and full label set of an existing issue.
// Returns ErrIssueNotFound if the number does not resolve.
func (c *Client) UpdateIssue(ctx context.Context, number int, fields domain.IssueFields) (domain.Issue, error) {
	nodeID, err := c.getIssueNodeID(ctx, number)
	if err != nil {
		return domain.Issue{}, err
	}
	labelIDs, err := c.resolveLabels(ctx, fields.Labels)
	if err != nil {
		return domain.Issue{}, err
	}

	req := graphql.NewRequest(`
		mutation($id: ID!, $title: String!, $body: String, $labelIds: [ID!]) {
			updateIssue(input: {id: $id, title: $title, body: $body, labelIds: $labelIds}) {
				issue {` + issueFields + `}
			}
		}
	`)
	req.Var("id", nodeID)
	req.Var("title", fields.Title)
	req.Var("body", fields.Body)
	req.Var("labelIds", labelIDs)

	var resp struct {
		UpdateIssue struct {
			Issue issueNode `json:"issue"`
		} `json:"updateIssue"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		c.forgetRepository()
		return domain.Issue{}, fmt.Errorf("failed to update issue #%d: %w", number, err)
	}

	c.logger.Info("updated issue", zap.String("repo", c.Repository()), zap.Int("number", number))
	return resp.UpdateIssue.Issue.toDomain(), nil
}

// CloseIssue closes an issue, which removes its task from the board.
// Returns ErrIssueNotFound if the number does not resolve.
func (c *Client) CloseIssue(ctx context.Context, number int) error {
	nodeID, err := c.getIssueNodeID(ctx, number)
	if err != nil {
		return err
	}

	req := graphql.NewRequest(`
		mutation($issueId: ID!) {
			closeIssue(input: {issueId: $issueId}) {
				issue {
					id
					state
				}
			}
		}
	`)
	req.Var("issueId", nodeID)

	var resp struct {
		CloseIssue struct {
			Issue struct {
				ID    string `json:"id"`
				State string `json:"state"`
			} `json:"issue"`
		} `json:"closeIssue"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", number, err)
	}

	c.logger.Info("closed issue", zap.String("repo", c.Repository()), zap.Int("number", number))
	return nil
}

// resolveLabels maps label names to node IDs, creating any missing labels.
// Names differing only in case resolve to the same label. A failed create reloads
// the label cache once and retries the lookup.
func (c *Client) resolveLabels(ctx context.Context, names []string) ([]string, error) {
	repoID, known, err := c.loadRepository(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	reloaded := false
	for _, name := range names {
		key := labelKey(name)
		if seen[key] {
			continue
		}

		c.mu.Lock()
		id, ok := known[key]
		c.mu.Unlock()
		if !ok {
			id, err = c.createLabel(ctx, repoID, name)
			if err != nil && !reloaded {
				reloaded = true
				c.forgetRepository()
				repoID, known, err = c.loadRepository(ctx)
				if err != nil {
					return nil, err
				}
				c.mu.Lock()
				id, ok = known[key]
				c.mu.Unlock()
				if !ok {
					id, err = c.createLabel(ctx, repoID, name)
				}
			}
			if err != nil {
				return nil, err
			}
			c.mu.Lock()
			known[key] = id
			c.mu.Unlock()
		}
		seen[key] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// createLabel adds a label to the repository and returns its node ID.
func (c *Client) createLabel(ctx context.Context, repoID, name string) (string, error) {
	req := graphql.NewRequest(`
		mutation($repositoryId: ID!, $name: String!, $color: String!) {
			createLabel(input: {repositoryId: $repositoryId, name: $name, color: $color}) {
				label {
					id
					name
				}
			}
		}
	`)
	req.Var("repositoryId", repoID)
	req.Var("name", name)
	req.Var("color", labelColor(name))

	var resp struct {
		CreateLabel struct {
			Label struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"label"`
		} `json:"createLabel"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", name, err)
	}

	c.logger.Debug("created label", zap.String("repo", c.Repository()), zap.String("label", name))
	return resp.CreateLabel.Label.ID, nil
}

func labelColor(name string) string {
	for prefix, color := range labelColors {
		if strings.HasPrefix(name, prefix) {
			return color
		}
	}
	return defaultLabelColor
}
