package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/pkg/models"
)

// DefaultBranchFallback is used when GitHub reports no default branch.
const DefaultBranchFallback = "main"

// RESTListLimit bounds the legacy `gh repo list` fallback.
const RESTListLimit = 200

const forksQuery = `
query($cursor: String) {
  viewer {
    repositories(
      first: 100
      isFork: true
      orderBy: {field: CREATED_AT, direction: DESC}
      after: $cursor
    ) {
      pageInfo { hasNextPage endCursor }
      nodes {
        name
        owner { login }
        parent { name owner { login } }
        defaultBranchRef { name }
        description
        primaryLanguage { name }
        createdAt
        updatedAt
        isArchived
      }
    }
  }
}
`

type login struct {
	Login string `json:"login"`
}

type named struct {
	Name string `json:"name"`
}

type repoNode struct {
	Name             string `json:"name"`
	Owner            login  `json:"owner"`
	Parent           *struct {
		Name  string `json:"name"`
		Owner login  `json:"owner"`
	} `json:"parent"`
	DefaultBranchRef *named `json:"defaultBranchRef"`
	Description      string `json:"description"`
	PrimaryLanguage  *named `json:"primaryLanguage"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	IsArchived       bool   `json:"isArchived"`
}

type graphQLResponse struct {
	Data *struct {
		Viewer struct {
			Repositories struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []repoNode `json:"nodes"`
			} `json:"repositories"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// toFork converts a listed repository, returning false for archived or
// parentless entries.
func (n repoNode) toFork(toolHome string) (models.Fork, bool) {
	if n.IsArchived || n.Parent == nil {
		return models.Fork{}, false
	}

	branch := DefaultBranchFallback
	if n.DefaultBranchRef != nil && n.DefaultBranchRef.Name != "" {
		branch = n.DefaultBranchRef.Name
	}

	fork := models.Fork{
		Owner:         n.Owner.Login,
		Name:          n.Name,
		ParentOwner:   n.Parent.Owner.Login,
		ParentName:    n.Parent.Name,
		DefaultBranch: branch,
		LocalPath:     models.LocalPathFor(toolHome, n.Owner.Login, n.Name),
		Description:   n.Description,
		CreatedAt:     parseTime(n.CreatedAt),
		UpdatedAt:     parseTime(n.UpdatedAt),
	}
	if n.PrimaryLanguage != nil {
		fork.Language = n.PrimaryLanguage.Name
	}
	return fork.RefreshCloned(), true
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// FetchForks lists the viewer's non-archived forks, newest first, trying
// GraphQL and falling back to `gh repo list`.
func (c *Client) FetchForks(ctx context.Context, toolHome string) ([]models.Fork, error) {
	forks, err := c.FetchForksGraphQL(ctx, toolHome)
	if err == nil {
		return forks, nil
	}
	c.log.WithError(err).Warn("GraphQL fetch failed, falling back to REST")

	forks, restErr := c.FetchForksREST(ctx, toolHome)
	if restErr != nil {
		return nil, errors.FetchFailed(restErr)
	}
	return forks, nil
}

// FetchForksGraphQL pages through the viewer's forks with the GraphQL API.
func (c *Client) FetchForksGraphQL(ctx context.Context, toolHome string) ([]models.Fork, error) {
	var forks []models.Fork
	cursor := ""

	for {
		args := []string{"api", "graphql", "-f", "query=" + forksQuery}
		if cursor != "" {
			args = append(args, "-f", "cursor="+cursor)
		}

		res, err := c.gh(ctx, c.timeouts.API, "", args...)
		if err != nil {
			return nil, fmt.Errorf("gh graphql failed: %w", err)
		}

		var resp graphQLResponse
		if err := json.Unmarshal([]byte(res.Stdout), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse GraphQL response: %w", err)
		}
		if len(resp.Errors) > 0 {
			msgs := make([]string, len(resp.Errors))
			for i, e := range resp.Errors {
				msgs[i] = e.Message
			}
			return nil, fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, ", "))
		}
		if resp.Data == nil {
			return nil, fmt.Errorf("no data in GraphQL response")
		}

		repos := resp.Data.Viewer.Repositories
		for _, node := range repos.Nodes {
			if fork, ok := node.toFork(toolHome); ok {
				forks = append(forks, fork)
			}
		}

		if !repos.PageInfo.HasNextPage || repos.PageInfo.EndCursor == "" {
			break
		}
		cursor = repos.PageInfo.EndCursor
	}

	return forks, nil
}

// FetchForksREST lists forks with `gh repo list`. Timestamps are not
// available from this path.
func (c *Client) FetchForksREST(ctx context.Context, toolHome string) ([]models.Fork, error) {
	res, err := c.gh(ctx, c.timeouts.API, "",
		"repo", "list", "--fork",
		"--limit", fmt.Sprint(RESTListLimit),
		"--json", "name,owner,parent,defaultBranchRef,isArchived,description,primaryLanguage")
	if err != nil {
		return nil, err
	}

	var nodes []repoNode
	if err := json.Unmarshal([]byte(res.Stdout), &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse gh repo list output: %w", err)
	}

	forks := make([]models.Fork, 0, len(nodes))
	for _, node := range nodes {
		node.CreatedAt, node.UpdatedAt = "", ""
		if fork, ok := node.toFork(toolHome); ok {
			forks = append(forks, fork)
		}
	}
	return forks, nil
}
