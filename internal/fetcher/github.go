package fetcher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shurcooL/githubv4"

	"discussionblog/entities"
)

const (
	// MaxPageSize is GitHub's ceiling for `first` on a connection.
	MaxPageSize = 100

	// LabelMaxCount is how many labels are requested per discussion.
	LabelMaxCount = 10

	// CategoryMaxCount bounds the category list; categories are not paginated.
	CategoryMaxCount = 100
)

// Transport executes one GraphQL query against GitHub.
// *githubv4.Client and *core.API both satisfy it.
type Transport interface {
	Query(ctx context.Context, q interface{}, variables map[string]interface{}) error
}

// GitHubFetcher fetches discussion pages and categories of one repository.
type GitHubFetcher struct {
	client Transport
	owner  string
	repo   string
}

// NewGitHubFetcher creates a new GitHubFetcher
func NewGitHubFetcher(client Transport, owner, repo string) *GitHubFetcher {
	return &GitHubFetcher{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

type discussionNode struct {
	Number    int
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	URL       string
	Body      *string `graphql:"body @include(if: $body)"`
	Labels    struct {
		Nodes []struct {
			Name  string
			Color string
		}
	} `graphql:"labels(first: $labelFirst)"`
}

// FetchPage issues exactly one discussions query. The page size is sent as given,
// so sizes above MaxPageSize come back as a RemoteFetchError.
func (g *GitHubFetcher) FetchPage(ctx context.Context, req PageRequest) (*entities.Page, error) {
	var query struct {
		Repository struct {
			Discussions struct {
				Nodes    []discussionNode
				PageInfo struct {
					EndCursor   string
					HasNextPage bool
				}
			} `graphql:"discussions(first: $first, after: $after, categoryId: $categoryId, orderBy: {field: CREATED_AT, direction: DESC})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner":      githubv4.String(g.owner),
		"name":       githubv4.String(g.repo),
		"first":      githubv4.Int(req.First),
		"after":      (*githubv4.String)(nil),
		"categoryId": (*githubv4.ID)(nil),
		"body":       githubv4.Boolean(req.IncludeBody),
		"labelFirst": githubv4.Int(LabelMaxCount),
	}

	if len(req.After) > 0 {
		variables["after"] = githubv4.NewString(githubv4.String(req.After))
	}

	if len(req.CategoryID) > 0 {
		variables["categoryId"] = githubv4.NewID(req.CategoryID)
	}

	log.Debug().
		Str("after", req.After).
		Str("category_id", req.CategoryID).
		Int("first", req.First).
		Bool("body", req.IncludeBody).
		Msg("Fetching discussions page")

	PageRequests.WithLabelValues("discussions").Inc()
	if err := g.client.Query(ctx, &query, variables); err != nil {
		PageErrors.WithLabelValues("discussions").Inc()
		return nil, &RemoteFetchError{Op: "discussions", Cursor: req.After, Err: err}
	}

	conn := query.Repository.Discussions
	page := &entities.Page{
		Nodes: make([]entities.Discussion, 0, len(conn.Nodes)),
		PageInfo: entities.PageInfo{
			EndCursor:   conn.PageInfo.EndCursor,
			HasNextPage: conn.PageInfo.HasNextPage,
		},
	}

	for _, node := range conn.Nodes {
		labels := make([]entities.Label, len(node.Labels.Nodes))
		for i, label := range node.Labels.Nodes {
			labels[i] = entities.Label{Name: label.Name, Color: label.Color}
		}

		d := entities.Discussion{
			Number:    node.Number,
			Title:     node.Title,
			CreatedAt: node.CreatedAt,
			UpdatedAt: node.UpdatedAt,
			URL:       node.URL,
			Labels:    labels,
		}
		if req.IncludeBody {
			d.Body = node.Body
		}
		page.Nodes = append(page.Nodes, d)
	}

	return page, nil
}

// FetchCategories fetches the first CategoryMaxCount discussion categories in one query.
func (g *GitHubFetcher) FetchCategories(ctx context.Context) ([]entities.Category, error) {
	var query struct {
		Repository struct {
			DiscussionCategories struct {
				Nodes []struct {
					ID   string
					Name string
				}
			} `graphql:"discussionCategories(first: $categoryFirst)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner":         githubv4.String(g.owner),
		"name":          githubv4.String(g.repo),
		"categoryFirst": githubv4.Int(CategoryMaxCount),
	}

	PageRequests.WithLabelValues("categories").Inc()
	if err := g.client.Query(ctx, &query, variables); err != nil {
		PageErrors.WithLabelValues("categories").Inc()
		return nil, &RemoteFetchError{Op: "categories", Err: err}
	}

	nodes := query.Repository.DiscussionCategories.Nodes
	categories := make([]entities.Category, len(nodes))
	for i, c := range nodes {
		categories[i] = entities.Category{ID: c.ID, Name: c.Name}
	}

	log.Debug().
		Int("count", len(categories)).
		Msg("Fetched discussion categories")

	return categories, nil
}
