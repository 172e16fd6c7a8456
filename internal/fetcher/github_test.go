package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussionblog/entities"
	"discussionblog/internal/testutil"
)

func newTestFetcher(t *testing.T, fake *testutil.FakeGitHub) *GitHubFetcher {
	t.Helper()
	client := githubv4.NewEnterpriseClient(fake.GraphQLURL(), http.DefaultClient)
	return NewGitHubFetcher(client, "octo", "blog")
}

func testCategories() []entities.Category {
	return []entities.Category{
		{ID: "DIC_general", Name: "General"},
		{ID: "DIC_blog", Name: "Blog"},
	}
}

func TestGitHubFetcher_FetchPage(t *testing.T) {
	fake := testutil.NewFakeGitHub(testCategories(), testutil.Discussions(5, "DIC_blog"))
	defer fake.Close()

	g := newTestFetcher(t, fake)

	page, err := g.FetchPage(context.Background(), PageRequest{First: 2})
	require.NoError(t, err)

	require.Len(t, page.Nodes, 2)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.Equal(t, "cursor:2", page.PageInfo.EndCursor)

	first := page.Nodes[0]
	assert.Equal(t, 5, first.Number)
	assert.Equal(t, "Post 5", first.Title)
	assert.Equal(t, "https://github.com/octo/blog/discussions/5", first.URL)
	assert.Equal(t, []entities.Label{{Name: "go", Color: "00add8"}}, first.Labels)
	assert.False(t, first.CreatedAt.IsZero())
	assert.True(t, first.CreatedAt.After(page.Nodes[1].CreatedAt))

	vars := fake.LastVariables()
	assert.Equal(t, "octo", vars["owner"])
	assert.Equal(t, "blog", vars["name"])
	assert.EqualValues(t, 2, vars["first"])
	assert.Nil(t, vars["after"])
	assert.Nil(t, vars["categoryId"])
	assert.Equal(t, false, vars["body"])
	assert.EqualValues(t, LabelMaxCount, vars["labelFirst"])
	assert.Equal(t, 1, fake.DiscussionRequests())
}

func TestGitHubFetcher_FetchPage_LabelLimit(t *testing.T) {
	discussions := testutil.Discussions(1, "DIC_blog")
	discussions[0].Labels = nil
	for i := 0; i < LabelMaxCount+2; i++ {
		discussions[0].Labels = append(discussions[0].Labels, entities.Label{Name: fmt.Sprintf("label-%d", i), Color: "ededed"})
	}
	fake := testutil.NewFakeGitHub(testCategories(), discussions)
	defer fake.Close()

	page, err := newTestFetcher(t, fake).FetchPage(context.Background(), PageRequest{First: 10})
	require.NoError(t, err)

	require.Len(t, page.Nodes, 1)
	assert.Len(t, page.Nodes[0].Labels, LabelMaxCount)
	assert.Equal(t, "label-0", page.Nodes[0].Labels[0].Name)
}

func TestGitHubFetcher_FetchPage_CursorAndCategory(t *testing.T) {
	discussions := append(testutil.Discussions(3, "DIC_general"), testutil.Discussions(4, "DIC_blog")...)
	fake := testutil.NewFakeGitHub(testCategories(), discussions)
	defer fake.Close()

	g := newTestFetcher(t, fake)

	page, err := g.FetchPage(context.Background(), PageRequest{First: 3, After: "cursor:2", CategoryID: "DIC_blog"})
	require.NoError(t, err)

	assert.Len(t, page.Nodes, 2)
	assert.False(t, page.PageInfo.HasNextPage)

	vars := fake.LastVariables()
	assert.Equal(t, "cursor:2", vars["after"])
	assert.Equal(t, "DIC_blog", vars["categoryId"])
}

func TestGitHubFetcher_FetchPage_Body(t *testing.T) {
	fake := testutil.NewFakeGitHub(testCategories(), testutil.Discussions(3, "DIC_blog"))
	defer fake.Close()

	g := newTestFetcher(t, fake)

	withBody, err := g.FetchPage(context.Background(), PageRequest{First: 10, IncludeBody: true})
	require.NoError(t, err)
	for _, d := range withBody.Nodes {
		require.NotNil(t, d.Body)
		assert.NotEmpty(t, *d.Body)
	}

	withoutBody, err := g.FetchPage(context.Background(), PageRequest{First: 10})
	require.NoError(t, err)
	for _, d := range withoutBody.Nodes {
		assert.Nil(t, d.Body)
	}
}

func TestGitHubFetcher_FetchPage_PageSizeAboveLimit(t *testing.T) {
	fake := testutil.NewFakeGitHub(testCategories(), testutil.Discussions(3, "DIC_blog"))
	defer fake.Close()

	g := newTestFetcher(t, fake)

	_, err := g.FetchPage(context.Background(), PageRequest{First: MaxPageSize + 1})
	require.Error(t, err)

	var remote *RemoteFetchError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "discussions", remote.Op)
	assert.EqualValues(t, MaxPageSize+1, fake.LastVariables()["first"])
}

func TestGitHubFetcher_FetchPage_GraphQLError(t *testing.T) {
	fake := testutil.NewFakeGitHub(testCategories(), testutil.Discussions(3, "DIC_blog"))
	defer fake.Close()
	fake.FailDiscussionsRequest(1)

	g := newTestFetcher(t, fake)

	_, err := g.FetchPage(context.Background(), PageRequest{First: 10, After: "cursor:1"})
	require.Error(t, err)

	var remote *RemoteFetchError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "cursor:1", remote.Cursor)
	assert.Contains(t, err.Error(), "Something went wrong")
}

func TestGitHubFetcher_FetchCategories(t *testing.T) {
	fake := testutil.NewFakeGitHub(testCategories(), nil)
	defer fake.Close()

	g := newTestFetcher(t, fake)

	categories, err := g.FetchCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testCategories(), categories)
	assert.EqualValues(t, CategoryMaxCount, fake.LastVariables()["categoryFirst"])
	assert.Equal(t, 1, fake.CategoryRequests())
	assert.Equal(t, 0, fake.DiscussionRequests())
}

func TestGitHubFetcher_FetchAllOverGraphQL(t *testing.T) {
	discussions := append(testutil.Discussions(7, "DIC_general"), testutil.Discussions(45, "DIC_blog")...)
	fake := testutil.NewFakeGitHub(testCategories(), discussions)
	defer fake.Close()

	g := newTestFetcher(t, fake)

	got, err := FetchAll(context.Background(), g, FetchOptions{PageSize: 10, CategoryID: "DIC_blog"})
	require.NoError(t, err)

	assert.Len(t, got, 45)
	assertNewestFirst(t, got)
	assert.Equal(t, 5, fake.DiscussionRequests())
}
