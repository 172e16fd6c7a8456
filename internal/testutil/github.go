// Package testutil provides an in-process fake of the GitHub GraphQL and REST APIs.
package testutil

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"discussionblog/entities"
)

// FakeDiscussion is a discussion stored by the fake together with its category.
type FakeDiscussion struct {
	entities.Discussion
	CategoryID string
}

// FakeGitHub serves discussions and categories over GraphQL and rate limits over REST.
// Discussions are always served newest first; cursors are opaque offsets.
type FakeGitHub struct {
	server *httptest.Server

	mu          sync.Mutex
	categories  []entities.Category
	discussions []FakeDiscussion

	// failOnRequest is the 1-based discussions request that answers with a GraphQL error
	failOnRequest int
	// hold blocks discussions requests until closed
	hold chan struct{}

	categoryRequests   int
	discussionRequests int
	lastVariables      map[string]interface{}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// NewFakeGitHub starts a fake server. Call Close when done.
func NewFakeGitHub(categories []entities.Category, discussions []FakeDiscussion) *FakeGitHub {
	sorted := append([]FakeDiscussion(nil), discussions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	fake := &FakeGitHub{
		categories:  categories,
		discussions: sorted,
	}

	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/graphql":
			fake.serveGraphQL(w, r)
		case strings.HasSuffix(r.URL.Path, "/rate_limit"):
			fake.serveRateLimit(w)
		default:
			http.NotFound(w, r)
		}
	}))

	return fake
}

// GraphQLURL is the GraphQL endpoint of the fake.
func (f *FakeGitHub) GraphQLURL() string {
	return f.server.URL + "/graphql"
}

// RESTURL is the REST base URL of the fake.
func (f *FakeGitHub) RESTURL() string {
	return f.server.URL + "/"
}

func (f *FakeGitHub) Close() {
	f.server.Close()
}

// FailDiscussionsRequest makes the n-th discussions request (1-based, counted from
// now on) fail. 0 disables failures.
func (f *FakeGitHub) FailDiscussionsRequest(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n == 0 {
		f.failOnRequest = 0
		return
	}
	f.failOnRequest = f.discussionRequests + n
}

// Hold blocks every discussions request until the returned func is called.
func (f *FakeGitHub) Hold() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hold := make(chan struct{})
	f.hold = hold
	var once sync.Once
	return func() { once.Do(func() { close(hold) }) }
}

func (f *FakeGitHub) CategoryRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categoryRequests
}

func (f *FakeGitHub) DiscussionRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discussionRequests
}

// LastVariables returns the variables of the most recent GraphQL request.
func (f *FakeGitHub) LastVariables() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastVariables
}

func (f *FakeGitHub) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if strings.Contains(req.Query, "discussionCategories") {
		f.mu.Lock()
		f.categoryRequests++
		f.lastVariables = req.Variables
		f.mu.Unlock()
		f.serveCategories(w, req.Variables)
		return
	}

	f.mu.Lock()
	f.discussionRequests++
	f.lastVariables = req.Variables
	fail := f.failOnRequest != 0 && f.discussionRequests == f.failOnRequest
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}

	if fail {
		writeJSON(w, map[string]interface{}{
			"data":   nil,
			"errors": []map[string]interface{}{{"message": "Something went wrong while executing your query."}},
		})
		return
	}

	f.serveDiscussions(w, req.Variables)
}

func (f *FakeGitHub) serveCategories(w http.ResponseWriter, vars map[string]interface{}) {
	categories := f.categories
	if first, ok := vars["categoryFirst"].(float64); ok && int(first) < len(categories) {
		categories = categories[:int(first)]
	}

	nodes := make([]map[string]interface{}, 0, len(categories))
	for _, c := range categories {
		nodes = append(nodes, map[string]interface{}{"id": c.ID, "name": c.Name})
	}
	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"discussionCategories": map[string]interface{}{"nodes": nodes},
			},
		},
	})
}

func (f *FakeGitHub) serveDiscussions(w http.ResponseWriter, vars map[string]interface{}) {
	first, _ := vars["first"].(float64)
	if first < 1 || first > 100 {
		writeJSON(w, map[string]interface{}{
			"data":   nil,
			"errors": []map[string]interface{}{{"message": fmt.Sprintf("Requesting %v records on the `discussions` connection exceeds the `first` limit of 100 records.", first)}},
		})
		return
	}

	categoryID, _ := vars["categoryId"].(string)
	includeBody, _ := vars["body"].(bool)
	labelFirst := math.MaxInt
	if n, ok := vars["labelFirst"].(float64); ok {
		labelFirst = int(n)
	}

	var matching []FakeDiscussion
	for _, d := range f.discussions {
		if categoryID == "" || d.CategoryID == categoryID {
			matching = append(matching, d)
		}
	}

	start := 0
	if after, ok := vars["after"].(string); ok && after != "" {
		offset, err := strconv.Atoi(strings.TrimPrefix(after, "cursor:"))
		if err != nil {
			http.Error(w, "bad cursor", http.StatusBadRequest)
			return
		}
		start = offset
	}

	end := start + int(first)
	if end > len(matching) {
		end = len(matching)
	}
	if start > end {
		start = end
	}

	nodes := make([]map[string]interface{}, 0, end-start)
	for _, d := range matching[start:end] {
		labels := make([]map[string]interface{}, 0, len(d.Labels))
		for i, l := range d.Labels {
			if i >= labelFirst {
				break
			}
			labels = append(labels, map[string]interface{}{"name": l.Name, "color": l.Color})
		}
		node := map[string]interface{}{
			"number":    d.Number,
			"title":     d.Title,
			"createdAt": d.CreatedAt.UTC().Format(time.RFC3339),
			"updatedAt": d.UpdatedAt.UTC().Format(time.RFC3339),
			"url":       d.URL,
			"labels":    map[string]interface{}{"nodes": labels},
		}
		if includeBody {
			body := ""
			if d.Body != nil {
				body = *d.Body
			}
			node["body"] = body
		}
		nodes = append(nodes, node)
	}

	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"discussions": map[string]interface{}{
					"pageInfo": map[string]interface{}{
						"endCursor":   fmt.Sprintf("cursor:%d", end),
						"hasNextPage": end < len(matching),
					},
					"nodes": nodes,
				},
			},
		},
	})
}

func (f *FakeGitHub) serveRateLimit(w http.ResponseWriter) {
	reset := time.Now().Add(time.Hour).Unix()
	writeJSON(w, map[string]interface{}{
		"resources": map[string]interface{}{
			"core":    map[string]interface{}{"limit": 5000, "remaining": 4990, "reset": reset},
			"graphql": map[string]interface{}{"limit": 5000, "remaining": 4321, "reset": reset},
		},
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Discussions generates n discussions in categoryID, one hour apart, newest first.
func Discussions(n int, categoryID string) []FakeDiscussion {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]FakeDiscussion, n)
	for i := 0; i < n; i++ {
		created := base.Add(-time.Duration(i) * time.Hour)
		body := fmt.Sprintf("Body of post %d", n-i)
		out[i] = FakeDiscussion{
			Discussion: entities.Discussion{
				Number:    n - i,
				Title:     fmt.Sprintf("Post %d", n-i),
				CreatedAt: created,
				UpdatedAt: created.Add(30 * time.Minute),
				URL:       fmt.Sprintf("https://github.com/octo/blog/discussions/%d", n-i),
				Labels:    []entities.Label{{Name: "go", Color: "00add8"}},
				Body:      &body,
			},
			CategoryID: categoryID,
		}
	}
	return out
}
