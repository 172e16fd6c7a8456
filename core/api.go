package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	githubV3 "github.com/google/go-github/v48/github"
)

const (
	// DefaultTimeout bounds a single HTTP round trip to GitHub.
	DefaultTimeout = 30 * time.Second
)

// Options tunes the transport. The zero value talks to github.com without throttling.
type Options struct {
	// GraphQLURL overrides the GraphQL endpoint (GitHub Enterprise, tests).
	GraphQLURL string
	// RESTURL overrides the REST base URL used for rate limit status.
	RESTURL string
	// RequestsPerSecond throttles outgoing requests; 0 disables throttling.
	RequestsPerSecond float64
	// Timeout is the per-request timeout; 0 means DefaultTimeout.
	Timeout time.Duration
}

// API is the transport to a single repository: a fixed owner, name and token.
type API struct {
	client   *githubv4.Client
	clientV3 *githubV3.Client
	owner    string
	repo     string
}

func oauth2Client(accessToken string, opts Options) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)

	var base http.RoundTripper = http.DefaultTransport
	if opts.RequestsPerSecond > 0 {
		base = &throttledTransport{
			base:    base,
			limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: base},
		Timeout:   timeout,
	}
}

// NewApi builds the GraphQL and REST clients sharing one authenticated http.Client.
func NewApi(owner string, repo string, accessToken string, opts Options) (*API, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	oauthClient := oauth2Client(accessToken, opts)

	api := &API{
		client:   githubv4.NewClient(oauthClient),
		clientV3: githubV3.NewClient(oauthClient),
		owner:    owner,
		repo:     repo,
	}

	if opts.GraphQLURL != "" {
		api.client = githubv4.NewEnterpriseClient(opts.GraphQLURL, oauthClient)
	}

	if opts.RESTURL != "" {
		clientV3, err := githubV3.NewEnterpriseClient(opts.RESTURL, opts.RESTURL, oauthClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create REST client: %w", err)
		}
		api.clientV3 = clientV3
	}

	return api, nil
}

func (api *API) Owner() string { return api.owner }

func (api *API) Repo() string { return api.repo }

// Query executes one GraphQL query. q must be a pointer to a githubv4 query struct.
func (api *API) Query(ctx context.Context, q interface{}, variables map[string]interface{}) error {
	return api.client.Query(ctx, q, variables)
}

// RateLimit reports the token's remaining REST and GraphQL quota.
func (api *API) RateLimit(ctx context.Context) (*githubV3.RateLimits, error) {
	limits, _, err := api.clientV3.RateLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate limits: %w", err)
	}
	return limits, nil
}
