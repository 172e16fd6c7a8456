package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageRequests counts GraphQL round trips by query
	PageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discussionblog_graphql_requests_total",
			Help: "Total number of GraphQL requests sent to GitHub",
		},
		[]string{"query"}, // "discussions", "categories"
	)

	// PageErrors counts failed GraphQL round trips by query
	PageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discussionblog_graphql_errors_total",
			Help: "Total number of failed GraphQL requests",
		},
		[]string{"query"},
	)
)
