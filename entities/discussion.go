package entities

import "time"

// Discussion is a single post of the repository's discussion board.
// Body is nil unless the body was explicitly requested.
type Discussion struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
	Labels    []Label   `json:"labels"`
	Body      *string   `json:"body,omitempty"`
}

type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PageInfo carries the cursor of the last node in a page.
type PageInfo struct {
	EndCursor   string
	HasNextPage bool
}

// Page is one response of the discussions connection.
type Page struct {
	Nodes    []Discussion
	PageInfo PageInfo
}

// LabelNames returns the label names in their original order.
func (d Discussion) LabelNames() []string {
	names := make([]string, len(d.Labels))
	for i, l := range d.Labels {
		names[i] = l.Name
	}
	return names
}
