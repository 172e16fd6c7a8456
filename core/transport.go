package core

import (
	"net/http"

	"golang.org/x/time/rate"
)

// throttledTransport waits on a token bucket before every request.
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
