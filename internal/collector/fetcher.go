package collector

import (
	"context"
	"net/url"
)

// Payload is a decoded provider JSON object.
type Payload map[string]interface{}

// Request identifies one provider call.
type Request struct {
	Function string
	Symbol   string
	Params   url.Values
}

// Fetcher performs provider calls. Query returns (nil, false) for every kind
// of failure; callers only see presence or absence of data.
type Fetcher interface {
	Query(ctx context.Context, req Request) (Payload, bool)
	HasCredential() bool
	Name() string
}
