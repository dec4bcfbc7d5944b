// Package common provides the value types shared by every Gazelle package:
// the immutable Request and Response, the hook contracts, and hook chains.
package common

// Handler produces the baseline Response for a matched route.
// A returned error is converted by the dispatch pipeline into a failure response.
type Handler func(req Request) (Response, error)

// Params holds the path parameters bound while matching a route.
type Params map[string]string

// Get returns the value bound to name, or an empty string.
func (p Params) Get(name string) string {
	return p[name]
}

// clone returns a copy of p; a nil map stays nil.
func (p Params) clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Metadata keys written by the framework and its plugins.
const (
	// MetadataTraceID holds the request's trace ID as a string.
	MetadataTraceID = "gazelle.trace_id"

	// MetadataClientIP holds the resolved client IP as a string.
	MetadataClientIP = "gazelle.client_ip"

	// MetadataUserID holds the authenticated user's ID as a string.
	MetadataUserID = "gazelle.user_id"
)
