package common

import (
	"context"
	"net/http"
	"net/url"
)

// Request is an immutable view of an incoming request.
// Every With* method returns a new Request; the receiver is never modified,
// so a value handed to one hook can't be changed by a later one.
type Request struct {
	ctx        context.Context
	method     string
	path       string
	header     http.Header
	body       []byte
	metadata   map[string]any
	params     Params
	route      string
	remoteAddr string
	rawQuery   string
}

// RequestOption configures a Request built by NewRequest.
type RequestOption func(*Request)

// WithRequestHeader sets the initial headers. The header is cloned.
func WithRequestHeader(h http.Header) RequestOption {
	return func(r *Request) {
		r.header = h.Clone()
	}
}

// WithRequestBody sets the initial body. The bytes are copied.
func WithRequestBody(body []byte) RequestOption {
	return func(r *Request) {
		r.body = cloneBytes(body)
	}
}

// WithRemoteAddr records the network address of the client.
func WithRemoteAddr(addr string) RequestOption {
	return func(r *Request) {
		r.remoteAddr = addr
	}
}

// WithRawQuery sets the encoded query string, without the leading '?'.
func WithRawQuery(query string) RequestOption {
	return func(r *Request) {
		r.rawQuery = query
	}
}

// WithRequestContext sets the context carried by the request.
func WithRequestContext(ctx context.Context) RequestOption {
	return func(r *Request) {
		r.ctx = ctx
	}
}

// NewRequest creates a Request for the given method and path.
func NewRequest(method, path string, opts ...RequestOption) Request {
	r := Request{
		method: method,
		path:   path,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Context returns the request's context, never nil.
func (r Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Method returns the HTTP method.
func (r Request) Method() string { return r.method }

// Path returns the request path as received.
func (r Request) Path() string { return r.path }

// Route returns the pattern of the matched route, e.g. "/users/:id".
// It is empty until the router has matched the request.
func (r Request) Route() string { return r.route }

// Query parses and returns the query string values.
// Malformed pairs are dropped.
func (r Request) Query() url.Values {
	values, _ := url.ParseQuery(r.rawQuery)
	return values
}

// RemoteAddr returns the network address of the client, if known.
func (r Request) RemoteAddr() string { return r.remoteAddr }

// Header returns a copy of the request headers.
func (r Request) Header() http.Header {
	if r.header == nil {
		return http.Header{}
	}
	return r.header.Clone()
}

// HeaderValue returns the first value of the named header.
func (r Request) HeaderValue(name string) string {
	return r.header.Get(name)
}

// HeaderValues returns all values of the named header in order.
func (r Request) HeaderValues(name string) []string {
	values := r.header.Values(name)
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Body returns the request body. Callers must not modify the returned slice.
func (r Request) Body() []byte { return r.body }

// Param returns the value bound to a path parameter.
func (r Request) Param(name string) string { return r.params.Get(name) }

// Params returns a copy of all bound path parameters.
func (r Request) Params() Params {
	if r.params == nil {
		return Params{}
	}
	return r.params.clone()
}

// Metadata returns the value stored under key by a hook.
func (r Request) Metadata(key string) (any, bool) {
	v, ok := r.metadata[key]
	return v, ok
}

// MetadataLen returns the number of metadata entries.
func (r Request) MetadataLen() int { return len(r.metadata) }

// WithMetadata returns a copy of r with key set to value.
func (r Request) WithMetadata(key string, value any) Request {
	md := make(map[string]any, len(r.metadata)+1)
	for k, v := range r.metadata {
		md[k] = v
	}
	md[key] = value
	r.metadata = md
	return r
}

// WithHeader returns a copy of r with the named header replaced by values.
func (r Request) WithHeader(name string, values ...string) Request {
	r.header = replaceHeader(r.header, name, values)
	return r
}

// WithAddedHeader returns a copy of r with value appended to the named header.
func (r Request) WithAddedHeader(name, value string) Request {
	r.header = addHeader(r.header, name, value)
	return r
}

// WithBody returns a copy of r carrying body. The bytes are copied.
func (r Request) WithBody(body []byte) Request {
	r.body = cloneBytes(body)
	return r
}

// WithContext returns a copy of r carrying ctx.
func (r Request) WithContext(ctx context.Context) Request {
	r.ctx = ctx
	return r
}

// WithParams returns a copy of r with the given path parameters.
func (r Request) WithParams(params Params) Request {
	r.params = params.clone()
	return r
}

// WithRoute returns a copy of r recording the matched route pattern.
func (r Request) WithRoute(pattern string) Request {
	r.route = pattern
	return r
}

func replaceHeader(h http.Header, name string, values []string) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	out.Del(name)
	for _, v := range values {
		out.Add(name, v)
	}
	return out
}

func addHeader(h http.Header, name, value string) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	out.Add(name, value)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
