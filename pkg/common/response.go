package common

import "net/http"

// Response is an immutable outgoing response.
// Like Request, every With* method returns a new value.
type Response struct {
	statusCode int
	header     http.Header
	body       []byte
}

// NewResponse creates a Response with the given status code and body.
func NewResponse(statusCode int, body []byte) Response {
	return Response{
		statusCode: statusCode,
		body:       cloneBytes(body),
	}
}

// TextResponse creates a plain text Response.
func TextResponse(statusCode int, body string) Response {
	return Response{
		statusCode: statusCode,
		header:     http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
		body:       []byte(body),
	}
}

// StatusCode returns the HTTP status code.
func (r Response) StatusCode() int { return r.statusCode }

// Header returns a copy of the response headers.
func (r Response) Header() http.Header {
	if r.header == nil {
		return http.Header{}
	}
	return r.header.Clone()
}

// HeaderValue returns the first value of the named header.
func (r Response) HeaderValue(name string) string {
	return r.header.Get(name)
}

// Body returns the response body. Callers must not modify the returned slice.
func (r Response) Body() []byte { return r.body }

// BodyString returns the body as a string.
func (r Response) BodyString() string { return string(r.body) }

// WithStatus returns a copy of r with the given status code.
func (r Response) WithStatus(statusCode int) Response {
	r.statusCode = statusCode
	return r
}

// WithHeader returns a copy of r with the named header replaced by values.
func (r Response) WithHeader(name string, values ...string) Response {
	r.header = replaceHeader(r.header, name, values)
	return r
}

// WithAddedHeader returns a copy of r with value appended to the named header.
func (r Response) WithAddedHeader(name, value string) Response {
	r.header = addHeader(r.header, name, value)
	return r
}

// WithoutHeader returns a copy of r with the named header removed.
func (r Response) WithoutHeader(name string) Response {
	r.header = replaceHeader(r.header, name, nil)
	return r
}

// WithBody returns a copy of r carrying body. The bytes are copied.
func (r Response) WithBody(body []byte) Response {
	r.body = cloneBytes(body)
	return r
}

// WithBodyString returns a copy of r carrying body.
func (r Response) WithBodyString(body string) Response {
	r.body = []byte(body)
	return r
}

// WriteTo writes the response to an http.ResponseWriter.
// A zero status code is written as 200.
func (r Response) WriteTo(w http.ResponseWriter) error {
	for name, values := range r.header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	status := r.statusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.body) == 0 {
		return nil
	}
	_, err := w.Write(r.body)
	return err
}
