package common

// PreHookFunc runs before the handler. It receives the Request and the
// Response built so far and returns a tagged result: Continue to proceed
// with possibly updated values, or ShortCircuit to stop with a final Response.
type PreHookFunc func(req Request, resp Response) PreHookResult

// PostHookFunc runs after the handler, or after a short-circuit.
// It can't stop the chain.
type PostHookFunc func(req Request, resp Response) (Request, Response)

// PreHook is a named pre-request hook with its sharing policy.
type PreHook struct {
	// Name identifies the hook. Attaching a second hook with the same
	// non-empty name to one route node is ignored.
	Name string

	// Func is the hook behavior.
	Func PreHookFunc

	// ShareWithChildRoutes makes the hook apply to every route below the
	// node it is attached to, not only the node itself.
	ShareWithChildRoutes bool
}

// PostHook is a named post-response hook with its sharing policy.
type PostHook struct {
	Name                 string
	Func                 PostHookFunc
	ShareWithChildRoutes bool
}

// NewPreHook builds a PreHook.
func NewPreHook(name string, share bool, fn PreHookFunc) PreHook {
	return PreHook{Name: name, Func: fn, ShareWithChildRoutes: share}
}

// NewPostHook builds a PostHook.
func NewPostHook(name string, share bool, fn PostHookFunc) PostHook {
	return PostHook{Name: name, Func: fn, ShareWithChildRoutes: share}
}

// Run calls the hook function. A nil Func continues unchanged.
func (h PreHook) Run(req Request, resp Response) PreHookResult {
	if h.Func == nil {
		return Continue(req, resp)
	}
	return h.Func(req, resp)
}

// Run calls the hook function. A nil Func passes values through.
func (h PostHook) Run(req Request, resp Response) (Request, Response) {
	if h.Func == nil {
		return req, resp
	}
	return h.Func(req, resp)
}

// PreHookResult is the outcome of a pre-hook.
type PreHookResult struct {
	request      Request
	response     Response
	shortCircuit bool
}

// Continue lets the chain proceed with req and resp.
func Continue(req Request, resp Response) PreHookResult {
	return PreHookResult{request: req, response: resp}
}

// ShortCircuit stops the pre-hook chain; resp becomes the early response
// and the handler is skipped.
func ShortCircuit(resp Response) PreHookResult {
	return PreHookResult{response: resp, shortCircuit: true}
}

// IsShortCircuit reports whether the hook stopped the chain.
func (r PreHookResult) IsShortCircuit() bool { return r.shortCircuit }

// Request returns the request to pass on. It is the zero Request for a
// short-circuit result; the pipeline keeps the previous one in that case.
func (r PreHookResult) Request() Request { return r.request }

// Response returns the response carried by the result.
func (r PreHookResult) Response() Response { return r.response }
