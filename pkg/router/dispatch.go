package router

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"go.uber.org/zap"
)

// Dispatch runs one request through the pipeline:
//
//	Matching -> PreHooks -> Handling -> PostHooks -> Done
//
// An unmatched request gets a 404 and runs no hooks. A pre-hook that returns
// ShortCircuit skips the remaining pre-hooks and the handler; post-hooks then
// run for every node layer up to and including the one whose hook stopped the
// chain. A handler error or panic becomes a 500, or the status of an
// *HTTPError. Post-hooks always run to completion once entered.
//
// Steps of one dispatch run sequentially in the calling goroutine.
func (r *Router) Dispatch(req common.Request) common.Response {
	node, params, err := r.Match(req.Method(), req.Path())
	if err != nil {
		r.logger.Debug("Route not found",
			zap.String("method", req.Method()),
			zap.String("path", req.Path()),
		)
		return common.TextResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}

	handler := node.handlers[strings.ToUpper(req.Method())]
	req = req.WithParams(params).WithRoute(node.pattern)
	layers := hookLayers(node)
	resp := common.NewResponse(http.StatusOK, nil)

	// Pre-hooks, layer by layer; entered counts the layers whose post-hooks run
	entered := len(layers)
	shortCircuited := false
	for i, layer := range layers {
		for _, hook := range layer.Pre {
			result := r.runPreHook(hook, req, resp)
			if result.IsShortCircuit() {
				resp = result.Response()
				shortCircuited = true
				r.logger.Debug("Pre-hook short-circuited request", r.fields(req,
					zap.String("hook", hook.Name),
					zap.Int("status", resp.StatusCode()),
				)...)
				break
			}
			req, resp = result.Request(), result.Response()
		}
		if shortCircuited {
			entered = i + 1
			break
		}
	}

	if !shortCircuited {
		resp = r.handle(handler, req)
	}

	for _, layer := range layers[:entered] {
		for _, hook := range layer.Post {
			req, resp = r.runPostHook(hook, req, resp)
		}
	}

	return resp
}

// runPreHook runs a pre-hook. A panic is logged and turned into a
// short-circuit with a 500 response.
func (r *Router) runPreHook(hook common.PreHook, req common.Request, resp common.Response) (result common.PreHookResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panic recovered in pre-hook", r.fields(req,
				zap.String("hook", hook.Name),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)...)
			result = common.ShortCircuit(internalServerError())
		}
	}()
	return hook.Run(req, resp)
}

// runPostHook runs a post-hook. A panic is logged and the values from before
// the hook are kept.
func (r *Router) runPostHook(hook common.PostHook, req common.Request, resp common.Response) (outReq common.Request, outResp common.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panic recovered in post-hook", r.fields(req,
				zap.String("hook", hook.Name),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)...)
			outReq, outResp = req, resp
		}
	}()
	return hook.Run(req, resp)
}

// handle invokes the handler, converting errors and panics into responses.
func (r *Router) handle(handler common.Handler, req common.Request) (resp common.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panic recovered", r.fields(req,
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)...)
			resp = internalServerError()
		}
	}()

	resp, err := handler(req)
	if err != nil {
		return r.handleError(req, err)
	}
	return resp
}

// handleError logs a handler error and builds the failure response.
// An *HTTPError chooses its own status and message; any other error becomes a
// 500 whose body doesn't reveal the error.
func (r *Router) handleError(req common.Request, err error) common.Response {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		r.logger.Warn("Handler returned HTTP error", r.fields(req,
			zap.Error(err),
			zap.Int("status", httpErr.StatusCode),
		)...)
		return common.TextResponse(httpErr.StatusCode, httpErr.Message)
	}

	r.logger.Error("Handler error", r.fields(req, zap.Error(err))...)
	return internalServerError()
}

// fields builds the common log fields for req, with the trace ID first when enabled.
func (r *Router) fields(req common.Request, extra ...zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, len(extra)+3)
	if r.config.EnableTraceID {
		if traceID, ok := req.Metadata(common.MetadataTraceID); ok {
			fields = append(fields, zap.String("trace_id", fmt.Sprint(traceID)))
		}
	}
	fields = append(fields,
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
	)
	return append(fields, extra...)
}

func internalServerError() common.Response {
	return common.TextResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
