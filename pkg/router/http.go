package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ServeHTTP implements http.Handler. It is the transport boundary: it reads
// the body, converts the http.Request into a Request, dispatches it and
// writes the resulting Response.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// First add to the wait group before checking shutdown status
	r.wg.Add(1)

	// Then check if the router is shutting down
	r.shutdownMu.RLock()
	isShutdown := r.shutdown
	r.shutdownMu.RUnlock()

	if isShutdown {
		// If shutting down, decrement the wait group and return error
		r.wg.Done()
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	// Process the request and ensure wg.Done() is called when finished
	defer r.wg.Done()

	ctx := req.Context()
	if r.config.GlobalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.GlobalTimeout)
		defer cancel()
	}

	// Apply body size limit
	if r.config.GlobalMaxBodySize > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.config.GlobalMaxBodySize)
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		r.logger.Warn("Failed to read request body",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	resp := r.Dispatch(common.NewRequest(req.Method, req.URL.Path,
		common.WithRequestContext(ctx),
		common.WithRequestHeader(req.Header),
		common.WithRequestBody(body),
		common.WithRawQuery(req.URL.RawQuery),
		common.WithRemoteAddr(req.RemoteAddr),
	))

	if err := resp.WriteTo(w); err != nil {
		r.logger.Warn("Failed to write response",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
	}
}

// Shutdown gracefully shuts down the router.
// It stops accepting new requests, waits for existing requests to complete and
// then closes the plugins. If the context is canceled before all requests
// complete, it returns the context's error and leaves the plugins open.
func (r *Router) Shutdown(ctx context.Context) error {
	// Mark the router as shutting down
	r.shutdownMu.Lock()
	r.shutdown = true
	r.shutdownMu.Unlock()

	// Create a channel to signal when all requests are done
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	// Wait for all requests to finish or for the context to be canceled
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var err error
	if cerr := r.plugins.Close(); cerr != nil {
		for _, e := range multierr.Errors(cerr) {
			r.logger.Error("Plugin close failed", zap.Error(e))
		}
		err = cerr
	}
	return err
}
