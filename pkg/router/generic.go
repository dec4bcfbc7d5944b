package router

import (
	"fmt"
	"net/http"

	"github.com/Suhaibinator/gazelle/pkg/common"
)

// RegisterGenericRoute registers a route with generic request and response types.
// This is a standalone function rather than a method because Go methods cannot have type parameters.
// The request body is decoded with the route's Codec; a decode failure is a 400.
// The handler's result is encoded into a 200 response.
func RegisterGenericRoute[T any, U any](r *Router, route RouteConfig[T, U]) error {
	handler := func(req common.Request) (common.Response, error) {
		data, err := route.Codec.Decode(req)
		if err != nil {
			return common.Response{}, fmt.Errorf("%w: %w", NewHTTPError(http.StatusBadRequest, "Failed to decode request"), err)
		}

		out, err := route.Handler(req, data)
		if err != nil {
			return common.Response{}, err
		}

		return route.Codec.Encode(common.NewResponse(http.StatusOK, nil), out)
	}

	return r.RegisterRoute(RouteConfigBase{
		Path:      route.Path,
		Methods:   route.Methods,
		Handler:   handler,
		PreHooks:  route.PreHooks,
		PostHooks: route.PostHooks,
	})
}
