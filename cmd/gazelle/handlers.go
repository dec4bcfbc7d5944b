package main

import (
	"encoding/json"
	"net/http"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugins"
	"github.com/Suhaibinator/gazelle/pkg/router"
)

// demoUsers maps usernames to their password and role.
var demoUsers = map[string]struct {
	password string
	role     string
}{
	"alice": {password: "wonderland", role: "user"},
	"admin": {password: "changeme", role: "admin"},
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

func helloHandler(req common.Request) (common.Response, error) {
	return common.TextResponse(http.StatusOK, "Hello, Gazelle!"), nil
}

func loginHandler(jwt *plugins.JWTPlugin) router.GenericHandler[loginRequest, loginResponse] {
	return func(req common.Request, data loginRequest) (loginResponse, error) {
		user, ok := demoUsers[data.Username]
		if !ok || user.password != data.Password {
			return loginResponse{}, router.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		token, err := jwt.Sign(data.Username, map[string]any{"role": user.role})
		if err != nil {
			return loginResponse{}, err
		}
		return loginResponse{Token: token}, nil
	}
}

func meHandler(req common.Request) (common.Response, error) {
	claims, ok := plugins.JWTClaims(req)
	if !ok {
		return common.Response{}, router.NewHTTPError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return jsonResponse(http.StatusOK, userResponse{ID: claims.Subject, Role: role(claims)})
}

func userHandler(req common.Request) (common.Response, error) {
	return jsonResponse(http.StatusOK, userResponse{ID: req.Param("id")})
}

func adminHandler(req common.Request) (common.Response, error) {
	users := make([]userResponse, 0, len(demoUsers))
	for name, u := range demoUsers {
		users = append(users, userResponse{ID: name, Role: u.role})
	}
	return jsonResponse(http.StatusOK, users)
}

// requireRole rejects requests whose token doesn't carry role with 403.
func requireRole(wanted string) common.PreHook {
	return common.NewPreHook("require_role_"+wanted, false, func(req common.Request, resp common.Response) common.PreHookResult {
		claims, ok := plugins.JWTClaims(req)
		if !ok || role(claims) != wanted {
			return common.ShortCircuit(common.TextResponse(http.StatusForbidden, http.StatusText(http.StatusForbidden)))
		}
		return common.Continue(req, resp)
	})
}

func role(claims *plugins.Claims) string {
	if claims == nil {
		return ""
	}
	r, _ := claims.Extra["role"].(string)
	return r
}

func jsonResponse(status int, v any) (common.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return common.Response{}, err
	}
	return common.NewResponse(status, body).WithHeader("Content-Type", "application/json"), nil
}
