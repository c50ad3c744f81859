// Package gorouter mounts the console on a go-router router.
package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/commands"
	"github.com/goliatone/go-admin-console/components/console/httpapi"
	"github.com/goliatone/go-admin-console/components/console/queries"
	"github.com/goliatone/go-admin-console/components/otp"
)

// Context is the part of router.Context the console handlers use.
type Context interface {
	Context() context.Context
	Param(name string, defaultValue ...string) string
	Query(name string, defaultValue ...string) string
	Queries() map[string]string
	Body() []byte
	Locals(key any, value ...any) any
	SetHeader(key, value string) router.Context
	Send(body []byte) error
	JSON(code int, v any) error
}

// ViewerResolver converts a request into a console.ViewerContext.
type ViewerResolver func(Context) console.ViewerContext

// Config wires go-router with the console controller, API and event stream.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *console.Controller
	API            httpapi.Executor
	Broadcast      *otp.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths of the console endpoints.
type RouteConfig struct {
	Overview    string
	ListPage    string
	VerifyPage  string
	List        string
	ListState   string
	OverviewAPI string
	Navigation  string
	Sessions    string
	Session     string
	Edit        string
	Submit      string
	Resend      string
	WebSocket   string
	Products    string
	Product     string
}

type route struct {
	method  string
	path    string
	handler func(Context) error
}

// routeRegistrar is the part of router.Router the console mounts onto.
type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// Register mounts the console routes (HTML, JSON, WebSocket).
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil && cfg.API == nil {
		return errors.New("gorouter: controller or api is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	mount(cfg.Router.Group(base), cfg)
	return nil
}

func mount[T any](r routeRegistrar, cfg Config[T]) {
	for _, rt := range cfg.table() {
		h := rt.handler
		wrapped := router.WrapHandler(func(ctx router.Context) error { return h(ctx) })
		switch rt.method {
		case http.MethodPost:
			r.Post(rt.path, wrapped)
		case http.MethodPut:
			r.Put(rt.path, wrapped)
		case http.MethodDelete:
			r.Delete(rt.path, wrapped)
		default:
			r.Get(rt.path, wrapped)
		}
	}
	if cfg.Broadcast != nil {
		registerWebSocket(r, cfg.Broadcast, cfg.routes().WebSocket)
	}
}

func (cfg Config[T]) table() []route {
	routes := cfg.routes()
	viewer := cfg.ViewerResolver
	if viewer == nil {
		viewer = defaultViewerResolver
	}
	var out []route
	if c := cfg.Controller; c != nil {
		out = append(out,
			route{http.MethodGet, routes.Overview, func(ctx Context) error {
				var buf bytes.Buffer
				if err := c.RenderOverview(ctx.Context(), viewer(ctx), &buf); err != nil {
					return respondError(ctx, err)
				}
				return sendHTML(ctx, buf.Bytes())
			}},
			route{http.MethodGet, routes.ListPage, func(ctx Context) error {
				var buf bytes.Buffer
				screen := console.Screen(ctx.Param("screen"))
				if err := c.RenderList(ctx.Context(), viewer(ctx), screen, listQuery(ctx), &buf); err != nil {
					return respondError(ctx, err)
				}
				return sendHTML(ctx, buf.Bytes())
			}},
		)
		if cfg.API != nil {
			api := cfg.API
			out = append(out, route{http.MethodGet, routes.VerifyPage, func(ctx Context) error {
				snap, err := api.Session(ctx.Context(), ctx.Param("id"))
				if err != nil {
					return respondError(ctx, err)
				}
				var buf bytes.Buffer
				if err := c.RenderVerify(ctx.Context(), viewer(ctx), snap, &buf); err != nil {
					return respondError(ctx, err)
				}
				return sendHTML(ctx, buf.Bytes())
			}})
		}
	}
	if cfg.API != nil {
		out = append(out, apiRoutes(cfg.API, viewer, routes)...)
	}
	return out
}

func apiRoutes(api httpapi.Executor, viewer ViewerResolver, routes RouteConfig) []route {
	return []route{
		{http.MethodGet, routes.List, func(ctx Context) error {
			view, err := api.List(ctx.Context(), queries.ListInput{
				Viewer: viewer(ctx),
				Screen: console.Screen(ctx.Param("screen")),
				Query:  listQuery(ctx),
			})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, view)
		}},
		{http.MethodDelete, routes.ListState, func(ctx Context) error {
			err := api.ResetList(ctx.Context(), commands.ResetListInput{
				Viewer: viewer(ctx),
				Screen: console.Screen(ctx.Param("screen")),
			})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
		}},
		{http.MethodGet, routes.OverviewAPI, func(ctx Context) error {
			overview, err := api.Overview(ctx.Context(), viewer(ctx))
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, overview)
		}},
		{http.MethodGet, routes.Navigation, func(ctx Context) error {
			items, err := api.Navigation(ctx.Context(), viewer(ctx))
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, items)
		}},
		{http.MethodPost, routes.Sessions, func(ctx Context) error {
			var payload console.StartRequest
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			snap, err := api.StartVerification(ctx.Context(), payload)
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusCreated, snap)
		}},
		{http.MethodGet, routes.Session, func(ctx Context) error {
			snap, err := api.Session(ctx.Context(), ctx.Param("id"))
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, snap)
		}},
		{http.MethodDelete, routes.Session, func(ctx Context) error {
			if err := api.CloseSession(ctx.Context(), ctx.Param("id")); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "closed"})
		}},
		{http.MethodPost, routes.Edit, func(ctx Context) error {
			var payload commands.EditCodeInput
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			payload.SessionID = ctx.Param("id")
			snap, err := api.EditCode(ctx.Context(), payload)
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, snap)
		}},
		{http.MethodPost, routes.Submit, func(ctx Context) error {
			wait := ctx.Query("wait") == "true"
			snap, err := api.SubmitCode(ctx.Context(), commands.SubmitCodeInput{SessionID: ctx.Param("id"), Wait: wait})
			if err != nil {
				return respondError(ctx, err)
			}
			status := http.StatusAccepted
			if wait {
				status = http.StatusOK
			}
			return ctx.JSON(status, snap)
		}},
		{http.MethodPost, routes.Resend, func(ctx Context) error {
			snap, err := api.ResendCode(ctx.Context(), ctx.Param("id"))
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, snap)
		}},
		{http.MethodPost, routes.Products, func(ctx Context) error {
			return saveProduct(ctx, api, "")
		}},
		{http.MethodPut, routes.Product, func(ctx Context) error {
			return saveProduct(ctx, api, ctx.Param("id"))
		}},
		{http.MethodDelete, routes.Product, func(ctx Context) error {
			if err := api.DeleteProduct(ctx.Context(), ctx.Param("id")); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "deleted"})
		}},
	}
}

func saveProduct(ctx Context, api httpapi.Executor, id string) error {
	var payload console.ProductInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	product, err := api.SaveProduct(ctx.Context(), id, payload)
	if err != nil {
		return respondError(ctx, err)
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	return ctx.JSON(status, product)
}

func registerWebSocket(r routeRegistrar, hook *otp.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe(ws.Param("id"))
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func listQuery(ctx Context) console.ListQuery {
	values := url.Values{}
	for key, value := range ctx.Queries() {
		values.Set(key, value)
	}
	return console.ParseListQuery(values)
}

func sendHTML(ctx Context, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func defaultViewerResolver(ctx Context) console.ViewerContext {
	var viewer console.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	return strings.ToLower(strings.TrimSpace(ctx.Query("locale")))
}

func respondError(ctx Context, err error) error {
	return ctx.JSON(console.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	set := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	set(&routes.Overview, "/")
	set(&routes.ListPage, "/:screen")
	set(&routes.VerifyPage, "/auth/verify/:id")
	set(&routes.List, "/api/lists/:screen")
	set(&routes.ListState, "/api/lists/:screen/state")
	set(&routes.OverviewAPI, "/api/overview")
	set(&routes.Navigation, "/api/navigation")
	set(&routes.Sessions, "/api/otp/sessions")
	set(&routes.Session, "/api/otp/sessions/:id")
	set(&routes.Edit, "/api/otp/sessions/:id/edit")
	set(&routes.Submit, "/api/otp/sessions/:id/submit")
	set(&routes.Resend, "/api/otp/sessions/:id/resend")
	set(&routes.WebSocket, "/api/otp/sessions/:id/ws")
	set(&routes.Products, "/api/products")
	set(&routes.Product, "/api/products/:id")
	return routes
}
