// Package server assembles the gin engine: renderer, static assets, middleware chain and the route
// groups of the public site, auth flows, admin back office and health probes.
package server

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lighthouse-restaurant/backend/internal/server/interceptors"
	"lighthouse-restaurant/backend/internal/server/web"
	"lighthouse-restaurant/backend/internal/telemetry/otel"
)

// maxMultipartMemory bounds the in-memory part of an upload; larger files spill to disk.
const maxMultipartMemory = 12 << 20

// Routes mounts a handler's routes on a router.
type Routes interface {
	Register(r gin.IRouter)
}

// Deps holds the handlers and the session resolver wired into the router.
type Deps struct {
	// Site, Auth, Admin and Health are registered in that order. A nil entry is skipped.
	Site   Routes
	Auth   Routes
	Admin  Routes
	Health Routes
	// NotFound renders unmatched routes. Nil falls back to gin's plain 404.
	NotFound gin.HandlerFunc
	// Sessions resolves the session cookie for every request.
	Sessions      interceptors.SessionResolver
	SessionCookie string
	// ServiceName names the server spans. Empty falls back to defaultServiceName.
	ServiceName string
}

const defaultServiceName = "lighthouse-restaurant"

// NewRouter builds the engine. Middleware order: tracing, metrics, request log, panic recovery, session loading.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil {
		return nil, errors.New("server: session resolver is required")
	}
	rend, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	r.HTMLRender = rend
	r.MaxMultipartMemory = maxMultipartMemory
	r.StaticFS("/static", web.StaticFS())

	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	r.Use(otel.Middleware(serviceName), otel.Metrics(), interceptors.RequestLogger(), gin.Recovery())
	r.Use(interceptors.SessionLoader(deps.Sessions, deps.SessionCookie))

	for _, routes := range []Routes{deps.Site, deps.Auth, deps.Admin, deps.Health} {
		if routes != nil {
			routes.Register(r)
		}
	}
	if deps.NotFound != nil {
		r.NoRoute(deps.NotFound)
	}
	return r, nil
}
