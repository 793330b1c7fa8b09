package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIVersion prefixes every action route. Webhook destinations registered
// with the remote pusher embed it, so changing it breaks live subscriptions.
const APIVersion = "v1"

// Route is a single endpoint within an ActionGroup.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	// Admin routes are mounted behind the group's guard.
	Admin bool
}

// ActionGroup is a set of routes sharing a path prefix. Routes flagged Admin
// run behind Guard; the rest are public. Without a Guard admin routes reject
// every request.
type ActionGroup struct {
	Prefix string
	Guard  gin.HandlerFunc
	Routes []Route
}

// Mount attaches the group to the versioned API root of engine.
func (g ActionGroup) Mount(engine *gin.Engine) {
	base := engine.Group("/api/" + APIVersion + g.Prefix)

	guard := g.Guard
	if guard == nil {
		guard = func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	}
	admin := base.Group("", guard)

	for _, r := range g.Routes {
		target := base
		if r.Admin {
			target = admin
		}
		target.Handle(r.Method, r.Path, r.Handler)
	}
}

// Paths lists "METHOD /full/path" for every route, in declaration order.
func (g ActionGroup) Paths() []string {
	out := make([]string, 0, len(g.Routes))
	for _, r := range g.Routes {
		out = append(out, r.Method+" /api/"+APIVersion+g.Prefix+r.Path)
	}
	return out
}
