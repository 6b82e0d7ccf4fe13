// Package routes declares HTTP routes as nested prefix groups and registers
// them on a ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix. Children inherit the
// accumulated prefix of their parents.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Endpoint is a fully resolved route: its method and absolute path.
type Endpoint struct {
	Method string
	Path   string
}

// Pattern returns the ServeMux pattern for the endpoint.
func (e Endpoint) Pattern() string {
	return e.Method + " " + e.Path
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk(groups, func(ep Endpoint, h http.HandlerFunc) {
		mux.HandleFunc(ep.Pattern(), h)
	})
}

// Endpoints lists every route in the given groups in declaration order.
func Endpoints(groups ...Group) []Endpoint {
	var eps []Endpoint
	walk(groups, func(ep Endpoint, _ http.HandlerFunc) {
		eps = append(eps, ep)
	})
	return eps
}

func walk(groups []Group, visit func(Endpoint, http.HandlerFunc)) {
	for _, g := range groups {
		walkGroup("", g, visit)
	}
}

func walkGroup(parent string, g Group, visit func(Endpoint, http.HandlerFunc)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		visit(Endpoint{Method: r.Method, Path: prefix + r.Pattern}, r.Handler)
	}
	for _, child := range g.Children {
		walkGroup(prefix, child, visit)
	}
}
