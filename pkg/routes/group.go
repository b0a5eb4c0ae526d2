package routes

import (
	"net/http"

	"github.com/JaimeStill/bestiary/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		walk("", g, func(path string, _ Group, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
		})
	}
}

// Document adds every route that carries an OpenAPI operation to spec.Paths.
// Operations without tags inherit the tags of their group.
func Document(spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		walk("", g, func(path string, owner Group, r Route) {
			if r.OpenAPI == nil {
				return
			}

			op := *r.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = owner.Tags
			}

			item, ok := spec.Paths[path]
			if !ok {
				item = &openapi.PathItem{}
				spec.Paths[path] = item
			}

			switch r.Method {
			case http.MethodGet:
				item.Get = &op
			case http.MethodPost:
				item.Post = &op
			case http.MethodPut:
				item.Put = &op
			case http.MethodDelete:
				item.Delete = &op
			}
		})
	}
}

func walk(parent string, g Group, visit func(path string, owner Group, r Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		visit(prefix+r.Pattern, g, r)
	}
	for _, child := range g.Children {
		if len(child.Tags) == 0 {
			child.Tags = g.Tags
		}
		walk(prefix, child, visit)
	}
}
