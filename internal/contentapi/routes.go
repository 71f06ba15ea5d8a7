package contentapi

import (
	"errors"
	"fmt"

	urlkit "github.com/goliatone/go-urlkit"
)

// Route names registered under the api group. The path templates mirror the
// hosted backend's HTTP surface; every request the client issues is built
// from this table rather than string concatenation.
const (
	apiGroup         = "api"
	routeAssetUpload = "asset.upload"
	routeDocUpsert   = "doc.upsert"
	routeDocGet      = "doc.get"
	routeAuthorQuery = "author.query"
)

// ErrRouteNotFound reports a lookup for a group or route the manager does
// not know about.
var ErrRouteNotFound = errors.New("contentapi: route not found")

// Routes builds content API endpoint URLs for a single dataset from the
// configured base URL.
type Routes struct {
	manager *urlkit.RouteManager
	dataset string
}

// NewRoutes registers the API route table under baseURL. The dataset is
// fixed per client; it fills the :dataset segment of every endpoint.
func NewRoutes(baseURL, dataset string) *Routes {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    apiGroup,
				BaseURL: baseURL,
				Paths: map[string]string{
					routeAssetUpload: "/v1/assets/images/:dataset",
					routeDocUpsert:   "/v1/data/upsert/:dataset",
					routeDocGet:      "/v1/data/doc/:dataset/:id",
					routeAuthorQuery: "/v1/data/query/:dataset",
				},
			},
		},
	})

	return &Routes{manager: manager, dataset: dataset}
}

// AssetUpload returns the image upload endpoint. The original filename
// travels as a query hint so the backend can keep a readable asset name.
func (r *Routes) AssetUpload(filename string) (string, error) {
	builder, err := r.safeBuilder(routeAssetUpload)
	if err != nil {
		return "", err
	}
	builder.WithParam("dataset", r.dataset)
	if filename != "" {
		builder.WithQuery("filename", filename)
	}
	return builder.Build()
}

// DocUpsert returns the document mutation endpoint.
func (r *Routes) DocUpsert() (string, error) {
	builder, err := r.safeBuilder(routeDocUpsert)
	if err != nil {
		return "", err
	}
	builder.WithParam("dataset", r.dataset)
	return builder.Build()
}

// DocGet returns the endpoint fetching a single document by id.
func (r *Routes) DocGet(id string) (string, error) {
	builder, err := r.safeBuilder(routeDocGet)
	if err != nil {
		return "", err
	}
	builder.WithParam("dataset", r.dataset)
	builder.WithParam("id", id)
	return builder.Build()
}

// AuthorQuery returns the query endpoint filtered to documents of docType
// whose name field equals name exactly.
func (r *Routes) AuthorQuery(docType, name string) (string, error) {
	builder, err := r.safeBuilder(routeAuthorQuery)
	if err != nil {
		return "", err
	}
	builder.WithParam("dataset", r.dataset)
	builder.WithQuery("type", docType)
	builder.WithQuery("name", name)
	return builder.Build()
}

// safeBuilder resolves the named route under the api group. urlkit panics
// on unknown group or route names; the named results keep the recovered
// error visible to the caller.
func (r *Routes) safeBuilder(route string) (builder *urlkit.Builder, err error) {
	if r.manager == nil {
		return nil, fmt.Errorf("%w: route manager not configured", ErrRouteNotFound)
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("%w: %s.%s", ErrRouteNotFound, apiGroup, route)
		}
	}()
	builder = r.manager.Group(apiGroup).Builder(route)
	return builder, nil
}
