package httpadapter

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var openapiSpec []byte

type openAPIValidator struct {
	router routers.Router
}

// newOpenAPIValidator compiles the embedded contract once at startup.
// The spec ships inside the binary, so a compile failure is a build
// defect; validation is simply disabled rather than crashing the server.
func newOpenAPIValidator() *openAPIValidator {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		slog.Error("openapi spec load failed, request validation disabled", "error", err)
		return &openAPIValidator{}
	}
	if err := doc.Validate(loader.Context); err != nil {
		slog.Error("openapi spec invalid, request validation disabled", "error", err)
		return &openAPIValidator{}
	}
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		slog.Error("openapi router build failed, request validation disabled", "error", err)
		return &openAPIValidator{}
	}
	return &openAPIValidator{router: router}
}

// Middleware validates method and path parameters against the contract.
// Bodies are excluded: multipart uploads are streamed to storage and
// must not be buffered twice. Routes the contract does not know fall
// through to the mux, which answers 404 itself.
func (v *openAPIValidator) Middleware(next http.Handler) http.Handler {
	if v.router == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options:    &openapi3filter.Options{ExcludeRequestBody: true},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
