package rest

import (
	"log/slog"
	"net/http"

	"github.com/glossarch/stratigraphy/internal/config"
	"github.com/glossarch/stratigraphy/internal/transport/middleware"
)

// RouterDeps collects everything the router needs.
type RouterDeps struct {
	Log      *slog.Logger
	Resolver Resolver
	LSRs     LSRReader
	DB       dbPinger
	CORS     config.CORSConfig
	Version  string
}

// NewRouter builds the HTTP handler tree with the standard middleware chain
// (request id, logging, panic recovery) around every route.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	health := NewHealthHandler(deps.DB, deps.Version)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /health/live", health.Live)
	mux.HandleFunc("GET /health/ready", health.Ready)

	resolve := NewResolveHandler(deps.Resolver)
	mux.HandleFunc("POST /v1/resolve", resolve.Resolve)
	mux.HandleFunc("POST /v1/resolve/batch", resolve.ResolveBatch)
	mux.HandleFunc("POST /v1/review/flag", resolve.Flag)
	mux.HandleFunc("POST /v1/resolver/reload", resolve.Reload)

	lsrs := NewLSRHandler(deps.LSRs)
	mux.HandleFunc("GET /v1/lsrs/{id}", lsrs.Get)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(deps.Log),
		middleware.CORS(deps.CORS),
		middleware.Recovery(deps.Log),
	)
	return chain(mux)
}
