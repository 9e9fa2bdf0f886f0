package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/nekok500/zzapi/pkg/cache"
	"github.com/nekok500/zzapi/pkg/extract"
	"github.com/nekok500/zzapi/pkg/freshness"
	"github.com/nekok500/zzapi/pkg/metrics"
	"github.com/nekok500/zzapi/pkg/middleware"
	"github.com/nekok500/zzapi/pkg/zaiko"
)

// Route names used as metric labels.
const (
	RouteEventOwner = "/zaiko/events/{event_id}"
	RouteSquare     = "/square.png"
	RouteHealth     = "/health"
	RouteMetrics    = "/metrics"
	RouteOther      = "other"
)

// Options wires the server's collaborators.
type Options struct {
	// Resolver answers event owner lookups.
	Resolver OwnerResolver

	// Fetcher downloads source images.
	Fetcher extract.Fetcher

	// Images restricts which image URLs are fetched.
	Images zaiko.ImagePolicy

	// CanvasSize is the default square edge; MaxCanvasSize bounds w and h.
	CanvasSize    int
	MaxCanvasSize int

	// MaxImagePixels bounds the declared size of decoded source images.
	// Zero means canvas.DefaultMaxPixels.
	MaxImagePixels int64

	// Cache fronts the API routes.
	Cache *cache.Cache

	// Freshness stamps Cache-Control.
	Freshness freshness.Policy

	// AllowedOrigin is the single CORS origin.
	AllowedOrigin string
}

// Server holds the route handlers.
type Server struct {
	resolver      OwnerResolver
	fetcher       extract.Fetcher
	images        zaiko.ImagePolicy
	canvasSize    int
	maxCanvasSize int
	maxPixels     int64
	cache         *cache.Cache
	freshness     freshness.Policy
	allowedOrigin string
}

// NewServer validates opts and creates a server.
func NewServer(opts Options) (*Server, error) {
	switch {
	case opts.Resolver == nil:
		return nil, errors.New("resolver is required")
	case opts.Fetcher == nil:
		return nil, errors.New("fetcher is required")
	case opts.Cache == nil:
		return nil, errors.New("cache is required")
	case opts.AllowedOrigin == "":
		return nil, errors.New("allowed origin is required")
	}
	if opts.CanvasSize <= 0 {
		opts.CanvasSize = 400
	}
	if opts.MaxCanvasSize < opts.CanvasSize {
		opts.MaxCanvasSize = opts.CanvasSize
	}
	if opts.Freshness == (freshness.Policy{}) {
		opts.Freshness = freshness.DefaultPolicy
	}

	return &Server{
		resolver:      opts.Resolver,
		fetcher:       opts.Fetcher,
		images:        opts.Images,
		canvasSize:    opts.CanvasSize,
		maxCanvasSize: opts.MaxCanvasSize,
		maxPixels:     opts.MaxImagePixels,
		cache:         opts.Cache,
		freshness:     opts.Freshness,
		allowedOrigin: opts.AllowedOrigin,
	}, nil
}

// Handler assembles the middleware chain:
// CORS, request logging, then either cache and freshness in front of the
// API routes or freshness alone in front of the operational endpoints.
func (s *Server) Handler() http.Handler {
	routes := http.NewServeMux()
	routes.HandleFunc("GET "+RouteEventOwner, s.handleEventOwner)
	routes.HandleFunc("GET "+RouteSquare, s.handleSquare)

	cached := s.cache.Middleware(s.freshness.Middleware(routes))

	root := http.NewServeMux()
	root.Handle("GET "+RouteHealth, s.freshness.Middleware(http.HandlerFunc(handleHealth)))
	root.Handle("GET "+RouteMetrics, s.freshness.Middleware(metrics.Handler()))
	root.Handle("/", cached)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{s.allowedOrigin},
		AllowedMethods: []string{http.MethodGet},
	})

	return c.Handler(middleware.RequestLogger(routeName)(root))
}

// routeName maps a request to one of the Route constants.
func routeName(r *http.Request) string {
	switch p := r.URL.Path; {
	case strings.HasPrefix(p, "/zaiko/events/"):
		return RouteEventOwner
	case p == RouteSquare:
		return RouteSquare
	case p == RouteHealth:
		return RouteHealth
	case p == RouteMetrics:
		return RouteMetrics
	default:
		return RouteOther
	}
}
