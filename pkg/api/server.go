package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/orthoroute/pkg/cache"
	"github.com/matzehuels/orthoroute/pkg/diagram"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
	"github.com/matzehuels/orthoroute/pkg/observability"
	"github.com/matzehuels/orthoroute/pkg/outline"
	"github.com/matzehuels/orthoroute/pkg/storage"
)

// Options configures a Server. Zero fields take defaults.
type Options struct {
	Layouter *manhattan.Layouter
	Cache    cache.Cache
	Keyer    cache.Keyer
	Store    storage.Store
	Outlines *outline.Provider
	Logger   *log.Logger

	// RequestTimeout bounds every non-websocket request. Defaults to 30s.
	RequestTimeout time.Duration
}

// Server is the HTTP API. It keeps opened diagrams in memory and writes
// every change through to the store.
type Server struct {
	opts   Options
	log    *log.Logger
	router *manhattan.CachedLayouter
	mux    chi.Router

	upgrader websocket.Upgrader

	mu   sync.Mutex
	open map[string]*diagram.Diagram
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Layouter == nil {
		opts.Layouter = manhattan.New(manhattan.Options{})
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Outlines == nil {
		opts.Outlines = outline.New(outline.DefaultOffset)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		opts:   opts,
		log:    logger(opts.Logger),
		router: manhattan.NewCached(opts.Layouter, opts.Cache, opts.Keyer, opts.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		open: make(map[string]*diagram.Diagram),
	}
	s.mux = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.opts.RequestTimeout))

			r.Post("/connect", s.handleConnect)
			r.Post("/connect-points", s.handleConnectPoints)
			r.Post("/repair", s.handleRepair)

			r.Get("/diagrams", s.handleListDiagrams)
			r.Post("/diagrams", s.handleCreateDiagram)
			r.Route("/diagrams/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDiagram)
				r.Delete("/", s.handleDeleteDiagram)
				r.Get("/svg", s.handleSVG)

				r.Post("/shapes", s.handleAddShape)
				r.Patch("/shapes/{sid}", s.handlePatchShape)
				r.Delete("/shapes/{sid}", s.handleRemoveShape)

				r.Post("/connections", s.handleConnectShapes)
				r.Put("/connections/{cid}/waypoints", s.handleSetWaypoints)
				r.Delete("/connections/{cid}", s.handleRemoveConnection)
			})
		})

		r.Get("/diagrams/{id}/live", s.handleLive)
	})
	return r
}

// observe reports every request to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.log.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", time.Since(start).Round(time.Microsecond), "request_id", middleware.GetReqID(r.Context()))
	})
}

// diagram returns the open diagram with the given ID, loading it from the
// store on first use.
func (s *Server) diagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.open[id]; ok {
		return d, nil
	}
	d, err := storage.Load(ctx, s.opts.Store, id, s.diagramOptions(id, ""))
	if err != nil {
		return nil, err
	}
	s.open[id] = d
	return d, nil
}

func (s *Server) diagramOptions(id, name string) diagram.Options {
	return diagram.Options{
		ID:       id,
		Name:     name,
		Router:   s.opts.Layouter,
		Outlines: s.opts.Outlines,
		Logger:   s.log.With("diagram", id),
	}
}

// persist writes d through to the store.
func (s *Server) persist(ctx context.Context, d *diagram.Diagram) error {
	if err := storage.Save(ctx, s.opts.Store, d); err != nil {
		return fmt.Errorf("save diagram %s: %w", d.ID(), err)
	}
	return nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
