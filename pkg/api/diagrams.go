package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/orthoroute/pkg/cache"
	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/render"
	"github.com/matzehuels/orthoroute/pkg/storage"
)

type createDiagramRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// patchShapeRequest carries exactly one of Move, Bounds or Revert.
type patchShapeRequest struct {
	Move   *geom.Point `json:"move,omitempty"`
	Bounds *geom.Rect  `json:"bounds,omitempty"`
	Revert bool        `json:"revert,omitempty"`
}

type shapeResponse struct {
	Shape       diagram.Shape        `json:"shape"`
	Connections []diagram.Connection `json:"connections"`
}

type connectShapesRequest struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Start  geom.Direction `json:"start,omitempty"`
	End    geom.Direction `json:"end,omitempty"`
}

type waypointsRequest struct {
	Waypoints []geom.Bend `json:"waypoints"`
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	list, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagrams": list})
}

func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req createDiagramRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := errs.ValidateID(req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[req.ID]; ok {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "diagram %q already exists", req.ID))
		return
	}
	_, err := s.opts.Store.Get(r.Context(), req.ID)
	switch {
	case err == nil:
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "diagram %q already exists", req.ID))
		return
	case !errors.Is(err, storage.ErrNotFound):
		s.writeError(w, r, err)
		return
	}

	d := diagram.New(s.diagramOptions(req.ID, req.Name))
	if err := s.persist(r.Context(), d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.open[req.ID] = d
	writeJSON(w, http.StatusCreated, d.Snapshot())
}

// withDiagram resolves the {id} URL parameter.
func (s *Server) withDiagram(w http.ResponseWriter, r *http.Request) (*diagram.Diagram, bool) {
	d, err := s.diagram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return d, true
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.Snapshot())
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	delete(s.open, id)
	s.mu.Unlock()
	if err := s.opts.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddShape(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	var sh diagram.Shape
	if err := decodeJSON(w, r, &sh); err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := d.AddShape(sh)
	if err == nil {
		err = s.persist(r.Context(), d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handlePatchShape(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	var req patchShapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sid := chi.URLParam(r, "sid")
	var (
		changed []diagram.Connection
		err     error
	)
	switch {
	case req.Move != nil && req.Bounds == nil && !req.Revert:
		changed, err = d.MoveShape(r.Context(), sid, *req.Move)
	case req.Bounds != nil && req.Move == nil && !req.Revert:
		changed, err = d.ResizeShape(r.Context(), sid, *req.Bounds)
	case req.Revert && req.Move == nil && req.Bounds == nil:
		changed, err = d.RevertResize(r.Context(), sid)
	default:
		err = errs.New(errs.ErrCodeInvalidInput, "patch needs exactly one of move, bounds or revert")
	}
	if err == nil {
		err = s.persist(r.Context(), d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sh, _ := d.Shape(sid)
	if changed == nil {
		changed = []diagram.Connection{}
	}
	writeJSON(w, http.StatusOK, shapeResponse{Shape: sh, Connections: changed})
}

func (s *Server) handleRemoveShape(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	err := d.RemoveShape(chi.URLParam(r, "sid"))
	if err == nil {
		err = s.persist(r.Context(), d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectShapes(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	var req connectShapesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := d.Connect(r.Context(), req.Source, req.Target, req.Start, req.End)
	if err == nil {
		err = s.persist(r.Context(), d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleSetWaypoints(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	var req waypointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := d.SetWaypoints(chi.URLParam(r, "cid"), req.Waypoints)
	if err == nil {
		err = s.persist(r.Context(), d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	err := d.RemoveConnection(chi.URLParam(r, "cid"))
	if err == nil {
		err = s.persist(r.Context(), d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSVG renders the diagram. Query parameters: engine, outlines=1,
// waypoints=1. Results are cached by the hash of the DOT source.
func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := render.Options{Engine: q.Get("engine")}
	opts.Outlines, _ = strconv.ParseBool(q.Get("outlines"))
	opts.Waypoints, _ = strconv.ParseBool(q.Get("waypoints"))

	dot := render.ToDOT(d.Snapshot(), opts)
	key := s.opts.Keyer.RenderKey(cache.Hash([]byte(dot)), cache.RenderKeyOpts{Format: "svg", Engine: opts.Engine})

	svg, hit, err := s.opts.Cache.Get(r.Context(), key)
	if err != nil {
		s.log.Warn("cache lookup", "err", err)
		hit = false
	}
	if !hit {
		svg, err = render.RenderSVG(r.Context(), dot, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.opts.Cache.Set(r.Context(), key, svg, cache.DefaultTTL); err != nil {
			s.log.Warn("cache render", "err", err)
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", strconv.FormatBool(hit))
	_, _ = w.Write(svg)
}
