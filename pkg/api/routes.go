package api

import (
	"net/http"

	"github.com/matzehuels/orthoroute/pkg/buildinfo"
	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

type routeResponse struct {
	Waypoints []geom.Bend `json:"waypoints"`
	Pair      string      `json:"pair,omitempty"`
	Cached    bool        `json:"cached"`
}

type repairResponse struct {
	manhattan.Repair
	Cached bool `json:"cached"`
}

type connectPointsRequest struct {
	A          geom.Point `json:"a"`
	B          geom.Point `json:"b"`
	Directions string     `json:"directions,omitempty"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req manhattan.ConnectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	wp, cached, err := s.router.ConnectWithCacheInfo(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Waypoints: wp, Pair: manhattan.PairOf(wp).String(), Cached: cached})
}

func (s *Server) handleConnectPoints(w http.ResponseWriter, r *http.Request) {
	var req connectPointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var (
		wp  []geom.Bend
		err error
	)
	if req.Directions == "" {
		wp, err = manhattan.ConnectPoints(req.A, req.B)
	} else {
		wp, err = manhattan.ConnectPointsString(req.A, req.B, req.Directions)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Waypoints: wp, Pair: manhattan.PairOf(wp).String()})
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	var req manhattan.RepairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, cached, err := s.router.RepairWithCacheInfo(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repairResponse{Repair: res, Cached: cached})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}
