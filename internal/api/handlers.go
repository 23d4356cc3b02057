package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/cache"
	apperrors "github.com/terraweave/terraweave/pkg/errors"
	"github.com/terraweave/terraweave/pkg/eval"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/lower"
	"github.com/terraweave/terraweave/pkg/observability"
	"github.com/terraweave/terraweave/pkg/raise"
	"github.com/terraweave/terraweave/pkg/render"
)

// maxBodySize caps request bodies. Asset trees and graphs are hand-authored
// configuration, not bulk data; anything larger is a client bug.
const maxBodySize = 16 << 20

// readBody reads the request body with the size cap applied.
func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body")
	}
	return body, nil
}

// handleLower flattens a posted asset tree into a graph document.
// The node ID prefix is taken from the "prefix" query parameter.
func (s *Server) handleLower(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tree, err := asset.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidAsset, err, "decode asset tree"))
		return
	}

	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "node"
	}

	start := time.Now()
	observability.Transform().OnLowerStart(r.Context(), reqID(r.Context()))
	g := lower.Lower(tree, lower.Options{Prefix: prefix, Tables: s.tables})
	observability.Transform().OnLowerComplete(r.Context(), reqID(r.Context()), g.NodeCount(), time.Since(start), nil)

	writeJSON(w, http.StatusOK, graph.ToDocument(g))
}

// handleRaise rebuilds an asset tree from a posted graph document.
// An optional "root" query parameter raises a single subtree.
func (s *Server) handleRaise(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	g, err := graph.Unmarshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "decode graph"))
		return
	}

	start := time.Now()
	observability.Transform().OnRaiseStart(r.Context(), reqID(r.Context()))

	var tree *asset.Asset
	if root := r.URL.Query().Get("root"); root != "" {
		tree = raise.Raise(g, root, s.tables)
		if tree == nil {
			observability.Transform().OnRaiseComplete(r.Context(), reqID(r.Context()), 0, time.Since(start), nil)
			writeError(w, http.StatusNotFound,
				apperrors.New(apperrors.ErrCodeRootNotFound, "no such node: %s", root))
			return
		}
	} else {
		tree = raise.Tree(g, s.tables)
		if tree == nil {
			observability.Transform().OnRaiseComplete(r.Context(), reqID(r.Context()), 0, time.Since(start), nil)
			writeError(w, http.StatusBadRequest,
				apperrors.New(apperrors.ErrCodeInvalidGraph, "graph is empty"))
			return
		}
	}
	observability.Transform().OnRaiseComplete(r.Context(), reqID(r.Context()), len(g.Roots()), time.Since(start), nil)

	writeJSON(w, http.StatusOK, tree)
}

// evaluateRequest is the wire shape of an evaluation request. The graph is
// embedded rather than referenced: the editor's working copy is the source
// of truth and may never have been saved.
type evaluateRequest struct {
	Graph json.RawMessage `json:"graph"`
	Range eval.Range      `json:"range"`
	Seed  uint64          `json:"seed"`
	Root  string          `json:"root,omitempty"`
}

// evaluateResponse carries the preview samples.
type evaluateResponse struct {
	Samples []eval.Sample `json:"samples"`
	Cached  bool          `json:"cached"`
}

// handleEvaluate interprets a posted graph and returns preview samples.
// Identical requests are served from the cache.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req evaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Range.MaxX < req.Range.MinX || req.Range.MaxZ < req.Range.MinZ {
		writeError(w, http.StatusBadRequest,
			apperrors.New(apperrors.ErrCodeInvalidRange, "window maximum is below its minimum"))
		return
	}

	g, err := graph.Unmarshal(req.Graph)
	if err != nil {
		writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "decode graph"))
		return
	}

	key := cache.EvalKey(cache.Hash(req.Graph), cache.EvalKeyOpts{
		MinX: req.Range.MinX, MaxX: req.Range.MaxX,
		MinZ: req.Range.MinZ, MaxZ: req.Range.MaxZ,
		Seed: req.Seed, Root: req.Root,
	})
	if cached, found, _ := s.cache.Get(r.Context(), key); found {
		var samples []eval.Sample
		if json.Unmarshal(cached, &samples) == nil {
			writeJSON(w, http.StatusOK, evaluateResponse{Samples: samples, Cached: true})
			return
		}
	}

	start := time.Now()
	observability.Eval().OnEvaluateStart(r.Context(), g.NodeCount(), req.Seed)
	samples := eval.Evaluate(g, req.Range, req.Seed, req.Root)
	observability.Eval().OnEvaluateComplete(r.Context(), len(samples), time.Since(start))

	if data, err := json.Marshal(samples); err == nil {
		_ = s.cache.Set(r.Context(), key, data, cache.DefaultTTL)
	}

	writeJSON(w, http.StatusOK, evaluateResponse{Samples: samples, Cached: false})
}

// handleRender draws a posted graph document as an SVG diagram.
// The "detailed" query parameter includes node fields in labels.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	g, err := graph.Unmarshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "decode graph"))
		return
	}

	dot := render.ToDOT(g, render.Options{Detailed: r.URL.Query().Get("detailed") == "true"})
	svg, err := render.SVG(r.Context(), dot)
	if err != nil {
		writeError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "render diagram"))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}
