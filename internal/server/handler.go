// Package server exposes the evaluator over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/eval"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/hash"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/task"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

const maxBodyBytes = 1 << 20

// Request is the body of POST /evaluate.
type Request struct {
	Circles   int          `json:"circles"`
	Overlaps  []types.Pair `json:"overlaps"`
	Palette   []string     `json:"palette,omitempty"`
	Candidate string       `json:"candidate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns an http.Handler for POST /evaluate requests.
func Handler(cfg Config) http.Handler {
	cache := newResultCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	evaluator := eval.New()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleEvaluate(w, r, cfg, evaluator, cache)
	})
}

// HealthHandler returns an HTTP handler for liveness and readiness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// NewMux routes /evaluate and /healthz.
func NewMux(cfg Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/evaluate", Handler(cfg))
	mux.Handle("/healthz", HealthHandler())
	return mux
}

func handleEvaluate(w http.ResponseWriter, r *http.Request, cfg Config, evaluator *eval.Evaluator, cache *resultCache) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Palette == nil {
		req.Palette = cfg.Palette
	}

	key, _, err := hash.HashCanonicalJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if e, ok := cache.get(key, time.Now()); ok {
		slog.Debug("serving cached result", "key", key)
		writeResult(w, e.result, e.digest)
		return
	}

	t, err := task.New(req.Circles, req.Overlaps, task.Palette(req.Palette))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, task.ErrConfiguration) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	result, digest, err := evaluator.EvaluateChecked(req.Candidate, t, 1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	slog.Info("evaluated candidate", "circles", req.Circles, "required", len(t.RequiredOverlaps()), "invalid", result.Invalid(), "digest", digest)
	cache.put(key, result, digest, time.Now())
	writeResult(w, result, digest)
}

func writeResult(w http.ResponseWriter, result types.Result, digest string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Result-Digest", digest)
	_ = json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
