// Package httpapi exposes the exchange over HTTP: the two plain-text
// telephony hooks the dialplan curls, and a small JSON surface for
// inspection.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/potsbox/exchange/internal/call"
	"github.com/potsbox/exchange/internal/catalog"
	"github.com/potsbox/exchange/internal/config"
	"github.com/potsbox/exchange/internal/convlog"
	"github.com/potsbox/exchange/internal/dispatch"
	"github.com/potsbox/exchange/internal/observability"
)

// Exchange is the dispatcher surface the API drives.
type Exchange interface {
	StartCall(ctx context.Context, exten, city string) (dispatch.Verdict, error)
	HandleUtterance(ctx context.Context, exten string, audio io.Reader) (dispatch.Verdict, error)
}

// InputLocator resolves where the telephony layer dropped a caller
// recording. The line-out sink owns the naming scheme.
type InputLocator interface {
	InputPath(id string) string
}

type Server struct {
	cfg      config.Config
	exchange Exchange
	services *catalog.Catalog
	calls    *call.Manager
	log      convlog.Store
	line     InputLocator
}

func New(cfg config.Config, exchange Exchange, services *catalog.Catalog, calls *call.Manager, log convlog.Store, line InputLocator) *Server {
	return &Server{
		cfg:      cfg,
		exchange: exchange,
		services: services,
		calls:    calls,
		log:      log,
		line:     line,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Telephony hooks: the dialplan shells out to curl and branches on the
	// literal response body, so these stay plain text.
	r.Post("/call/start", s.handleStart)
	r.Post("/call/reply", s.handleReply)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/services", s.handleListServices)
	r.Get("/v1/extensions/{exten}/call", s.handleGetCall)
	r.Get("/v1/calls/{callID}/turns", s.handleListTurns)

	return r
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	exten := strings.TrimSpace(r.URL.Query().Get("exten"))
	if exten == "" {
		exten = "0"
	}
	city := strings.TrimSpace(r.URL.Query().Get("city"))

	v, err := s.exchange.StartCall(r.Context(), exten, city)
	if err != nil {
		http.Error(w, "ERROR", http.StatusInternalServerError)
		return
	}
	if v.Mode == dispatch.ModeOnce {
		io.WriteString(w, "once")
		return
	}
	io.WriteString(w, "loop")
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	exten := strings.TrimSpace(r.URL.Query().Get("exten"))
	if exten == "" {
		http.Error(w, "ERROR", http.StatusBadRequest)
		return
	}

	audio, cleanup := s.callerAudio(r, exten)
	defer cleanup()

	v, err := s.exchange.HandleUtterance(r.Context(), exten, audio)
	if err != nil {
		if errors.Is(err, call.ErrNotFound) {
			http.Error(w, "ERROR", http.StatusNotFound)
			return
		}
		http.Error(w, "ERROR", http.StatusInternalServerError)
		return
	}
	if v.Terminated {
		io.WriteString(w, "DONE\n")
		return
	}
	io.WriteString(w, "OK\n")
}

// callerAudio picks the turn's recording: the request body when one was
// posted, otherwise the input file the PBX wrote to the sounds directory.
func (s *Server) callerAudio(r *http.Request, exten string) (io.Reader, func()) {
	if r.ContentLength > 0 {
		return r.Body, func() {}
	}
	f, err := os.Open(s.line.InputPath(exten))
	if err != nil {
		return nil, func() {}
	}
	return f, func() { f.Close() }
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"active_calls": s.calls.ActiveCount(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"services": len(s.services.Services()),
	})
}

type serviceView struct {
	Key       string `json:"key"`
	Extension string `json:"extension"`
	Loop      bool   `json:"loop"`
	Voice     string `json:"voice"`
}

func (s *Server) handleListServices(w http.ResponseWriter, _ *http.Request) {
	all := s.services.Services()
	views := make([]serviceView, 0, len(all))
	for _, svc := range all {
		views = append(views, serviceView{
			Key:       svc.Key,
			Extension: svc.Extension,
			Loop:      svc.Loop,
			Voice:     svc.Voice,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"services": views})
}

func (s *Server) handleGetCall(w http.ResponseWriter, r *http.Request) {
	exten := chi.URLParam(r, "exten")
	sess, err := s.calls.Get(exten)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "no call on that extension")
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	turns, err := s.log.Turns(r.Context(), callID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
