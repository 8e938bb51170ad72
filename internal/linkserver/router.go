package linkserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/scan"
	"github.com/five82/hitcard/internal/session"
	"github.com/five82/hitcard/internal/state"
)

// RequestIDHeader carries the per-request identifier on every response.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 16 << 10

// Snapshotter exposes the latest published session.
type Snapshotter interface {
	Snapshot() state.Snapshot
}

// Options wire the router to the running session.
type Options struct {
	// Dispatch delivers an event to the session owner. It must not block.
	Dispatch func(session.Event)
	Store    Snapshotter
	// Prefixes are the short-form card paths to route; empty uses scan.DefaultPrefixes.
	Prefixes []string
	Logger   zerolog.Logger
}

type handlers struct {
	dispatch func(session.Event)
	store    Snapshotter
	prefixes []string
	logger   zerolog.Logger
}

// NewRouter returns the link server routes.
func NewRouter(opts Options) *mux.Router {
	h := &handlers{
		dispatch: opts.Dispatch,
		store:    opts.Store,
		prefixes: opts.Prefixes,
		logger:   opts.Logger.With().Str("component", "linkserver").Logger(),
	}
	if h.dispatch == nil {
		h.dispatch = func(session.Event) {}
	}
	if len(h.prefixes) == 0 {
		h.prefixes = scan.DefaultPrefixes
	}

	r := mux.NewRouter()
	r.Use(requestID, h.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/state", h.getState).Methods(http.MethodGet)
	r.Handle("/api/scan", sameOriginJSON(http.HandlerFunc(h.postScan))).Methods(http.MethodPost)
	r.Handle("/api/camera", sameOriginJSON(http.HandlerFunc(h.postCamera))).Methods(http.MethodPost)
	for _, prefix := range h.prefixes {
		r.HandleFunc(prefix+"{id}", h.openCard).Methods(http.MethodGet)
	}
	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	return r
}

type scanRequest struct {
	Data string `json:"data"`
}

type cameraRequest struct {
	Granted *bool  `json:"granted"`
	Error   string `json:"error"`
}

type acceptedResponse struct {
	RequestID string `json:"requestId"`
	Event     string `json:"event"`
}

type stateResponse struct {
	Phase     session.Phase `json:"phase"`
	Version   uint64        `json:"version"`
	Session   session.State `json:"session"`
	LastError string        `json:"lastError,omitempty"`
}

type errorResponse struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

func (h *handlers) getState(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no session")
		return
	}
	snap := h.store.Snapshot()
	resp := stateResponse{Phase: snap.Phase, Version: snap.Version, Session: snap.Session}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	if resp.Phase == "" {
		resp.Phase = snap.Session.Phase()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) postScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Data) == "" {
		writeError(w, r, http.StatusBadRequest, "data is required")
		return
	}
	h.accept(w, r, session.ScanDecoded{Text: req.Data}, "scan")
}

func (h *handlers) postCamera(w http.ResponseWriter, r *http.Request) {
	var req cameraRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case strings.TrimSpace(req.Error) != "":
		h.accept(w, r, session.CameraFailed{Kind: session.ParseCameraError(req.Error)}, "cameraFailed")
	case req.Granted != nil:
		h.accept(w, r, session.CameraPermissionChanged{Granted: *req.Granted}, "cameraPermission")
	default:
		writeError(w, r, http.StatusBadRequest, "granted or error is required")
	}
}

func (h *handlers) openCard(w http.ResponseWriter, r *http.Request) {
	h.openLink(w, r, r.URL.EscapedPath())
}

// index handles GitHub Pages style redirects of the form /?/qr/am/<id>.
func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	path, _, _ := strings.Cut(r.URL.RawQuery, "&")
	if strings.HasPrefix(path, "/") {
		h.openLink(w, r, path)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "hitcard link server")
}

func (h *handlers) openLink(w http.ResponseWriter, r *http.Request, path string) {
	link := requestOrigin(r) + path
	ev := session.LinkOpened{Text: link}
	h.dispatch(ev)
	h.logger.Info().Str("link", link).Str("request_id", w.Header().Get(RequestIDHeader)).Msg("card link opened")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprintln(w, "Card sent to hitcard.")
}

func (h *handlers) accept(w http.ResponseWriter, r *http.Request, ev session.Event, name string) {
	h.dispatch(ev)
	writeJSON(w, http.StatusAccepted, acceptedResponse{RequestID: w.Header().Get(RequestIDHeader), Event: name})
}

// sameOriginJSON only admits application/json bodies and, when an Origin is
// sent, only the server's own.
func sameOriginJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeError(w, r, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" && !strings.EqualFold(origin, requestOrigin(r)) {
			writeError(w, r, http.StatusForbidden, "cross-origin requests are not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{RequestID: w.Header().Get(RequestIDHeader), Error: msg})
}

// requestID reuses a well-formed incoming X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("request_id", w.Header().Get(RequestIDHeader)).
			Msg("request")
	})
}
