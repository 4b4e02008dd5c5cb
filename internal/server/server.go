// Package server exposes the loaded collection over plain HTTP: a small
// embedded browsing UI, a JSON API, and static/data file serving. It is a
// development helper, not a hardened public surface.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"chat-explorer/internal/loader"
	"chat-explorer/internal/metrics"
	"chat-explorer/internal/store"
)

// Options configures a Server.
type Options struct {
	DataDir     string
	StaticDir   string
	SearchLimit int
	Log         zerolog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
}

// Server serves the explorer UI and API over a store.
type Server struct {
	store *store.Store
	opts  Options
	log   zerolog.Logger
}

// New creates a Server over st.
func New(st *store.Store, opts Options) *Server {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 100
	}
	return &Server{store: st, opts: opts, log: opts.Log}
}

// Handler returns the full route table wrapped in logging/metrics
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/conversations", s.handleConversations)
	mux.HandleFunc("/api/conversation", s.handleConversation)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/reload", s.handleReload)
	if s.opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.opts.StaticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	if s.opts.DataDir != "" {
		mux.Handle("/data/", http.StripPrefix("/data/", http.FileServer(http.Dir(s.opts.DataDir))))
	}
	return s.withLogging(mux)
}

// Reload rescans the data directory and replaces the collection. Files that
// fail to parse are logged and skipped; the scan itself failing is an
// error. A reload that was superseded by a newer one is discarded.
func (s *Server) Reload() error {
	gen := s.store.Begin()

	entries, err := os.ReadDir(s.opts.DataDir)
	if err != nil {
		s.recordLoad("error", nil)
		return fmt.Errorf("scan data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		if e.Name() == "manifest.json" {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	var all []loader.Conversation
	combined := &loader.Report{}
	for _, name := range files {
		path := filepath.Join(s.opts.DataDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable export")
			continue
		}
		convs, report, err := loader.ParseExport(data)
		if err != nil {
			var malformed *loader.MalformedExportError
			if errors.As(err, &malformed) {
				s.log.Warn().Str("file", name).Str("reason", malformed.Error()).Msg("skipping malformed export")
				continue
			}
			s.recordLoad("error", nil)
			return fmt.Errorf("load %s: %w", name, err)
		}
		all = append(all, convs...)
		combined.Conversations += report.Conversations
		combined.Messages += report.Messages
		combined.DroppedMessages += report.DroppedMessages
	}

	if !s.store.ReplaceIfCurrent(gen, all, combined) {
		s.recordLoad("superseded", nil)
		s.log.Debug().Uint64("generation", gen).Msg("reload superseded by newer load")
		return nil
	}
	s.recordLoad("ok", combined)
	s.log.Info().
		Int("files", len(files)).
		Int("conversations", combined.Conversations).
		Int("messages", combined.Messages).
		Int("dropped_messages", combined.DroppedMessages).
		Msg("collection loaded")
	return nil
}

func (s *Server) recordLoad(status string, report *loader.Report) {
	if s.opts.Metrics == nil {
		return
	}
	if report == nil {
		s.opts.Metrics.RecordLoad(status, 0, 0, 0)
		return
	}
	s.opts.Metrics.RecordLoad(status, report.Conversations, report.Messages, report.DroppedMessages)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

// conversationResponse is the full-conversation wire shape, matching the
// field names the UI expects.
type conversationResponse struct {
	ID        string            `json:"uuid"`
	Title     string            `json:"name"`
	Summary   string            `json:"summary,omitempty"`
	CreatedAt time.Time         `json:"created_at,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
	Messages  []messageResponse `json:"messages"`
}

type messageResponse struct {
	ID        string    `json:"uuid,omitempty"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Content   string    `json:"content"`
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing conversation id"})
		return
	}
	conv, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "conversation not found"})
		return
	}

	resp := conversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		Summary:   conv.Summary,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]messageResponse, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:        msg.ID,
			Sender:    string(msg.Role),
			CreatedAt: msg.CreatedAt,
			Content:   msg.Text,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	start := time.Now()
	hits := s.store.Search(query)
	if s.opts.Metrics != nil {
		s.opts.Metrics.SearchQueriesTotal.Inc()
		s.opts.Metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}

	if len(hits) > s.opts.SearchLimit {
		hits = hits[:s.opts.SearchLimit]
	}
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.Reload(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": s.store.Stats()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &logResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)
		dur := time.Since(start)
		if s.opts.Metrics != nil {
			s.opts.Metrics.HTTPRequestsTotal.WithLabelValues(pathLabel(r.URL.Path), fmt.Sprint(lrw.status)).Inc()
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", lrw.status).
			Dur("duration", dur.Truncate(time.Millisecond)).
			Msg("request")
	})
}

// pathLabel collapses file-serving paths to keep metric cardinality bounded.
func pathLabel(path string) string {
	switch {
	case path == "/" || strings.HasPrefix(path, "/api/") || path == "/metrics":
		return path
	case strings.HasPrefix(path, "/static/"):
		return "/static/"
	case strings.HasPrefix(path, "/data/"):
		return "/data/"
	default:
		return "other"
	}
}

type logResponseWriter struct {
	http.ResponseWriter
	status int
}

func (lrw *logResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}
