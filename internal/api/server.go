// Package api serves read-only previews of the bots over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/teambots/internal/bots"
	"github.com/pbaille/teambots/internal/history"
	"github.com/pbaille/teambots/internal/slack"
)

// Builder constructs the named bot with every message going to out and
// history writes disabled. release frees what the bot holds.
type Builder func(name string, out slack.Publisher) (bot bots.Bot, release func(), err error)

// HistoryOpener opens the history store of a bot
type HistoryOpener func(bot string) (history.Store, error)

// Server handles HTTP requests for bot previews
type Server struct {
	names   []string
	build   Builder
	history HistoryOpener
	addr    string
	log     *zap.Logger
}

// New creates a new API server
func New(names []string, build Builder, openHistory HistoryOpener, addr string, log *zap.Logger) *Server {
	return &Server{names: names, build: build, history: openHistory, addr: addr, log: log}
}

// Handler returns the routes wrapped with CORS headers
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /bots", s.listBots)
	mux.HandleFunc("GET /bots/{name}/preview", s.preview)
	mux.HandleFunc("GET /history", s.listHistory)

	return withCORS(mux)
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Starting server", zap.String("addr", s.addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"bots": s.names})
}

// PreviewResponse is what a bot would have posted
type PreviewResponse struct {
	Report   *bots.Report    `json:"report,omitempty"`
	Messages []slack.Message `json:"messages"`
	Error    string          `json:"error,omitempty"`
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !slices.Contains(s.names, name) {
		writeError(w, http.StatusNotFound, "unknown bot: "+name)
		return
	}

	rec := &slack.Recorder{}
	bot, release, err := s.build(name, rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rep, err := bot.Run(r.Context())
	release()

	resp := PreviewResponse{Report: rep, Messages: rec.Messages()}
	if err != nil {
		s.log.Warn("Preview failed", zap.String("bot", name), zap.Error(err))
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	bot := r.URL.Query().Get("bot")
	if bot == "" {
		bot = "quote"
	}
	if !bots.UsesHistory(bot) {
		writeError(w, http.StatusBadRequest, "bot keeps no history: "+bot)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be within 1..500")
			return
		}
		limit = n
	}

	store, err := s.history(bot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer store.Close()

	entries, err := store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bot":     bot,
		"entries": entries,
		"limit":   limit,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
