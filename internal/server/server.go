package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"gw2wvw/ingestion/internal/cache"
	"gw2wvw/ingestion/internal/config"
	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/repository"
)

// Server is the read surface: it serves the snapshot cache and thin store
// lookups. It never writes and never talks to the GW2 API.
type Server struct {
	cfg   *config.Config
	db    *repository.Database
	cache *cache.SnapshotCache
	http  *http.Server
}

// New creates the read surface server.
func New(cfg *config.Config, db *repository.Database, snapCache *cache.SnapshotCache) *Server {
	s := &Server{
		cfg:   cfg,
		db:    db,
		cache: snapCache,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/data/", s.handleData)
	r.Get("/stream", s.handleStream)
	r.Get("/guilds/{name}/team", s.handleGuildTeam)
	r.Get("/teams/{id}", s.handleTeam)
	r.Get("/healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.cfg.ServerPort).Msg("Starting read surface server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("read surface server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// handleData serves the current snapshot. The snapshot checksum doubles as
// an ETag so polling clients exchange 304s between sync cycles.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snapshot := s.cache.Get()
	if snapshot == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	etag := fmt.Sprintf("%q", s.cache.Checksum())
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, snapshot)
}

// handleStream is an SSE endpoint pushing a snapshot event whenever the
// cache changes structurally. Keep-alive comments go out when the wait
// times out so proxies do not drop the connection. Delivery is at least
// once; clients dedupe by the id line, which carries the checksum.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	lastSent := ""
	if snapshot := s.cache.Get(); snapshot != nil {
		lastSent = s.cache.Checksum()
		writeEvent(w, lastSent, snapshot)
		flusher.Flush()
	}

	for {
		snapshot, changed := s.cache.WaitForChange(r.Context(), s.cfg.StreamKeepAlive)
		if r.Context().Err() != nil {
			return
		}

		checksum := s.cache.Checksum()
		if changed && checksum != lastSent {
			lastSent = checksum
			writeEvent(w, checksum, snapshot)
		} else {
			fmt.Fprint(w, ": keep-alive\n\n")
		}
		flusher.Flush()
	}
}

// handleGuildTeam resolves a guild name to its team.
func (s *Server) handleGuildTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	assignment, err := s.db.Assignments.GetTeamForGuildName(r.Context(), name)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Guild not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("guild", name).Msg("Failed to resolve guild team")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// handleTeam returns a team with its assigned guilds.
func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	team, err := s.db.Teams.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Team not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("team", id).Msg("Failed to get team")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	guilds, err := s.db.Assignments.GuildsForTeam(r.Context(), team.ID)
	if err != nil {
		log.Error().Err(err).Str("team", id).Msg("Failed to list team guilds")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     team.ID,
		"name":   team.Name,
		"guilds": guilds,
	})
}

// handleHealth reports database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeEvent(w http.ResponseWriter, id string, v interface{}) {
	blob, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode stream event")
		return
	}
	fmt.Fprintf(w, "id: %s\nevent: snapshot\ndata: %s\n\n", id, blob)
}
