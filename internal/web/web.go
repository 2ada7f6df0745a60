package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/crypto/bcrypt"

	"carecal/internal/config"
	"carecal/internal/family"
	"carecal/internal/feed"
	"carecal/internal/i18n"
	appLog "carecal/internal/log"
	"carecal/internal/onboarding"
	"carecal/internal/schedule"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// SnapshotSource is the part of feed.Refresher the API reads.
type SnapshotSource interface {
	Snapshot() feed.Snapshot
}

// Deps are the collaborators of a Server. Nil fields get defaults.
type Deps struct {
	Feed     SnapshotSource
	Roster   *family.Roster
	Sessions *schedule.Registry
	Bundle   *goi18n.Bundle
	Clock    schedule.Clock
	IDs      schedule.IDFunc
}

// Server exposes the schedule screens, family, onboarding and subscription
// state over a JSON API.
type Server struct {
	cfg    *config.Config
	router *mux.Router

	loc      *time.Location
	feed     SnapshotSource
	roster   *family.Roster
	sessions *schedule.Registry
	bundle   *goi18n.Bundle
	clock    schedule.Clock
	ids      schedule.IDFunc

	flowsMu sync.Mutex
	flows   map[string]*onboarding.Flow
}

// NewServer constructs a Server for an already normalized config.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", cfg.Timezone)
	}

	if deps.Bundle == nil {
		if deps.Bundle, err = i18n.NewBundle(); err != nil {
			return nil, err
		}
	}
	if deps.Roster == nil {
		deps.Roster = family.NewRoster()
	}
	if deps.Sessions == nil {
		deps.Sessions = schedule.NewRegistry()
	}
	if deps.Clock == nil {
		deps.Clock = schedule.RealClock{Location: loc}
	}

	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		loc:      loc,
		feed:     deps.Feed,
		roster:   deps.Roster,
		sessions: deps.Sessions,
		bundle:   deps.Bundle,
		clock:    deps.Clock,
		ids:      deps.IDs,
		flows:    make(map[string]*onboarding.Flow),
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the router, behind basic auth when it is configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleOpenSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleCloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/next", s.handleNext).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/previous", s.handlePrevious).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/events", s.handleListEvents).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/events", s.handleAddEvent).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/events/{eventID}", s.handleDeleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/events/{eventID}", s.handleEditEvent).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/calendar.ics", s.handleExport).Methods(http.MethodGet)

	api.HandleFunc("/time-slots", s.handleTimeSlots).Methods(http.MethodGet)
	api.HandleFunc("/languages", s.handleLanguages).Methods(http.MethodGet)

	api.HandleFunc("/family", s.handleListFamily).Methods(http.MethodGet)
	api.HandleFunc("/family", s.handleAddMember).Methods(http.MethodPost)
	api.HandleFunc("/family/{id}", s.handleDeleteMember).Methods(http.MethodDelete)
	api.HandleFunc("/emergency", s.handleEmergency).Methods(http.MethodGet)

	api.HandleFunc("/onboarding", s.handleStartOnboarding).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/{id}", s.handleGetOnboarding).Methods(http.MethodGet)
	api.HandleFunc("/onboarding/{id}/phone", s.handleOnboardingPhone).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/{id}/code", s.handleOnboardingCode).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/{id}/role", s.handleOnboardingRole).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/{id}/confirm", s.handleOnboardingConfirm).Methods(http.MethodPost)

	api.HandleFunc("/subscriptions", s.handleSubscriptions).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// Start serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLog.Info("stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-serveErr:
		return fmt.Errorf("http listen: %w", err)
	}
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil || s.cfg.BasicAuth.Username == "" {
		return false
	}
	return s.cfg.BasicAuth.Password != "" || s.cfg.BasicAuth.PasswordHash != ""
}

// basicAuthMiddleware guards everything except /health. A bcrypt
// password_hash takes precedence over a plaintext password.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password
	hash := []byte(s.cfg.BasicAuth.PasswordHash)

	check := func(p string) bool {
		if len(hash) > 0 {
			return bcrypt.CompareHashAndPassword(hash, []byte(p)) == nil
		}
		return secureCompare(p, password)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !check(p) {
			w.Header().Set("WWW-Authenticate", `Basic realm="CareCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		appLog.Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start).String())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleTimeSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.TimeSlots)
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"current":   s.cfg.Language,
		"languages": i18n.Languages,
	})
}

type subscriptionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type subscriptionsResponse struct {
	Feeds    []subscriptionDTO `json:"feeds"`
	Snapshot *feed.Snapshot    `json:"snapshot,omitempty"`
}

// handleSubscriptions lists the configured feeds and the last import.
// URLs are left out since they may embed tokens.
func (s *Server) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	resp := subscriptionsResponse{Feeds: make([]subscriptionDTO, 0, len(s.cfg.ICS))}
	for _, f := range s.cfg.ICS {
		resp.Feeds = append(resp.Feeds, subscriptionDTO{ID: f.ID, Name: f.Name})
	}
	if s.feed != nil {
		snap := s.feed.Snapshot()
		resp.Snapshot = &snap
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter. ok is false when the
// parameter is absent.
func queryInt(r *http.Request, key string) (n int, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, true, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
