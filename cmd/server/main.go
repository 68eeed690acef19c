package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/lib/pq"

	"github.com/shiftwise/compliance/compliance"
	"github.com/shiftwise/compliance/internal/logger"
	"github.com/shiftwise/compliance/internal/metrics"
	"github.com/shiftwise/compliance/store"
)

type Server struct {
	db          *sql.DB
	checker     *compliance.Checker
	ruleSet     *compliance.RuleSet
	audit       store.AuditStore
	customRules store.CustomRuleStore
	metrics     *metrics.Metrics
	router      *chi.Mux
}

// NewServer wires the service against PostgreSQL.
func NewServer(databaseURL string) (*Server, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewServerWithStores(
		store.NewPostgresTimesheetStore(db),
		store.NewPostgresAuditStore(db),
		store.NewPostgresCustomRuleStore(db),
		metrics.New(),
	)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

// NewServerWithStores wires the service against caller-supplied stores.
// Tests pass the in-memory implementations.
func NewServerWithStores(ts store.TimesheetStore, audit store.AuditStore, customRules store.CustomRuleStore, m *metrics.Metrics) (*Server, error) {
	ruleSet := compliance.DefaultRuleSet()

	// Re-register persisted custom rules. A rule that no longer
	// compiles is skipped, not fatal: the built-in catalog must keep
	// certifying timesheets.
	persisted, err := customRules.ListActive(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load custom rules: %w", err)
	}
	for _, cr := range persisted {
		rule, err := compliance.CompileCustomRule(cr)
		if err != nil {
			logger.Error("skipping invalid custom rule", "rule", cr.ID, "error", err)
			continue
		}
		if err := ruleSet.Register(rule); err != nil {
			logger.Error("skipping conflicting custom rule", "rule", cr.ID, "error", err)
		}
	}

	builder := compliance.NewContextBuilder(ts)
	s := &Server{
		checker:     compliance.NewChecker(builder, ruleSet, audit, m),
		ruleSet:     ruleSet,
		audit:       audit,
		customRules: customRules,
		metrics:     m,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/timesheets/{timesheetId}", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Get("/preview", s.handlePreview)
		r.Get("/history", s.handleHistory)
	})

	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)
		r.Delete("/{ruleId}", s.handleDeleteRule)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"ruleCount": s.checker.RuleCount(),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "timesheetId")

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start := time.Now()
	result, err := s.checker.RunComplianceCheck(r.Context(), timesheetID, compliance.CheckOptions{
		StopOnFirstFailure: req.StopOnFirstFailure,
	})
	if err != nil {
		s.respondCheckError(w, timesheetID, err)
		return
	}
	if s.metrics != nil {
		s.metrics.CheckDuration.Observe(time.Since(start).Seconds())
	}

	respondJSON(w, http.StatusOK, toCheckResponse(result))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "timesheetId")

	result, err := s.checker.ValidateCompliance(r.Context(), timesheetID)
	if err != nil {
		s.respondCheckError(w, timesheetID, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckResponse(result))
}

func (s *Server) respondCheckError(w http.ResponseWriter, timesheetID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "timesheet not found", err)
		return
	}
	logger.Error("compliance check failed", "timesheet", timesheetID, "error", err)
	respondError(w, http.StatusInternalServerError, "compliance check failed", err)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "timesheetId")

	records, err := s.audit.ListByTimesheet(r.Context(), timesheetID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list compliance history", err)
		return
	}

	entries := []HistoryEntry{}
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			ID:             rec.ID,
			Passed:         rec.Passed,
			RulesEvaluated: rec.RulesEvaluated,
			ViolationCount: rec.ViolationCount,
			CheckedAt:      rec.CheckedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"checks": entries})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	views := []RuleView{}
	for _, rule := range s.ruleSet.Rules() {
		views = append(views, toRuleView(rule))
	}
	respondJSON(w, http.StatusOK, map[string]any{"rules": views})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" || req.Expression == "" {
		respondError(w, http.StatusBadRequest, "name and expression are required", nil)
		return
	}

	cr := &store.CustomRule{
		ID:          "CUSTOM-" + uuid.NewString(),
		Name:        req.Name,
		Category:    req.Category,
		AgeBands:    req.AgeBands,
		Expression:  req.Expression,
		Message:     req.Message,
		Remediation: req.Remediation,
		Active:      true,
	}

	// Validate by compiling before anything is stored.
	rule, err := compliance.CompileCustomRule(cr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "rule validation failed", err)
		return
	}

	if err := s.customRules.Add(r.Context(), cr); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store rule", err)
		return
	}
	if err := s.ruleSet.Register(rule); err != nil {
		// Keep store and registry consistent if registration loses a race.
		_ = s.customRules.Delete(r.Context(), cr.ID)
		respondError(w, http.StatusConflict, "failed to register rule", err)
		return
	}

	respondJSON(w, http.StatusCreated, toRuleView(rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	// Only custom rules are deletable; the built-in catalog is fixed.
	if err := s.customRules.Delete(r.Context(), ruleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "custom rule not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete rule", err)
		return
	}
	s.ruleSet.Remove(ruleID)

	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	if err := logger.Init("compliance-server"); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown(context.Background())

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	server, err := NewServer(databaseURL)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	defer server.db.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port, "rules", server.checker.RuleCount())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
