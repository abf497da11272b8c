package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/domzcondes/opsmon/pkg/config"
	"github.com/domzcondes/opsmon/pkg/logging"
	"github.com/domzcondes/opsmon/pkg/metrics"
	"github.com/domzcondes/opsmon/pkg/report"
	opstls "github.com/domzcondes/opsmon/pkg/tls"
	"github.com/domzcondes/opsmon/pkg/usage"
)

// SnapshotProvider supplies the dashboard read model
type SnapshotProvider interface {
	Snapshot(ctx context.Context) *report.Summary
}

// Server serves the monitoring dashboard: HTML pages for operators, a JSON
// summary endpoint, health and Prometheus metrics.
type Server struct {
	cfg       config.DashboardConfig
	usageFile string
	provider  SnapshotProvider
	metrics   *metrics.CycleMetrics
	log       *logging.Logger
	router    *mux.Router
}

// NewServer creates a dashboard server around the given snapshot provider
func NewServer(cfg config.DashboardConfig, usageFile string, provider SnapshotProvider, m *metrics.CycleMetrics, log *logging.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		usageFile: usageFile,
		provider:  provider,
		metrics:   m,
		log:       log,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	protected := s.router.NewRoute().Subrouter()
	protected.Use(s.basicAuth)
	protected.HandleFunc("/", s.handleIndex).Methods("GET")
	protected.HandleFunc("/workflows", s.handleWorkflows).Methods("GET")
	protected.HandleFunc("/jobs", s.handleJobs).Methods("GET")
	protected.HandleFunc("/usage", s.handleUsage).Methods("GET")
	protected.HandleFunc("/api/summary", s.handleAPISummary).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server and returns it so the caller can
// shut it down gracefully. With a certificate pair configured the server
// speaks TLS.
func (s *Server) ListenAndServe() *http.Server {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	useTLS := s.cfg.CertFile != "" && s.cfg.KeyFile != ""
	if useTLS {
		tlsConfig, err := opstls.ServerConfig(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			s.log.Error("dashboard TLS setup failed, serving plain HTTP", map[string]interface{}{"error": err.Error()})
			useTLS = false
		} else {
			srv.TLSConfig = tlsConfig
		}
	}

	go func() {
		s.log.Info("dashboard listening", map[string]interface{}{
			"addr": s.cfg.Addr,
			"tls":  useTLS,
		})
		var err error
		if useTLS {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.log.Error("dashboard server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	return srv
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	summary := s.provider.Snapshot(r.Context())
	s.renderPage(w, indexTemplate, indexView{
		Title:   "Overview",
		Summary: summary,
	})
}

func (s *Server) handleWorkflows(w http.ResponseWriter, r *http.Request) {
	summary := s.provider.Snapshot(r.Context())
	s.renderPage(w, workflowsTemplate, indexView{
		Title:   "Workflows and Sessions",
		Summary: summary,
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	summary := s.provider.Snapshot(r.Context())
	s.renderPage(w, jobsTemplate, indexView{
		Title:   "Batch Jobs",
		Summary: summary,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	samples, err := usage.Read(s.usageFile)
	if err != nil {
		s.log.Warn("usage history unavailable", map[string]interface{}{
			"file":  s.usageFile,
			"error": err.Error(),
		})
	}
	cutoff := time.Now().Add(-24 * time.Hour)
	s.renderPage(w, usageTemplate, usageView{
		Title:   "Resource Usage",
		Samples: usage.Since(samples, cutoff),
		Latest:  usage.Latest(samples),
	})
}

// handleAPISummary serves the dashboard read model as JSON. An optional
// source query parameter narrows the itemized records to one source.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	summary := s.provider.Snapshot(r.Context())

	switch r.URL.Query().Get("source") {
	case "":
	case "workflow":
		summary.SessionRecords = nil
		summary.JobRecords = nil
	case "session":
		summary.WorkflowRecords = nil
		summary.JobRecords = nil
	case "batch_job":
		summary.WorkflowRecords = nil
		summary.SessionRecords = nil
	default:
		http.Error(w, "unknown source filter", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		s.log.Error("summary encoding failed", map[string]interface{}{"error": err.Error()})
	}
}
