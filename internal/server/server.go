// Package server renders the CropLens dashboard: server-side HTML views
// over a loaded dataset plus on-demand PNG charts. All pages are plain
// GET with query parameters; the dataset is immutable after load, so
// handlers share it without locking.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/croplens/croplens/internal/dataset"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the dashboard for one loaded Dataset.
type Server struct {
	ds     *dataset.Dataset
	log    *logrus.Logger
	tmpl   *template.Template
	router *mux.Router
}

// New builds a Server around the dataset. Template parse errors are
// returned rather than panicking so the caller can report them.
func New(ds *dataset.Dataset, log *logrus.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fmtValue": fmtValue,
		"fmtPct":   fmtPct,
		"inc":      func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		ds:   ds,
		log:  log,
		tmpl: tmpl,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withLogging)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/trends", s.handleTrends).Methods(http.MethodGet)
	r.HandleFunc("/compare", s.handleCompare).Methods(http.MethodGet)
	r.HandleFunc("/producers", s.handleProducers).Methods(http.MethodGet)
	r.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	r.HandleFunc("/explorer", s.handleExplorer).Methods(http.MethodGet)
	r.HandleFunc("/missing", s.handleMissing).Methods(http.MethodGet)
	r.HandleFunc("/charts/{kind}.png", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	return r
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the dashboard on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.WithField("addr", addr).Info("dashboard listening")
	return srv.ListenAndServe()
}

// render executes one page template. Failures after the body has begun
// streaming can only be logged.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.WithError(err).WithField("template", name).Error("template render failed")
	}
}

// fmtValue renders a measurement without trailing zero noise.
func fmtValue(v float64) string {
	return trimZeros(fmt.Sprintf("%.2f", v))
}

func fmtPct(v float64) string {
	return trimZeros(fmt.Sprintf("%.2f", v)) + "%"
}

func trimZeros(s string) string {
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
