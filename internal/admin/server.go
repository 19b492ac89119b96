package admin

import (
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energest-report/internal/energest"
	"energest-report/internal/shape"
)

//go:embed templates/index.html
var content embed.FS

// Server serves analyzed records, shaped views and metrics over HTTP.
type Server struct {
	recs     []energest.ExperimentRecord
	labels   map[string]string
	gatherer prometheus.Gatherer
	tpl      *template.Template
}

func NewServer(recs []energest.ExperimentRecord, labels map[string]string, gatherer prometheus.Gatherer) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{recs: recs, labels: labels, gatherer: gatherer, tpl: tpl}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /records", s.handleRecords)
	mux.HandleFunc("GET /views", s.handleViewNames)
	mux.HandleFunc("GET /views/{name}", s.handleView)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

type indexRow struct {
	energest.ExperimentRecord
	Label string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		RunID string
		Rows  []indexRow
		Views []string
	}{Views: shape.Names()}
	for _, rec := range s.recs {
		data.RunID = rec.RunID
		data.Rows = append(data.Rows, indexRow{ExperimentRecord: rec, Label: shape.Label(s.labels, rec.Type)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		log.Printf("[Admin] render index: %v", err)
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	recs := s.recs
	if typ := r.URL.Query().Get("type"); typ != "" {
		recs = nil
		for _, rec := range s.recs {
			if rec.Type == typ {
				recs = append(recs, rec)
			}
		}
	}
	if recs == nil {
		recs = []energest.ExperimentRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleViewNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shape.Names())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !slices.Contains(shape.Names(), name) {
		http.Error(w, "unknown view "+name, http.StatusNotFound)
		return
	}
	data, err := shape.Build(name, s.recs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Admin] encode response: %v", err)
	}
}
