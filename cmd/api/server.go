package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"feedback-insights-go/internal/app"
	"feedback-insights-go/internal/dataset"
	"feedback-insights-go/internal/export"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/processor"
	"feedback-insights-go/internal/types"
)

const (
	maxUploadBytes   = 32 << 20
	defaultDemoItems = 5
)

type server struct {
	app    *app.App
	router *chi.Mux
}

func newServer(a *app.App) *server {
	s := &server{app: a, router: chi.NewRouter()}
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/analyze", s.handleAnalyze)
	s.router.Get("/demo", s.handleDemo)
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	logger.New().WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

type analyzeRequest struct {
	Feedback []string `json:"feedback"`
	MaxItems int      `json:"max_items"`
}

// handleAnalyze accepts either a multipart upload in field "file" or a JSON
// body {"feedback": [...]}.
func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")

	var (
		items    []types.FeedbackItem
		maxItems int
		err      error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		items, maxItems, err = s.readUpload(r)
	} else {
		items, maxItems, err = readJSONBody(w, r)
	}
	if err != nil {
		reqLog.WithError(err).Warn("bad analyze request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if q := r.URL.Query().Get("max_items"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			maxItems = n
		}
	}
	s.runBatch(w, r, s.app.Cap(items, maxItems))
}

func (s *server) readUpload(r *http.Request) ([]types.FeedbackItem, int, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, 0, fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, 0, fmt.Errorf("missing file: %w", err)
	}
	defer file.Close()

	items, _, err := dataset.LoadReader(file, header.Filename, s.app.DatasetOptions())
	if err != nil {
		return nil, 0, err
	}
	n, _ := strconv.Atoi(r.FormValue("max_items"))
	return items, n, nil
}

func readJSONBody(w http.ResponseWriter, r *http.Request) ([]types.FeedbackItem, int, error) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		return nil, 0, fmt.Errorf("decode body: %w", err)
	}
	items, _ := dataset.FromTexts(req.Feedback, "api")
	return items, req.MaxItems, nil
}

func (s *server) handleDemo(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "demo")

	path := s.app.Config.DatasetPath
	if path == "" {
		http.Error(w, "DATASET_PATH is not configured", http.StatusNotFound)
		return
	}
	items, _, err := dataset.Load(path, s.app.DatasetOptions())
	if err != nil {
		reqLog.WithError(err).Error("dataset load error")
		http.Error(w, "dataset load error", http.StatusInternalServerError)
		return
	}
	n := defaultDemoItems
	if q := r.URL.Query().Get("n"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 {
			n = v
		}
	}
	s.runBatch(w, r, s.app.Cap(items, n))
}

func (s *server) runBatch(w http.ResponseWriter, r *http.Request, items []types.FeedbackItem) {
	reqLog := logger.New().WithRequest(r).WithField("items", len(items))
	if len(items) == 0 {
		http.Error(w, "no feedback items", http.StatusBadRequest)
		return
	}

	start := time.Now()
	batch, err := s.app.Engine.Run(r.Context(), items, s.app.Client)
	reqLog = reqLog.WithField("batch_id", batch.ID).WithField("duration_ms", time.Since(start).Milliseconds())
	if errors.Is(err, processor.ErrBatchCancelled) {
		// Client went away; nobody is left to read the response.
		reqLog.WithError(err).Warn("batch cancelled by client")
		return
	}
	reqLog.WithField("total_cost_usd", batch.Summary.TotalCostUSD).Info("batch served")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", export.FileName(batch.ID)))
	if err := export.Encode(w, batch); err != nil {
		reqLog.WithError(err).Error("failed to write response")
	}
}
