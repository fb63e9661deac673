// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	stderrors "review-rating-engine/internal/common/errors"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/engine/evaluation"
	"review-rating-engine/internal/engine/mistral"
	"review-rating-engine/internal/engine/sentiment"
)

// maxBodyBytes caps request bodies; review texts are short.
const maxBodyBytes = 1 << 20

// Evaluator runs full review evaluations.
type Evaluator interface {
	Evaluate(ctx context.Context, req *evaluation.Request) (*evaluation.Result, error)
	CheckCoherence(ctx context.Context, text string, rating float64) (*mistral.CoherencePayload, error)
}

// SentimentAnalyzer exposes standalone sentiment analysis.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*sentiment.Result, error)
}

// Server is the HTTP surface of the rating engine.
type Server struct {
	evaluator Evaluator
	sentiment SentimentAnalyzer
	errors    *stderrors.ErrorHandler
	logger    logger.Logger
	version   string
}

func New(evaluator Evaluator, analyzer SentimentAnalyzer, log logger.Logger, version string) *Server {
	return &Server{
		evaluator: evaluator,
		sentiment: analyzer,
		errors:    stderrors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"component": "server",
		}),
		version: version,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/evaluations", s.handleEvaluate)
	mux.HandleFunc("POST /api/v1/sentiment", s.handleSentiment)
	mux.HandleFunc("POST /api/v1/coherence", s.handleCoherence)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluation.Request
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), &req)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type sentimentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	var req sentimentRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.sentiment.Analyze(r.Context(), req.Text)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type coherenceRequest struct {
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

func (s *Server) handleCoherence(w http.ResponseWriter, r *http.Request) {
	var req coherenceRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.evaluator.CheckCoherence(r.Context(), req.Text, req.Rating)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// decode parses the JSON body into dst, answering the request itself
// when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errors.WriteError(w, r, stderrors.NewValidationFailedError("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encoding failed", nil)
	}
}
