package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/reporting"
	"wallet-credit-score/internal/storage"
)

// Server exposes stored scoring runs over HTTP. It never scores.
type Server struct {
	scores storage.ScoreStore
	logger *zap.SugaredLogger
}

func newServer(scores storage.ScoreStore, logger *zap.SugaredLogger) *Server {
	return &Server{scores: scores, logger: logger}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("GET /runs/latest", s.handleLatestRun)
	mux.HandleFunc("GET /runs/{runID}", s.handleRun)
	mux.HandleFunc("GET /runs/{runID}/scores.csv", s.handleRunScoresCSV)
	mux.HandleFunc("GET /wallets/{wallet}", s.handleWallet)

	return mux
}

// RunResponse is the JSON response for the run endpoints.
type RunResponse struct {
	RunID         string    `json:"run_id"`
	AsOf          time.Time `json:"as_of"`
	InputDigest   string    `json:"input_digest"`
	EventsRead    int       `json:"events_read"`
	EventsSkipped int       `json:"events_skipped"`
	WalletCount   int       `json:"wallet_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// WalletResponse is the JSON response for /wallets/{wallet}.
type WalletResponse struct {
	Wallet      string  `json:"userWallet"`
	CreditScore int     `json:"credit_score"`
	RawScore    float64 `json:"raw_score"`
	RunID       string  `json:"run_id"`
}

func toRunResponse(run *domain.ScoreRun) RunResponse {
	return RunResponse{
		RunID:         run.RunID,
		AsOf:          run.AsOf,
		InputDigest:   run.InputDigest,
		EventsRead:    run.EventsRead,
		EventsSkipped: run.EventsSkipped,
		WalletCount:   run.WalletCount,
		CreatedAt:     run.CreatedAt,
	}
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.scores.GetLatestRun(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, toRunResponse(run))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.scores.GetRun(r.Context(), r.PathValue("runID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, toRunResponse(run))
}

func (s *Server) handleRunScoresCSV(w http.ResponseWriter, r *http.Request) {
	scores, err := s.scores.GetScoresByRun(r.Context(), r.PathValue("runID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(scores) == 0 {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(reporting.RenderScoresCSV(scores)))
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.scores.GetLatestByWallet(r.Context(), r.PathValue("wallet"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, WalletResponse{
		Wallet:      rec.Wallet,
		CreditScore: rec.CreditScore,
		RawScore:    rec.RawScore,
		RunID:       rec.RunID,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.logger.Errorw("store query failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// writeJSON encodes before writing so an unencodable value still gets a 500.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Errorw("encoding response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(body, '\n'))
}
